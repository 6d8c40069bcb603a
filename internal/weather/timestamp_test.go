package weather

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	berlin := time.FixedZone("CEST", 2*60*60)
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2024-06-01T13:00", time.Date(2024, 6, 1, 13, 0, 0, 0, berlin)},
		{"2024-06-01T13:00:30", time.Date(2024, 6, 1, 13, 0, 30, 0, berlin)},
		{"2024-06-01 13:00:00", time.Date(2024, 6, 1, 13, 0, 0, 0, berlin)},
		{"2024-06-01", time.Date(2024, 6, 1, 0, 0, 0, 0, berlin)},
		{"2024-06-01T13:00:00Z", time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC)},
		{" 2024-06-01T13:00 ", time.Date(2024, 6, 1, 13, 0, 0, 0, berlin)},
	}
	for _, tc := range cases {
		got, err := ParseTimestamp(tc.in, berlin)
		if err != nil {
			t.Fatalf("%q: %v", tc.in, err)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("%q: expected %v, got %v", tc.in, tc.want, got)
		}
	}
}

func TestParseTimestampInvalid(t *testing.T) {
	for _, in := range []string{"", "yesterday", "2024-13-01T00:00", "01/06/2024"} {
		if _, err := ParseTimestamp(in, time.UTC); err == nil {
			t.Fatalf("%q: expected error", in)
		}
	}
}

func TestFetchWindow(t *testing.T) {
	now := time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC)
	w := FetchWindow(now)
	if !w.Start.Equal(time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start %v", w.Start)
	}
	if !w.End.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end %v", w.End)
	}
}

func TestLocationKey(t *testing.T) {
	if got := (Location{Latitude: 52.52, Longitude: -0.1}).Key(); got != "52.52:-0.1" {
		t.Fatalf("unexpected key %q", got)
	}
}
