package envutil

import (
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Duration
	}{
		{"", 5 * time.Second},
		{"45s", 45 * time.Second},
		{"10m", 10 * time.Minute},
		{"30", 30 * time.Second},
		{"-3", 5 * time.Second},
		{"garbage", 5 * time.Second},
	}
	for _, tc := range cases {
		t.Setenv("ENVUTIL_TEST_DURATION", tc.raw)
		if got := Duration("ENVUTIL_TEST_DURATION", 5*time.Second); got != tc.want {
			t.Fatalf("Duration(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestBoolAndInt(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_BOOL", "off")
	if Bool("ENVUTIL_TEST_BOOL", true) {
		t.Fatalf("expected off to parse as false")
	}
	t.Setenv("ENVUTIL_TEST_BOOL", "maybe")
	if !Bool("ENVUTIL_TEST_BOOL", true) {
		t.Fatalf("expected unknown value to fall back to default")
	}
	t.Setenv("ENVUTIL_TEST_INT", " 7 ")
	if got := Int("ENVUTIL_TEST_INT", 1); got != 7 {
		t.Fatalf("Int = %d, want 7", got)
	}
}
