package db

import "testing"

func TestValidTimezone(t *testing.T) {
	cases := []struct {
		tz   string
		want bool
	}{
		{"UTC", true},
		{"Europe/Moscow", true},
		{"America/New_York", true},
		{"Etc/GMT-5", true},
		{"+03:00", true},
		{"UTC'; DROP TABLE publish_history; --", false},
		{"Bad Zone", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := validTimezone(tc.tz); got != tc.want {
			t.Fatalf("validTimezone(%q)=%v want=%v", tc.tz, got, tc.want)
		}
	}
}
