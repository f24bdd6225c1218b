package app

import "testing"

func TestOriginHost(t *testing.T) {
	cases := []struct {
		origin string
		want   string
	}{
		{"https://darshan.temple.example", "darshan.temple.example"},
		{"http://localhost:5173", "localhost:5173"},
		{"not a url", "not a url"},
	}
	for _, tc := range cases {
		if got := originHost(tc.origin); got != tc.want {
			t.Errorf("originHost(%q) = %q, want %q", tc.origin, got, tc.want)
		}
	}
}

func TestOriginMatchesPattern(t *testing.T) {
	cases := []struct {
		pattern string
		host    string
		want    bool
	}{
		{"darshan.temple.example", "darshan.temple.example", true},
		{"darshan.temple.example", "evil.example", false},
		{"*.temple.example", "admin.temple.example", true},
		{"*.temple.example", "temple.example.evil", false},
		{"localhost:*", "localhost:5173", true},
		{"localhost:*", "localghost:5173", false},
	}
	for _, tc := range cases {
		if got := originMatchesPattern(tc.pattern, tc.host); got != tc.want {
			t.Errorf("originMatchesPattern(%q, %q) = %v, want %v", tc.pattern, tc.host, got, tc.want)
		}
	}
}
