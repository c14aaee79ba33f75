package util

import "testing"

func TestParseBoolEnv(t *testing.T) {
	cases := []struct {
		value string
		def   bool
		want  bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"YES", false, true},
		{"on", false, true},
		{"false", true, false},
		{"0", true, false},
		{"No", true, false},
		{"off", true, false},
		{"", true, true},
		{"", false, false},
		{"maybe", true, true},
		{"maybe", false, false},
		{"  true  ", false, true},
	}
	for _, tc := range cases {
		t.Setenv("UTIL_TEST_BOOL", tc.value)
		if got := ParseBoolEnv("UTIL_TEST_BOOL", tc.def); got != tc.want {
			t.Errorf("ParseBoolEnv(%q, %v) = %v, want %v", tc.value, tc.def, got, tc.want)
		}
	}
}

func TestEnvOrDefault(t *testing.T) {
	t.Setenv("UTIL_TEST_STR", "")
	if got := EnvOrDefault("UTIL_TEST_STR", "fallback"); got != "fallback" {
		t.Errorf("expected fallback for blank value, got %q", got)
	}

	t.Setenv("UTIL_TEST_STR", "  :9090  ")
	if got := EnvOrDefault("UTIL_TEST_STR", "fallback"); got != ":9090" {
		t.Errorf("expected trimmed value, got %q", got)
	}
}
