package cmd

import "testing"

func TestVersionSatisfies(t *testing.T) {
	tests := []struct {
		name    string
		version string
		wantOK  bool
	}{
		{"node", "v20.11.0", true},
		{"node", "v16.20.2", false},
		{"npm", "10.2.4", true},
		{"npm", "6.14.18", false},
		{"python", "3.11.6", true},
		{"python", "3.8.10", false},
		{"git", "2.39.5", true},       // no minimum configured
		{"python", "", true},          // absence handled elsewhere
		{"node", "v21-nightly", true}, // unparseable output is not failed
	}
	for _, tc := range tests {
		ok, detail := versionSatisfies(tc.name, tc.version)
		if ok != tc.wantOK {
			t.Errorf("versionSatisfies(%q, %q) = %v (%s), want %v", tc.name, tc.version, ok, detail, tc.wantOK)
		}
		if !ok && detail == "" {
			t.Errorf("versionSatisfies(%q, %q) failed without a detail", tc.name, tc.version)
		}
	}
}
