package versioning

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"1.2.3", false},
		{"v1.2.3", false},
		{"4.0.0-rc.1", false},
		{"1.2.3+build.5", false},
		{"1.2", true},
		{"01.2.3", true},
		{"1.2.3-", true},
		{"", true},
		{"release-1", true},
	}
	for _, tc := range tests {
		_, err := Parse(tc.input)
		if (err != nil) != tc.wantErr {
			t.Errorf("Parse(%q) error = %v, wantErr %v", tc.input, err, tc.wantErr)
		}
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want Comparison
	}{
		{"1.2.3", "1.2.3", ComparisonEqual},
		{"v1.2.3", "1.2.3", ComparisonEqual},
		{"1.2.3", "1.2.4", ComparisonLess},
		{"2.0.0", "1.99.99", ComparisonGreater},
		{"1.0.0-alpha", "1.0.0", ComparisonLess},
		{"1.0.0-alpha.1", "1.0.0-alpha", ComparisonGreater},
		{"1.0.0-1", "1.0.0-alpha", ComparisonLess},
		{"1.0.0-rc.2", "1.0.0-rc.11", ComparisonLess},
	}
	for _, tc := range tests {
		got, err := Compare(tc.a, tc.b)
		if err != nil {
			t.Fatalf("Compare(%q, %q) failed: %v", tc.a, tc.b, err)
		}
		if got != tc.want {
			t.Errorf("Compare(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestAtLeast(t *testing.T) {
	ok, err := AtLeast("18.19.0", "18.0.0")
	if err != nil || !ok {
		t.Errorf("AtLeast(18.19.0, 18.0.0) = %v, %v", ok, err)
	}
	ok, err = AtLeast("16.20.2", "18.0.0")
	if err != nil || ok {
		t.Errorf("AtLeast(16.20.2, 18.0.0) = %v, %v", ok, err)
	}
}

func TestLatestRelease(t *testing.T) {
	tags := []string{
		"3.1.0",
		"4.0.0-rc.1",
		"4.0.0rc2",
		"3.1.1",
		"2.9.12",
		"not-a-version",
		"v3.0.0",
	}
	got, err := LatestRelease(tags)
	if err != nil {
		t.Fatalf("LatestRelease failed: %v", err)
	}
	if got != "3.1.1" {
		t.Errorf("LatestRelease = %s, want 3.1.1", got)
	}
}

func TestLatestReleaseNoReleases(t *testing.T) {
	if _, err := LatestRelease([]string{"4.0.0-rc.1", "nightly", ""}); err == nil {
		t.Error("expected error when only prerelease/invalid tags exist")
	}
}

func TestIsRelease(t *testing.T) {
	v, err := Parse("1.2.3")
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsRelease() {
		t.Error("1.2.3 should be a release")
	}
	v, err = Parse("1.2.3-beta")
	if err != nil {
		t.Fatal(err)
	}
	if v.IsRelease() {
		t.Error("1.2.3-beta should not be a release")
	}
}
