package exitcode

import "testing"

func TestString(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{Success, "Success"},
		{GeneralError, "General error"},
		{ConfigError, "Configuration error"},
		{GitError, "Git operation error"},
		{BuildError, "Build error"},
		{FileSystemError, "File system error"},
		{NetworkError, "Network error"},
		{VerifyError, "Verification failure"},
		{ToolNotFound, "Tool not found"},
		{999, "Unknown error"},
	}

	for _, test := range tests {
		result := String(test.code)
		if result != test.expected {
			t.Errorf("String(%d) = %v, expected %v", test.code, result, test.expected)
		}
	}
}

func TestExitCodeUniqueness(t *testing.T) {
	codes := []int{
		Success,
		GeneralError,
		ConfigError,
		GitError,
		BuildError,
		FileSystemError,
		NetworkError,
		VerifyError,
		ToolNotFound,
	}

	seen := make(map[int]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Exit code %d is not unique", code)
		}
		seen[code] = true
	}
}
