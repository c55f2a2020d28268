// Package exitcode provides standardized exit codes for pasreporter
package exitcode

// Exit codes for the pasreporter CLI
const (
	Success         = 0
	GeneralError    = 1
	ConfigError     = 2
	GitError        = 3
	BuildError      = 4
	FileSystemError = 5
	NetworkError    = 6
	VerifyError     = 7
	ToolNotFound    = 9
)

// String returns a human-readable description of the exit code
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case ConfigError:
		return "Configuration error"
	case GitError:
		return "Git operation error"
	case BuildError:
		return "Build error"
	case FileSystemError:
		return "File system error"
	case NetworkError:
		return "Network error"
	case VerifyError:
		return "Verification failure"
	case ToolNotFound:
		return "Tool not found"
	default:
		return "Unknown error"
	}
}
