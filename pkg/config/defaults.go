package config

// Rewrite defaults.
const (
	DefaultScale        = 2
	DefaultRoundingMode = "HALF_UP"
	DefaultRename       = true
)

// Run defaults.
const (
	DefaultWorkers          = 0 // 0 means runtime.NumCPU().
	DefaultBackup           = true
	DefaultCompressBackup   = false
	DefaultDryRun           = false
	DefaultRespectGitignore = true
	DefaultMaxFileSize      = "4MB"
)

// Logging defaults.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// DefaultExtensions lists the source extensions a run visits.
func DefaultExtensions() []string {
	return []string{".java"}
}
