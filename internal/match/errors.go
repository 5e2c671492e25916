package match

import "fmt"

// Load error codes.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeScanError    = "E002" // Directory scan error
	ErrCodeNoFiles      = "E003" // No match files found
	ErrCodeParseFailed  = "E004" // YAML parse failed
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeSchemaFailed = "E006" // Schema validation failed
	ErrCodeInvalidMatch = "E008" // Match is structurally invalid
)

// LoadError is an error found while loading match files.
type LoadError struct {
	Code    string
	File    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s: %s", e.File, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
