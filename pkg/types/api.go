package types

// VersionDocument is returned by GET /version.
type VersionDocument struct {
	// API version this bridge speaks.
	// example: 2.0
	ClientAPIVersion string `json:"clientAPIVersion" example:"2.0"`
	// API version reported by the device, or a placeholder when none was received.
	// example: 2.1
	ServerAPIVersion string `json:"serverAPIVersion" example:"2.1"`
	// Present only when the major versions differ.
	Message string `json:"message,omitempty"`
}

// StatusAlias is the fixed document returned instead of cache content.
type StatusAlias struct {
	// One of ok, wait, overflow, done, error.
	// example: wait
	Status string `json:"status" example:"wait"`
}

// Alias values.
const (
	AliasOK       = "ok"
	AliasWait     = "wait"
	AliasOverflow = "overflow"
	AliasDone     = "done"
	AliasError    = "error"
)

// FilenamesDocument is returned by GET /filenames once the list is complete.
type FilenamesDocument struct {
	Filenames []string `json:"filenames"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: resource not found
	Error string `json:"error" example:"resource not found"`
	// HTTP status code.
	// example: 404
	Code int `json:"code" example:"404"`
}
