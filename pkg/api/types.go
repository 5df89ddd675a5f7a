package api

import "github.com/ssargent/wubitab/pkg/codebook"

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Bind string
	Port int
	// APIKey, when set, is required in the X-API-Key header of /api/v1 requests.
	APIKey string
}

// Lookup is the read side of a codebook. Both the in-memory
// codebook.Codebook and the persistent storage.CodebookStore implement it.
type Lookup interface {
	Lookup(code string) ([]string, error)
	Complete(prefix string, limit int) ([]codebook.Entry, error)
}
