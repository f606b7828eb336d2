package httpclient

import (
	"encoding/json"
	"fmt"
)

// Request describes an outbound HTTP request.
type Request struct {
	Method string
	// Path is appended to BaseURL unless it is an absolute URL.
	Path    string
	Headers map[string]string
	Query   map[string]string
	// Body accepts *MultipartBody, []byte, string, or a value to JSON-encode.
	// Bodies are re-encoded on every attempt.
	Body any
	// Auth overrides the client-level auth for this request.
	Auth *AuthConfig
}

// Response is the result of a successful HTTP request.
type Response struct {
	StatusCode int
	Body       []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
