// Package api provides an HTTP API server for browsing and managing
// captured sessions.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8091")
	ListenAddr string
}
