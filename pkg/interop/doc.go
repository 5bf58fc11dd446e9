// Package interop bridges signals to the rest of the Go ecosystem:
// channels, contexts, WebSocket connections, and HTTP server-sent
// events.
//
// The adapters here are deliberately thin. Each one maps the lifecycle
// of the foreign construct onto the signal lifecycle — a closed channel
// becomes completion, a context cancellation becomes disposal, a
// WebSocket close frame becomes completion or failure depending on the
// close code — and leaves composition to the signal package.
package interop
