// Package ports defines the interfaces that connect the application layer
// to infrastructure adapters.
//
// # Port Interfaces
//
//   - [RecordSink]: persists committed samples (SQLite, HTTP webhook)
//   - [RecordPruner]: deletes persisted samples older than a cutoff
//   - [StatusRepository]: persists and loads sampler counters
//   - [StreamHandler]: turns an inbound byte stream into a session
//   - [Logger]: structured logging abstraction
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them, and transport
// adapters drive the application through StreamHandler.
package ports
