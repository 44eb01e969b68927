// Package domain contains the core entities and value objects for shiplog.
//
// This package is the innermost layer of the service. It has no dependencies
// on infrastructure concerns (sockets, SQL, file system, logging) and holds
// only the vessel state model and its invariants.
//
// # Entities
//
//   - [LogEntry]: the current-state record of one connection, every field
//     unset until a sentence provides it
//   - [Sample]: a snapshot of a LogEntry awaiting persistence, with the AIS
//     context that triggered it
//   - [Status]: persisted counters describing sampler activity
//
// # Design Principles
//
// A LogEntry is mutated in place by sentence handlers and deep-copied when a
// sample is taken, so a Sample never aliases the live record.
package domain
