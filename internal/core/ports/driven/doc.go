// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): document parsing, chunking, indexes, the
// embedding and generation backends, and metadata storage.
package driven
