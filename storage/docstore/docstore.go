// Package docstore defines the hierarchical document store consumed by the
// fee ledger: JSON documents addressed by slash-separated paths, read by
// prefix, written one at a time or as an atomic multi-path update.
package docstore

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound indicates no document exists at the requested path.
	ErrNotFound = errors.New("document not found")
	// ErrUnavailable indicates a transient store I/O failure. Reads are safe to
	// retry; writes must be verified before retrying.
	ErrUnavailable = errors.New("document store unavailable")
)

// Client is a generic hierarchical document store client.
type Client interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
	// List returns all documents whose path starts with prefix, keyed by path.
	List(ctx context.Context, prefix string) (map[string]json.RawMessage, error)
	Put(ctx context.Context, path string, doc json.RawMessage) error
	// MultiPut writes all documents atomically: they commit together or not at all.
	MultiPut(ctx context.Context, docs map[string]json.RawMessage) error
	// Watch invokes fn with the path of every committed write under prefix
	// until stop is called.
	Watch(prefix string, fn func(path string)) (stop func(), err error)
	Close() error
}

// Join builds a document path from its segments.
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

// Split breaks a document path into its segments.
func Split(path string) []string {
	return strings.Split(path, "/")
}
