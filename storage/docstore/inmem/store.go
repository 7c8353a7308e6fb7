// Package inmemstore provides an in-memory docstore.Client for tests and local dev.
package inmemstore

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/trezcool/karo/storage/docstore"
)

type watcher struct {
	prefix string
	fn     func(path string)
}

type Store struct {
	mu       sync.RWMutex
	docs     map[string]json.RawMessage
	watchers map[int]watcher
	watchPK  int
}

var _ docstore.Client = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		docs:     make(map[string]json.RawMessage),
		watchers: make(map[int]watcher),
	}
}

func (s *Store) Get(ctx context.Context, path string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[path]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	return append(json.RawMessage(nil), doc...), nil
}

func (s *Store) List(ctx context.Context, prefix string) (map[string]json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make(map[string]json.RawMessage)
	for path, doc := range s.docs {
		if strings.HasPrefix(path, prefix) {
			docs[path] = append(json.RawMessage(nil), doc...)
		}
	}
	return docs, nil
}

func (s *Store) Put(ctx context.Context, path string, doc json.RawMessage) error {
	s.mu.Lock()
	s.docs[path] = append(json.RawMessage(nil), doc...)
	s.mu.Unlock()

	s.notify(path)
	return nil
}

func (s *Store) MultiPut(ctx context.Context, docs map[string]json.RawMessage) error {
	s.mu.Lock()
	for path, doc := range docs {
		s.docs[path] = append(json.RawMessage(nil), doc...)
	}
	s.mu.Unlock()

	for path := range docs {
		s.notify(path)
	}
	return nil
}

func (s *Store) Watch(prefix string, fn func(path string)) (stop func(), err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.watchPK++
	pk := s.watchPK
	s.watchers[pk] = watcher{prefix: prefix, fn: fn}

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.watchers, pk)
	}, nil
}

func (s *Store) Close() error { return nil }

// notify runs the matching watcher callbacks outside the write lock.
func (s *Store) notify(path string) {
	s.mu.RLock()
	fns := make([]func(string), 0, len(s.watchers))
	for _, w := range s.watchers {
		if strings.HasPrefix(path, w.prefix) {
			fns = append(fns, w.fn)
		}
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(path)
	}
}
