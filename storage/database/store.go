package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/karo/core"
	"github.com/trezcool/karo/storage/docstore"
)

const changeChannel = "document_changes"

type watcher struct {
	prefix string
	fn     func(path string)
}

// Store is the Postgres-backed docstore.Client: one jsonb document per path,
// multi-path writes in a single transaction, change notifications via
// LISTEN/NOTIFY (the notify trigger is installed by migrations).
type Store struct {
	db   *sqlx.DB
	conf *core.Config

	mu           sync.Mutex
	listener     *pq.Listener
	listenerOnce sync.Once
	listenerErr  error
	watchers     map[int]watcher
	watchPK      int
}

var _ docstore.Client = (*Store)(nil)

func NewStore(db *sql.DB, conf *core.Config) *Store {
	return &Store{
		db:       sqlx.NewDb(db, conf.Database.Engine),
		conf:     conf,
		watchers: make(map[int]watcher),
	}
}

func (s *Store) Get(ctx context.Context, path string) (json.RawMessage, error) {
	var doc json.RawMessage
	err := s.db.QueryRowContext(ctx, "SELECT doc FROM documents WHERE path = $1", path).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, docstore.ErrNotFound
	}
	if err != nil {
		return nil, transientErr(err, "getting document")
	}
	return doc, nil
}

func (s *Store) List(ctx context.Context, prefix string) (map[string]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT path, doc FROM documents WHERE path LIKE $1", likePrefix(prefix))
	if err != nil {
		return nil, transientErr(err, "listing documents")
	}
	defer func() { _ = rows.Close() }()

	docs := make(map[string]json.RawMessage)
	for rows.Next() {
		var path string
		var doc json.RawMessage
		if err = rows.Scan(&path, &doc); err != nil {
			return nil, transientErr(err, "scanning document")
		}
		docs[path] = doc
	}
	if err = rows.Err(); err != nil {
		return nil, transientErr(err, "listing documents")
	}
	return docs, nil
}

const upsertQuery = `
INSERT INTO documents (path, doc, updated_at) VALUES ($1, $2, now())
ON CONFLICT (path) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`

func (s *Store) Put(ctx context.Context, path string, doc json.RawMessage) error {
	if _, err := s.db.ExecContext(ctx, upsertQuery, path, []byte(doc)); err != nil {
		return transientErr(err, "putting document")
	}
	return nil
}

func (s *Store) MultiPut(ctx context.Context, docs map[string]json.RawMessage) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return transientErr(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	for path, doc := range docs {
		if _, err = tx.ExecContext(ctx, upsertQuery, path, []byte(doc)); err != nil {
			return transientErr(err, "putting document "+path)
		}
	}
	if err = tx.Commit(); err != nil {
		return transientErr(err, "committing documents")
	}
	return nil
}

func (s *Store) Watch(prefix string, fn func(path string)) (stop func(), err error) {
	if err = s.ensureListener(); err != nil {
		return nil, err
	}

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

func (s *Store) Close() error {
	s.mu.Lock()
	listener := s.listener
	s.listener = nil
	s.mu.Unlock()

	if listener != nil {
		return listener.Close()
	}
	return nil
}

// ensureListener lazily starts the LISTEN connection and its dispatch loop.
func (s *Store) ensureListener() error {
	s.listenerOnce.Do(func() {
		listener := pq.NewListener(
			DSN(s.conf),
			10*time.Second, time.Minute,
			func(event pq.ListenerEventType, err error) {},
		)
		if err := listener.Listen(changeChannel); err != nil {
			s.listenerErr = transientErr(err, "listening for document changes")
			_ = listener.Close()
			return
		}
		s.mu.Lock()
		s.listener = listener
		s.mu.Unlock()

		go s.dispatch(listener)
	})
	return s.listenerErr
}

func (s *Store) dispatch(listener *pq.Listener) {
	for n := range listener.Notify {
		if n == nil { // connection re-established; watchers must re-read state
			continue
		}
		path := n.Extra

		s.mu.Lock()
		fns := make([]func(string), 0, len(s.watchers))
		for _, w := range s.watchers {
			if strings.HasPrefix(path, w.prefix) {
				fns = append(fns, w.fn)
			}
		}
		s.mu.Unlock()

		for _, fn := range fns {
			fn(path)
		}
	}
}

func likePrefix(prefix string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)
	return escaped + "%"
}

// transientErr marks a store I/O failure as retriable-for-reads.
func transientErr(err error, msg string) error {
	return errors.Wrapf(docstore.ErrUnavailable, "%s: %v", msg, err)
}
