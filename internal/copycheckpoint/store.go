// Package copycheckpoint persists which files a resumable folder copy has
// already finished, so a process restarted with the same session ID can
// skip straight to what remains instead of re-copying from the top.
package copycheckpoint

import (
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"

	"github.com/nimbusvault/filecore/internal/ferr"
)

var rootBucket = []byte("copy_sessions")

// Store wraps a BoltDB file, one bucket per session ID, one key per
// relative path already copied.
type Store struct {
	db *bolt.DB
}

// Open creates or opens the checkpoint database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(filepath.Clean(path), 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, ferr.Wrap(ferr.IOFailed, "open checkpoint store", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists(rootBucket)
		return e
	}); err != nil {
		db.Close()
		return nil, ferr.Wrap(ferr.IOFailed, "create checkpoint root bucket", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// MarkDone records relativePath as finished within sessionID.
func (s *Store) MarkDone(sessionID, relativePath string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		sessions, err := tx.Bucket(rootBucket).CreateBucketIfNotExists([]byte(sessionID))
		if err != nil {
			return err
		}
		return sessions.Put([]byte(relativePath), []byte{1})
	})
	if err != nil {
		return ferr.Wrap(ferr.IOFailed, "mark copy checkpoint done", err)
	}
	return nil
}

// IsDone reports whether relativePath was already marked done within
// sessionID.
func (s *Store) IsDone(sessionID, relativePath string) (bool, error) {
	var done bool
	err := s.db.View(func(tx *bolt.Tx) error {
		sessions := tx.Bucket(rootBucket).Bucket([]byte(sessionID))
		if sessions == nil {
			return nil
		}
		done = sessions.Get([]byte(relativePath)) != nil
		return nil
	})
	if err != nil {
		return false, ferr.Wrap(ferr.IOFailed, "read copy checkpoint", err)
	}
	return done, nil
}

// Session loads every relative path already marked done for sessionID, as a
// set a resuming folder-copy iterator can consult to skip finished files.
func (s *Store) Session(sessionID string) (map[string]bool, error) {
	done := make(map[string]bool)
	err := s.db.View(func(tx *bolt.Tx) error {
		sessions := tx.Bucket(rootBucket).Bucket([]byte(sessionID))
		if sessions == nil {
			return nil
		}
		return sessions.ForEach(func(k, v []byte) error {
			done[string(k)] = true
			return nil
		})
	})
	if err != nil {
		return nil, ferr.Wrap(ferr.IOFailed, "read copy checkpoint session", err)
	}
	return done, nil
}

// ClearSession deletes every checkpoint recorded for sessionID, for use once
// a resumable copy finishes cleanly and its bookkeeping is no longer needed.
func (s *Store) ClearSession(sessionID string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(rootBucket)
		if b.Bucket([]byte(sessionID)) == nil {
			return nil
		}
		return b.DeleteBucket([]byte(sessionID))
	})
	if err != nil {
		return ferr.Wrap(ferr.IOFailed, "clear copy checkpoint session", err)
	}
	return nil
}
