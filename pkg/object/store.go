package object

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru"
	"github.com/klauspost/compress/zlib"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// Database reads loose objects from a store with a 2-character fan-out
// directory layout: objects/ab/cdef0123...
//
// A Database holds no per-call state; it is safe for concurrent readers.
type Database struct {
	root      string
	log       logrus.FieldLogger
	cacheSize int
	cache     *lru.Cache
}

// Option configures a Database.
type Option func(*Database)

// WithLogger sets the logger used for debug output.
func WithLogger(log logrus.FieldLogger) Option {
	return func(db *Database) {
		if log != nil {
			db.log = log
		}
	}
}

// WithCacheSize keeps up to n decoded objects in memory. Cached objects are
// shared between callers and must not be modified. n <= 0 disables caching.
func WithCacheSize(n int) Option {
	return func(db *Database) {
		db.cacheSize = n
	}
}

// NewDatabase creates a Database rooted at the given store directory, the
// one holding objects/.
func NewDatabase(root string, opts ...Option) (*Database, error) {
	db := &Database{
		root: root,
		log:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(db)
	}
	if db.cacheSize > 0 {
		cache, err := lru.New(db.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("object cache: %w", err)
		}
		db.cache = cache
	}
	return db, nil
}

// Root returns the store directory.
func (db *Database) Root() string { return db.root }

// objectPath returns the filesystem path for a given hash.
func (db *Database) objectPath(h Hash) string {
	return filepath.Join(db.root, "objects", h.Prefix(), h.Suffix())
}

// Has reports whether a loose object file exists for h.
func (db *Database) Has(h Hash) bool {
	if _, err := ParseHash(string(h)); err != nil {
		return false
	}
	_, err := os.Stat(db.objectPath(h))
	return err == nil
}

// ReadObject opens, decompresses and decodes the object named by h.
func (db *Database) ReadObject(h Hash) (obj *Object, err error) {
	if _, err := ParseHash(string(h)); err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	if db.cache != nil {
		if v, ok := db.cache.Get(h); ok {
			db.log.WithField("oid", h).Debug("object cache hit")
			return v.(*Object), nil
		}
	}

	path := db.objectPath(h)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, h, err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
		if err != nil {
			obj = nil
		}
	}()

	zr, err := zlib.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("object %s: open zlib stream: %w", h, err)
	}
	defer func() {
		// A stream error such as a bad checksum is reported again by Close.
		if cerr := zr.Close(); cerr != nil && !errors.Is(err, cerr) {
			err = multierr.Append(err, cerr)
		}
	}()

	obj, err = Decode(h, zr)
	if err != nil {
		return nil, fmt.Errorf("decode object %s: %w", h, err)
	}

	db.log.WithFields(logrus.Fields{
		"oid":  h,
		"type": obj.Type(),
		"size": obj.Size,
		"path": path,
	}).Debug("read object")
	if db.cache != nil {
		db.cache.Add(h, obj)
	}
	return obj, nil
}

// ReadCommit reads h and requires it to be a commit.
func (db *Database) ReadCommit(h Hash) (*Commit, error) {
	obj, err := db.ReadObject(h)
	if err != nil {
		return nil, err
	}
	c, ok := obj.Payload.(*Commit)
	if !ok {
		return nil, fmt.Errorf("%w: %s is a %s", ErrNotACommit, h, obj.Type())
	}
	return c, nil
}
