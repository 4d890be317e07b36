package engine

import (
	"unicode/utf8"

	"go.etcd.io/bbolt"
	"golang.org/x/text/encoding/unicode"

	"kvs.dev/errors"
	"kvs.dev/kvs"
)

var bucketName = []byte("kv")

// BoltEngine is a thin adapter over an embedded B-tree store,
// acknowledged by this module as a pluggable alternative to KvStore:
// it satisfies the same engine contract but delegates durability and
// indexing entirely to bbolt rather than implementing its own log and
// index.
type BoltEngine struct {
	db *bbolt.DB
}

var _ kvs.Cloner = (*BoltEngine)(nil)

// OpenBolt opens (creating if absent) path as a single-file bbolt
// database with one bucket holding every key.
func OpenBolt(path string) (*BoltEngine, error) {
	const op errors.Op = "engine.OpenBolt"
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, errors.E(op, errors.Io, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.E(op, errors.Io, err)
	}
	return &BoltEngine{db: db}, nil
}

// Clone returns a handle to the same underlying database. bbolt
// already serializes access internally, so no extra coordination is
// needed for concurrent workers to share one BoltEngine.
func (b *BoltEngine) Clone() kvs.Engine { return b }

// Set implements kvs.Engine.
func (b *BoltEngine) Set(key, value string) error {
	const op errors.Op = "engine.BoltEngine.Set"
	err := b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return errors.E(op, errors.Io, err)
	}
	return nil
}

// Get implements kvs.Engine.
func (b *BoltEngine) Get(key string) (string, bool, error) {
	const op errors.Op = "engine.BoltEngine.Get"
	var value string
	var ok bool
	err := b.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v == nil {
			return nil
		}
		ok = true
		decoded, err := decodeUTF8(v)
		if err != nil {
			return err
		}
		value = decoded
		return nil
	})
	if err != nil {
		return "", false, errors.E(op, err)
	}
	return value, ok, nil
}

// Remove implements kvs.Engine.
func (b *BoltEngine) Remove(key string) error {
	const op errors.Op = "engine.BoltEngine.Remove"
	var existed bool
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket(bucketName)
		if bkt.Get([]byte(key)) == nil {
			return nil
		}
		existed = true
		return bkt.Delete([]byte(key))
	})
	if err != nil {
		return errors.E(op, errors.Io, err)
	}
	if !existed {
		return errors.E(op, errors.KeyNotFound)
	}
	return nil
}

// Close releases the underlying database file.
func (b *BoltEngine) Close() error { return b.db.Close() }

// decodeUTF8 validates that v is well-formed UTF-8 before handing it
// back as a string. bbolt stores raw bytes with no encoding of its
// own, so this boundary check is what gives the Utf8 error kind
// somewhere real to come from.
func decodeUTF8(v []byte) (string, error) {
	const op errors.Op = "engine.decodeUTF8"
	decoded, err := unicode.UTF8.NewDecoder().Bytes(v)
	if err != nil {
		return "", errors.E(op, errors.Utf8, err)
	}
	if !utf8.Valid(v) {
		return "", errors.E(op, errors.Utf8, errors.Str("invalid UTF-8 in stored value"))
	}
	return string(decoded), nil
}
