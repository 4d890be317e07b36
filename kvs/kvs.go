// Package kvs defines the contract shared by every storage backend: a
// log-structured engine, an embedded-B-tree adapter, or any future
// variant. Servers and clients program against this interface only.
package kvs

// Engine is the polymorphic backend contract. Set upserts, Get reads,
// Remove deletes. A Remove of an absent key must fail with a
// KeyNotFound-kind error (see package kvs.dev/errors); Get never fails
// that way, instead returning ok == false.
//
// Implementations must be safe for concurrent use by multiple workers
// against a single logical store: handles are cheaply copyable and
// every copy shares the same underlying state (see Cloner below).
type Engine interface {
	Set(key, value string) error
	Get(key string) (value string, ok bool, err error)
	Remove(key string) error
}

// Cloner is implemented by engines whose handle can be copied cheaply,
// with every copy observing and mutating the same underlying store.
// The server calls Clone once per accepted connection so that workers
// never share a single handle value directly.
type Cloner interface {
	Engine
	Clone() Engine
}
