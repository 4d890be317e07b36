// Package engine implements the storage backends this module ships:
// KvStore, the log-structured engine at the center of the spec, and
// BoltEngine, a thin adapter over an embedded B-tree store.
package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"kvs.dev/errors"
	"kvs.dev/kvs"
	"kvs.dev/log"
	"kvs.dev/logio"
)

// CompactionThreshold is the number of uncompacted bytes that triggers
// a synchronous compaction from within Set or Remove.
const CompactionThreshold = 1024 * 1024

const logExt = ".log"

// commandPos is one index entry: which generation a key's current Set
// record lives in, at what offset, and how many bytes it occupies.
type commandPos struct {
	gen, pos, length uint64
}

// state is the data KvStore handles share. It is guarded by a single
// coarse mutex: every invariant in this store's contract only needs to
// hold between operations, and a single lock around index, readers,
// writer, and the generation counters makes that trivial to satisfy,
// including during compaction.
type state struct {
	mu          sync.Mutex
	dir         string
	index       map[string]commandPos
	readers     map[uint64]*logio.Reader
	writer      *logio.Writer
	currentGen  uint64
	uncompacted uint64
}

// KvStore is the log-structured engine: one append-only file per
// generation, an in-memory index from key to log offset, and
// synchronous compaction once stale bytes exceed CompactionThreshold.
//
// KvStore is a thin handle around a pointer to shared state; Clone (or
// a plain struct copy) produces another handle to the same store, so
// concurrent workers can each hold their own KvStore value safely.
type KvStore struct {
	s *state
}

var _ kvs.Cloner = (*KvStore)(nil)

// Open opens (creating if absent) dir as a KvStore directory. Every
// existing generation's log is replayed, in ascending order, to
// rebuild the in-memory index before Open returns.
func Open(dir string) (*KvStore, error) {
	const op errors.Op = "engine.Open"
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.E(op, errors.Io, err)
	}
	gens, err := sortedGenerations(dir)
	if err != nil {
		return nil, errors.E(op, errors.Io, err)
	}

	s := &state{
		dir:     dir,
		index:   make(map[string]commandPos),
		readers: make(map[uint64]*logio.Reader),
	}
	for _, gen := range gens {
		r, err := logio.OpenReader(logPath(dir, gen))
		if err != nil {
			return nil, errors.E(op, errors.Io, err)
		}
		n, err := replay(op, gen, r, s.index)
		if err != nil {
			return nil, err
		}
		s.uncompacted += n
		s.readers[gen] = r
	}

	currentGen := uint64(0)
	if len(gens) > 0 {
		currentGen = gens[len(gens)-1]
	}
	currentGen++
	w, err := newLogFile(dir, currentGen, s.readers)
	if err != nil {
		return nil, errors.E(op, errors.Io, err)
	}
	s.writer = w
	s.currentGen = currentGen

	log.Info.Printf("engine: opened %s at generation %d (%d bytes uncompacted)", dir, currentGen, s.uncompacted)
	return &KvStore{s: s}, nil
}

// Clone returns a handle sharing this KvStore's underlying state.
func (k *KvStore) Clone() kvs.Engine { return &KvStore{s: k.s} }

// Set upserts key, overwriting any prior value, and flushes the
// record to the operating system before returning.
func (k *KvStore) Set(key, value string) error {
	const op errors.Op = "engine.Set"
	s := k.s
	s.mu.Lock()
	defer s.mu.Unlock()

	p0, p1, err := k.append(op, setCommand(key, value))
	if err != nil {
		return err
	}
	if old, ok := s.index[key]; ok {
		s.uncompacted += old.length
	}
	s.index[key] = commandPos{gen: s.currentGen, pos: p0, length: p1 - p0}

	if s.uncompacted > CompactionThreshold {
		return k.compactLocked()
	}
	return nil
}

// Get returns the current value of key, or ok == false if key is not
// bound. It never blocks on a flush.
func (k *KvStore) Get(key string) (string, bool, error) {
	const op errors.Op = "engine.Get"
	s := k.s
	s.mu.Lock()
	defer s.mu.Unlock()

	cp, ok := s.index[key]
	if !ok {
		return "", false, nil
	}
	rec, err := k.readRecord(op, cp)
	if err != nil {
		return "", false, err
	}
	if rec.Cmd.Op != "set" {
		return "", false, errors.E(op, errors.UnexpectedCommandType)
	}
	return rec.Cmd.Value, true, nil
}

// Remove deletes key, failing with a KeyNotFound-kind error if it was
// not bound. Nothing is written to the log in that case.
func (k *KvStore) Remove(key string) error {
	const op errors.Op = "engine.Remove"
	s := k.s
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.index[key]
	if !ok {
		return errors.E(op, errors.KeyNotFound)
	}

	p0, p1, err := k.append(op, removeCommand(key))
	if err != nil {
		return err
	}
	delete(s.index, key)
	s.uncompacted += old.length + (p1 - p0)

	if s.uncompacted > CompactionThreshold {
		return k.compactLocked()
	}
	return nil
}

// append encodes and flushes cmd to the active writer. Caller must
// hold s.mu.
func (k *KvStore) append(op errors.Op, cmd command) (p0, p1 uint64, err error) {
	s := k.s
	rec, err := newRecord(cmd)
	if err != nil {
		return 0, 0, errors.E(op, errors.Serde, err)
	}
	p0 = s.writer.Pos()
	if err := json.NewEncoder(s.writer).Encode(rec); err != nil {
		return 0, 0, errors.E(op, errors.Io, err)
	}
	if err := s.writer.Flush(); err != nil {
		return 0, 0, errors.E(op, errors.Io, err)
	}
	return p0, s.writer.Pos(), nil
}

// readRecord decodes the record at cp, verifying its checksum. Caller
// must hold s.mu.
func (k *KvStore) readRecord(op errors.Op, cp commandPos) (record, error) {
	s := k.s
	r, ok := s.readers[cp.gen]
	if !ok {
		return record{}, errors.E(op, errors.Io, fmt.Errorf("no reader for generation %d", cp.gen))
	}
	buf, err := r.ReadExactlyAt(cp.pos, cp.length)
	if err != nil {
		return record{}, errors.E(op, errors.Io, err)
	}
	var rec record
	if err := json.Unmarshal(buf, &rec); err != nil {
		return record{}, errors.E(op, errors.Serde, err)
	}
	if err := rec.verify(op); err != nil {
		return record{}, err
	}
	return rec, nil
}

// compactLocked rewrites every index-referenced Set record into a
// fresh generation, deletes every older generation, and resets the
// uncompacted counter. Caller must hold s.mu.
func (k *KvStore) compactLocked() error {
	const op errors.Op = "engine.compact"
	s := k.s

	compactionGen := s.currentGen + 1
	newCurrentGen := s.currentGen + 2

	compactionWriter, err := newLogFile(s.dir, compactionGen, s.readers)
	if err != nil {
		return errors.E(op, errors.Io, err)
	}
	newWriter, err := newLogFile(s.dir, newCurrentGen, s.readers)
	if err != nil {
		return errors.E(op, errors.Io, err)
	}

	var newPos uint64
	for key, cp := range s.index {
		r, ok := s.readers[cp.gen]
		if !ok {
			return errors.E(op, errors.Io, fmt.Errorf("no reader for generation %d", cp.gen))
		}
		buf, err := r.ReadExactlyAt(cp.pos, cp.length)
		if err != nil {
			return errors.E(op, errors.Io, err)
		}
		if _, err := compactionWriter.Write(buf); err != nil {
			return errors.E(op, errors.Io, err)
		}
		s.index[key] = commandPos{gen: compactionGen, pos: newPos, length: cp.length}
		newPos += cp.length
	}
	if err := compactionWriter.Flush(); err != nil {
		return errors.E(op, errors.Io, err)
	}
	if err := compactionWriter.Close(); err != nil {
		return errors.E(op, errors.Io, err)
	}

	oldWriter := s.writer
	var staleGens []uint64
	for gen := range s.readers {
		if gen < compactionGen {
			staleGens = append(staleGens, gen)
		}
	}
	for _, gen := range staleGens {
		r := s.readers[gen]
		delete(s.readers, gen)
		r.Close()
		if err := os.Remove(logPath(s.dir, gen)); err != nil {
			return errors.E(op, errors.Io, err)
		}
	}
	oldWriter.Close()

	s.writer = newWriter
	s.currentGen = newCurrentGen
	s.uncompacted = 0

	log.Info.Printf("engine: compacted %s into generation %d, new active generation %d", s.dir, compactionGen, newCurrentGen)
	return nil
}

func sortedGenerations(dir string) ([]uint64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var gens []uint64
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), logExt) {
			continue
		}
		n, err := strconv.ParseUint(strings.TrimSuffix(e.Name(), logExt), 10, 64)
		if err != nil {
			continue // not one of ours
		}
		gens = append(gens, n)
	}
	sort.Slice(gens, func(i, j int) bool { return gens[i] < gens[j] })
	return gens, nil
}

func logPath(dir string, gen uint64) string {
	return filepath.Join(dir, fmt.Sprintf("%d%s", gen, logExt))
}

func newLogFile(dir string, gen uint64, readers map[uint64]*logio.Reader) (*logio.Writer, error) {
	path := logPath(dir, gen)
	w, err := logio.OpenWriter(path)
	if err != nil {
		return nil, err
	}
	r, err := logio.OpenReader(path)
	if err != nil {
		w.Close()
		return nil, err
	}
	readers[gen] = r
	return w, nil
}

// replay reads every record in gen's log file from the start, folding
// Set/Remove commands into index, and returns the number of bytes that
// are no longer reachable through it (shadowed Sets and every Remove,
// including the Remove record's own bytes).
func replay(op errors.Op, gen uint64, r *logio.Reader, index map[string]commandPos) (uint64, error) {
	if err := r.Seek(0); err != nil {
		return 0, errors.E(op, errors.Io, err)
	}
	dec := json.NewDecoder(r)
	var uncompacted uint64
	pos := uint64(0)
	for {
		var rec record
		err := dec.Decode(&rec)
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, errors.E(op, errors.Serde, fmt.Errorf("recovering generation %d at offset %d: %w", gen, pos, err))
		}
		if err := rec.verify(op); err != nil {
			return 0, err
		}
		newPos := uint64(dec.InputOffset())
		switch rec.Cmd.Op {
		case "set":
			if old, ok := index[rec.Cmd.Key]; ok {
				uncompacted += old.length
			}
			index[rec.Cmd.Key] = commandPos{gen: gen, pos: pos, length: newPos - pos}
		case "remove":
			if old, ok := index[rec.Cmd.Key]; ok {
				uncompacted += old.length
				delete(index, rec.Cmd.Key)
			}
			uncompacted += newPos - pos
		default:
			return 0, errors.E(op, errors.Serde, fmt.Errorf("unknown command %q in generation %d", rec.Cmd.Op, gen))
		}
		pos = newPos
	}
	return uncompacted, nil
}
