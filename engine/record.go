package engine

import (
	"encoding/hex"
	"encoding/json"

	"golang.org/x/crypto/blake2b"

	"kvs.dev/errors"
)

// command is the tagged payload persisted for one mutation. Op is
// "set" or "remove"; Value is empty (and omitted from the encoding)
// for a remove.
type command struct {
	Op    string `json:"op"`
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

func setCommand(key, value string) command { return command{Op: "set", Key: key, Value: value} }
func removeCommand(key string) command     { return command{Op: "remove", Key: key} }

// record is the on-disk envelope for one command: the command itself
// plus a checksum over its encoded bytes. The checksum lets recovery
// tell apart a record that was corrupted in place (still valid JSON,
// wrong bytes) from one that was merely truncated mid-write, which the
// streaming decoder already catches as a parse error.
type record struct {
	Cmd command `json:"cmd"`
	Sum string  `json:"sum"`
}

func newRecord(cmd command) (record, error) {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return record{}, err
	}
	return record{Cmd: cmd, Sum: sumHex(payload)}, nil
}

func sumHex(payload []byte) string {
	sum := blake2b.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// verify re-encodes r.Cmd exactly as it was encoded at write time and
// compares the result against r.Sum.
func (r record) verify(op errors.Op) error {
	payload, err := json.Marshal(r.Cmd)
	if err != nil {
		return errors.E(op, errors.Serde, err)
	}
	if sumHex(payload) != r.Sum {
		return errors.E(op, errors.Serde, errors.Str("checksum mismatch: corrupt record"))
	}
	return nil
}
