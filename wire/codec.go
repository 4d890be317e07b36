package wire

import (
	"bufio"
	"encoding/json"
	"io"
)

// Encoder writes a stream of Request or Response records to an
// underlying connection, flushing after each so the peer observes it
// immediately; nothing about this codec batches writes across calls.
type Encoder struct {
	w   *bufio.Writer
	enc *json.Encoder
}

// NewEncoder wraps w for encoding.
func NewEncoder(w io.Writer) *Encoder {
	bw := bufio.NewWriter(w)
	return &Encoder{w: bw, enc: json.NewEncoder(bw)}
}

// EncodeRequest writes and flushes one request.
func (e *Encoder) EncodeRequest(r Request) error {
	if err := e.enc.Encode(r); err != nil {
		return err
	}
	return e.w.Flush()
}

// EncodeResponse writes and flushes one response.
func (e *Encoder) EncodeResponse(r Response) error {
	if err := e.enc.Encode(r); err != nil {
		return err
	}
	return e.w.Flush()
}

// Decoder reads a stream of Request or Response records from an
// underlying connection. It is a thin wrapper over encoding/json's own
// streaming decoder, which already yields one value at a time and
// tracks byte offsets internally; nothing here needs to re-implement
// framing.
type Decoder struct {
	dec *json.Decoder
}

// NewDecoder wraps r for decoding.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: json.NewDecoder(r)}
}

// DecodeRequest reads the next request. It returns io.EOF when the
// peer has cleanly closed the stream between records.
func (d *Decoder) DecodeRequest(r *Request) error {
	return d.dec.Decode(r)
}

// DecodeResponse reads the next response.
func (d *Decoder) DecodeResponse(r *Response) error {
	return d.dec.Decode(r)
}
