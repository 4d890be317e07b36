// Package client implements the one-shot request/response client for
// the wire protocol: a single connection, one request per call,
// blocking for exactly one matching response.
package client

import (
	"net"

	"kvs.dev/errors"
	"kvs.dev/wire"
)

// Client holds one open connection to a server.
type Client struct {
	conn net.Conn
	enc  *wire.Encoder
	dec  *wire.Decoder
}

// Connect opens a TCP connection to addr.
func Connect(addr string) (*Client, error) {
	const op errors.Op = "client.Connect"
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, errors.E(op, errors.Io, err)
	}
	return &Client{conn: conn, enc: wire.NewEncoder(conn), dec: wire.NewDecoder(conn)}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error { return c.conn.Close() }

// Get returns the current value of key, or ok == false if it is not
// bound.
func (c *Client) Get(key string) (value string, ok bool, err error) {
	const op errors.Op = "client.Get"
	resp, err := c.roundTrip(op, wire.GetRequest(key))
	if err != nil {
		return "", false, err
	}
	if resp.Value == nil {
		return "", false, nil
	}
	return *resp.Value, true, nil
}

// Set upserts key, overwriting any prior value.
func (c *Client) Set(key, value string) error {
	const op errors.Op = "client.Set"
	_, err := c.roundTrip(op, wire.SetRequest(key, value))
	return err
}

// Remove deletes key. A server-side KeyNotFound response is surfaced
// as an error carrying that response's message, same as any other
// server-side error.
func (c *Client) Remove(key string) error {
	const op errors.Op = "client.Remove"
	_, err := c.roundTrip(op, wire.RemoveRequest(key))
	return err
}

// roundTrip sends req, flushes, and blocks for exactly one response.
// A server-side Err(string) response is turned into a Go error
// carrying that string.
func (c *Client) roundTrip(op errors.Op, req wire.Request) (wire.Response, error) {
	if err := c.enc.EncodeRequest(req); err != nil {
		return wire.Response{}, errors.E(op, errors.Io, err)
	}
	var resp wire.Response
	if err := c.dec.DecodeResponse(&resp); err != nil {
		return wire.Response{}, errors.E(op, errors.Io, err)
	}
	if !resp.Ok {
		return wire.Response{}, errors.E(op, errors.ParseKind(resp.Kind), errors.Str(resp.Err))
	}
	return resp, nil
}
