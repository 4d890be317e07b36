// Package server implements the TCP front end: an accept loop that
// dispatches each connection to a thread pool, and a per-connection
// request/response loop over the wire codec.
package server

import (
	stderrors "errors"
	"io"
	"net"

	"kvs.dev/errors"
	"kvs.dev/kvs"
	"kvs.dev/log"
	"kvs.dev/threadpool"
	"kvs.dev/wire"
)

// Server pairs an engine handle with a thread pool. A single Server
// value is shared by every accepted connection; each connection's job
// clones the engine handle before using it.
type Server struct {
	engine kvs.Cloner
	pool   threadpool.Pool
}

// New constructs a Server. engine must support Clone, since every
// accepted connection is handed its own handle onto the same
// underlying store.
func New(engine kvs.Cloner, pool threadpool.Pool) *Server {
	return &Server{engine: engine, pool: pool}
}

// Run binds addr and accepts connections until Listen fails or Serve
// returns. An Accept error is logged and accept continues; it never
// tears down the listener.
func (srv *Server) Run(addr string) error {
	const op errors.Op = "server.Run"
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.E(op, errors.Io, err)
	}
	defer ln.Close()

	log.Info.Printf("server: listening on %s", addr)
	return srv.Serve(ln)
}

// Serve accepts connections on ln, already bound by the caller, until
// Accept returns a permanent error (such as the listener being
// closed). A transient Accept error is logged and accept continues.
func (srv *Server) Serve(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if isClosed(err) {
				return err
			}
			log.Error.Printf("server: accept: %v", err)
			continue
		}
		engine := srv.engine.Clone()
		srv.pool.Submit(func() {
			serve(conn, engine)
		})
	}
}

func isClosed(err error) bool {
	return stderrors.Is(err, net.ErrClosed)
}

// serve decodes and dispatches requests from conn until a decode or
// I/O error, then closes conn. It never propagates an error back to
// Run: a bad connection only ever terminates itself.
func serve(conn net.Conn, engine kvs.Engine) {
	defer conn.Close()

	dec := wire.NewDecoder(conn)
	enc := wire.NewEncoder(conn)
	for {
		var req wire.Request
		if err := dec.DecodeRequest(&req); err != nil {
			if err != io.EOF {
				log.Error.Printf("server: decode request: %v", err)
			}
			return
		}

		resp := dispatch(engine, req)
		if err := enc.EncodeResponse(resp); err != nil {
			log.Error.Printf("server: encode response: %v", err)
			return
		}
	}
}

// dispatch performs one request against engine and builds the matching
// response. Engine errors never terminate the connection; they are
// folded into an Err(string) response.
func dispatch(engine kvs.Engine, req wire.Request) wire.Response {
	switch req.Op {
	case wire.OpGet:
		value, ok, err := engine.Get(req.Key)
		if err != nil {
			return errResponse(wire.OpGet, err)
		}
		if !ok {
			return wire.GetOkResponse(nil)
		}
		return wire.GetOkResponse(&value)

	case wire.OpSet:
		if err := engine.Set(req.Key, req.Value); err != nil {
			return errResponse(wire.OpSet, err)
		}
		return wire.OkResponse(wire.OpSet)

	case wire.OpRemove:
		if err := engine.Remove(req.Key); err != nil {
			return errResponse(wire.OpRemove, err)
		}
		return wire.OkResponse(wire.OpRemove)

	default:
		return wire.ErrResponseKind(req.Op, errors.StringError.Name(), "unknown request op "+req.Op)
	}
}

func errResponse(op string, err error) wire.Response {
	return wire.ErrResponseKind(op, errors.KindOf(err).Name(), err.Error())
}
