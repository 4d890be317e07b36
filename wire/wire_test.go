package wire

import (
	"bytes"
	"io"
	"testing"

	"github.com/kr/pretty"
)

func TestRequestRoundTrip(t *testing.T) {
	reqs := []Request{
		GetRequest("k"),
		SetRequest("k", "v"),
		RemoveRequest("k"),
	}
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for _, r := range reqs {
		if err := enc.EncodeRequest(r); err != nil {
			t.Fatalf("EncodeRequest(%+v): %v", r, err)
		}
	}

	dec := NewDecoder(&buf)
	for i, want := range reqs {
		var got Request
		if err := dec.DecodeRequest(&got); err != nil {
			t.Fatalf("DecodeRequest #%d: %v", i, err)
		}
		if got != want {
			t.Fatalf("request #%d = %+v, want %+v", i, got, want)
		}
	}
}

func TestResponseRoundTrip(t *testing.T) {
	value := "v"
	resps := []Response{
		OkResponse(OpSet),
		GetOkResponse(&value),
		GetOkResponse(nil),
		ErrResponse(OpRemove, "key not found"),
	}
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for _, r := range resps {
		if err := enc.EncodeResponse(r); err != nil {
			t.Fatalf("EncodeResponse(%+v): %v", r, err)
		}
	}

	dec := NewDecoder(&buf)
	for i, want := range resps {
		var got Response
		if err := dec.DecodeResponse(&got); err != nil {
			t.Fatalf("DecodeResponse #%d: %v", i, err)
		}
		if got.Op != want.Op || got.Ok != want.Ok || got.Err != want.Err {
			t.Fatalf("response #%d = %+v, want %+v", i, got, want)
		}
		switch {
		case want.Value == nil && got.Value != nil:
			t.Fatalf("response #%d Value = %v, want nil", i, *got.Value)
		case want.Value != nil && (got.Value == nil || *got.Value != *want.Value):
			t.Fatalf("response #%d Value = %v, want %v", i, got.Value, *want.Value)
		}
	}
}

func TestErrResponseKindRoundTrips(t *testing.T) {
	cases := []struct {
		name string
		in   Response
	}{
		{"plain io failure", ErrResponseKind(OpGet, "io", "disk on fire")},
		{"key not found", ErrResponseKind(OpRemove, "key_not_found", "key not found")},
		{"unknown kind defaults empty", ErrResponse(OpSet, "boom")},
	}
	for _, c := range cases {
		var buf bytes.Buffer
		if err := NewEncoder(&buf).EncodeResponse(c.in); err != nil {
			t.Fatalf("%s: EncodeResponse: %v", c.name, err)
		}
		var got Response
		if err := NewDecoder(&buf).DecodeResponse(&got); err != nil {
			t.Fatalf("%s: DecodeResponse: %v", c.name, err)
		}
		if got != c.in {
			t.Fatalf("%s: round-trip mismatch:\n%s", c.name, pretty.Diff(c.in, got))
		}
	}
}

func TestDecodeEOFAtCleanBoundary(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	if err := enc.EncodeRequest(GetRequest("k")); err != nil {
		t.Fatalf("EncodeRequest: %v", err)
	}

	dec := NewDecoder(&buf)
	var r Request
	if err := dec.DecodeRequest(&r); err != nil {
		t.Fatalf("first DecodeRequest: %v", err)
	}
	if err := dec.DecodeRequest(&r); err != io.EOF {
		t.Fatalf("second DecodeRequest = %v, want io.EOF", err)
	}
}
