// File: protocol/request.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Byte-level HTTP request-head tokenizer for the upgrade handshake.
// Works directly on the unconsumed pipe bytes: an incomplete head is
// reported without consuming anything so the caller can retry, and a
// malformed head is reported without consuming anything so the same
// bytes may be handed to another protocol.

package protocol

import (
	"bytes"
	"strings"
)

var crlfcrlf = []byte("\r\n\r\n")

// Header is one request header line with its raw value bytes.
type Header struct {
	Name  string
	Value []byte
}

// Request is a tokenized HTTP request head. Header values alias the
// input buffer and are only valid until the input is consumed.
type Request struct {
	Method  string
	Target  string
	Proto   string
	Headers []Header
}

// Header returns the raw value of the first header with the given name,
// case-insensitive, or nil.
func (r *Request) Header(name string) []byte {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return nil
}

// HeaderValues collects the comma-separated tokens of every header line
// with the given name, trimmed of surrounding whitespace.
func (r *Request) HeaderValues(name string) []string {
	var out []string
	for _, h := range r.Headers {
		if !strings.EqualFold(h.Name, name) {
			continue
		}
		for _, part := range strings.Split(string(h.Value), ",") {
			if tok := strings.TrimSpace(part); tok != "" {
				out = append(out, tok)
			}
		}
	}
	return out
}

// ParseRequest tokenizes a complete HTTP request head from data.
// Returns the request and the number of bytes the head occupies, or
// (nil, 0, nil) while the head is incomplete. The input itself is never
// consumed here.
func ParseRequest(data []byte) (*Request, int, error) {
	end := bytes.Index(data, crlfcrlf)
	if end < 0 {
		if len(data) > MaxHandshakeHeadersSize {
			return nil, 0, ErrMalformedRequest
		}
		return nil, 0, nil // Incomplete
	}
	consumed := end + len(crlfcrlf)
	if consumed > MaxHandshakeHeadersSize {
		return nil, 0, ErrMalformedRequest
	}

	lines := bytes.Split(data[:end], []byte("\r\n"))
	req, err := parseRequestLine(lines[0])
	if err != nil {
		return nil, 0, err
	}
	for _, line := range lines[1:] {
		if len(line) == 0 || line[0] == ' ' || line[0] == '\t' {
			// obs-fold and empty header lines are rejected outright
			return nil, 0, ErrMalformedRequest
		}
		colon := bytes.IndexByte(line, ':')
		if colon <= 0 {
			return nil, 0, ErrMalformedRequest
		}
		name := string(line[:colon])
		if strings.ContainsAny(name, " \t") {
			return nil, 0, ErrMalformedRequest
		}
		value := bytes.TrimSpace(line[colon+1:])
		req.Headers = append(req.Headers, Header{Name: name, Value: value})
	}
	return req, consumed, nil
}

func parseRequestLine(line []byte) (*Request, error) {
	parts := bytes.Split(line, []byte(" "))
	if len(parts) != 3 || len(parts[0]) == 0 || len(parts[1]) == 0 {
		return nil, ErrMalformedRequest
	}
	proto := string(parts[2])
	if !strings.HasPrefix(proto, "HTTP/") {
		return nil, ErrMalformedRequest
	}
	return &Request{
		Method: string(parts[0]),
		Target: string(parts[1]),
		Proto:  proto,
	}, nil
}
