/*************************************************************************
 * Copyright 2025 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package server

import (
	"bytes"
	"io"
	"net"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/obonyojimmy/fsearch/fsearchlog"
)

const (
	respExists   = "STRING EXISTS"
	respNotFound = "STRING NOT FOUND"
)

// handleConn services one connection: read one payload, decide a match
// against the snapshot the reload coordinator selected for this connection,
// write one response, log one diagnostic line, close. No retry, no
// multi-request loop, no keep-alive.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	start := time.Now()
	clientAddr := conn.RemoteAddr().String()
	reqID := uuid.NewString()

	snap := s.reload.prepare()

	// A peer that half-closes without sending anything delivers (0, EOF);
	// that is a legitimate empty query, not a client failure.
	buf := make([]byte, MaxPayload)
	n, err := conn.Read(buf)
	if err != nil && err != io.EOF {
		s.log.Error("client read failed",
			fsearchlog.KV("client", clientAddr),
			fsearchlog.KV("req_id", reqID),
			fsearchlog.KVErr(err))
		return
	}

	data := bytes.TrimRight(buf[:n], "\x00")

	var matched bool
	var decodeFailed bool
	if !utf8.Valid(data) {
		decodeFailed = true
	} else {
		matched = s.reload.engine.Exists(snap.Lines(), string(data))
	}

	resp := respNotFound
	if matched {
		resp = respExists
	}
	if _, err := conn.Write([]byte(resp)); err != nil {
		s.log.Error("client write failed",
			fsearchlog.KV("client", clientAddr),
			fsearchlog.KV("req_id", reqID),
			fsearchlog.KVErr(err))
		return
	}

	elapsed := time.Since(start)
	if decodeFailed {
		s.log.Error("query decode failed, treated as non-match",
			fsearchlog.KV("client", clientAddr),
			fsearchlog.KV("req_id", reqID),
			fsearchlog.KV("elapsed_ms", elapsed.Milliseconds()))
		return
	}
	s.log.Debug("query handled",
		fsearchlog.KV("query", string(data)),
		fsearchlog.KV("client", clientAddr),
		fsearchlog.KV("req_id", reqID),
		fsearchlog.KV("matched", matched),
		fsearchlog.KV("elapsed_ms", elapsed.Milliseconds()))
}
