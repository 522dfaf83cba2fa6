/*************************************************************************
 * Copyright 2025 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package fsearchlog

import (
	"bytes"
	"strings"
	"testing"
)

type nopCloser struct{ *bytes.Buffer }

func (nopCloser) Close() error { return nil }

func newBufLogger() (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return New(nopCloser{buf}), buf
}

func TestLevelFiltering(t *testing.T) {
	lgr, buf := newBufLogger()
	lgr.SetLevel(WARN)
	lgr.Debug("should not appear")
	lgr.Info("should not appear either")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below configured level, got %q", buf.String())
	}
	lgr.Warn("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("expected message at or above configured level to be written, got %q", buf.String())
	}
}

func TestLevelFromString(t *testing.T) {
	tsts := map[string]Level{
		"debug": DEBUG,
		"INFO":  INFO,
		"Warn":  WARN,
		"ERROR": ERROR,
	}
	for s, want := range tsts {
		got, err := LevelFromString(s)
		if err != nil {
			t.Fatalf("LevelFromString(%q): %v", s, err)
		}
		if got != want {
			t.Fatalf("LevelFromString(%q) = %v, want %v", s, got, want)
		}
	}
	if _, err := LevelFromString("bogus"); err != ErrInvalidLevel {
		t.Fatalf("expected ErrInvalidLevel for bogus level, got %v", err)
	}
}

func TestStructuredFields(t *testing.T) {
	lgr, buf := newBufLogger()
	lgr.Info("query handled", KV("query", "beta"), KV("elapsed_ms", 3))
	out := buf.String()
	for _, want := range []string{"query handled", "query=", "beta", "elapsed_ms="} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got %q", want, out)
		}
	}
}

func TestAddWriterMirrors(t *testing.T) {
	lgr, buf1 := newBufLogger()
	buf2 := &bytes.Buffer{}
	lgr.AddWriter(nopCloser{buf2})
	lgr.Info("mirrored")
	if buf1.Len() == 0 || buf2.Len() == 0 {
		t.Fatalf("expected message written to both sinks, got %d and %d bytes", buf1.Len(), buf2.Len())
	}
}

func TestDiscardLogger(t *testing.T) {
	lgr := NewDiscard()
	lgr.Info("anything")
	lgr.Error("anything else")
	if err := lgr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
