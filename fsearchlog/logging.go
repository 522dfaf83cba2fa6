/*************************************************************************
 * Copyright 2025 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package fsearchlog provides the leveled, structured logger used across the
// fsearch server. It follows the same shape as an RFC5424 syslog writer: a set
// of io.WriteCloser sinks fed from a single mutex-guarded Logger. Lifecycle
// messages and per-request diagnostics go through the same surface: a plain
// message plus optional structured-data parameters.
package fsearchlog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/crewjam/rfc5424"
)

type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	// FATAL is not a configurable level; it is only used internally by
	// FatalCode to mark the final message emitted before exit.
	FATAL
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	}
	return "UNKNOWN"
}

func (l Level) priority() rfc5424.Priority {
	switch l {
	case DEBUG:
		return rfc5424.User | rfc5424.Debug
	case INFO:
		return rfc5424.User | rfc5424.Info
	case WARN:
		return rfc5424.User | rfc5424.Warning
	case ERROR:
		return rfc5424.User | rfc5424.Error
	case FATAL:
		return rfc5424.User | rfc5424.Emergency
	}
	return rfc5424.User | rfc5424.Debug
}

// LevelFromString parses the four log levels the config file recognizes.
// Matching is case-insensitive; any other value is rejected.
func LevelFromString(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG, nil
	case "INFO":
		return INFO, nil
	case "WARN":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	}
	return DEBUG, ErrInvalidLevel
}

var ErrInvalidLevel = errors.New("fsearchlog: invalid log level")

// KV builds a single structured-data parameter for a diagnostic log line.
func KV(name string, value interface{}) rfc5424.SDParam {
	if s, ok := value.(string); ok {
		return rfc5424.SDParam{Name: name, Value: s}
	}
	return rfc5424.SDParam{Name: name, Value: fmt.Sprintf("%v", value)}
}

func KVErr(err error) rfc5424.SDParam {
	return KV("error", err)
}

const defaultID = "fsearch@1"

// Logger is a leveled, multi-sink structured logger. The zero value is not
// usable; construct one with New.
type Logger struct {
	mtx      sync.Mutex
	wtrs     []io.WriteCloser
	lvl      Level
	hostname string
	appname  string
}

// New creates a Logger writing to wtr at level INFO.
func New(wtr io.WriteCloser) *Logger {
	l := &Logger{wtrs: []io.WriteCloser{wtr}, lvl: INFO, appname: "fsearch"}
	if h, err := os.Hostname(); err == nil {
		l.hostname = h
	}
	return l
}

// NewDiscard creates a Logger that drops every message; useful for tests and
// for servers run without a configured log file.
func NewDiscard() *Logger {
	return New(discardCloser{})
}

// AddWriter attaches another sink; every subsequent message is written to it
// as well. Used to mirror output to stdout when the server is run verbosely.
func (l *Logger) AddWriter(wtr io.WriteCloser) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.wtrs = append(l.wtrs, wtr)
}

func (l *Logger) SetLevel(lvl Level) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.lvl = lvl
}

func (l *Logger) SetLevelString(s string) error {
	lvl, err := LevelFromString(s)
	if err != nil {
		return err
	}
	l.SetLevel(lvl)
	return nil
}

func (l *Logger) Close() (err error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	for _, w := range l.wtrs {
		if lerr := w.Close(); lerr != nil {
			err = lerr
		}
	}
	return
}

func (l *Logger) Debug(msg string, sds ...rfc5424.SDParam) { l.output(DEBUG, msg, sds...) }
func (l *Logger) Info(msg string, sds ...rfc5424.SDParam)  { l.output(INFO, msg, sds...) }
func (l *Logger) Warn(msg string, sds ...rfc5424.SDParam)  { l.output(WARN, msg, sds...) }
func (l *Logger) Error(msg string, sds ...rfc5424.SDParam) { l.output(ERROR, msg, sds...) }

// FatalCode logs msg at FATAL (always emitted regardless of level) and
// exits the process with the given code. Used only for startup failures
// that invalidate the whole server: bad config, missing corpus, bind
// failure, cert generation.
func (l *Logger) FatalCode(code int, msg string, sds ...rfc5424.SDParam) {
	l.output(FATAL, msg, sds...)
	os.Exit(code)
}

func (l *Logger) output(lvl Level, msg string, sds ...rfc5424.SDParam) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	if lvl != FATAL && lvl < l.lvl {
		return
	}
	ts := time.Now()
	b, err := rfc5424.Message{
		Priority:       lvl.priority(),
		Timestamp:      ts,
		Hostname:       l.hostname,
		AppName:        l.appname,
		MessageID:      lvl.String(),
		Message:        []byte(msg),
		StructuredData: structuredData(sds),
	}.MarshalBinary()
	if err != nil || len(b) == 0 {
		return
	}
	for _, w := range l.wtrs {
		io.WriteString(w, string(b))
		io.WriteString(w, "\n")
	}
}

func structuredData(sds []rfc5424.SDParam) []rfc5424.StructuredData {
	if len(sds) == 0 {
		return nil
	}
	return []rfc5424.StructuredData{{ID: defaultID, Parameters: sds}}
}

type discardCloser struct{}

func (discardCloser) Write(b []byte) (int, error) { return len(b), nil }
func (discardCloser) Close() error                { return nil }
