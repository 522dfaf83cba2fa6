/*************************************************************************
 * Copyright 2025 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package config loads and snapshots the server's INI-style configuration
// file: a single flat record plus an auxiliary map of anything the record
// doesn't recognize, so forward-compatible config files are never rejected.
package config

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gravwell/gcfg"
)

const (
	// MaxConfigSize bounds how large a config file we'll read before
	// handing the bytes to gcfg.
	MaxConfigSize int64 = 2 * 1024 * 1024

	DefaultHost     = "0.0.0.0"
	DefaultPort     = 8080
	DefaultCertFile = "server.crt"
	DefaultKeyFile  = "server.key"
	DefaultLogLevel = "DEBUG"
	DefaultMaxLines = 250000
	DefaultMaxConn  = 5
	DefaultCertDir  = "./.certs"
)

var (
	ErrConfigMissing   = errors.New("config: file does not exist")
	ErrConfigMalformed = errors.New("config: malformed config file")
)

// Config is the immutable snapshot produced by parsing one config file.
// Caller overrides are applied to a freshly parsed Config before it is
// published; once published it is never mutated, and the hot-reload
// coordinator replaces the whole value.
type Config struct {
	Host          string
	Port          int
	SSL           bool
	CertFile      string
	KeyFile       string
	LogLevel      string
	LinuxPath     string
	RereadOnQuery bool

	// Extra holds any key=value pairs the loader found but did not
	// recognize, preserved verbatim and ignored by the rest of the core.
	Extra map[string][]string
}

// rawConfig is the shape gcfg parses into. The file format uses a single
// [Global] section holding the one flat settings block. The boolean knobs
// are kept as strings here because operators get lenient semantics: any
// value outside the accepted truthy set means false, never a parse error.
type rawConfig struct {
	Global struct {
		Host            string
		Port            int
		Ssl             string
		Certfile        string
		Keyfile         string
		Log_Level       string
		Linuxpath       string
		Reread_On_Query string
	}
}

// parseBool maps the accepted truthy forms to true and everything else,
// including garbage, to false.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "on", "1":
		return true
	}
	return false
}

// Load parses path into a Config. Missing files produce ErrConfigMissing;
// syntactically broken files produce ErrConfigMalformed. Unknown keys never
// cause a failure; they land in Config.Extra instead. Load has no side
// effects beyond reading the file, so it is safe to call repeatedly and
// concurrently -- exactly what the hot-reload coordinator needs since it
// calls Load on every accepted connection.
func Load(path string) (*Config, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigMissing
		}
		return nil, fmt.Errorf("config: stat %s: %w", path, err)
	}
	if fi.Size() > MaxConfigSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrConfigMalformed, path, MaxConfigSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var raw rawConfig
	raw.Global.Host = DefaultHost
	raw.Global.Port = DefaultPort
	raw.Global.Certfile = DefaultCertFile
	raw.Global.Keyfile = DefaultKeyFile
	raw.Global.Log_Level = DefaultLogLevel

	// gcfg variable names admit dashes but not underscores, and gcfg maps a
	// dash in a variable name to an underscore in the field name, so the
	// underscored keys (reread_on_query, log_level, ...) are handed to it in
	// their dashed form. Only the key part of a key=value line is rewritten.
	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";") {
			continue
		}
		if idx := strings.Index(line, "="); idx > 0 {
			lines[i] = strings.ReplaceAll(line[:idx], "_", "-") + line[idx:]
		}
	}

	// FatalOnly downgrades gcfg's unknown-variable warnings to a no-op
	// while still failing on genuine syntax errors.
	if err := gcfg.FatalOnly(gcfg.ReadStringInto(&raw, strings.Join(lines, "\n"))); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigMalformed, err)
	}

	linuxPath := raw.Global.Linuxpath
	if linuxPath != "" && !filepath.IsAbs(linuxPath) {
		if linuxPath, err = filepath.Abs(linuxPath); err != nil {
			return nil, fmt.Errorf("config: resolve linuxpath: %w", err)
		}
	}

	c := &Config{
		Host:          raw.Global.Host,
		Port:          raw.Global.Port,
		SSL:           parseBool(raw.Global.Ssl),
		CertFile:      raw.Global.Certfile,
		KeyFile:       raw.Global.Keyfile,
		LogLevel:      raw.Global.Log_Level,
		LinuxPath:     linuxPath,
		RereadOnQuery: parseBool(raw.Global.Reread_On_Query),
		Extra:         extraKeys(content),
	}
	return c, nil
}

// MustLoad is Load for callers that cannot proceed without a config, such
// as startup paths that have nothing sensible to fall back to. It panics
// on any Load failure.
func MustLoad(path string) *Config {
	c, err := Load(path)
	if err != nil {
		panic(err)
	}
	return c
}

// recognizedKeys are the config keys the core understands; everything else
// found in the file is preserved in Config.Extra rather than rejected.
var recognizedKeys = map[string]bool{
	"host": true, "port": true, "ssl": true, "certfile": true, "keyfile": true,
	"log_level": true, "linuxpath": true, "reread_on_query": true,
}

// extraKeys does a second, independent pass over the raw file to collect any
// key=value pairs outside the recognized set. gcfg does not hand back the
// variables it successfully ignored, so this is what keeps unknown keys
// available to callers without reaching into gcfg internals.
func extraKeys(content []byte) map[string][]string {
	extra := map[string][]string{}
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			continue
		}
		idx := strings.Index(line, "=")
		if idx < 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:idx]))
		val := strings.TrimSpace(line[idx+1:])
		if recognizedKeys[key] {
			continue
		}
		extra[key] = append(extra[key], val)
	}
	return extra
}
