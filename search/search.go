/*************************************************************************
 * Copyright 2025 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package search implements the five exact-match algorithm families the
// server can use to decide whether a query string appears as a whole-line
// match in a corpus. Every algorithm operates over the same pre-split line
// slice (see corpus.Snapshot.Lines), which is what makes them provably
// equivalent: none of them ever reconstructs or re-splits the raw text
// itself.
package search

import (
	"errors"
	"fmt"
	"strings"
)

// Algorithm names one of the five required matching strategies.
type Algorithm string

const (
	Naive       Algorithm = "naive"
	Regex       Algorithm = "regex"
	RabinKarp   Algorithm = "rabin_karp"
	KMP         Algorithm = "kmp"
	AhoCorasick Algorithm = "aho_corasick"
)

// DefaultAlgorithm is used whenever the config file doesn't name one.
const DefaultAlgorithm = Regex

var ErrUnknownAlgorithm = errors.New("search: unknown algorithm")

// ParseAlgorithm normalizes and validates a config-supplied algorithm name.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(s))) {
	case Naive:
		return Naive, nil
	case Regex:
		return Regex, nil
	case RabinKarp:
		return RabinKarp, nil
	case KMP:
		return KMP, nil
	case AhoCorasick:
		return AhoCorasick, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

// Engine answers whether a query exists as an exact whole-line match
// somewhere in lines.
type Engine interface {
	Exists(lines []string, query string) bool
	Algorithm() Algorithm
}

type engine struct {
	alg Algorithm
	fn  func(lines []string, query string) bool
}

func (e *engine) Exists(lines []string, query string) bool { return e.fn(lines, query) }
func (e *engine) Algorithm() Algorithm                      { return e.alg }

// New builds the Engine for the named algorithm.
func New(alg Algorithm) (Engine, error) {
	switch alg {
	case Naive:
		return &engine{alg: Naive, fn: naiveExists}, nil
	case Regex:
		return &engine{alg: Regex, fn: regexExists}, nil
	case RabinKarp:
		return &engine{alg: RabinKarp, fn: rabinKarpExists}, nil
	case KMP:
		return &engine{alg: KMP, fn: kmpExists}, nil
	case AhoCorasick:
		return &engine{alg: AhoCorasick, fn: ahoCorasickExists}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, alg)
}
