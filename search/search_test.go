/*************************************************************************
 * Copyright 2025 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package search

import (
	"errors"
	"testing"
)

var allAlgorithms = []Algorithm{Naive, Regex, RabinKarp, KMP, AhoCorasick}

func allEngines(t *testing.T) []Engine {
	t.Helper()
	engines := make([]Engine, 0, len(allAlgorithms))
	for _, alg := range allAlgorithms {
		e, err := New(alg)
		if err != nil {
			t.Fatalf("New(%v): %v", alg, err)
		}
		engines = append(engines, e)
	}
	return engines
}

type scenario struct {
	name  string
	lines []string
	query string
	want  bool
}

// scenarios mirrors the literal input/output cases every algorithm must
// agree on, including the corpus-file line-splitting edge cases.
var scenarios = []scenario{
	{"empty corpus empty query", nil, "", false},
	{"empty corpus nonempty query", nil, "hello", false},
	{"single empty line matches empty query", []string{""}, "", true},
	{"single empty line does not match nonempty query", []string{""}, "x", false},
	{"exact match present", []string{"alpha", "beta", "gamma"}, "beta", true},
	{"exact match absent", []string{"alpha", "beta", "gamma"}, "delta", false},
	{"case sensitive", []string{"Beta"}, "beta", false},
	{"substring is not a match", []string{"alphabeta"}, "beta", false},
	{"query longer than any line", []string{"ab"}, "abc", false},
	{"whitespace matters", []string{"beta "}, "beta", false},
	{"repeated lines", []string{"x", "x", "x"}, "x", true},
	{"query never spans two lines", []string{"foo", "bar"}, "foo\nbar", false},
}

func TestAlgorithmEquivalence(t *testing.T) {
	engines := allEngines(t)
	for _, sc := range scenarios {
		for _, e := range engines {
			got := e.Exists(sc.lines, sc.query)
			if got != sc.want {
				t.Errorf("[%s] algorithm=%v Exists(%v, %q) = %v, want %v",
					sc.name, e.Algorithm(), sc.lines, sc.query, got, sc.want)
			}
		}
	}
}

func TestParseAlgorithm(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Algorithm
	}{
		{"naive", Naive},
		{"REGEX", Regex},
		{" rabin_karp ", RabinKarp},
		{"kmp", KMP},
		{"aho_corasick", AhoCorasick},
	} {
		got, err := ParseAlgorithm(tc.in)
		if err != nil {
			t.Fatalf("ParseAlgorithm(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseAlgorithm(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if _, err := ParseAlgorithm("bogus"); !errors.Is(err, ErrUnknownAlgorithm) {
		t.Fatalf("ParseAlgorithm(bogus) err = %v, want ErrUnknownAlgorithm", err)
	}
}

func TestNewUnknownAlgorithm(t *testing.T) {
	if _, err := New(Algorithm("bogus")); err == nil {
		t.Fatalf("New(bogus) = nil error, want error")
	}
}

func TestDefaultAlgorithmIsRegex(t *testing.T) {
	if DefaultAlgorithm != Regex {
		t.Fatalf("DefaultAlgorithm = %v, want Regex", DefaultAlgorithm)
	}
}
