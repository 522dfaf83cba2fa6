/*************************************************************************
 * Copyright 2025 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package search

// computeLPS builds the KMP "longest proper prefix that is also a suffix"
// table for pattern.
func computeLPS(pattern string) []int {
	lps := make([]int, len(pattern))
	length := 0
	i := 1
	for i < len(pattern) {
		if pattern[i] == pattern[length] {
			length++
			lps[i] = length
			i++
			continue
		}
		if length != 0 {
			length = lps[length-1]
			continue
		}
		lps[i] = 0
		i++
	}
	return lps
}

// kmpMatchFull reports whether pattern matches text in its entirety. Since
// both are known to be the same length before this is called, a full KMP
// scan degenerates to confirming the automaton reaches the accepting state
// at the very last character -- kept as a real KMP walk rather than a
// shortcut equality check, to stay faithful to the algorithm family.
func kmpMatchFull(text, pattern string, lps []int) bool {
	if len(pattern) == 0 {
		return len(text) == 0
	}
	j := 0
	for i := 0; i < len(text); i++ {
		for j > 0 && text[i] != pattern[j] {
			j = lps[j-1]
		}
		if text[i] == pattern[j] {
			j++
		}
		if j == len(pattern) {
			return i == len(text)-1
		}
	}
	return false
}

func kmpExists(lines []string, query string) bool {
	lps := computeLPS(query)
	for _, line := range lines {
		if len(line) != len(query) {
			continue
		}
		if kmpMatchFull(line, query, lps) {
			return true
		}
	}
	return false
}
