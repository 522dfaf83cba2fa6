/*************************************************************************
 * Copyright 2025 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package search

import "regexp"

// regexExists anchors the query as a literal pattern and matches it against
// each line independently, rather than joining lines into one multiline
// blob. Matching per line (instead of "^query$" with MULTILINE over the
// joined text) is what keeps the empty-corpus case well defined: zero
// lines means zero chances to match, full stop.
func regexExists(lines []string, query string) bool {
	if len(lines) == 0 {
		return false
	}
	re, err := regexp.Compile("^" + regexp.QuoteMeta(query) + "$")
	if err != nil {
		return false
	}
	for _, line := range lines {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}
