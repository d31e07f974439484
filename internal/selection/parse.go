// Package selection parses operator-entered commit selection expressions.
package selection

import (
	"sort"
	"strconv"
	"strings"
)

// Parse turns an expression like "1-5, 8, 10-12" into the sorted set of
// 1-based indices it names within [1, max].
//
// Tokens are separated by commas and are either a single integer or a
// "start-end" range (either order). Tokens that are not numeric or fall
// outside [1, max] are dropped rather than reported; a range keeps only its
// in-bounds members. The keyword "all" selects every index.
func Parse(input string, max int) []int {
	if max < 1 {
		return []int{}
	}

	seen := make(map[int]bool)
	for _, token := range strings.Split(input, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		if strings.EqualFold(token, "all") {
			for i := 1; i <= max; i++ {
				seen[i] = true
			}
			continue
		}

		start, end, ok := parseToken(token)
		if !ok {
			continue
		}
		if start > end {
			start, end = end, start
		}
		if end < 1 || start > max {
			continue
		}
		if start < 1 {
			start = 1
		}
		if end > max {
			end = max
		}
		for i := start; i <= end; i++ {
			seen[i] = true
		}
	}

	indices := make([]int, 0, len(seen))
	for i := range seen {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	return indices
}

func parseToken(token string) (int, int, bool) {
	left, right, isRange := strings.Cut(token, "-")
	if !isRange {
		n, err := strconv.Atoi(token)
		if err != nil {
			return 0, 0, false
		}
		return n, n, true
	}

	start, err := strconv.Atoi(strings.TrimSpace(left))
	if err != nil {
		return 0, 0, false
	}
	end, err := strconv.Atoi(strings.TrimSpace(right))
	if err != nil {
		return 0, 0, false
	}
	return start, end, true
}
