package selection

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		desc     string
		input    string
		max      int
		expected []int
	}{
		{desc: "empty input", input: "", max: 10, expected: []int{}},
		{desc: "zero is out of range", input: "0", max: 10, expected: []int{}},
		{desc: "mixed ranges and singles", input: "1-5, 8, 10-12", max: 12, expected: []int{1, 2, 3, 4, 5, 8, 10, 11, 12}},
		{desc: "reversed range", input: "5-2", max: 10, expected: []int{2, 3, 4, 5}},
		{desc: "overlapping ranges dedupe", input: "3-6,1-4,4", max: 10, expected: []int{1, 2, 3, 4, 5, 6}},
		{desc: "unordered input sorts", input: "9,2,7", max: 10, expected: []int{2, 7, 9}},
		{desc: "non-numeric tokens dropped", input: "a, 2, x-3, 4-y", max: 10, expected: []int{2}},
		{desc: "out of range single dropped", input: "11, 3", max: 10, expected: []int{3}},
		{desc: "range clipped to bounds", input: "8-15", max: 10, expected: []int{8, 9, 10}},
		{desc: "whitespace around range", input: " 2 - 4 ", max: 10, expected: []int{2, 3, 4}},
		{desc: "all keyword", input: "all", max: 3, expected: []int{1, 2, 3}},
		{desc: "negative number dropped", input: "-3", max: 10, expected: []int{}},
		{desc: "non-positive max", input: "1", max: 0, expected: []int{}},
		{desc: "range to max int", input: "1-9223372036854775807", max: 5, expected: []int{1, 2, 3, 4, 5}},
		{desc: "huge range above bounds", input: "9000000000000000-9223372036854775807", max: 5, expected: []int{}},
		{desc: "range above bounds dropped", input: "7-9", max: 5, expected: []int{}},
		{desc: "range down to min int", input: "3--9223372036854775808", max: 5, expected: []int{1, 2, 3}},
		{desc: "overflowing number dropped", input: "99999999999999999999, 2", max: 5, expected: []int{2}},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, Parse(tc.input, tc.max))
		})
	}
}

func TestProperty_EmptyAndZeroSelectNothing(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		max := rapid.IntRange(1, 500).Draw(t, "max")
		if got := Parse("", max); len(got) != 0 {
			t.Fatalf("Parse(\"\", %d) = %v, want empty", max, got)
		}
		if got := Parse("0", max); len(got) != 0 {
			t.Fatalf("Parse(\"0\", %d) = %v, want empty", max, got)
		}
	})
}

func TestProperty_StrictlyAscendingWithinBounds(t *testing.T) {
	token := rapid.OneOf(
		rapid.Map(rapid.IntRange(-20, 80), func(n int) string { return fmt.Sprint(n) }),
		rapid.Custom(func(t *rapid.T) string {
			a := rapid.IntRange(-5, 80).Draw(t, "start")
			b := rapid.IntRange(-5, 80).Draw(t, "end")
			return fmt.Sprintf("%d-%d", a, b)
		}),
		rapid.SampledFrom([]string{"", " ", "x", "1-", "-", "all", "3--4"}),
	)

	rapid.Check(t, func(t *rapid.T) {
		max := rapid.IntRange(1, 60).Draw(t, "max")
		tokens := rapid.SliceOfN(token, 0, 12).Draw(t, "tokens")
		input := strings.Join(tokens, ",")

		got := Parse(input, max)
		for i, n := range got {
			if n < 1 || n > max {
				t.Fatalf("Parse(%q, %d) returned out of range index %d", input, max, n)
			}
			if i > 0 && got[i-1] >= n {
				t.Fatalf("Parse(%q, %d) = %v is not strictly ascending", input, max, got)
			}
		}
	})
}

func TestProperty_RangeOrderIndependent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		max := rapid.IntRange(1, 100).Draw(t, "max")
		a := rapid.IntRange(1, max).Draw(t, "a")
		b := rapid.IntRange(1, max).Draw(t, "b")

		forward := Parse(fmt.Sprintf("%d-%d", a, b), max)
		backward := Parse(fmt.Sprintf("%d-%d", b, a), max)
		if len(forward) != len(backward) {
			t.Fatalf("ranges %d-%d and %d-%d differ: %v vs %v", a, b, b, a, forward, backward)
		}
		for i := range forward {
			if forward[i] != backward[i] {
				t.Fatalf("ranges %d-%d and %d-%d differ: %v vs %v", a, b, b, a, forward, backward)
			}
		}
	})
}

func TestProperty_ExtremeRangesStayBounded(t *testing.T) {
	bound := rapid.OneOf(
		rapid.Int(),
		rapid.SampledFrom([]int{math.MaxInt, math.MaxInt - 1, math.MinInt, math.MinInt + 1, 0, 1}),
		rapid.IntRange(-10, 70),
	)

	rapid.Check(t, func(t *rapid.T) {
		max := rapid.IntRange(1, 60).Draw(t, "max")
		a := bound.Draw(t, "start")
		b := bound.Draw(t, "end")
		input := fmt.Sprintf("%d-%d", a, b)

		// A leading minus sign leaves no start number
		want := []int{}
		if a >= 0 {
			lo, hi := min(a, b), a
			if b > a {
				hi = b
			}
			for n := 1; n <= max; n++ {
				if n >= lo && n <= hi {
					want = append(want, n)
				}
			}
		}

		got := Parse(input, max)
		if fmt.Sprint(got) != fmt.Sprint(want) {
			t.Fatalf("Parse(%q, %d) = %v, want %v", input, max, got, want)
		}
	})
}
