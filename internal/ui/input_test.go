package ui

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmLine(t *testing.T) {
	testCases := []struct {
		desc       string
		input      string
		defaultYes bool
		expect     bool
	}{
		{desc: "yes", input: "y\n", expect: true},
		{desc: "full word, any case", input: "YES\n", expect: true},
		{desc: "no", input: "n\n", defaultYes: true, expect: false},
		{desc: "empty takes default yes", input: "\n", defaultYes: true, expect: true},
		{desc: "empty takes default no", input: "\n", expect: false},
		{desc: "eof never confirms", input: "", defaultYes: true, expect: false},
		{desc: "anything else is no", input: "sure\n", defaultYes: true, expect: false},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			var out bytes.Buffer
			got, err := confirmLine(bufio.NewReader(strings.NewReader(tc.input)), &out, "Push?", tc.defaultYes)
			require.NoError(t, err)
			assert.Equal(t, tc.expect, got)
			assert.Contains(t, out.String(), "Push?")
		})
	}
}

func TestPromptSelection(t *testing.T) {
	testCases := []struct {
		desc   string
		input  string
		count  int
		expect []int
	}{
		{desc: "ranges and singles", input: "1-3, 5\n", count: 5, expect: []int{1, 2, 3, 5}},
		{desc: "all", input: "all\n", count: 3, expect: []int{1, 2, 3}},
		{desc: "out of bounds dropped", input: "4, 9\n", count: 5, expect: []int{4}},
		{desc: "empty selects nothing", input: "\n", count: 5, expect: nil},
		{desc: "eof without newline", input: "2", count: 5, expect: []int{2}},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			var out bytes.Buffer
			got, err := promptSelection(bufio.NewReader(strings.NewReader(tc.input)), &out, "Select: ", tc.count)
			require.NoError(t, err)
			assert.Equal(t, tc.expect, got)
		})
	}
}
