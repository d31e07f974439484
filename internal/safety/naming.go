package safety

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/bjulian5/promote/internal/model"
)

const (
	maxSegmentLength = 255
	maxPathLength    = 260
)

const invalidChars = `<>:"|?*\`

var (
	consecutiveWhitespace = regexp.MustCompile(`\s{2,}`)
	reservedNameRegex     = regexp.MustCompile(`^(?i)(CON|PRN|AUX|NUL|COM[1-9]|LPT[1-9])$`)
)

// CheckPath returns every naming problem in path. Each rule is reported at
// most once per segment, in segment order; the full-length rule comes last.
func CheckPath(path string) []model.NamingIssue {
	var issues []model.NamingIssue
	add := func(segment string, rule string) {
		issues = append(issues, model.NamingIssue{Path: path, Segment: segment, Rule: rule})
	}

	for _, segment := range strings.Split(path, "/") {
		if segment == "" {
			continue
		}

		trimmed := strings.TrimSpace(segment)
		if trimmed != segment {
			add(segment, model.RuleEdgeWhitespace)
		}
		if consecutiveWhitespace.MatchString(trimmed) {
			add(segment, model.RuleConsecutiveWhitespace)
		}
		if strings.ContainsAny(segment, invalidChars) {
			add(segment, model.RuleInvalidCharacter)
		}
		if strings.HasSuffix(segment, ".") && segment != "." && segment != ".." {
			add(segment, model.RuleTrailingPeriod)
		}
		if isReservedName(segment) {
			add(segment, model.RuleReservedName)
		}
		if utf8.RuneCountInString(segment) > maxSegmentLength {
			add(segment, model.RuleSegmentTooLong)
		}
		if !norm.NFC.IsNormalString(segment) {
			add(segment, model.RuleNonNFC)
		}
	}

	if utf8.RuneCountInString(path) > maxPathLength {
		add("", model.RulePathTooLong)
	}

	return issues
}

// isReservedName reports Windows device names, which are reserved with
// or without an extension (CON, con.txt, LPT1.log)
func isReservedName(segment string) bool {
	stem, _, _ := strings.Cut(strings.TrimSpace(segment), ".")
	return reservedNameRegex.MatchString(stem)
}
