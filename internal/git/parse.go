package git

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bjulian5/promote/internal/model"
)

// logFormat emits hash, subject and strict ISO author date separated by
// the ASCII unit separator so subjects may contain any printable text
const logFormat = "%H%x1f%s%x1f%aI"

func parseLog(output string) ([]model.Commit, error) {
	commits := []model.Commit{}
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\x1f")
		if len(fields) != 3 {
			return nil, fmt.Errorf("unexpected log line %q", line)
		}
		date, err := time.Parse(time.RFC3339, strings.TrimSpace(fields[2]))
		if err != nil {
			return nil, fmt.Errorf("failed to parse date for %s: %w", fields[0], err)
		}
		commits = append(commits, model.NewCommit(fields[0], fields[1], date))
	}
	return commits, nil
}

// parseNumstat parses `--numstat -z` output. Each record is
// "added<TAB>removed<TAB>path<NUL>"; binary files report "-" for both counts.
func parseNumstat(output string) ([]model.FileStat, error) {
	stats := []model.FileStat{}
	for _, record := range splitNul(output) {
		record = strings.TrimLeft(record, "\n")
		if record == "" {
			continue
		}
		parts := strings.SplitN(record, "\t", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("unexpected numstat record %q", record)
		}

		stat := model.FileStat{Path: parts[2]}
		added, addErr := strconv.Atoi(parts[0])
		removed, remErr := strconv.Atoi(parts[1])
		if addErr == nil {
			stat.Added = added
		} else {
			stat.Added = -1
		}
		if remErr == nil {
			stat.Removed = removed
		} else {
			stat.Removed = -1
		}
		stat.Binary = addErr != nil && remErr != nil
		stats = append(stats, stat)
	}
	return stats, nil
}

func splitNul(output string) []string {
	paths := []string{}
	for _, p := range strings.Split(output, "\x00") {
		p = strings.TrimLeft(p, "\n")
		if p == "" {
			continue
		}
		paths = append(paths, p)
	}
	return paths
}

func parseLeftRight(output string) (int, int, error) {
	fields := strings.Fields(output)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("unexpected rev-list output %q", output)
	}
	left, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("unexpected rev-list output %q: %w", output, err)
	}
	right, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("unexpected rev-list output %q: %w", output, err)
	}
	return left, right, nil
}

// parseRemotes parses `git remote -v` lines of the form
// "name<TAB>url (fetch|push)" preserving first-seen order
func parseRemotes(output string) []model.RemoteTarget {
	var remotes []model.RemoteTarget
	index := make(map[string]int)

	for _, line := range strings.Split(output, "\n") {
		name, rest, ok := strings.Cut(strings.TrimSpace(line), "\t")
		if !ok {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}

		i, exists := index[name]
		if !exists {
			remotes = append(remotes, model.RemoteTarget{Name: name})
			i = len(remotes) - 1
			index[name] = i
		}

		url := fields[0]
		kind := ""
		if len(fields) > 1 {
			kind = strings.Trim(fields[1], "()")
		}
		switch kind {
		case "push":
			remotes[i].PushURL = url
		default:
			remotes[i].FetchURL = url
		}
	}
	return remotes
}

func parseLsRemote(output string, ref string) (string, bool) {
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 2 && fields[1] == ref {
			return fields[0], true
		}
	}
	return "", false
}
