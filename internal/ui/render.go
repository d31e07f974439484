package ui

import (
	"fmt"
	"strings"

	"github.com/bjulian5/promote/internal/history"
	"github.com/bjulian5/promote/internal/model"
	"github.com/bjulian5/promote/internal/release"
	"github.com/bjulian5/promote/internal/remotesync"
)

// RenderCommitTable renders commits as a numbered table. Numbers start at 1
// and match what PromptSelection and the range syntax expect.
func RenderCommitTable(commits []model.Commit) string {
	if len(commits) == 0 {
		return Dim("No commits.")
	}

	// number, hash and date columns take roughly 40 cells
	width := max(min(Display.MaxSubjectLength, GetTerminalWidth()-40), 20)
	t := NewTable().Headers("#", "Commit", "Date", "Subject")
	for i, c := range commits {
		t.Row(
			fmt.Sprintf("%d", i+1),
			HashStyle.Render(c.ShortHash),
			c.AuthorDate.Local().Format(Display.DateLayout),
			Truncate(c.Subject, width),
		)
	}
	return t.Render()
}

// RenderSafetyReport renders every finding of a safety report. Checks that
// could not run are listed as warnings rather than passes.
func RenderSafetyReport(report *model.SafetyReport) string {
	if report == nil {
		return ""
	}

	var out strings.Builder
	out.WriteString(HeaderStyle.Render("Safety check"))
	out.WriteString("\n")

	writeCheck := func(check string, label string, findings []string) {
		switch {
		case report.WasSkipped(check):
			out.WriteString(WarningStyle.Render(IconWarn+" "+label+": not checked") + "\n")
		case len(findings) == 0:
			out.WriteString(SuccessStyle.Render("✓ "+label+": none") + "\n")
		default:
			out.WriteString(ErrorStyle.Render(fmt.Sprintf("✗ %s: %d", label, len(findings))) + "\n")
			out.WriteString(RenderBulletList(findings) + "\n")
		}
	}

	writeCheck(model.CheckConflicts, "Files changed on both sides", report.ConflictFiles)

	var naming []string
	for _, issue := range report.NamingIssues {
		if issue.Segment == "" {
			naming = append(naming, fmt.Sprintf("%s %s", issue.Path, Dim("("+issue.Rule+")")))
			continue
		}
		naming = append(naming, fmt.Sprintf("%s %s", issue.Path, Dim(fmt.Sprintf("(%s in %q)", issue.Rule, issue.Segment))))
	}
	writeCheck(model.CheckNaming, "Cross-platform naming issues", naming)

	var large []string
	for _, f := range report.LargeFiles {
		large = append(large, fmt.Sprintf("%s %s", f.Path, Dim(fmt.Sprintf("(+%d lines in %s)", f.AddedLines, f.Commit))))
	}
	writeCheck(model.CheckLarge, "Large files", large)

	if report.WasSkipped(model.CheckBinary) {
		out.WriteString(WarningStyle.Render(IconWarn+" Binary files: not checked") + "\n")
	} else if len(report.BinaryFiles) > 0 {
		out.WriteString(InfoStyle.Render(fmt.Sprintf("ℹ Binary files: %d", len(report.BinaryFiles))) + "\n")
		out.WriteString(RenderBulletList(report.BinaryFiles) + "\n")
	}

	for _, w := range report.Warnings {
		out.WriteString(Dim("  "+w) + "\n")
	}
	return strings.TrimRight(out.String(), "\n")
}

// RenderDivergence describes how target relates to source
func RenderDivergence(source string, target string, d model.DivergenceInfo) string {
	var state string
	switch {
	case !d.TargetExists:
		state = InfoStyle.Render(fmt.Sprintf("%s does not exist yet; pushing creates it with %s", target, pluralize(d.Ahead, "commit")))
	case d.InSync():
		state = SuccessStyle.Render("up to date")
	case d.CanFastForward:
		state = SuccessStyle.Render("fast-forward")
	default:
		state = WarningStyle.Render("diverged, force push required")
	}

	return RenderKeyValueList(map[string]string{
		"Source": Bold(source),
		"Target": Bold(target),
		"Ahead":  fmt.Sprintf("%d", d.Ahead),
		"Behind": fmt.Sprintf("%d", d.Behind),
		"State":  state,
	}, []string{"Source", "Target", "Ahead", "Behind", "State"})
}

// RenderPushResults renders one line per remote
func RenderPushResults(pushes []release.PushResult) string {
	if len(pushes) == 0 {
		return ""
	}
	t := NewSimpleTable().Headers("Remote", "Status", "Detail")
	for _, p := range pushes {
		detail := ""
		if p.Err != nil {
			detail = Truncate(p.Err.Error(), Display.MaxSubjectLength)
		}
		t.Row(p.Remote, GetStatus(string(p.Status)).Render(), detail)
	}
	return t.Render()
}

// RenderReleaseResult summarizes a finished release run
func RenderReleaseResult(r *release.Result) string {
	var lines []string
	status := GetStatus(r.State.String())
	if r.DryRun {
		status = GetStatus("dry-run")
	}
	lines = append(lines, fmt.Sprintf("%s %s", status.Render(), Dim(r.RunID)))

	lines = append(lines, fmt.Sprintf("Applied %d of %d commits", len(r.Applied), len(r.Order)))
	if pushes := RenderPushResults(r.Pushes); pushes != "" {
		lines = append(lines, pushes)
	}
	if r.SavedBranch != "" {
		lines = append(lines, RenderKeyValue("Saved branch", Highlight(r.SavedBranch)))
	}
	if r.Fault != nil {
		lines = append(lines, ErrorStyle.Render(r.Fault.Error()))
		if len(r.Fault.ConflictedFiles) > 0 {
			lines = append(lines, RenderBulletList(r.Fault.ConflictedFiles))
		}
	}
	if r.Restored {
		lines = append(lines, Dim("Returned to "+r.OriginalBranch))
	}
	return strings.Join(lines, "\n")
}

// RenderSyncResult summarizes a finished sync run
func RenderSyncResult(r *remotesync.Result) string {
	plan := r.Plan
	var lines []string

	label := string(r.Outcome)
	if r.Outcome == remotesync.OutcomeCancelled {
		label = fmt.Sprintf("cancelled at %s", r.CancelledAt)
	}
	status := GetStatus(string(r.Outcome))
	status.Label = label
	lines = append(lines, fmt.Sprintf("%s %s", status.Render(), Dim(r.RunID)))

	target := fmt.Sprintf("%s/%s", plan.TargetRemote, plan.Branch)
	switch r.Outcome {
	case remotesync.OutcomeSynced:
		mode := "fast-forward"
		if r.Forced {
			mode = "force-with-lease"
		}
		lines = append(lines, fmt.Sprintf("%s → %s (%s, %s)", plan.SourceRemote, target, pluralize(len(plan.Commits), "commit"), mode))
		if r.Verified {
			lines = append(lines, SuccessStyle.Render("✓ verified "+model.ShortHash(r.TargetHead)))
		}
	case remotesync.OutcomeUpToDate:
		lines = append(lines, fmt.Sprintf("%s already matches %s/%s", target, plan.SourceRemote, plan.Branch))
	}
	return strings.Join(lines, "\n")
}

// RenderHistory renders recorded runs newest first
func RenderHistory(runs []history.Run) string {
	if len(runs) == 0 {
		return Dim("No runs recorded yet.")
	}

	t := NewTable().Headers("When", "Kind", "Target", "Commits", "Outcome", "Run")
	for _, r := range runs {
		outcome := GetStatus(r.Outcome).Render()
		if r.DryRun {
			outcome += Dim(" (dry run)")
		}
		target := r.Target
		if r.Branch != "" && r.Kind == history.KindSync {
			target = fmt.Sprintf("%s/%s", r.Target, r.Branch)
		}
		t.Row(
			r.StartedAt.Local().Format(Display.DateLayout),
			string(r.Kind),
			target,
			fmt.Sprintf("%d", len(r.Commits)),
			outcome,
			Dim(shortID(r.ID)),
		)
	}
	return t.Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
