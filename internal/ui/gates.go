package ui

import (
	"fmt"

	"github.com/bjulian5/promote/internal/model"
)

// SyncGates asks the operator to approve each review stage of a sync
type SyncGates struct{}

func (SyncGates) ReviewSummary(plan model.SyncPlan, report *model.SafetyReport) (bool, error) {
	Header(fmt.Sprintf("Sync %s/%s → %s/%s", plan.SourceRemote, plan.Branch, plan.TargetRemote, plan.Branch))
	Println(RenderDivergence(plan.SourceRef, plan.TargetRef, divergenceOf(plan)))
	Println("")
	Println(RenderSafetyReport(report))
	Println("")

	prompt := "Review the commits?"
	if report != nil && report.HasIssues {
		prompt = "Issues found. Review the commits anyway?"
	}
	return Confirm(prompt, report == nil || !report.HasIssues)
}

func (SyncGates) ReviewCommits(plan model.SyncPlan) (bool, error) {
	Header(fmt.Sprintf("%s to sync (oldest first)", pluralize(len(plan.Commits), "commit")))
	Println(RenderCommitTable(plan.Commits))
	return Confirm("Review the diff stat?", true)
}

func (SyncGates) ReviewDiffStat(plan model.SyncPlan, stat string) (bool, error) {
	Header("Changes")
	Println(stat)
	return Confirm(fmt.Sprintf("Push to %s/%s?", plan.TargetRemote, plan.Branch), false)
}

func (SyncGates) ConfirmForce(plan model.SyncPlan) (bool, error) {
	Warningf("%s/%s has diverged from %s/%s. Pushing will overwrite commits on %s.",
		plan.TargetRemote, plan.Branch, plan.SourceRemote, plan.Branch, plan.TargetRemote)
	return Confirm("Force push with lease?", false)
}

func divergenceOf(plan model.SyncPlan) model.DivergenceInfo {
	return model.DivergenceInfo{
		Ahead:          plan.Ahead,
		Behind:         plan.Behind,
		CanFastForward: plan.CanFastForward,
		TargetExists:   plan.TargetExists(),
	}
}
