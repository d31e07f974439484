package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss/tree"

	"github.com/bjulian5/promote/internal/model"
)

// RenderPlanTree renders a release plan with commits in apply order.
// Example output:
//
//	origin/release
//	├─ apply 3 commits
//	│  ├─ 1. a1b2c3d Add login
//	│  ├─ 2. b2c3d4e Fix login
//	│  ╰─ 3. c3d4e5f Bump version
//	╰─ push HEAD:release
//	   ├─ origin
//	   ╰─ mirror
func RenderPlanTree(plan model.ReleasePlan, order []model.Commit) string {
	t := tree.Root(TreeRootStyle.Render(plan.TargetRef))

	commits := tree.Root(fmt.Sprintf("apply %s", pluralize(len(order), "commit")))
	for i, c := range order {
		commits.Child(fmt.Sprintf("%s %s", Dim(fmt.Sprintf("%d.", i+1)), FormatCommitLine(c)))
	}
	t.Child(commits)

	remotes := tree.Root(fmt.Sprintf("push HEAD:%s", plan.TargetBranch))
	for _, r := range plan.Remotes {
		remotes.Child(Bold(r.Name) + " " + Dim(r.URL()))
	}
	t.Child(remotes)

	if plan.SaveBranch != "" {
		t.Child("save as " + Highlight(plan.SaveBranch))
	}

	t.Enumerator(roundedEnumerator()).
		EnumeratorStyle(TreeEnumeratorStyle).
		Indenter(treeIndenter())
	return t.String()
}

// RenderRemoteTree renders configured remotes with their URLs
func RenderRemoteTree(remotes []model.RemoteTarget) string {
	if len(remotes) == 0 {
		return Dim("No remotes configured. Add one with: ") + Highlight("promote remote add <name> <url>")
	}

	t := tree.Root(HeaderStyle.Render(fmt.Sprintf("Remotes (%d)", len(remotes))))
	for _, r := range remotes {
		node := tree.Root(Bold(r.Name))
		node.Child(Dim("fetch ") + r.FetchURL)
		if r.PushURL != "" && r.PushURL != r.FetchURL {
			node.Child(Dim("push  ") + r.PushURL)
		}
		t.Child(node)
	}

	t.Enumerator(roundedEnumerator()).
		EnumeratorStyle(TreeEnumeratorStyle).
		Indenter(treeIndenter())
	return t.String()
}

func roundedEnumerator() tree.Enumerator {
	return func(children tree.Children, i int) string {
		if children.Length() == 0 {
			return ""
		}
		if i == children.Length()-1 {
			return "╰─ "
		}
		return "├─ "
	}
}

func treeIndenter() tree.Indenter {
	return func(children tree.Children, i int) string {
		if children.Length() == 0 {
			return ""
		}
		if i == children.Length()-1 {
			return "   "
		}
		return "│  "
	}
}
