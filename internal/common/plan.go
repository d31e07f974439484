package common

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bjulian5/promote/internal/config"
	"github.com/bjulian5/promote/internal/model"
	"github.com/bjulian5/promote/internal/planfile"
	"github.com/bjulian5/promote/internal/release"
	"github.com/bjulian5/promote/internal/selection"
	"github.com/bjulian5/promote/internal/ui"
)

// PlanGitClient defines the git operations needed to build a release plan
type PlanGitClient interface {
	ResolveRef(ref string) (string, bool)
	RemoteList() ([]model.RemoteTarget, error)
	ListCommits(ref string, count int) ([]model.Commit, error)
}

// PlanOptions are the flags that choose what a release contains. They are
// shared by release, check and plan export.
type PlanOptions struct {
	Target     string
	Branch     string
	Remotes    []string
	From       string
	Count      int
	Last       int
	Pick       string
	Select     bool
	PlanFile   string
	SaveBranch string

	// Interactive allows pickers and prompts when nothing else selects commits
	Interactive bool
}

// AddFlags registers the plan flags on fs
func (o *PlanOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Target, "target", "", "Ref to cherry-pick onto (default from config: release.target_ref)")
	fs.StringVar(&o.Branch, "branch", "", "Branch to push on each remote (default from config: release.branch)")
	fs.StringSliceVar(&o.Remotes, "remote", nil, "Remote to push to, repeatable (default from config: release.remotes)")
	fs.StringVar(&o.From, "from", "", "Ref to list candidate commits from")
	fs.IntVarP(&o.Count, "count", "n", 0, "Number of candidate commits to list")
	fs.IntVar(&o.Last, "last", 0, "Select the N most recent commits")
	fs.StringVar(&o.Pick, "pick", "", `Select commits by number, e.g. "1-3, 5" or "all"`)
	fs.BoolVar(&o.Select, "select", false, "Pick commits with a fuzzy finder")
	fs.StringVar(&o.PlanFile, "plan", "", "Use a plan exported with 'promote plan export'")
	fs.StringVar(&o.SaveBranch, "save-branch", "", "Create a local branch at the promoted tip")
}

// Build turns the options and config into a release plan. Returns nil when
// nothing was selected interactively; a non-interactive empty selection is
// an error.
func (o *PlanOptions) Build(g PlanGitClient, cfg config.ReleaseConfig) (*model.ReleasePlan, error) {
	if o.PlanFile != "" {
		f, err := planfile.Read(o.PlanFile)
		if err != nil {
			return nil, err
		}
		plan, err := f.ToPlan(g)
		if err != nil {
			return nil, err
		}
		if o.SaveBranch != "" {
			plan.SaveBranch = o.SaveBranch
		}
		return &plan, nil
	}

	remotes, err := o.resolveRemotes(g, cfg.Remotes)
	if err != nil {
		return nil, err
	}

	commits, err := o.Candidates(g, cfg)
	if err != nil {
		return nil, err
	}

	sel, err := o.selectCommits(commits)
	if err != nil {
		return nil, err
	}
	if sel.IsEmpty() {
		if !o.Interactive {
			return nil, fmt.Errorf("%w: %q matches none of the %d candidates", model.ErrEmptySelection, o.Pick, len(commits))
		}
		return nil, nil
	}

	plan, err := model.NewReleasePlan(sel,
		firstNonEmpty(o.Target, cfg.TargetRef),
		firstNonEmpty(o.Branch, cfg.Branch),
		remotes)
	if err != nil {
		return nil, err
	}
	plan.SaveBranch = o.SaveBranch
	return &plan, nil
}

// Candidates lists the commits a selection is made from, newest first
func (o *PlanOptions) Candidates(g PlanGitClient, cfg config.ReleaseConfig) ([]model.Commit, error) {
	from := firstNonEmpty(o.From, cfg.From)
	count := o.Count
	if count <= 0 {
		count = cfg.Count
	}

	commits, err := g.ListCommits(from, count)
	if err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		return nil, fmt.Errorf("no commits found on %s", from)
	}
	return commits, nil
}

func (o *PlanOptions) resolveRemotes(g PlanGitClient, defaults []string) ([]model.RemoteTarget, error) {
	configured, err := g.RemoteList()
	if err != nil {
		return nil, err
	}

	names := o.Remotes
	if len(names) == 0 {
		names = defaults
	}
	if len(names) == 0 && o.Interactive {
		return ui.SelectRemotes(configured)
	}

	remotes := make([]model.RemoteTarget, 0, len(names))
	for _, name := range names {
		remote, ok := model.FindRemote(configured, name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", release.ErrRemoteNotFound, name)
		}
		remotes = append(remotes, remote)
	}
	return remotes, nil
}

func (o *PlanOptions) selectCommits(commits []model.Commit) (*model.CommitSelection, error) {
	switch {
	case o.Last > 0:
		return model.LastK(commits, o.Last), nil
	case o.Pick != "":
		return model.FromIndices(commits, selection.Parse(o.Pick, len(commits))), nil
	case !o.Interactive:
		return nil, fmt.Errorf("no commits selected; use --last, --pick or --plan when not running interactively")
	case o.Select:
		numbers, err := ui.SelectCommits(commits)
		if err != nil {
			return nil, err
		}
		return model.FromIndices(commits, numbers), nil
	default:
		ui.Println(ui.RenderCommitTable(commits))
		numbers, err := ui.PromptSelection(`Select commits (e.g. "1-3, 5", "all"): `, len(commits))
		if err != nil {
			return nil, err
		}
		return model.FromIndices(commits, numbers), nil
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
