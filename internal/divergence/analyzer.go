// Package divergence measures how far two refs have drifted apart.
package divergence

import (
	"fmt"

	"github.com/bjulian5/promote/internal/logging"
	"github.com/bjulian5/promote/internal/model"
)

// GitClient defines the git operations needed by the Analyzer
type GitClient interface {
	ResolveRef(ref string) (string, bool)
	CommitCount(ref string) (int, error)
	AheadBehind(refA string, refB string) (int, int, error)
	IsAncestor(ancestor string, descendant string) (bool, error)
}

// Analyzer compares a target ref with a source ref
type Analyzer struct {
	git GitClient
}

// NewAnalyzer creates a new divergence analyzer
func NewAnalyzer(gitClient GitClient) *Analyzer {
	return &Analyzer{git: gitClient}
}

// Compare returns how many commits sourceRef has that targetRef lacks (Ahead)
// and the reverse (Behind). A missing target is treated as a branch that
// will be created: everything on the source is ahead and a fast-forward is
// possible.
func (a *Analyzer) Compare(targetRef string, sourceRef string) (model.DivergenceInfo, error) {
	sourceHash, ok := a.git.ResolveRef(sourceRef)
	if !ok {
		return model.DivergenceInfo{}, fmt.Errorf("failed to resolve source %s: %w", sourceRef, ErrSourceNotFound)
	}

	targetHash, ok := a.git.ResolveRef(targetRef)
	if !ok {
		total, err := a.git.CommitCount(sourceRef)
		if err != nil {
			return model.DivergenceInfo{}, fmt.Errorf("failed to count commits on %s: %w", sourceRef, err)
		}
		logging.Logger.Debug("Target ref missing, treating as new branch", "target", targetRef, "source", sourceRef, "ahead", total)
		return model.DivergenceInfo{
			Ahead:          total,
			Behind:         0,
			CanFastForward: true,
			TargetExists:   false,
		}, nil
	}

	behind, ahead, err := a.git.AheadBehind(targetRef, sourceRef)
	if err != nil {
		return model.DivergenceInfo{}, fmt.Errorf("failed to count divergence between %s and %s: %w", targetRef, sourceRef, err)
	}

	info := model.DivergenceInfo{
		Ahead:        ahead,
		Behind:       behind,
		TargetExists: true,
	}

	if targetHash != sourceHash {
		isAncestor, err := a.git.IsAncestor(targetRef, sourceRef)
		if err != nil {
			return model.DivergenceInfo{}, fmt.Errorf("failed to check ancestry of %s: %w", targetRef, err)
		}
		info.CanFastForward = isAncestor
	}

	logging.Logger.Debug("Compared refs",
		"target", targetRef,
		"source", sourceRef,
		"ahead", info.Ahead,
		"behind", info.Behind,
		"fast_forward", info.CanFastForward,
	)
	return info, nil
}
