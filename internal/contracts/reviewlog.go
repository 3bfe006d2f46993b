package contracts

import (
	"github.com/Conceptual-Machines/reel-director/internal/models"
)

const artifactReviewLog = "review log"

var logTargets = map[models.Target]bool{
	models.TargetVisual: true,
	models.TargetMusic:  true,
	models.TargetRender: true,
}

// ValidateReviewLog checks an assembled review log.
// A log may only claim to have passed if one of its rounds did.
func ValidateReviewLog(log models.ReviewLog) error {
	errs := &ValidationErrors{}

	anyPassed := false
	prev := 0
	for i, round := range log.Rounds {
		path := index("rounds", i)
		if round.Round <= prev {
			errs.Addf(join(path, "round"), "must be greater than %d, got %d", prev, round.Round)
		}
		prev = round.Round
		anyPassed = anyPassed || round.Passed

		for j, issue := range round.Issues {
			if !logTargets[issue.Target] {
				errs.Addf(index(join(path, "issues"), j)+".target", "unknown target %q", issue.Target)
			}
		}
		for j, change := range round.RequiredChanges {
			if !logTargets[change.Target] {
				errs.Addf(index(join(path, "requiredChanges"), j)+".target", "unknown target %q", change.Target)
			}
		}
	}

	if log.FinalPassed && !anyPassed {
		errs.Add("finalPassed", "is true but no round passed")
	}
	return semanticOrNil(artifactReviewLog, errs)
}
