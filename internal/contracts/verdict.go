package contracts

import (
	"fmt"

	"github.com/Conceptual-Machines/reel-director/internal/models"
)

const (
	artifactReviewVerdict   = "review verdict"
	artifactDirectorVerdict = "director verdict"
)

var directorTargets = []string{
	string(models.TargetVisual),
	string(models.TargetMusic),
}

// ValidateReviewVerdict checks the narrative reviewer's output
func ValidateReviewVerdict(v any) (*models.ReviewVerdict, error) {
	rec, err := toRecord(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", artifactReviewVerdict, err)
	}

	errs := &ValidationErrors{}
	r := reader{errs: errs}
	verdict := &models.ReviewVerdict{}
	verdict.Passed, _ = r.boolean(rec, "passed", "")
	verdict.Summary = r.text(rec, "summary", "")

	verdict.Issues = []models.ReviewIssue{}
	for i, issue := range r.objects(rec, "issues", "", true) {
		if issue == nil {
			continue
		}
		path := index("issues", i)
		verdict.Issues = append(verdict.Issues, models.ReviewIssue{
			Category:    r.text(issue, "category", path),
			Description: r.text(issue, "description", path),
		})
	}

	verdict.RequiredChanges = r.strings(rec, "requiredChanges", "", true)
	if verdict.RequiredChanges == nil {
		verdict.RequiredChanges = []string{}
	}

	if err := structuralOrNil(artifactReviewVerdict, errs); err != nil {
		return nil, err
	}

	semantic := &ValidationErrors{}
	checkVerdict(verdict.Passed, len(verdict.RequiredChanges), semantic)
	if err := semanticOrNil(artifactReviewVerdict, semantic); err != nil {
		return nil, err
	}
	return verdict, nil
}

// ValidateDirectorVerdict checks the creative director's output. Every issue
// and required change must name the producer it is meant for.
func ValidateDirectorVerdict(v any) (*models.DirectorVerdict, error) {
	rec, err := toRecord(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", artifactDirectorVerdict, err)
	}

	errs := &ValidationErrors{}
	r := reader{errs: errs}
	verdict := &models.DirectorVerdict{}
	verdict.Passed, _ = r.boolean(rec, "passed", "")
	verdict.Summary = r.text(rec, "summary", "")

	verdict.Issues = []models.TargetedIssue{}
	for i, issue := range r.objects(rec, "issues", "", true) {
		if issue == nil {
			continue
		}
		path := index("issues", i)
		verdict.Issues = append(verdict.Issues, models.TargetedIssue{
			Target:      models.Target(r.enum(issue, "target", path, directorTargets, true)),
			Category:    r.text(issue, "category", path),
			Description: r.text(issue, "description", path),
		})
	}

	verdict.RequiredChanges = []models.TargetedChange{}
	for i, change := range r.objects(rec, "requiredChanges", "", true) {
		if change == nil {
			continue
		}
		path := index("requiredChanges", i)
		verdict.RequiredChanges = append(verdict.RequiredChanges, models.TargetedChange{
			Target:      models.Target(r.enum(change, "target", path, directorTargets, true)),
			Instruction: r.text(change, "instruction", path),
		})
	}

	if err := structuralOrNil(artifactDirectorVerdict, errs); err != nil {
		return nil, err
	}

	semantic := &ValidationErrors{}
	checkVerdict(verdict.Passed, len(verdict.RequiredChanges), semantic)
	if err := semanticOrNil(artifactDirectorVerdict, semantic); err != nil {
		return nil, err
	}
	return verdict, nil
}

// A failing verdict with nothing to change would leave the next round
// with the same inputs.
func checkVerdict(passed bool, changes int, errs *ValidationErrors) {
	if !passed && changes == 0 {
		errs.Add("requiredChanges", "must list at least one change when passed is false")
	}
}
