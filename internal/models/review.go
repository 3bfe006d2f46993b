package models

// Target names the producer a piece of review feedback is meant for
type Target string

const (
	TargetVisual Target = "visual"
	TargetMusic  Target = "music"
	TargetRender Target = "render"
)

// ReviewIssue is a categorized finding of the script reviewer
type ReviewIssue struct {
	Category    string `json:"category"`
	Description string `json:"description"`
}

// ReviewVerdict is the script reviewer's judgement on a render plan
type ReviewVerdict struct {
	Passed          bool          `json:"passed"`
	Summary         string        `json:"summary"`
	Issues          []ReviewIssue `json:"issues"`
	RequiredChanges []string      `json:"requiredChanges"`
}

// TargetedIssue is a finding tagged with the producer it concerns
type TargetedIssue struct {
	Target      Target `json:"target"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// TargetedChange is a required change tagged with the producer that must apply it
type TargetedChange struct {
	Target      Target `json:"target"`
	Instruction string `json:"instruction"`
}

// DirectorVerdict is the creative director's judgement on a visual script and music pair
type DirectorVerdict struct {
	Passed          bool             `json:"passed"`
	Summary         string           `json:"summary"`
	Issues          []TargetedIssue  `json:"issues"`
	RequiredChanges []TargetedChange `json:"requiredChanges"`
}

// ReviewRound is one entry of a review log
type ReviewRound struct {
	Round           int              `json:"round"`
	Passed          bool             `json:"passed"`
	Summary         string           `json:"summary"`
	Issues          []TargetedIssue  `json:"issues"`
	RequiredChanges []TargetedChange `json:"requiredChanges"`
}

// ReviewLog is the append-only record of every round of one loop.
// FinalPassed implies at least one round passed.
type ReviewLog struct {
	Rounds      []ReviewRound `json:"rounds"`
	FinalPassed bool          `json:"finalPassed"`
	Warning     string        `json:"warning,omitempty"`
}

// Targeted converts a flat verdict into targeted issues and changes for a single producer
func (v ReviewVerdict) Targeted(target Target) ([]TargetedIssue, []TargetedChange) {
	issues := make([]TargetedIssue, 0, len(v.Issues))
	for _, i := range v.Issues {
		issues = append(issues, TargetedIssue{Target: target, Category: i.Category, Description: i.Description})
	}
	changes := make([]TargetedChange, 0, len(v.RequiredChanges))
	for _, c := range v.RequiredChanges {
		changes = append(changes, TargetedChange{Target: target, Instruction: c})
	}
	return issues, changes
}
