package revision

import (
	"errors"
	"strings"

	"github.com/Conceptual-Machines/reel-director/internal/contracts"
	"github.com/Conceptual-Machines/reel-director/internal/models"
)

var errNoRound = errors.New("review log has no round to attach the issue to")

// ReviewLogBuilder accumulates the rounds of one loop. Everything is copied
// in and out, so a built log never shares memory with the builder.
type ReviewLogBuilder struct {
	rounds      []models.ReviewRound
	finalPassed bool
	warnings    []string
}

func NewReviewLogBuilder() *ReviewLogBuilder {
	return &ReviewLogBuilder{}
}

// AddRound appends a round entry
func (b *ReviewLogBuilder) AddRound(round models.ReviewRound) {
	b.rounds = append(b.rounds, copyRound(round))
}

// AddIssue attaches an issue to the most recent round
func (b *ReviewLogBuilder) AddIssue(issue models.TargetedIssue) error {
	if len(b.rounds) == 0 {
		return errNoRound
	}
	last := &b.rounds[len(b.rounds)-1]
	last.Issues = append(last.Issues, issue)
	return nil
}

// MarkPassed flags the log as finally passed
func (b *ReviewLogBuilder) MarkPassed() {
	b.finalPassed = true
}

// Warn records a warning; several warnings are joined with "; "
func (b *ReviewLogBuilder) Warn(msg string) {
	if msg != "" {
		b.warnings = append(b.warnings, msg)
	}
}

func (b *ReviewLogBuilder) Len() int {
	return len(b.rounds)
}

// Build returns the log, refusing one that claims a pass no round earned
func (b *ReviewLogBuilder) Build() (models.ReviewLog, error) {
	rounds := make([]models.ReviewRound, len(b.rounds))
	for i, r := range b.rounds {
		rounds[i] = copyRound(r)
	}
	log := models.ReviewLog{
		Rounds:      rounds,
		FinalPassed: b.finalPassed,
		Warning:     strings.Join(b.warnings, "; "),
	}
	if err := contracts.ValidateReviewLog(log); err != nil {
		return models.ReviewLog{}, err
	}
	return log, nil
}

func copyRound(r models.ReviewRound) models.ReviewRound {
	r.Issues = append([]models.TargetedIssue{}, r.Issues...)
	r.RequiredChanges = append([]models.TargetedChange{}, r.RequiredChanges...)
	return r
}
