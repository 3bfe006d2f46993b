package revision

import (
	"testing"

	"github.com/Conceptual-Machines/reel-director/internal/contracts"
	"github.com/Conceptual-Machines/reel-director/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewLogBuilder(t *testing.T) {
	t.Run("builds rounds in order with joined warnings", func(t *testing.T) {
		b := NewReviewLogBuilder()
		b.AddRound(models.ReviewRound{Round: 1, Summary: "no", RequiredChanges: []models.TargetedChange{visualChange("x")}})
		require.NoError(t, b.AddIssue(models.TargetedIssue{Target: models.TargetMusic, Category: "audio", Description: "silent"}))
		b.AddRound(models.ReviewRound{Round: 2, Passed: true, Summary: "yes"})
		b.MarkPassed()
		b.Warn("first")
		b.Warn("")
		b.Warn("second")

		log, err := b.Build()
		require.NoError(t, err)
		assert.Equal(t, 2, b.Len())
		assert.True(t, log.FinalPassed)
		assert.Equal(t, "first; second", log.Warning)
		require.Len(t, log.Rounds[0].Issues, 1)
		assert.Equal(t, models.TargetMusic, log.Rounds[0].Issues[0].Target)
	})

	t.Run("refuses a pass no round earned", func(t *testing.T) {
		b := NewReviewLogBuilder()
		b.AddRound(models.ReviewRound{Round: 1, Summary: "no"})
		b.MarkPassed()

		_, err := b.Build()
		require.Error(t, err)
		assert.True(t, contracts.IsSemantic(err))
	})

	t.Run("issue needs a round", func(t *testing.T) {
		err := NewReviewLogBuilder().AddIssue(models.TargetedIssue{Target: models.TargetVisual})
		assert.Error(t, err)
	})

	t.Run("built logs do not alias builder state", func(t *testing.T) {
		changes := []models.TargetedChange{visualChange("original")}
		b := NewReviewLogBuilder()
		b.AddRound(models.ReviewRound{Round: 1, RequiredChanges: changes})
		changes[0].Instruction = "mutated by caller"

		first, err := b.Build()
		require.NoError(t, err)
		first.Rounds[0].RequiredChanges[0].Instruction = "mutated by reader"
		require.NoError(t, b.AddIssue(models.TargetedIssue{Target: models.TargetVisual, Description: "late"}))

		second, err := b.Build()
		require.NoError(t, err)
		assert.Equal(t, "original", second.Rounds[0].RequiredChanges[0].Instruction)
		assert.Empty(t, first.Rounds[0].Issues)
		assert.Len(t, second.Rounds[0].Issues, 1)
	})
}

func TestNotes_Immutable(t *testing.T) {
	a := NewNotes("one", "  ", "two")
	b := a.Append("three")
	c := a.Append("other")

	assert.Equal(t, []string{"one", "two"}, a.Items())
	assert.Equal(t, []string{"one", "two", "three"}, b.Items())
	assert.Equal(t, []string{"one", "two", "other"}, c.Items())

	items := b.Items()
	items[0] = "changed"
	assert.Equal(t, "one", b.Items()[0])

	assert.True(t, Notes{}.Empty())
	assert.Nil(t, Notes{}.Items())
	assert.Equal(t, 5, a.Concat(b).Len())
}

func TestSilentComposition(t *testing.T) {
	for _, d := range []float64{0.5, 30, 61.25} {
		music := SilentComposition(d)
		_, err := contracts.ValidateMusicComposition(music, contracts.Rules{ExpectedDurationSec: d})
		require.NoError(t, err)
		assert.Equal(t, 0, music.NoteCount())
		assert.Len(t, music.Tracks, len(models.CanonicalTracks))
	}
}

func TestObservers_FanOutSurvivesPanics(t *testing.T) {
	first := &Recorder{}
	last := &Recorder{}
	obs := Observers{first, ObserverFunc(func(Event) { panic("bad observer") }), nil, last}

	emit(obs, Event{Type: EventRoundStarted, Round: 1})
	emit(obs, Event{Type: EventReviewerDone, Round: 1, Passed: boolPtr(true)})

	assert.Equal(t, 2, len(first.Events()))
	assert.Equal(t, 2, len(last.Events()))
	assert.False(t, last.Events()[0].Timestamp.IsZero())

	assert.NotPanics(t, func() {
		LogObserver{}.OnEvent(Event{Type: EventAttemptFailed, Stage: StageMusic, Attempt: 2, Message: "rejected"})
		LogObserver{}.OnEvent(Event{Type: EventHeartbeat, ElapsedMs: 5000})
	})
}
