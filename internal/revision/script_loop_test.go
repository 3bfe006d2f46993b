package revision

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Conceptual-Machines/reel-director/internal/contracts"
	"github.com/Conceptual-Machines/reel-director/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alwaysRender(p models.RenderPlan) *fakeRender {
	return &fakeRender{fn: func(int, models.RenderPlanRequest) (any, error) { return p, nil }}
}

func TestScriptLoop_NotesReplacedVerbatim(t *testing.T) {
	producer := alwaysRender(goodRender())
	reviewer := &fakeNarrative{fn: func(call int, _ models.ScriptReviewRequest) (any, error) {
		switch call {
		case 1:
			return reviewVerdict(false, "drop the word 'journey'", "address the audience directly"), nil
		case 2:
			return reviewVerdict(false, "the last subtitle should resolve the arc"), nil
		}
		return reviewVerdict(true), nil
	}}

	loop := &ScriptLoop{Producer: producer, Reviewer: reviewer, MaxRounds: 3}
	result, err := loop.Run(context.Background(), scriptInput())
	require.NoError(t, err)

	require.Len(t, producer.calls, 3)
	assert.Empty(t, producer.calls[0].Notes)
	assert.Equal(t, []string{"drop the word 'journey'", "address the audience directly"}, producer.calls[1].Notes)
	assert.Equal(t, []string{"the last subtitle should resolve the arc"}, producer.calls[2].Notes)

	assert.True(t, result.Passed)
	assert.True(t, result.Log.FinalPassed)
	require.Len(t, result.Log.Rounds, 3)
	for _, round := range result.Log.Rounds {
		for _, c := range round.RequiredChanges {
			assert.Equal(t, models.TargetRender, c.Target)
		}
	}
	assert.Equal(t, "drop the word 'journey'", result.Log.Rounds[0].RequiredChanges[0].Instruction)
}

func TestScriptLoop_Exhaustion(t *testing.T) {
	producer := alwaysRender(goodRender())
	reviewer := &fakeNarrative{fn: func(int, models.ScriptReviewRequest) (any, error) {
		return reviewVerdict(false, "tone is off"), nil
	}}

	loop := &ScriptLoop{Producer: producer, Reviewer: reviewer, MaxRounds: 2}
	result, err := loop.Run(context.Background(), scriptInput())
	require.NoError(t, err)

	assert.False(t, result.Passed)
	assert.False(t, result.Log.FinalPassed)
	assert.Len(t, result.Rounds, 2)
	assert.Contains(t, result.Warning, "within 2 rounds")
	require.NotNil(t, result.RenderPlan)
	assert.InDelta(t, 30.0, result.RenderPlan.TotalDurationSec(), 1e-9)
}

func TestScriptLoop_RenderRetry(t *testing.T) {
	bad := models.RenderPlan{ScenePlan: scenes(10, 10)}
	_, validationErr := contracts.ValidateRenderPlan(bad, testRules())
	require.Error(t, validationErr)

	t.Run("second attempt sees the first error", func(t *testing.T) {
		producer := &fakeRender{fn: func(call int, _ models.RenderPlanRequest) (any, error) {
			if call == 1 {
				return bad, nil
			}
			return goodRender(), nil
		}}
		reviewer := &fakeNarrative{fn: func(int, models.ScriptReviewRequest) (any, error) {
			return reviewVerdict(true), nil
		}}

		loop := &ScriptLoop{Producer: producer, Reviewer: reviewer}
		result, err := loop.Run(context.Background(), scriptInput())
		require.NoError(t, err)

		require.Len(t, producer.calls, 2)
		assert.Contains(t, strings.Join(producer.calls[1].Notes, "\n"), validationErr.Error())
		assert.Len(t, result.Rounds[0].RenderAttempts, 2)
	})

	t.Run("one try plus two extra attempts then fatal", func(t *testing.T) {
		producer := alwaysRender(bad)
		reviewer := &fakeNarrative{fn: func(int, models.ScriptReviewRequest) (any, error) {
			return reviewVerdict(true), nil
		}}

		loop := &ScriptLoop{Producer: producer, Reviewer: reviewer}
		_, err := loop.Run(context.Background(), scriptInput())
		require.Error(t, err)

		var exhausted *AttemptsExhaustedError
		require.True(t, errors.As(err, &exhausted))
		assert.Equal(t, StageRender, exhausted.Producer)
		assert.Equal(t, 1+DefaultRenderExtraAttempts, exhausted.Attempts)
		assert.Len(t, producer.calls, 1+DefaultRenderExtraAttempts)
		assert.Empty(t, reviewer.calls)
	})
}

func TestScriptLoop_PassesReferenceAndSpec(t *testing.T) {
	reference := goodVisual()
	in := scriptInput()
	in.Reference = &reference

	producer := alwaysRender(goodRender())
	reviewer := &fakeNarrative{fn: func(int, models.ScriptReviewRequest) (any, error) {
		return reviewVerdict(true), nil
	}}

	loop := &ScriptLoop{Producer: producer, Reviewer: reviewer}
	result, err := loop.Run(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, result.Passed)

	require.Len(t, producer.calls, 1)
	assert.Equal(t, &reference, producer.calls[0].Reference)
	assert.Equal(t, models.DefaultVideoSpec(), producer.calls[0].VideoSpec)
	assert.Equal(t, 1, reviewer.calls[0].Round)
	assert.Equal(t, DefaultScriptRounds, reviewer.calls[0].MaxRounds)
	assert.Len(t, reviewer.calls[0].RenderPlan.Scenes, 3)
}

func TestScriptLoop_ReviewerCallErrorsAreRetried(t *testing.T) {
	reviewer := &fakeNarrative{fn: func(call int, _ models.ScriptReviewRequest) (any, error) {
		if call == 1 {
			return nil, errors.New("upstream timeout")
		}
		return reviewVerdict(true), nil
	}}
	loop := &ScriptLoop{Producer: alwaysRender(goodRender()), Reviewer: reviewer}

	result, err := loop.Run(context.Background(), scriptInput())
	require.NoError(t, err)
	assert.True(t, result.Passed)

	attempts := result.Rounds[0].ReviewAttempts
	require.Len(t, attempts, 2)
	var callErr *AgentCallError
	require.True(t, errors.As(attempts[0].Err, &callErr))
	assert.Equal(t, StageNarrative, callErr.Producer)
}

func TestScriptLoop_ReviewRetryCarriesValidatorError(t *testing.T) {
	unusable := map[string]any{"passed": "maybe"}
	_, validationErr := contracts.ValidateReviewVerdict(unusable)
	require.Error(t, validationErr)

	reviewer := &fakeNarrative{fn: func(call int, _ models.ScriptReviewRequest) (any, error) {
		if call == 1 {
			return unusable, nil
		}
		return reviewVerdict(true), nil
	}}
	loop := &ScriptLoop{Producer: alwaysRender(goodRender()), Reviewer: reviewer}

	result, err := loop.Run(context.Background(), scriptInput())
	require.NoError(t, err)
	assert.True(t, result.Passed)

	require.Len(t, reviewer.calls, 2)
	assert.Empty(t, reviewer.calls[0].Notes)
	sent := strings.Join(reviewer.calls[1].Notes, "\n")
	assert.Contains(t, sent, validationErr.Error())
	assert.Contains(t, sent, verdictConstraints(false)[0])
}
