package contracts

import (
	"testing"

	"github.com/Conceptual-Machines/reel-director/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateReviewVerdict(t *testing.T) {
	tests := []struct {
		name    string
		input   map[string]any
		wantErr bool
		paths   []string
	}{
		{
			name: "passed",
			input: map[string]any{
				"passed": true, "summary": "faithful to the brief",
				"issues": []any{}, "requiredChanges": []any{},
			},
		},
		{
			name: "failed with changes",
			input: map[string]any{
				"passed": false, "summary": "the ending drags",
				"issues":          []any{map[string]any{"category": "pacing", "description": "last scene too long"}},
				"requiredChanges": []any{"shorten scene 4 to 3 seconds"},
			},
		},
		{
			name: "wrong types",
			input: map[string]any{
				"passed": "no", "summary": "",
				"issues":          []any{map[string]any{"category": "pacing"}},
				"requiredChanges": []any{42.0},
			},
			wantErr: true,
			paths:   []string{"passed", "summary", "issues[0].description", "requiredChanges[0]"},
		},
		{
			name: "failed without changes",
			input: map[string]any{
				"passed": false, "summary": "not good", "issues": []any{}, "requiredChanges": []any{},
			},
			wantErr: true,
			paths:   []string{"requiredChanges"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, err := ValidateReviewVerdict(tt.input)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tt.input["passed"], verdict.Passed)
				assert.NotNil(t, verdict.RequiredChanges)
				return
			}
			require.Error(t, err)
			assert.ElementsMatch(t, tt.paths, paths(Violations(err)))
		})
	}
}

func TestValidateDirectorVerdict(t *testing.T) {
	t.Run("targets are preserved", func(t *testing.T) {
		verdict, err := ValidateDirectorVerdict(map[string]any{
			"passed":  false,
			"summary": "music fights the visuals",
			"issues": []any{
				map[string]any{"target": "music", "category": "mood", "description": "too upbeat"},
			},
			"requiredChanges": []any{
				map[string]any{"target": "music", "instruction": "use a slower tempo"},
				map[string]any{"target": "visual", "instruction": "hold the harbor shot longer"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, []models.TargetedChange{
			{Target: models.TargetMusic, Instruction: "use a slower tempo"},
			{Target: models.TargetVisual, Instruction: "hold the harbor shot longer"},
		}, verdict.RequiredChanges)
		assert.Equal(t, models.TargetMusic, verdict.Issues[0].Target)
	})

	t.Run("render is not a director target", func(t *testing.T) {
		_, err := ValidateDirectorVerdict(map[string]any{
			"passed":          false,
			"summary":         "x",
			"issues":          []any{},
			"requiredChanges": []any{map[string]any{"target": "render", "instruction": "y"}},
		})
		require.Error(t, err)
		assert.True(t, IsStructural(err))
		assert.Equal(t, []string{"requiredChanges[0].target"}, paths(Violations(err)))
	})

	t.Run("missing arrays", func(t *testing.T) {
		_, err := ValidateDirectorVerdict(map[string]any{"passed": true, "summary": "ok"})
		require.Error(t, err)
		assert.ElementsMatch(t, []string{"issues", "requiredChanges"}, paths(Violations(err)))
	})
}

func TestValidateReviewLog(t *testing.T) {
	passed := models.ReviewRound{Round: 2, Passed: true, Summary: "ok"}
	failed := models.ReviewRound{
		Round: 1, Summary: "no",
		RequiredChanges: []models.TargetedChange{{Target: models.TargetRender, Instruction: "fix"}},
	}

	tests := []struct {
		name    string
		log     models.ReviewLog
		wantErr string
	}{
		{name: "empty", log: models.ReviewLog{}},
		{name: "passed on round two", log: models.ReviewLog{Rounds: []models.ReviewRound{failed, passed}, FinalPassed: true}},
		{name: "never passed", log: models.ReviewLog{Rounds: []models.ReviewRound{failed}, Warning: "did not pass"}},
		{
			name:    "claims pass without a passing round",
			log:     models.ReviewLog{Rounds: []models.ReviewRound{failed}, FinalPassed: true},
			wantErr: "finalPassed: is true but no round passed",
		},
		{
			name:    "rounds out of order",
			log:     models.ReviewLog{Rounds: []models.ReviewRound{passed, failed}},
			wantErr: "rounds[1].round: must be greater than 2, got 1",
		},
		{
			name: "unknown target",
			log: models.ReviewLog{Rounds: []models.ReviewRound{{
				Round: 1, Issues: []models.TargetedIssue{{Target: "lighting", Description: "dark"}},
			}}},
			wantErr: `rounds[0].issues[0].target: unknown target "lighting"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateReviewLog(tt.log)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
