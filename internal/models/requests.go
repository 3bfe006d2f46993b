package models

// PlanRequest is the input of the creative planner.
// Notes carry retry reminders after a rejected plan.
type PlanRequest struct {
	Brief  NarrativeBrief `json:"brief"`
	Photos []Photo        `json:"photos"`
	Notes  []string       `json:"notes,omitempty"`
}

// VisualRequest is the input of the visual producer
type VisualRequest struct {
	Plan   CreativePlan `json:"plan"`
	Photos []Photo      `json:"photos"`
	Notes  []string     `json:"notes,omitempty"`
}

// MusicRequest is the input of the music producer
type MusicRequest struct {
	Plan  CreativePlan `json:"plan"`
	Notes []string     `json:"notes,omitempty"`
}

// RenderPlanRequest is the input of the render plan producer.
// Reference carries the approved visual script when one exists.
type RenderPlanRequest struct {
	Brief     NarrativeBrief `json:"brief"`
	Photos    []Photo        `json:"photos"`
	VideoSpec VideoSpec      `json:"videoSpec"`
	Notes     []string       `json:"notes,omitempty"`
	Reference *VisualScript  `json:"reference,omitempty"`
}

// CreativeReviewRequest is the input of the creative director.
// Notes carry retry reminders after an unusable verdict.
type CreativeReviewRequest struct {
	Brief          NarrativeBrief   `json:"brief"`
	Plan           CreativePlan     `json:"plan"`
	Visual         VisualScript     `json:"visual"`
	Music          MusicComposition `json:"music"`
	AudioAvailable bool             `json:"audioAvailable"`
	Round          int              `json:"round"`
	MaxRounds      int              `json:"maxRounds"`
	Notes          []string         `json:"notes,omitempty"`
}

// ScriptReviewRequest is the input of the narrative reviewer
type ScriptReviewRequest struct {
	Brief      NarrativeBrief `json:"brief"`
	RenderPlan RenderPlan     `json:"renderPlan"`
	Round      int            `json:"round"`
	MaxRounds  int            `json:"maxRounds"`
	Notes      []string       `json:"notes,omitempty"`
}
