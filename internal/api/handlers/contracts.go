package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/Conceptual-Machines/reel-director/internal/contracts"
	"github.com/Conceptual-Machines/reel-director/internal/models"
	"github.com/gin-gonic/gin"
)

// Artifact kinds accepted by the validate endpoint
const (
	kindCreativePlan    = "creative-plan"
	kindVisualScript    = "visual-script"
	kindRenderPlan      = "render-plan"
	kindMusic           = "music"
	kindDirectorVerdict = "director-verdict"
	kindReviewVerdict   = "review-verdict"
	kindReviewLog       = "review-log"
)

// ValidateRequest carries an artifact and the expectations it is checked against.
// Omitted rules switch the matching checks off.
type ValidateRequest struct {
	Artifact json.RawMessage `json:"artifact"`
	Rules    struct {
		DurationSec float64           `json:"durationSec"`
		PhotoRefs   []string          `json:"photoRefs"`
		VideoSpec   *models.VideoSpec `json:"videoSpec"`
	} `json:"rules"`
}

type ContractsHandler struct {
	defaultSpec models.VideoSpec
}

func NewContractsHandler(defaultSpec models.VideoSpec) *ContractsHandler {
	return &ContractsHandler{defaultSpec: defaultSpec}
}

// Validate checks one artifact and lists every violation found
// POST /api/v1/contracts/:kind/validate
func (h *ContractsHandler) Validate(c *gin.Context) {
	kind := c.Param("kind")

	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Artifact) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "artifact is required"})
		return
	}

	var artifact any
	if err := json.Unmarshal(req.Artifact, &artifact); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "artifact is not valid JSON: " + err.Error()})
		return
	}

	spec := h.defaultSpec
	if req.Rules.VideoSpec != nil {
		spec = *req.Rules.VideoSpec
	}
	rules := contracts.NewRules(spec, req.Rules.DurationSec, req.Rules.PhotoRefs)

	validated, err := validateArtifact(kind, artifact, req.Artifact, rules)
	if err == errUnknownKind {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown artifact kind %q", kind)})
		return
	}
	if err != nil {
		log.Printf("🔎 Contract check failed for %s: %v", kind, err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"valid":      false,
			"kind":       kind,
			"phase":      contractPhase(err),
			"error":      err.Error(),
			"violations": contracts.Violations(err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":    true,
		"kind":     kind,
		"artifact": validated,
	})
}

var errUnknownKind = fmt.Errorf("unknown artifact kind")

// contractPhase names the validation pass that rejected the artifact
func contractPhase(err error) string {
	switch {
	case contracts.IsStructural(err):
		return string(contracts.KindStructural)
	case contracts.IsSemantic(err):
		return string(contracts.KindSemantic)
	default:
		return ""
	}
}

func validateArtifact(kind string, artifact any, raw json.RawMessage, rules contracts.Rules) (any, error) {
	switch kind {
	case kindCreativePlan:
		return contracts.ValidateCreativePlan(artifact, rules)
	case kindVisualScript:
		return contracts.ValidateVisualScript(artifact, rules)
	case kindRenderPlan:
		return contracts.ValidateRenderPlan(artifact, rules)
	case kindMusic:
		return contracts.ValidateMusicComposition(artifact, rules)
	case kindDirectorVerdict:
		return contracts.ValidateDirectorVerdict(artifact)
	case kindReviewVerdict:
		return contracts.ValidateReviewVerdict(artifact)
	case kindReviewLog:
		var reviewLog models.ReviewLog
		if err := json.Unmarshal(raw, &reviewLog); err != nil {
			return nil, fmt.Errorf("review log: %w", err)
		}
		if err := contracts.ValidateReviewLog(reviewLog); err != nil {
			return nil, err
		}
		return reviewLog, nil
	default:
		return nil, errUnknownKind
	}
}
