package classify

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/delib-org/Freedi-app-sub004/internal/model"
)

type verdict struct {
	EvidenceType       string   `json:"evidenceType"`
	CorroborationScore *float64 `json:"corroborationScore"`
	Support            *float64 `json:"support"` // legacy [-1,1] scale
}

// ParseResponse extracts a verdict from model output. The JSON object may be
// wrapped in prose or a code fence. A legacy support value is remapped to
// the [0,1] corroboration scale.
func ParseResponse(text string) (*Result, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, errors.New("no JSON object in response")
	}

	var v verdict
	if err := json.Unmarshal([]byte(text[start:end+1]), &v); err != nil {
		return nil, fmt.Errorf("decode verdict: %w", err)
	}

	evidenceType, ok := model.ParseEvidenceType(v.EvidenceType)
	if !ok {
		return nil, fmt.Errorf("unknown evidence type %q", v.EvidenceType)
	}

	var score float64
	switch {
	case v.CorroborationScore != nil:
		score = *v.CorroborationScore
	case v.Support != nil:
		score = model.CorroborationFromSupport(*v.Support)
	default:
		return nil, errors.New("verdict has neither corroborationScore nor support")
	}

	if math.IsNaN(score) || score < 0 || score > 1 {
		return nil, fmt.Errorf("corroboration score %v outside [0,1]", score)
	}

	return &Result{EvidenceType: evidenceType, CorroborationScore: score}, nil
}
