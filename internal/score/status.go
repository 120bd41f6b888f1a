package score

import "github.com/delib-org/Freedi-app-sub004/internal/model"

const (
	LookingGoodThreshold = 0.7
	NeedsFixingThreshold = 0.3
)

// ClassifyStatus maps a corroboration level onto its coarse label.
func ClassifyStatus(level float64) model.Status {
	switch {
	case level >= LookingGoodThreshold:
		return model.StatusLookingGood
	case level <= NeedsFixingThreshold:
		return model.StatusNeedsFixing
	default:
		return model.StatusUnderDiscussion
	}
}
