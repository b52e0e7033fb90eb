package schedule

import (
	"time"

	"github.com/mansourplus/crypto-trader/internal/models"
)

// Due filters the strategies that should run at the given instant.
// A strategy is due when it is active and either has never executed or
// its configured frequency has elapsed since the last execution.
//
// Strategies with no configured frequency run exactly once: after the
// first execution stamps LastExecutedAt they are never selected again.
func Due(strategies []models.Strategy, now time.Time) []models.Strategy {
	due := make([]models.Strategy, 0, len(strategies))
	for _, st := range strategies {
		if st.Status != models.StrategyActive {
			continue
		}
		if st.LastExecutedAt == nil {
			due = append(due, st)
			continue
		}
		if st.FrequencyMinutes <= 0 {
			// One-shot: already executed, never again.
			continue
		}
		if !now.Before(st.LastExecutedAt.Add(st.Frequency())) {
			due = append(due, st)
		}
	}
	return due
}
