package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mansourplus/crypto-trader/internal/models"
)

func strat(id string, status models.StrategyStatus, freqMinutes int, last *time.Time) models.Strategy {
	return models.Strategy{ID: id, Status: status, FrequencyMinutes: freqMinutes, LastExecutedAt: last}
}

func ids(strategies []models.Strategy) []string {
	out := make([]string, 0, len(strategies))
	for _, s := range strategies {
		out = append(out, s.ID)
	}
	return out
}

func TestDue(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ago := func(d time.Duration) *time.Time {
		ts := now.Add(-d)
		return &ts
	}

	cases := []struct {
		name       string
		strategies []models.Strategy
		want       []string
	}{
		{
			name:       "never executed is due",
			strategies: []models.Strategy{strat("a", models.StrategyActive, 60, nil)},
			want:       []string{"a"},
		},
		{
			name:       "59 minutes of a 60 minute frequency is not due",
			strategies: []models.Strategy{strat("a", models.StrategyActive, 60, ago(59*time.Minute))},
			want:       []string{},
		},
		{
			name:       "exactly at the frequency boundary is due",
			strategies: []models.Strategy{strat("a", models.StrategyActive, 60, ago(60*time.Minute))},
			want:       []string{"a"},
		},
		{
			name:       "past the boundary is due",
			strategies: []models.Strategy{strat("a", models.StrategyActive, 60, ago(2*time.Hour))},
			want:       []string{"a"},
		},
		{
			name:       "no frequency and already executed is never due again",
			strategies: []models.Strategy{strat("a", models.StrategyActive, 0, ago(365*24*time.Hour))},
			want:       []string{},
		},
		{
			name:       "no frequency but never executed is due once",
			strategies: []models.Strategy{strat("a", models.StrategyActive, 0, nil)},
			want:       []string{"a"},
		},
		{
			name: "inactive strategies are filtered regardless of schedule",
			strategies: []models.Strategy{
				strat("a", models.StrategyPaused, 60, nil),
				strat("b", models.StrategyDraft, 60, nil),
				strat("c", models.StrategyCompleted, 60, nil),
				strat("d", models.StrategyFailed, 60, nil),
			},
			want: []string{},
		},
		{
			name: "mixed set",
			strategies: []models.Strategy{
				strat("fresh", models.StrategyActive, 60, nil),
				strat("stale", models.StrategyActive, 30, ago(45*time.Minute)),
				strat("recent", models.StrategyActive, 60, ago(10*time.Minute)),
				strat("oneshot", models.StrategyActive, 0, ago(time.Minute)),
				strat("paused", models.StrategyPaused, 30, ago(45*time.Minute)),
			},
			want: []string{"fresh", "stale"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(Due(tc.strategies, now)))
		})
	}
}
