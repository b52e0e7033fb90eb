package runner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mansourplus/crypto-trader/internal/models"
	"github.com/mansourplus/crypto-trader/internal/recommend"
)

type fakeStrategies struct {
	mu           sync.Mutex
	active       []models.Strategy
	activeErr    error
	lastExecuted map[string]time.Time
	statuses     map[string]models.StrategyStatus
}

func newFakeStrategies(active ...models.Strategy) *fakeStrategies {
	return &fakeStrategies{
		active:       active,
		lastExecuted: make(map[string]time.Time),
		statuses:     make(map[string]models.StrategyStatus),
	}
}

func (f *fakeStrategies) Active(context.Context) ([]models.Strategy, error) {
	return f.active, f.activeErr
}

func (f *fakeStrategies) UpdateLastExecuted(_ context.Context, id string, executedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastExecuted[id] = executedAt
	return nil
}

func (f *fakeStrategies) UpdateStatus(_ context.Context, id string, status models.StrategyStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[id] = status
	return nil
}

type fakeMarket struct {
	prices      map[string]float64
	histories   map[string][]models.PricePoint
	top         []models.Asset
	historyErrs map[string]error
}

func (f *fakeMarket) CurrentPrice(_ context.Context, symbol string) (models.Asset, error) {
	price, ok := f.prices[symbol]
	if !ok {
		return models.Asset{}, errors.New("no quote")
	}
	return models.Asset{Symbol: symbol, CurrentPrice: price}, nil
}

func (f *fakeMarket) PriceHistory(_ context.Context, symbol, _ string, _ int) ([]models.PricePoint, error) {
	if err := f.historyErrs[symbol]; err != nil {
		return nil, err
	}
	return f.histories[symbol], nil
}

func (f *fakeMarket) TopAssets(context.Context, int) ([]models.Asset, error) {
	return f.top, nil
}

type fakeExecutor struct {
	mu       sync.Mutex
	executed []string
	assets   map[string][]models.Asset
	errs     map[string]error
	fail     map[string]bool
}

func (f *fakeExecutor) Execute(_ context.Context, st models.Strategy, assets []models.Asset) (models.ExecutionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executed = append(f.executed, st.ID)
	if f.assets == nil {
		f.assets = make(map[string][]models.Asset)
	}
	f.assets[st.ID] = assets
	res := models.ExecutionResult{
		StrategyID: st.ID,
		Success:    !f.fail[st.ID],
		ExecutedAt: time.Now().UTC(),
	}
	if err := f.errs[st.ID]; err != nil {
		res.Success = false
		return res, err
	}
	return res, nil
}

func activeStrategy(id string, symbols ...string) models.Strategy {
	return models.Strategy{
		ID:      id,
		Type:    models.StrategyDCA,
		Status:  models.StrategyActive,
		Symbols: symbols,
	}
}

func newTestRunner(strategies *fakeStrategies, market *fakeMarket, exec *fakeExecutor) *Runner {
	log := zap.NewNop()
	return New(Config{Workers: 2}, strategies, market, exec, recommend.NewAggregator(log), log)
}

func TestRunBatchExecutesDueStrategies(t *testing.T) {
	strategies := newFakeStrategies(
		activeStrategy("dca-1", "BTC"),
		activeStrategy("dca-2", "ETH"),
	)
	market := &fakeMarket{prices: map[string]float64{"BTC": 50000, "ETH": 3000}}
	exec := &fakeExecutor{}

	results, err := newTestRunner(strategies, market, exec).RunBatch(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.ElementsMatch(t, []string{"dca-1", "dca-2"}, exec.executed)
	assert.Contains(t, strategies.lastExecuted, "dca-1")
	assert.Contains(t, strategies.lastExecuted, "dca-2")
	assert.Empty(t, strategies.statuses)
}

func TestRunBatchSkipsNotDueStrategies(t *testing.T) {
	recent := time.Now().UTC().Add(-time.Minute)
	notDue := activeStrategy("dca-1", "BTC")
	notDue.FrequencyMinutes = 60
	notDue.LastExecutedAt = &recent

	strategies := newFakeStrategies(notDue)
	market := &fakeMarket{prices: map[string]float64{"BTC": 50000}}
	exec := &fakeExecutor{}

	results, err := newTestRunner(strategies, market, exec).RunBatch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, exec.executed)
}

func TestRunBatchSkipsSymbolsWithoutQuotes(t *testing.T) {
	strategies := newFakeStrategies(activeStrategy("dca-1", "BTC", "UNKNOWN"))
	market := &fakeMarket{prices: map[string]float64{"BTC": 50000}}
	exec := &fakeExecutor{}

	_, err := newTestRunner(strategies, market, exec).RunBatch(context.Background())
	require.NoError(t, err)

	require.Len(t, exec.assets["dca-1"], 1)
	assert.Equal(t, "BTC", exec.assets["dca-1"][0].Symbol)
}

func TestRunBatchFreezesStrategyOnFatalError(t *testing.T) {
	strategies := newFakeStrategies(
		activeStrategy("bad", "BTC"),
		activeStrategy("good", "ETH"),
	)
	market := &fakeMarket{prices: map[string]float64{"BTC": 50000, "ETH": 3000}}
	exec := &fakeExecutor{errs: map[string]error{"bad": errors.New("balance below zero")}}

	results, err := newTestRunner(strategies, market, exec).RunBatch(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, models.StrategyFailed, strategies.statuses["bad"])
	assert.NotContains(t, strategies.statuses, "good")
	// Both attempts advance the schedule regardless of outcome.
	assert.Contains(t, strategies.lastExecuted, "bad")
	assert.Contains(t, strategies.lastExecuted, "good")
}

func TestRunBatchPropagatesLoadError(t *testing.T) {
	strategies := newFakeStrategies()
	strategies.activeErr = errors.New("db down")

	_, err := newTestRunner(strategies, &fakeMarket{}, &fakeExecutor{}).RunBatch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestRecommendTopSkipsAssetsWithoutHistory(t *testing.T) {
	history := make([]models.PricePoint, 0, 60)
	ts := time.Now().UTC().Add(-60 * time.Hour)
	for i := 0; i < 60; i++ {
		close := 100 + float64(i)
		history = append(history, models.PricePoint{
			Timestamp: ts.Add(time.Duration(i) * time.Hour),
			Open:      close,
			High:      close + 1,
			Low:       close - 1,
			Close:     close,
		})
	}
	market := &fakeMarket{
		top: []models.Asset{
			{Symbol: "BTC", CurrentPrice: 159},
			{Symbol: "ETH", CurrentPrice: 3000},
		},
		histories:   map[string][]models.PricePoint{"BTC": history},
		historyErrs: map[string]error{"ETH": errors.New("rate limited")},
	}

	recs, err := newTestRunner(newFakeStrategies(), market, &fakeExecutor{}).RecommendTop(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "BTC", recs[0].Asset.Symbol)
	assert.NotEmpty(t, recs[0].Reasoning)
}
