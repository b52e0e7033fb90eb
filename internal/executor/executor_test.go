package executor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mansourplus/crypto-trader/internal/ledger"
	"github.com/mansourplus/crypto-trader/internal/models"
)

type fakeTrades struct {
	failSymbols map[string]bool
	buys        []models.Transaction
	sells       []models.Transaction
}

func (f *fakeTrades) place(userID int64, symbol string, qty float64, typ models.TransactionType) (models.Transaction, error) {
	if f.failSymbols[symbol] {
		return models.Transaction{}, errors.New("exchange unavailable")
	}
	tx := models.Transaction{
		ID:       fmt.Sprintf("tx-%s-%s-%d", typ, symbol, len(f.buys)+len(f.sells)),
		UserID:   userID,
		Symbol:   symbol,
		Type:     typ,
		Quantity: qty,
		Price:    100,
		Status:   models.TransactionCompleted,
	}
	if typ == models.TransactionBuy {
		f.buys = append(f.buys, tx)
	} else {
		f.sells = append(f.sells, tx)
	}
	return tx, nil
}

func (f *fakeTrades) PlaceBuy(_ context.Context, userID int64, symbol string, qty float64) (models.Transaction, error) {
	return f.place(userID, symbol, qty, models.TransactionBuy)
}

func (f *fakeTrades) PlaceSell(_ context.Context, userID int64, symbol string, qty float64) (models.Transaction, error) {
	return f.place(userID, symbol, qty, models.TransactionSell)
}

type fakeLedger struct {
	balances map[string]float64
	avgBuys  map[string]float64
	err      error
}

func (f *fakeLedger) Balance(_ context.Context, _ int64, symbol string) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.balances[symbol], nil
}

func (f *fakeLedger) AverageBuyPrice(_ context.Context, _ int64, symbol string) (float64, error) {
	return f.avgBuys[symbol], nil
}

type fakeRecorder struct {
	inserted []models.Transaction
	fail     bool
}

func (f *fakeRecorder) Insert(_ context.Context, tx models.Transaction) error {
	if f.fail {
		return errors.New("insert failed")
	}
	f.inserted = append(f.inserted, tx)
	return nil
}

func newTestExecutor(trades *fakeTrades, led *fakeLedger, rec *fakeRecorder) *Executor {
	return New(trades, led, rec, zap.NewNop())
}

func asset(symbol string, price float64) models.Asset {
	return models.Asset{Symbol: symbol, CurrentPrice: price}
}

func TestDCAEmitsOneBuyPerAsset(t *testing.T) {
	trades := &fakeTrades{}
	rec := &fakeRecorder{}
	e := newTestExecutor(trades, &fakeLedger{}, rec)

	st := models.Strategy{ID: "s1", UserID: 1, Type: models.StrategyDCA, MaxInvestment: 300}
	assets := []models.Asset{asset("BTC", 100), asset("ETH", 50), asset("SOL", 25)}

	res, err := e.Execute(context.Background(), st, assets)
	require.NoError(t, err)
	assert.True(t, res.Success)
	require.Len(t, res.Intents, 3)

	// 300 split over 3 assets: 100 each, quantity = 100 / price.
	assert.InDelta(t, 1.0, res.Intents[0].Quantity, 1e-9)
	assert.InDelta(t, 2.0, res.Intents[1].Quantity, 1e-9)
	assert.InDelta(t, 4.0, res.Intents[2].Quantity, 1e-9)

	for _, in := range res.Intents {
		assert.Equal(t, models.TransactionBuy, in.Side)
		assert.Equal(t, models.TriggerDCA, in.Trigger)
		assert.NotEmpty(t, in.TransactionID)
	}

	// Every intent corresponds to a recorded transaction tagged with
	// the originating strategy.
	require.Len(t, rec.inserted, 3)
	for _, tx := range rec.inserted {
		assert.Equal(t, "s1", tx.StrategyID)
	}
}

func TestDCAFailsFastWithoutBudget(t *testing.T) {
	e := newTestExecutor(&fakeTrades{}, &fakeLedger{}, &fakeRecorder{})
	st := models.Strategy{ID: "s1", Type: models.StrategyDCA, MaxInvestment: 0}

	res, err := e.Execute(context.Background(), st, []models.Asset{asset("BTC", 100)})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Empty(t, res.Intents)
	assert.Contains(t, res.Message, "max investment")
}

func TestDCAFailsFastWithoutAssets(t *testing.T) {
	e := newTestExecutor(&fakeTrades{}, &fakeLedger{}, &fakeRecorder{})
	st := models.Strategy{ID: "s1", Type: models.StrategyDCA, MaxInvestment: 100}

	res, err := e.Execute(context.Background(), st, nil)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Empty(t, res.Intents)
}

func TestDCASwallowsPerAssetFailures(t *testing.T) {
	trades := &fakeTrades{failSymbols: map[string]bool{"ETH": true}}
	e := newTestExecutor(trades, &fakeLedger{}, &fakeRecorder{})
	st := models.Strategy{ID: "s1", UserID: 1, Type: models.StrategyDCA, MaxInvestment: 300}

	res, err := e.Execute(context.Background(), st, []models.Asset{asset("BTC", 100), asset("ETH", 50), asset("SOL", 25)})
	require.NoError(t, err)
	assert.True(t, res.Success, "partial success when at least one order lands")
	assert.Len(t, res.Intents, 2)
	assert.Contains(t, res.Message, "skipped")
}

func TestDCAAllOrdersFailing(t *testing.T) {
	trades := &fakeTrades{failSymbols: map[string]bool{"BTC": true, "ETH": true}}
	e := newTestExecutor(trades, &fakeLedger{}, &fakeRecorder{})
	st := models.Strategy{ID: "s1", Type: models.StrategyDCA, MaxInvestment: 100}

	res, err := e.Execute(context.Background(), st, []models.Asset{asset("BTC", 100), asset("ETH", 50)})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Empty(t, res.Intents)
}

func TestDCAUnrecordedOrderEmitsNoIntent(t *testing.T) {
	trades := &fakeTrades{}
	e := newTestExecutor(trades, &fakeLedger{}, &fakeRecorder{fail: true})
	st := models.Strategy{ID: "s1", Type: models.StrategyDCA, MaxInvestment: 100}

	res, err := e.Execute(context.Background(), st, []models.Asset{asset("BTC", 100)})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Empty(t, res.Intents, "intents must map to recorded transactions")
}

func TestTakeProfitStopLossTriggers(t *testing.T) {
	cases := []struct {
		name         string
		currentPrice float64
		wantTrigger  models.IntentTrigger
		wantSell     bool
	}{
		{"take-profit fires at 111", 111, models.TriggerTakeProfit, true},
		{"stop-loss fires at 94", 94, models.TriggerStopLoss, true},
		{"nothing fires at 100", 100, "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			trades := &fakeTrades{}
			led := &fakeLedger{
				balances: map[string]float64{"BTC": 2},
				avgBuys:  map[string]float64{"BTC": 100},
			}
			e := newTestExecutor(trades, led, &fakeRecorder{})
			st := models.Strategy{
				ID: "s1", UserID: 1,
				Type:          models.StrategyTakeProfitStopLoss,
				TakeProfitPct: 10,
				StopLossPct:   5,
			}

			res, err := e.Execute(context.Background(), st, []models.Asset{asset("BTC", tc.currentPrice)})
			require.NoError(t, err)
			assert.True(t, res.Success, "absence of triggers is not an error")

			if !tc.wantSell {
				assert.Empty(t, res.Intents)
				assert.Contains(t, res.Message, "no take-profit or stop-loss threshold reached")
				return
			}
			require.Len(t, res.Intents, 1)
			in := res.Intents[0]
			assert.Equal(t, models.TransactionSell, in.Side)
			assert.Equal(t, tc.wantTrigger, in.Trigger)
			assert.InDelta(t, 2.0, in.Quantity, 1e-9, "sells the full derived balance")
			assert.Contains(t, res.Message, "1 sell(s) triggered")
		})
	}
}

func TestTakeProfitStopLossRequiresBothThresholds(t *testing.T) {
	e := newTestExecutor(&fakeTrades{}, &fakeLedger{}, &fakeRecorder{})

	for _, st := range []models.Strategy{
		{ID: "s1", Type: models.StrategyTakeProfitStopLoss, TakeProfitPct: 10},
		{ID: "s2", Type: models.StrategyTakeProfitStopLoss, StopLossPct: 5},
		{ID: "s3", Type: models.StrategyTakeProfitStopLoss},
	} {
		res, err := e.Execute(context.Background(), st, []models.Asset{asset("BTC", 100)})
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Empty(t, res.Intents)
	}
}

func TestTakeProfitStopLossSkipsWithoutHoldings(t *testing.T) {
	trades := &fakeTrades{}
	led := &fakeLedger{
		balances: map[string]float64{"BTC": 0, "ETH": 3},
		avgBuys:  map[string]float64{"ETH": 0}, // holdings without recorded buys
	}
	e := newTestExecutor(trades, led, &fakeRecorder{})
	st := models.Strategy{ID: "s1", Type: models.StrategyTakeProfitStopLoss, TakeProfitPct: 10, StopLossPct: 5}

	res, err := e.Execute(context.Background(), st, []models.Asset{asset("BTC", 500), asset("ETH", 500)})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Empty(t, res.Intents)
	assert.Empty(t, trades.sells)
}

func TestTakeProfitStopLossLedgerInconsistencyIsFatal(t *testing.T) {
	led := &fakeLedger{err: fmt.Errorf("balance: %w", ledger.ErrInconsistent)}
	e := newTestExecutor(&fakeTrades{}, led, &fakeRecorder{})
	st := models.Strategy{ID: "s1", Type: models.StrategyTakeProfitStopLoss, TakeProfitPct: 10, StopLossPct: 5}

	res, err := e.Execute(context.Background(), st, []models.Asset{asset("BTC", 100)})
	require.ErrorIs(t, err, ledger.ErrInconsistent)
	assert.False(t, res.Success)
}

func TestTakeProfitStopLossSkipsTransientBalanceErrors(t *testing.T) {
	led := &fakeLedger{err: errors.New("connection reset")}
	e := newTestExecutor(&fakeTrades{}, led, &fakeRecorder{})
	st := models.Strategy{ID: "s1", Type: models.StrategyTakeProfitStopLoss, TakeProfitPct: 10, StopLossPct: 5}

	res, err := e.Execute(context.Background(), st, []models.Asset{asset("BTC", 100)})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Empty(t, res.Intents)
}

func TestPlaceholderStrategyTypes(t *testing.T) {
	e := newTestExecutor(&fakeTrades{}, &fakeLedger{}, &fakeRecorder{})

	for _, typ := range []models.StrategyType{models.StrategyMarketSignal, models.StrategyCustom} {
		res, err := e.Execute(context.Background(), models.Strategy{ID: "s1", Type: typ}, nil)
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Empty(t, res.Intents)
		assert.Contains(t, res.Message, "not implemented")
	}
}

func TestUnknownStrategyType(t *testing.T) {
	e := newTestExecutor(&fakeTrades{}, &fakeLedger{}, &fakeRecorder{})

	res, err := e.Execute(context.Background(), models.Strategy{ID: "s1", Type: "martingale"}, nil)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "unsupported strategy type")
}
