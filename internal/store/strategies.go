package store

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jackc/pgx/v5"

	"github.com/mansourplus/crypto-trader/internal/models"
	"github.com/mansourplus/crypto-trader/pkg/db"
)

// StrategyStore persists strategy definitions. The execution engine
// touches only last_executed_at and status; everything else is owner
// territory.
type StrategyStore struct {
	db db.TxManager
}

func NewStrategyStore(m db.TxManager) *StrategyStore {
	return &StrategyStore{db: m}
}

const insertStrategySQL = `
INSERT INTO strategies
	(id, user_id, type, status, symbols, created_at, updated_at, last_executed_at, params,
	 max_investment, take_profit_pct, stop_loss_pct, frequency_minutes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

func (s *StrategyStore) Insert(ctx context.Context, st models.Strategy) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("StrategyStore.Insert: %w", err)
		}
	}()

	var params []byte
	params, err = sonic.Marshal(st.Params)
	if err != nil {
		return err
	}
	return s.db.RunMaster(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, insertStrategySQL,
			st.ID, st.UserID, st.Type, st.Status, st.Symbols, st.CreatedAt, st.UpdatedAt,
			st.LastExecutedAt, params,
			st.MaxInvestment, st.TakeProfitPct, st.StopLossPct, st.FrequencyMinutes)
		return err
	})
}

const selectStrategySQL = `
SELECT id, user_id, type, status, symbols, created_at, updated_at, last_executed_at, params,
       max_investment, take_profit_pct, stop_loss_pct, frequency_minutes
FROM strategies`

// Active returns every strategy in active status; the schedule gate
// decides which of them are actually due.
func (s *StrategyStore) Active(ctx context.Context) (strategies []models.Strategy, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("StrategyStore.Active: %w", err)
		}
	}()

	rows, err := s.db.Conn().Query(ctx, selectStrategySQL+` WHERE status = 'active' ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	return scanStrategies(rows)
}

func (s *StrategyStore) GetByID(ctx context.Context, id string) (st *models.Strategy, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("StrategyStore.GetByID: %w", err)
		}
	}()

	rows, err := s.db.Conn().Query(ctx, selectStrategySQL+` WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	strategies, err := scanStrategies(rows)
	if err != nil {
		return nil, err
	}
	if len(strategies) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &strategies[0], nil
}

const updateLastExecutedSQL = `
UPDATE strategies SET last_executed_at = $2, updated_at = $2 WHERE id = $1`

// UpdateLastExecuted advances the execution timestamp in a single
// atomic statement; the gate reads whatever committed last.
func (s *StrategyStore) UpdateLastExecuted(ctx context.Context, id string, ts time.Time) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("StrategyStore.UpdateLastExecuted: %w", err)
		}
	}()

	return s.db.RunMaster(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, updateLastExecutedSQL, id, ts)
		return err
	})
}

const updateStrategyStatusSQL = `
UPDATE strategies SET status = $2, updated_at = now() WHERE id = $1`

func (s *StrategyStore) UpdateStatus(ctx context.Context, id string, status models.StrategyStatus) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("StrategyStore.UpdateStatus: %w", err)
		}
	}()

	return s.db.RunMaster(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, updateStrategyStatusSQL, id, status)
		return err
	})
}

func scanStrategies(rows pgx.Rows) ([]models.Strategy, error) {
	defer rows.Close()

	strategies := make([]models.Strategy, 0)
	for rows.Next() {
		var (
			st     models.Strategy
			params []byte
		)
		if err := rows.Scan(
			&st.ID, &st.UserID, &st.Type, &st.Status, &st.Symbols, &st.CreatedAt, &st.UpdatedAt,
			&st.LastExecutedAt, &params,
			&st.MaxInvestment, &st.TakeProfitPct, &st.StopLossPct, &st.FrequencyMinutes,
		); err != nil {
			return nil, err
		}
		if len(params) > 0 {
			if err := sonic.Unmarshal(params, &st.Params); err != nil {
				return nil, fmt.Errorf("decode params for %s: %w", st.ID, err)
			}
		}
		strategies = append(strategies, st)
	}
	return strategies, rows.Err()
}
