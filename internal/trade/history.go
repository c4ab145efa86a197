package trade

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"invest-dashboard/internal/logger"
	"invest-dashboard/internal/market"
	"invest-dashboard/internal/types"
)

// DefaultHistoryLimit is used when a caller asks for a non-positive limit.
const DefaultHistoryLimit = 50

// Record is one executed auto-trade.
type Record struct {
	ID         string `json:"id"`
	Timestamp  string `json:"timestamp"`
	OrderType  string `json:"order_type"`
	StockCode  string `json:"stock_code"`
	StockName  string `json:"stock_name"`
	Quantity   int    `json:"quantity"`
	Price      int64  `json:"price"`
	Reason     string `json:"reason"`
	StrategyID string `json:"strategy_id"`
}

// NewRecord stamps a record with the KST time of now. Ids have second
// resolution and are not unique.
func NewRecord(now time.Time, side types.Side, st Strategy, qty int, price int64, reason string) Record {
	now = now.In(market.KST)
	return Record{
		ID:         "trade_" + now.Format("20060102150405"),
		Timestamp:  now.Format("2006-01-02 15:04:05"),
		OrderType:  string(side),
		StockCode:  st.StockCode,
		StockName:  st.StockName,
		Quantity:   qty,
		Price:      price,
		Reason:     reason,
		StrategyID: st.ID,
	}
}

// History stores executed trades.
type History interface {
	Record(ctx context.Context, r Record) error
	// Recent returns at most limit records, newest first.
	Recent(ctx context.Context, limit int) ([]Record, error)
	Close() error
}

// SQLiteHistory persists records in a SQLite database.
type SQLiteHistory struct {
	db *sql.DB
	mu sync.Mutex
}

var _ History = (*SQLiteHistory)(nil)

// OpenSQLiteHistory opens (or creates) the database at path and runs
// migrations.
func OpenSQLiteHistory(ctx context.Context, path string) (*SQLiteHistory, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	h := &SQLiteHistory{db: db}
	if err := h.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info(ctx, "Trade history opened", "path", path)
	return h, nil
}

func (h *SQLiteHistory) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS trades (
			seq         INTEGER PRIMARY KEY AUTOINCREMENT,
			id          TEXT NOT NULL,
			timestamp   TEXT NOT NULL,
			order_type  TEXT NOT NULL,
			stock_code  TEXT NOT NULL,
			stock_name  TEXT,
			quantity    INTEGER NOT NULL,
			price       INTEGER NOT NULL,
			reason      TEXT,
			strategy_id TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_strategy ON trades(strategy_id)`,
	}
	for _, s := range stmts {
		if _, err := h.db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (h *SQLiteHistory) Record(ctx context.Context, r Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.db.ExecContext(ctx, `INSERT INTO trades
		(id, timestamp, order_type, stock_code, stock_name, quantity, price, reason, strategy_id)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		r.ID, r.Timestamp, r.OrderType, r.StockCode, r.StockName,
		r.Quantity, r.Price, r.Reason, r.StrategyID,
	)
	if err != nil {
		return fmt.Errorf("record trade: %w", err)
	}
	return nil
}

func (h *SQLiteHistory) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	rows, err := h.db.QueryContext(ctx, `SELECT
		id, timestamp, order_type, stock_code, stock_name, quantity, price, reason, strategy_id
		FROM trades ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var r Record
		var name, reason, strategy sql.NullString
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.OrderType, &r.StockCode, &name,
			&r.Quantity, &r.Price, &reason, &strategy); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		r.StockName, r.Reason, r.StrategyID = name.String, reason.String, strategy.String
		out = append(out, r)
	}
	return out, rows.Err()
}

func (h *SQLiteHistory) Close() error {
	return h.db.Close()
}

// MemoryHistory keeps records in process; used when no database is configured.
type MemoryHistory struct {
	mu      sync.Mutex
	records []Record
}

var _ History = (*MemoryHistory)(nil)

func NewMemoryHistory() *MemoryHistory { return &MemoryHistory{} }

func (m *MemoryHistory) Record(ctx context.Context, r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
	return nil
}

func (m *MemoryHistory) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Record{}
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

func (m *MemoryHistory) Close() error { return nil }
