// Package trade holds the auto-trading strategies, the executed-trade history
// and the scheduler that applies loss-cut and profit-take rules to holdings.
package trade

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrStrategyNotFound = errors.New("strategy not found")
	ErrInvalidStrategy  = errors.New("invalid strategy")
)

type ConditionType string

const (
	CondRSIBelow    ConditionType = "rsi_below"
	CondRSIAbove    ConditionType = "rsi_above"
	CondMACrossUp   ConditionType = "ma_cross_up"
	CondMACrossDown ConditionType = "ma_cross_down"
	CondPriceAbove  ConditionType = "price_above"
	CondPriceBelow  ConditionType = "price_below"
	CondLossCut     ConditionType = "loss_cut"
	CondProfitTake  ConditionType = "profit_take"
)

// Condition is one buy or sell rule, e.g. {"type":"rsi_below","value":30}.
type Condition struct {
	Type  ConditionType `json:"type"`
	Value float64       `json:"value"`
}

// Default risk thresholds in percent.
const (
	DefaultLossCutPercent    = -3.0
	DefaultProfitTakePercent = 5.0
)

type Strategy struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Enabled           bool        `json:"enabled"`
	StockCode         string      `json:"stockCode"`
	StockName         string      `json:"stockName"`
	BuyConditions     []Condition `json:"buyConditions"`
	SellConditions    []Condition `json:"sellConditions"`
	MaxAmount         int64       `json:"maxAmount"`
	LossCutPercent    float64     `json:"lossCutPercent"`
	ProfitTakePercent float64     `json:"profitTakePercent"`
}

// StrategyPatch carries the fields of an update. Nil fields are left alone.
type StrategyPatch struct {
	Name              *string      `json:"name"`
	Enabled           *bool        `json:"enabled"`
	BuyConditions     *[]Condition `json:"buyConditions"`
	SellConditions    *[]Condition `json:"sellConditions"`
	MaxAmount         *int64       `json:"maxAmount"`
	LossCutPercent    *float64     `json:"lossCutPercent"`
	ProfitTakePercent *float64     `json:"profitTakePercent"`
}

// DefaultStrategy is seeded when no strategies file exists yet.
func DefaultStrategy() Strategy {
	return Strategy{
		ID:                "default_1",
		Name:              "KODEX 코스닥150 레버리지 전략",
		StockCode:         "233740",
		StockName:         "KODEX 코스닥150 레버리지",
		BuyConditions:     []Condition{{Type: CondRSIBelow, Value: 30}},
		SellConditions:    []Condition{{Type: CondRSIAbove, Value: 70}},
		MaxAmount:         1_000_000,
		LossCutPercent:    DefaultLossCutPercent,
		ProfitTakePercent: DefaultProfitTakePercent,
	}
}

// StrategyStore keeps strategies in memory and mirrors every change to a
// JSON file. Order of creation is preserved.
type StrategyStore struct {
	path string

	mu    sync.RWMutex
	items []Strategy
}

// OpenStrategies loads path. A missing file yields the default strategy,
// which is written out on the first change.
func OpenStrategies(path string) (*StrategyStore, error) {
	s := &StrategyStore{path: path}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		s.items = []Strategy{DefaultStrategy()}
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read strategies: %w", err)
	}
	if err := json.Unmarshal(b, &s.items); err != nil {
		return nil, fmt.Errorf("parse strategies %s: %w", path, err)
	}
	return s, nil
}

func (s *StrategyStore) List() []Strategy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Strategy, len(s.items))
	copy(out, s.items)
	return out
}

func (s *StrategyStore) Get(id string) (Strategy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.index(id)
	if i < 0 {
		return Strategy{}, ErrStrategyNotFound
	}
	return s.items[i], nil
}

// Create assigns a fresh id and stores st disabled.
func (s *StrategyStore) Create(st Strategy) (Strategy, error) {
	if strings.TrimSpace(st.Name) == "" || strings.TrimSpace(st.StockCode) == "" {
		return Strategy{}, fmt.Errorf("%w: name and stock code are required", ErrInvalidStrategy)
	}
	if st.MaxAmount < 0 {
		return Strategy{}, fmt.Errorf("%w: max amount must not be negative", ErrInvalidStrategy)
	}
	st.ID = uuid.NewString()[:8]
	st.Enabled = false
	if st.BuyConditions == nil {
		st.BuyConditions = []Condition{}
	}
	if st.SellConditions == nil {
		st.SellConditions = []Condition{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, st)
	if err := s.save(); err != nil {
		s.items = s.items[:len(s.items)-1]
		return Strategy{}, err
	}
	return st, nil
}

func (s *StrategyStore) Update(id string, p StrategyPatch) (Strategy, error) {
	return s.mutate(id, func(st *Strategy) {
		if p.Name != nil {
			st.Name = *p.Name
		}
		if p.Enabled != nil {
			st.Enabled = *p.Enabled
		}
		if p.BuyConditions != nil {
			st.BuyConditions = *p.BuyConditions
		}
		if p.SellConditions != nil {
			st.SellConditions = *p.SellConditions
		}
		if p.MaxAmount != nil {
			st.MaxAmount = *p.MaxAmount
		}
		if p.LossCutPercent != nil {
			st.LossCutPercent = *p.LossCutPercent
		}
		if p.ProfitTakePercent != nil {
			st.ProfitTakePercent = *p.ProfitTakePercent
		}
	})
}

// Toggle flips Enabled and returns the new state.
func (s *StrategyStore) Toggle(id string) (Strategy, error) {
	return s.mutate(id, func(st *Strategy) { st.Enabled = !st.Enabled })
}

func (s *StrategyStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return ErrStrategyNotFound
	}
	prev := s.items
	s.items = append(append([]Strategy{}, s.items[:i]...), s.items[i+1:]...)
	if err := s.save(); err != nil {
		s.items = prev
		return err
	}
	return nil
}

func (s *StrategyStore) mutate(id string, fn func(*Strategy)) (Strategy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return Strategy{}, ErrStrategyNotFound
	}
	prev := s.items[i]
	fn(&s.items[i])
	if err := s.save(); err != nil {
		s.items[i] = prev
		return Strategy{}, err
	}
	return s.items[i], nil
}

func (s *StrategyStore) index(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// save writes through a temp file so a crash never leaves half a document.
// Callers hold mu.
func (s *StrategyStore) save() error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("save strategies: %w", err)
	}
	b, err := json.MarshalIndent(s.items, "", "  ")
	if err != nil {
		return fmt.Errorf("save strategies: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("save strategies: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("save strategies: %w", err)
	}
	return nil
}
