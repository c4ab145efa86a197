package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"invest-dashboard/internal/broker"
	"invest-dashboard/internal/interfaces"
	"invest-dashboard/internal/logger"
	"invest-dashboard/internal/types"
)

// Broker serves a fixed account and holdings set and accepts every valid
// order without sending it anywhere.
type Broker struct {
	accountNo string

	mu        sync.Mutex
	connected bool
	orders    []types.OrderReq
}

var _ interfaces.Broker = (*Broker)(nil)

func New(accountNo string) *Broker {
	return &Broker{accountNo: accountNo}
}

func (b *Broker) Name() string { return "MOCK" }

func (b *Broker) Connect(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.connected = true
	logger.Debug(ctx, "Mock broker connected")
	return nil
}

func (b *Broker) Disconnect(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.connected = false
}

func (b *Broker) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connected
}

func (b *Broker) Account(ctx context.Context) (types.Account, error) {
	return types.Account{
		AccountNo:       broker.MaskAccount(b.accountNo),
		TotalDeposit:    5_000_000,
		TotalEvaluation: 15_250_000,
		TotalProfit:     1_250_000,
		ProfitPercent:   8.93,
	}, nil
}

func (b *Broker) Holdings(ctx context.Context) ([]types.Holding, error) {
	return []types.Holding{
		broker.HoldingFrom("233740", "KODEX 코스닥150 레버리지", 100, 8500, 9200),
		broker.HoldingFrom("005930", "삼성전자", 50, 72000, 75000),
		broker.HoldingFrom("000660", "SK하이닉스", 30, 135000, 142000),
	}, nil
}

func (b *Broker) PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	if err := broker.Validate(req); err != nil {
		return types.OrderResp{}, err
	}

	b.mu.Lock()
	b.orders = append(b.orders, req)
	b.mu.Unlock()

	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return types.OrderResp{
		Success: true,
		Message: fmt.Sprintf("Mock order: %s %d shares of %s", req.Side, req.Quantity, req.Code),
		OrderNo: "MOCK" + strings.ToUpper(id[:8]),
	}, nil
}

// Orders returns the orders accepted so far.
func (b *Broker) Orders() []types.OrderReq {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]types.OrderReq(nil), b.orders...)
}
