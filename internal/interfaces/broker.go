package interfaces

import (
	"context"

	"invest-dashboard/internal/types"
)

// Broker is the account/holdings/order capability shared by the real and mock backends.
type Broker interface {
	Name() string
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context)
	Connected() bool
	Account(ctx context.Context) (types.Account, error)
	Holdings(ctx context.Context) ([]types.Holding, error)
	PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error)
}
