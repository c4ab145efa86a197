package broker

import (
	"context"

	"invest-dashboard/internal/interfaces"
	"invest-dashboard/internal/logger"
	"invest-dashboard/internal/types"
)

// Fallback serves account and holdings from a fixed backend when the primary
// one fails. Connection state and orders always go to the primary.
type Fallback struct {
	interfaces.Broker
	fallback interfaces.Broker
}

var _ interfaces.Broker = (*Fallback)(nil)

func WithFallback(primary, fallback interfaces.Broker) *Fallback {
	return &Fallback{Broker: primary, fallback: fallback}
}

func (f *Fallback) Account(ctx context.Context) (types.Account, error) {
	acc, err := f.Broker.Account(ctx)
	if err == nil {
		return acc, nil
	}
	logger.Warn(ctx, "Account unavailable, serving fallback values",
		"broker", f.Broker.Name(), "fallback", f.fallback.Name(), "error", err)
	return f.fallback.Account(ctx)
}

func (f *Fallback) Holdings(ctx context.Context) ([]types.Holding, error) {
	hs, err := f.Broker.Holdings(ctx)
	if err == nil {
		return hs, nil
	}
	logger.Warn(ctx, "Holdings unavailable, serving fallback values",
		"broker", f.Broker.Name(), "fallback", f.fallback.Name(), "error", err)
	return f.fallback.Holdings(ctx)
}
