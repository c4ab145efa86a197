package brokerobs

import (
	"context"
	"fmt"

	"invest-dashboard/internal/interfaces"
	"invest-dashboard/internal/logger"
	"invest-dashboard/internal/trace"
	"invest-dashboard/internal/tradelog"
	"invest-dashboard/internal/types"
)

// observableBroker wraps a Broker with logging, tracing and the order log.
type observableBroker struct {
	broker interfaces.Broker
	log    *tradelog.Log
}

var _ interfaces.Broker = (*observableBroker)(nil)

// Wrap decorates broker. When log is non-nil every order attempt, accepted
// or not, is appended to it.
func Wrap(broker interfaces.Broker, log *tradelog.Log) interfaces.Broker {
	return &observableBroker{broker: broker, log: log}
}

func (ob *observableBroker) Name() string { return ob.broker.Name() }

func (ob *observableBroker) Connected() bool { return ob.broker.Connected() }

func (ob *observableBroker) Connect(ctx context.Context) error {
	ctx, span := trace.StartSpan(ctx, "broker.Connect", trace.Broker(ob.broker.Name()))
	defer span.End()

	logger.InfoSkip(ctx, 1, "Connecting broker", "broker", ob.broker.Name())
	if err := ob.broker.Connect(ctx); err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to connect broker", err, "broker", ob.broker.Name())
		return fmt.Errorf("broker connect failed: %w", err)
	}
	logger.InfoSkip(ctx, 1, "Broker connected", "broker", ob.broker.Name())
	return nil
}

func (ob *observableBroker) Disconnect(ctx context.Context) {
	ctx, span := trace.StartSpan(ctx, "broker.Disconnect", trace.Broker(ob.broker.Name()))
	defer span.End()

	ob.broker.Disconnect(ctx)
	logger.InfoSkip(ctx, 1, "Broker disconnected", "broker", ob.broker.Name())
}

func (ob *observableBroker) Account(ctx context.Context) (types.Account, error) {
	ctx, span := trace.StartSpan(ctx, "broker.Account", trace.Broker(ob.broker.Name()))
	defer span.End()

	acc, err := ob.broker.Account(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch account", err, "broker", ob.broker.Name())
		return types.Account{}, err
	}
	logger.DebugSkip(ctx, 1, "Account fetched", "account", acc.AccountNo, "evaluation", acc.TotalEvaluation)
	return acc, nil
}

func (ob *observableBroker) Holdings(ctx context.Context) ([]types.Holding, error) {
	ctx, span := trace.StartSpan(ctx, "broker.Holdings", trace.Broker(ob.broker.Name()))
	defer span.End()

	hs, err := ob.broker.Holdings(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch holdings", err, "broker", ob.broker.Name())
		return nil, err
	}
	logger.DebugSkip(ctx, 1, "Holdings fetched", "count", len(hs))
	return hs, nil
}

func (ob *observableBroker) PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	ctx, span := trace.StartSpan(ctx, "broker.PlaceOrder",
		trace.Broker(ob.broker.Name()), trace.Stock(req.Code))
	defer span.End()

	logger.InfoSkip(ctx, 1, "Placing order",
		"code", req.Code,
		"side", req.Side,
		"qty", req.Quantity,
		"price", req.Price,
		"tag", req.Tag,
	)

	resp, err := ob.broker.PlaceOrder(ctx, req)
	ob.record(ctx, req, resp, err)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to place order", err,
			"code", req.Code,
			"side", req.Side,
			"qty", req.Quantity,
		)
		return resp, err
	}

	logger.Trade(ctx, req.Code, string(req.Side), req.Quantity, req.Price, resp.OrderNo,
		"broker", ob.broker.Name(),
		"tag", req.Tag,
	)
	return resp, nil
}

func (ob *observableBroker) record(ctx context.Context, req types.OrderReq, resp types.OrderResp, err error) {
	if ob.log == nil {
		return
	}
	e := tradelog.Entry{
		Broker:     ob.broker.Name(),
		Code:       req.Code,
		Side:       string(req.Side),
		Quantity:   req.Quantity,
		Price:      req.Price,
		PriceType:  string(req.PriceType),
		OrderNo:    resp.OrderNo,
		Success:    err == nil && resp.Success,
		Message:    resp.Message,
		Reason:     req.Tag,
		StrategyID: req.StrategyID,
	}
	if err != nil && e.Message == "" {
		e.Message = err.Error()
	}
	if werr := ob.log.Append(e); werr != nil {
		logger.ErrorWithErr(ctx, "Failed to append trade log", werr, "code", req.Code)
	}
}
