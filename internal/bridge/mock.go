package bridge

import (
	"context"

	"go.uber.org/zap"
)

// MockTicket is the ticket every mock fill reports.
const MockTicket = 999999

// Mock confirms every order in-process. It is the default dispatcher for
// dev setups with no terminal attached.
type Mock struct {
	logger *zap.Logger
}

var _ Dispatcher = (*Mock)(nil)

func NewMock(logger *zap.Logger) *Mock {
	return &Mock{logger: logger}
}

func (m *Mock) SendOrder(_ context.Context, order OrderRequest) (*OrderResponse, error) {
	if m.logger != nil {
		m.logger.Info("bridge(mock): order filled",
			zap.String("symbol", order.Symbol),
			zap.String("action", order.Action),
			zap.Float64("price", order.Price),
			zap.Float64("volume", order.Volume),
		)
	}
	return &OrderResponse{Retcode: RetcodeDone, Ticket: MockTicket, Comment: "mock fill"}, nil
}

func (m *Mock) CloseOrder(_ context.Context, close CloseRequest) error {
	if m.logger != nil {
		m.logger.Info("bridge(mock): close accepted",
			zap.String("symbol", close.Symbol),
			zap.Int64("ticket", close.Ticket),
			zap.String("reason", close.Reason),
		)
	}
	return nil
}
