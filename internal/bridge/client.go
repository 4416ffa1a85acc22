package bridge

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"antigravity/internal/config"
)

// MT5 TRADE_RETCODE_DONE.
const RetcodeDone = 10009

// Order actions on the bridge wire.
const (
	ActionBuy  = "ORDER_TYPE_BUY"
	ActionSell = "ORDER_TYPE_SELL"
)

// Dispatcher is the engine's view of the broker bridge.
type Dispatcher interface {
	SendOrder(ctx context.Context, order OrderRequest) (*OrderResponse, error)
	CloseOrder(ctx context.Context, req CloseRequest) error
}

// OrderRequest is the payload for POST {base_url}/order/send.
type OrderRequest struct {
	Symbol     string  `json:"symbol"`
	Action     string  `json:"action"`
	Volume     float64 `json:"volume"`
	Price      float64 `json:"price"`
	SL         float64 `json:"sl"`
	TP         float64 `json:"tp"`
	Comment    string  `json:"comment"`
	Magic      int     `json:"magic"`
	StrategyID string  `json:"strategy_id,omitempty"`
}

// OrderResponse is what the bridge answers. A zero ticket together with a
// retcode other than RetcodeDone means the order was not placed.
type OrderResponse struct {
	Retcode int    `json:"retcode"`
	Ticket  int64  `json:"ticket"`
	Comment string `json:"comment,omitempty"`
}

// Confirmed reports whether the bridge accepted the order.
func (r *OrderResponse) Confirmed() bool {
	if r == nil {
		return false
	}
	return r.Retcode == RetcodeDone || r.Ticket != 0
}

// CloseRequest is the payload for POST {base_url}/order/close.
type CloseRequest struct {
	Symbol string `json:"symbol"`
	Ticket int64  `json:"ticket"`
	Reason string `json:"reason,omitempty"`
}

// Client talks to a real bridge over HTTP.
type Client struct {
	client  *resty.Client
	cfg     config.BridgeConfig
	logger  *zap.Logger
	limiter *rate.Limiter
}

var _ Dispatcher = (*Client)(nil)

// New picks the dispatcher for the configured base URL. The literal URL
// "mock" selects the in-process stub that confirms everything.
func New(cfg config.BridgeConfig, logger *zap.Logger) Dispatcher {
	if strings.EqualFold(strings.TrimSpace(cfg.BaseURL), "mock") {
		if logger != nil {
			logger.Warn("bridge: mock mode, orders are filled in-process")
		}
		return NewMock(logger)
	}
	return NewClient(cfg, logger)
}

func NewClient(cfg config.BridgeConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 10
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout)
	return &Client{
		client:  client,
		cfg:     cfg,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// SendOrder posts a fire order and returns the parsed bridge verdict.
func (c *Client) SendOrder(ctx context.Context, order OrderRequest) (*OrderResponse, error) {
	req := c.client.R().
		SetContext(ctx).
		SetBody(order).
		SetResult(&OrderResponse{})

	resp, err := c.doRequest(ctx, http.MethodPost, "/order/send", req)
	if err != nil {
		return nil, fmt.Errorf("bridge send order: %w", err)
	}

	out := resp.Result().(*OrderResponse)
	if c.logger != nil {
		c.logger.Info("bridge: order answered",
			zap.String("symbol", order.Symbol),
			zap.String("action", order.Action),
			zap.Int("retcode", out.Retcode),
			zap.Int64("ticket", out.Ticket),
		)
	}
	return out, nil
}

// CloseOrder posts a close command for an open ticket.
func (c *Client) CloseOrder(ctx context.Context, close CloseRequest) error {
	req := c.client.R().
		SetContext(ctx).
		SetBody(close)

	if _, err := c.doRequest(ctx, http.MethodPost, "/order/close", req); err != nil {
		return fmt.Errorf("bridge close order: %w", err)
	}
	if c.logger != nil {
		c.logger.Info("bridge: close sent",
			zap.String("symbol", close.Symbol),
			zap.Int64("ticket", close.Ticket),
			zap.String("reason", close.Reason),
		)
	}
	return nil
}

// doRequest executes with rate limiting and bounded retries. Only
// transport failures and 429 are retried: a 5xx after the bridge may have
// touched the broker must not be replayed.
func (c *Client) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	attempts := c.cfg.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	for i := 0; i < attempts; i++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}

		resp, err = req.Execute(method, url)
		if err == nil && !resp.IsError() {
			return resp, nil
		}

		shouldRetry := false
		var retryAfter time.Duration
		if resp != nil && err == nil {
			if resp.StatusCode() == http.StatusTooManyRequests {
				shouldRetry = true
				if seconds, perr := strconv.Atoi(resp.Header().Get("Retry-After")); perr == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			}
		} else {
			// Network error before any response: the bridge saw nothing.
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("bridge answered status %s: %s", resp.Status(), resp.String())
		}
		if retryAfter == 0 {
			retryAfter = time.Duration(math.Pow(2, float64(i))) * time.Second
		}
		if c.logger != nil {
			c.logger.Warn("bridge: request failed, retrying",
				zap.Int("attempt", i+1),
				zap.Duration("retry_after", retryAfter),
				zap.Error(err),
			)
		}

		select {
		case <-time.After(retryAfter):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err == nil {
		err = fmt.Errorf("status %s", resp.Status())
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", attempts, err)
}
