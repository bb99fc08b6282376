// Package orderclient talks to the external order service over HTTP/JSON.
package orderclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dulce-kart/internal/model"
	"dulce-kart/internal/session"

	"github.com/rs/zerolog"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// Config holds order service client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client calls the order service. The bearer token of the calling identity
// is attached to every request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// New creates an order service client.
func New(cfg Config, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "order-client").Logger(),
	}
}

// CreateOrder submits a new order.
func (c *Client) CreateOrder(ctx context.Context, req *model.CreateOrderRequest) (*model.CreateOrderResponse, error) {
	var resp model.CreateOrderResponse
	if err := c.do(ctx, http.MethodPost, "/orders", req, &resp); err != nil {
		return nil, err
	}
	if resp.OrderID == "" {
		c.logger.Error().Msg("order service returned no order id")
		return nil, model.NewDomainError(model.ErrCodeOrderService, "Order service returned an invalid response")
	}

	c.logger.Info().
		Str("order_id", resp.OrderID).
		Str("status", resp.Status.String()).
		Int("item_count", len(req.Items)).
		Msg("order created")

	return &resp, nil
}

// GetOrder fetches the current snapshot of an order.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetUserOrders lists the orders of the authenticated user.
func (c *Client) GetUserOrders(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	if err := c.do(ctx, http.MethodGet, "/orders", nil, &orders); err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id, ok := session.FromContext(ctx); ok && id.Token != "" {
		req.Header.Set("Authorization", "Bearer "+id.Token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("method", method).
			Str("path", path).
			Dur("duration", time.Since(start)).
			Msg("order service unreachable")
		return model.ErrOrderServiceUnavailable
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("order service call")

	if resp.StatusCode >= http.StatusBadRequest {
		return c.errorFromResponse(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.Error().Err(err).Str("path", path).Msg("failed to decode order service response")
		return model.NewDomainError(model.ErrCodeOrderService, "Order service returned an invalid response")
	}
	return nil
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) errorFromResponse(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return model.ErrUnauthorised
	case http.StatusNotFound:
		return model.ErrOrderNotFound
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		c.logger.Warn().Int("status", resp.StatusCode).Msg("order service failed")
		if resp.StatusCode == http.StatusBadGateway ||
			resp.StatusCode == http.StatusServiceUnavailable ||
			resp.StatusCode == http.StatusGatewayTimeout {
			return model.ErrOrderServiceUnavailable
		}
	}

	var eb errorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err := json.Unmarshal(raw, &eb); err != nil || (eb.Message == "" && eb.Error == "") {
		return model.NewDomainError(model.ErrCodeOrderService, fmt.Sprintf("Order service error (status %d)", resp.StatusCode))
	}

	message := eb.Message
	if message == "" {
		message = eb.Error
	}
	return model.NewDomainError(model.ErrCodeOrderService, message)
}

// IsRetryable reports whether err is a connectivity failure worth retrying.
func IsRetryable(err error) bool {
	return errors.Is(err, model.ErrOrderServiceUnavailable)
}
