package api

import (
	"context"
	"net/http"
	"net/url"
)

// IdempotencyKeyHeader carries the client-generated key sent with order
// creation so a network-level retry cannot produce a duplicate order.
const IdempotencyKeyHeader = "Idempotency-Key"

// CreateOrder submits an order draft. The idempotency key is optional; when
// set it is forwarded as a header.
func (c *Client) CreateOrder(ctx context.Context, draft OrderDraft, idempotencyKey string) (*Order, error) {
	header := http.Header{}
	if idempotencyKey != "" {
		header.Set(IdempotencyKeyHeader, idempotencyKey)
	}

	var order Order
	err := c.do(ctx, call{
		operation: "create_order",
		method:    http.MethodPost,
		path:      "/api/commandes",
		header:    header,
		body:      draft,
		out:       &order,
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) ListOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	err := c.do(ctx, call{
		operation: "list_orders",
		method:    http.MethodGet,
		path:      "/api/commandes",
		out:       &orders,
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status OrderStatus) (*Order, error) {
	var order Order
	err := c.do(ctx, call{
		operation: "update_order_status",
		method:    http.MethodPut,
		path:      "/api/commandes/" + url.PathEscape(orderID),
		body:      OrderStatusUpdate{Status: status},
		out:       &order,
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) DeleteOrder(ctx context.Context, orderID string) error {
	return c.do(ctx, call{
		operation: "delete_order",
		method:    http.MethodDelete,
		path:      "/api/commandes/" + url.PathEscape(orderID),
	})
}
