package api

import (
	"context"
	"net/http"
	"net/url"
)

// GetCart fetches the live cart for a user. A NOT_FOUND error means the user
// has no cart; callers treat that as an empty cart.
func (c *Client) GetCart(ctx context.Context, userID string) (*Cart, error) {
	var cart Cart
	err := c.do(ctx, call{
		operation: "get_cart",
		method:    http.MethodGet,
		path:      "/api/paniers/" + url.PathEscape(userID),
		out:       &cart,
	})
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// CreateCart creates the first cart for a user.
func (c *Client) CreateCart(ctx context.Context, draft CartDraft) (*Cart, error) {
	var cart Cart
	err := c.do(ctx, call{
		operation: "create_cart",
		method:    http.MethodPost,
		path:      "/api/paniers",
		body:      draft,
		out:       &cart,
	})
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// UpdateCart replaces the cart's items and total and returns the server's
// authoritative record.
func (c *Client) UpdateCart(ctx context.Context, cartID string, update CartUpdate) (*Cart, error) {
	var cart Cart
	err := c.do(ctx, call{
		operation: "update_cart",
		method:    http.MethodPut,
		path:      "/api/paniers/" + url.PathEscape(cartID),
		body:      update,
		out:       &cart,
	})
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// DeleteCart removes the cart record entirely.
func (c *Client) DeleteCart(ctx context.Context, cartID string) error {
	return c.do(ctx, call{
		operation: "delete_cart",
		method:    http.MethodDelete,
		path:      "/api/paniers/" + url.PathEscape(cartID),
	})
}
