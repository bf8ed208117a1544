package api

import (
	"context"
	"net/http"
	"net/url"
)

func (c *Client) GetProduct(ctx context.Context, productID string) (*Product, error) {
	var product Product
	err := c.do(ctx, call{
		operation: "get_product",
		method:    http.MethodGet,
		path:      "/api/produits/" + url.PathEscape(productID),
		out:       &product,
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	err := c.do(ctx, call{
		operation: "list_products",
		method:    http.MethodGet,
		path:      "/api/produits",
		out:       &products,
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) CreateProduct(ctx context.Context, input ProductInput) (*Product, error) {
	var product Product
	err := c.do(ctx, call{
		operation: "create_product",
		method:    http.MethodPost,
		path:      "/api/produits",
		body:      input,
		out:       &product,
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) UpdateProduct(ctx context.Context, productID string, input ProductInput) (*Product, error) {
	var product Product
	err := c.do(ctx, call{
		operation: "update_product",
		method:    http.MethodPut,
		path:      "/api/produits/" + url.PathEscape(productID),
		body:      input,
		out:       &product,
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) DeleteProduct(ctx context.Context, productID string) error {
	return c.do(ctx, call{
		operation: "delete_product",
		method:    http.MethodDelete,
		path:      "/api/produits/" + url.PathEscape(productID),
	})
}
