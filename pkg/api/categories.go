package api

import (
	"context"
	"net/http"
	"net/url"
)

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	err := c.do(ctx, call{
		operation: "list_categories",
		method:    http.MethodGet,
		path:      "/api/categories",
		out:       &categories,
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) CreateCategory(ctx context.Context, input CategoryInput) (*Category, error) {
	var category Category
	err := c.do(ctx, call{
		operation: "create_category",
		method:    http.MethodPost,
		path:      "/api/categories",
		body:      input,
		out:       &category,
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (c *Client) UpdateCategory(ctx context.Context, categoryID string, input CategoryInput) (*Category, error) {
	var category Category
	err := c.do(ctx, call{
		operation: "update_category",
		method:    http.MethodPut,
		path:      "/api/categories/" + url.PathEscape(categoryID),
		body:      input,
		out:       &category,
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (c *Client) DeleteCategory(ctx context.Context, categoryID string) error {
	return c.do(ctx, call{
		operation: "delete_category",
		method:    http.MethodDelete,
		path:      "/api/categories/" + url.PathEscape(categoryID),
	})
}
