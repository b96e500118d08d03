// Package storefront provides the typed entity surface of the admin API:
// one resource per collection plus the singleton settings and statistics
// endpoints that do not follow the collection convention.
package storefront

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/storefront-kit/adminapi/pkg/cache"
	"github.com/storefront-kit/adminapi/pkg/resource"
)

// Client bundles the typed resources of every admin API entity behind one
// transport. All operations are stateless round trips; wrap them with a
// query.Cache for caching and invalidation.
type Client struct {
	Categories    *resource.Resource[Category]
	Products      *resource.Resource[Product]
	Discounts     *resource.Resource[Discount]
	Coupons       *resource.Resource[Coupon]
	Orders        *resource.Resource[Order]
	Customers     *resource.Resource[Customer]
	Employees     *resource.Resource[Employee]
	Subscriptions *resource.Resource[Subscription]
	Tickets       *resource.Resource[Ticket]

	transport resource.Transport
}

// New creates the entity surface over a transport, typically *client.Client.
func New(transport resource.Transport) *Client {
	return &Client{
		Categories:    resource.New[Category](transport, EntityCategories),
		Products:      resource.New[Product](transport, EntityProducts),
		Discounts:     resource.New[Discount](transport, EntityDiscounts),
		Coupons:       resource.New[Coupon](transport, EntityCoupons),
		Orders:        resource.New[Order](transport, EntityOrders),
		Customers:     resource.New[Customer](transport, EntityCustomers),
		Employees:     resource.New[Employee](transport, EntityEmployees),
		Subscriptions: resource.New[Subscription](transport, EntitySubscriptions),
		Tickets:       resource.New[Ticket](transport, EntityTickets),
		transport:     transport,
	}
}

// AddProductCategories links categories to a product. Already-linked
// categories are absorbed server-side as duplicates.
func (c *Client) AddProductCategories(ctx context.Context, productID string, categoryIDs []string) error {
	return c.Products.AddRelations(ctx, productID, EntityCategories, categoryIDs)
}

// RemoveProductCategory unlinks one category from a product.
func (c *Client) RemoveProductCategory(ctx context.Context, productID, categoryID string) error {
	return c.Products.RemoveRelation(ctx, productID, EntityCategories, categoryID)
}

// AddDiscountProducts links products to a discount.
func (c *Client) AddDiscountProducts(ctx context.Context, discountID string, productIDs []string) error {
	return c.Discounts.AddRelations(ctx, discountID, EntityProducts, productIDs)
}

// RemoveDiscountProduct unlinks one product from a discount.
func (c *Client) RemoveDiscountProduct(ctx context.Context, discountID, productID string) error {
	return c.Discounts.RemoveRelation(ctx, discountID, EntityProducts, productID)
}

// Settings fetches the per-store settings singleton.
func (c *Client) Settings(ctx context.Context) (Settings, error) {
	raw, err := c.transport.Do(ctx, http.MethodGet, "/settings", nil, nil)
	if err != nil {
		return Settings{}, err
	}
	return decode[Settings](raw)
}

// UpdateSettings updates the settings singleton and returns the server's
// version of it.
func (c *Client) UpdateSettings(ctx context.Context, payload any) (Settings, error) {
	raw, err := c.transport.Do(ctx, http.MethodPut, "/settings", nil, payload)
	if err != nil {
		return Settings{}, err
	}
	return decode[Settings](raw)
}

// Statistics fetches the dashboard statistics snapshot. Filters narrow the
// reporting window, e.g. {"from": "2026-08-01", "to": "2026-08-31"}; empty
// values are dropped.
func (c *Client) Statistics(ctx context.Context, filters cache.Filters) (Stats, error) {
	params := url.Values{}
	for k, v := range filters {
		if v != "" {
			params.Set(k, v)
		}
	}
	raw, err := c.transport.Do(ctx, http.MethodGet, "/statistics", params, nil)
	if err != nil {
		return Stats{}, err
	}
	return decode[Stats](raw)
}

func decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 || string(raw) == "null" {
		return v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, err
	}
	return v, nil
}
