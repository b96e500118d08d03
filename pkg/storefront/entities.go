package storefront

import "time"

// Entity collection path segments. The same name keys the REST route and
// the cache entries of the entity.
const (
	EntityCategories    = "categories"
	EntityProducts      = "products"
	EntityDiscounts     = "discounts"
	EntityCoupons       = "coupons"
	EntityOrders        = "orders"
	EntityCustomers     = "customers"
	EntityEmployees     = "employees"
	EntitySubscriptions = "subscriptions"
	EntityTickets       = "tickets"
)

// Category is a product grouping, optionally nested under a parent.
type Category struct {
	ID          string  `json:"id"`
	StoreID     string  `json:"storeId,omitempty"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug,omitempty"`
	ParentID    *string `json:"parentId,omitempty"`
	Description *string `json:"description,omitempty"`
	ImageURL    *string `json:"imageUrl,omitempty"`
	Position    *int    `json:"position,omitempty"`
}

// Product is a sellable item.
type Product struct {
	ID          string    `json:"id"`
	StoreID     string    `json:"storeId,omitempty"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug,omitempty"`
	Description *string   `json:"description,omitempty"`
	PriceCents  int64     `json:"priceCents"`
	Currency    string    `json:"currency,omitempty"`
	Stock       *int      `json:"stock,omitempty"`
	CategoryIDs []string  `json:"categoryIds,omitempty"`
	ImageURLs   []string  `json:"imageUrls,omitempty"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
}

// Discount is a price reduction applied to selected products.
type Discount struct {
	ID         string     `json:"id"`
	StoreID    string     `json:"storeId,omitempty"`
	Name       string     `json:"name"`
	Percent    *int       `json:"percent,omitempty"`
	AmountOff  *int64     `json:"amountOffCents,omitempty"`
	ProductIDs []string   `json:"productIds,omitempty"`
	StartsAt   *time.Time `json:"startsAt,omitempty"`
	EndsAt     *time.Time `json:"endsAt,omitempty"`
	Active     bool       `json:"active"`
}

// Coupon is a redeemable code granting a discount at checkout.
type Coupon struct {
	ID             string     `json:"id"`
	StoreID        string     `json:"storeId,omitempty"`
	Code           string     `json:"code"`
	Percent        *int       `json:"percent,omitempty"`
	AmountOff      *int64     `json:"amountOffCents,omitempty"`
	MaxRedemptions *int       `json:"maxRedemptions,omitempty"`
	Redeemed       int        `json:"redeemed,omitempty"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
}

// OrderLine is one product position of an order.
type OrderLine struct {
	ProductID  string `json:"productId"`
	Name       string `json:"name,omitempty"`
	Quantity   int    `json:"quantity"`
	PriceCents int64  `json:"priceCents"`
}

// Order is a customer purchase.
type Order struct {
	ID         string      `json:"id"`
	StoreID    string      `json:"storeId,omitempty"`
	CustomerID string      `json:"customerId,omitempty"`
	Status     string      `json:"status"`
	Lines      []OrderLine `json:"lines,omitempty"`
	TotalCents int64       `json:"totalCents"`
	Currency   string      `json:"currency,omitempty"`
	PlacedAt   time.Time   `json:"placedAt,omitzero"`
}

// Customer is a storefront shopper account.
type Customer struct {
	ID        string    `json:"id"`
	StoreID   string    `json:"storeId,omitempty"`
	Email     string    `json:"email"`
	FirstName *string   `json:"firstName,omitempty"`
	LastName  *string   `json:"lastName,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// Employee is a console user of one store.
type Employee struct {
	ID      string  `json:"id"`
	StoreID string  `json:"storeId,omitempty"`
	Email   string  `json:"email"`
	Role    string  `json:"role"`
	Name    *string `json:"name,omitempty"`
	Active  bool    `json:"active"`
}

// Subscription is a recurring purchase of a product.
type Subscription struct {
	ID         string     `json:"id"`
	StoreID    string     `json:"storeId,omitempty"`
	CustomerID string     `json:"customerId"`
	ProductID  string     `json:"productId"`
	Status     string     `json:"status"`
	RenewsAt   *time.Time `json:"renewsAt,omitempty"`
	CanceledAt *time.Time `json:"canceledAt,omitempty"`
}

// Ticket is a customer support request.
type Ticket struct {
	ID         string    `json:"id"`
	StoreID    string    `json:"storeId,omitempty"`
	CustomerID *string   `json:"customerId,omitempty"`
	Subject    string    `json:"subject"`
	Status     string    `json:"status"`
	Priority   *string   `json:"priority,omitempty"`
	OpenedAt   time.Time `json:"openedAt,omitzero"`
}

// Settings is the per-store configuration singleton.
type Settings struct {
	StoreID      string  `json:"storeId,omitempty"`
	StoreName    string  `json:"storeName"`
	Domain       string  `json:"domain,omitempty"`
	Currency     string  `json:"currency,omitempty"`
	Locale       string  `json:"locale,omitempty"`
	SupportEmail *string `json:"supportEmail,omitempty"`
	LogoURL      *string `json:"logoUrl,omitempty"`
}

// Stats is the dashboard statistics snapshot.
type Stats struct {
	StoreID       string `json:"storeId,omitempty"`
	OrderCount    int    `json:"orderCount"`
	CustomerCount int    `json:"customerCount"`
	ProductCount  int    `json:"productCount"`
	RevenueCents  int64  `json:"revenueCents"`
	Currency      string `json:"currency,omitempty"`
}
