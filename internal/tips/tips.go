// Package tips builds the tip buttons of the about screen on top of a commerce provider.
package tips

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// ErrUnknownProduct is returned when purchasing a product that was not loaded.
var ErrUnknownProduct = errors.New("unknown product")

var (
	mockPrices = []string{"$2.99", "$4.99", "$9.99", "$19.99", "$49.99"}
	mockNames  = []string{"Buy me a coffee", "Buy me 2 coffees", "Buy me 5 coffees", "Buy me 10 coffees", "Buy me 25 coffees"}
)

// Product is a purchasable tip as described by the commerce provider.
type Product struct {
	ID           string
	DisplayName  string
	DisplayPrice string
}

// Status is the outcome of a purchase.
type Status int

const (
	// StatusSuccess is a completed purchase. See PurchaseResult.Verified.
	StatusSuccess Status = iota
	// StatusCancelled is a purchase cancelled by the user.
	StatusCancelled
	// StatusPending is a purchase awaiting an external approval.
	StatusPending
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusCancelled:
		return "cancelled"
	case StatusPending:
		return "pending"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// PurchaseResult is what the commerce provider reports for a purchase.
type PurchaseResult struct {
	Status Status
	// Verified is true when the provider could verify the transaction of a successful purchase.
	Verified bool
}

// Commerce looks up and purchases products.
type Commerce interface {
	Products(ctx context.Context, ids []string) ([]Product, error)
	Purchase(ctx context.Context, productID string) (PurchaseResult, error)
}

// DisplayName is the label of the tip at index: "<price> <name>" of the product, or a placeholder
// label when the product is unknown.
func DisplayName(index int, p *Product) string {
	if p != nil {
		return p.DisplayPrice + " " + p.DisplayName
	}
	return MockDisplayName(index)
}

// MockDisplayName is the placeholder label of the tip at index.
// Indexes beyond the placeholder table reuse its last entry.
func MockDisplayName(index int) string {
	price := mockPrices[clamp(index, len(mockPrices))]
	name := mockNames[clamp(index, len(mockNames))]
	return price + " " + name
}

func clamp(index, n int) int {
	return max(0, min(index, n-1))
}

// Button is a tip button to render.
type Button struct {
	ProductID string
	Label     string
}

// Jar holds the tip products of the about screen.
type Jar struct {
	commerce Commerce
	ids      []string

	mu       sync.RWMutex
	products []Product
	loaded   bool

	log *slog.Logger
}

// NewJar returns a Jar for the product ids, in display order. commerce may be nil when no store is available.
func NewJar(commerce Commerce, ids []string, l *slog.Logger) *Jar {
	if l == nil {
		l = slog.Default()
	}
	return &Jar{
		commerce: commerce,
		ids:      slices.Clone(ids),
		log:      l,
	}
}

// Load looks up the products. A failed lookup leaves the jar with no products, which renders placeholder labels.
func (j *Jar) Load(ctx context.Context) {
	var products []Product
	if len(j.ids) > 0 && j.commerce != nil {
		p, err := j.commerce.Products(ctx, j.ids)
		if err != nil {
			j.log.Warn("Could not load tip products", "error", err)
		} else {
			products = p
		}
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.products = products
	j.loaded = true
}

// Buttons returns the buttons to render, none until Load completed.
//
// Without any loaded product, every id gets a placeholder label. Otherwise, ids which were not
// returned by the commerce provider are not shown.
func (j *Jar) Buttons() []Button {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if !j.loaded {
		return nil
	}

	var buttons []Button
	for i, id := range j.ids {
		if len(j.products) == 0 {
			buttons = append(buttons, Button{ProductID: id, Label: MockDisplayName(i)})
			continue
		}
		p, ok := j.product(id)
		if !ok {
			continue
		}
		buttons = append(buttons, Button{ProductID: id, Label: DisplayName(i, &p)})
	}
	return buttons
}

func (j *Jar) product(id string) (Product, bool) {
	i := slices.IndexFunc(j.products, func(p Product) bool { return p.ID == id })
	if i < 0 {
		return Product{}, false
	}
	return j.products[i], true
}

// Purchase buys the product. thankYou is true only for a verified successful purchase.
func (j *Jar) Purchase(ctx context.Context, productID string) (thankYou bool, err error) {
	j.mu.RLock()
	_, ok := j.product(productID)
	j.mu.RUnlock()
	if !ok || j.commerce == nil {
		return false, fmt.Errorf("%w: %q", ErrUnknownProduct, productID)
	}

	res, err := j.commerce.Purchase(ctx, productID)
	if err != nil {
		return false, fmt.Errorf("could not purchase %q: %v", productID, err)
	}
	j.log.Debug("Tip purchase completed", "product", productID, "status", res.Status, "verified", res.Verified)

	return res.Status == StatusSuccess && res.Verified, nil
}

// StaticCommerce is a Commerce serving a fixed product list. Purchases always stay pending.
type StaticCommerce []Product

// Products returns the known products among ids, in ids order.
func (c StaticCommerce) Products(_ context.Context, ids []string) ([]Product, error) {
	var products []Product
	for _, id := range ids {
		for _, p := range c {
			if p.ID == id {
				products = append(products, p)
				break
			}
		}
	}
	return products, nil
}

// Purchase reports a pending purchase for known products.
func (c StaticCommerce) Purchase(_ context.Context, productID string) (PurchaseResult, error) {
	if !slices.ContainsFunc(c, func(p Product) bool { return p.ID == productID }) {
		return PurchaseResult{}, fmt.Errorf("%w: %q", ErrUnknownProduct, productID)
	}
	return PurchaseResult{Status: StatusPending}, nil
}
