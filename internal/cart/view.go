package cart

import (
	"github.com/shopspring/decimal"

	"github.com/azizbkh/boutique-client/pkg/api"
)

// View is the in-memory cart aggregate: the authoritative cart record, the
// detail of every product still referenced by it, and the derived per-product
// unit counts. It is owned by the loader/mutator pair; nothing else mutates it.
type View struct {
	Cart     api.Cart
	Products map[string]api.Product
	Counts   map[string]int
}

// CountItems derives the quantity count from a cart's item list, which holds
// one entry per unit.
func CountItems(items []string) map[string]int {
	counts := make(map[string]int, len(items))
	for _, id := range items {
		counts[id]++
	}
	return counts
}

func emptyView(ownerID string) *View {
	return &View{
		Cart:     api.Cart{OwnerID: ownerID, Items: nil, Total: decimal.Zero},
		Products: map[string]api.Product{},
		Counts:   map[string]int{},
	}
}

func (v *View) IsEmpty() bool {
	return v == nil || len(v.Cart.Items) == 0
}

// Total is the server-echoed total; the view never exposes a locally summed
// figure.
func (v *View) Total() decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return v.Cart.Total
}

// replaceFromServer rebuilds the derived state from an authoritative cart
// record, pruning products whose last unit is gone.
func (v *View) replaceFromServer(record api.Cart) {
	v.Cart = record
	v.Counts = CountItems(record.Items)
	for id := range v.Products {
		if v.Counts[id] == 0 {
			delete(v.Products, id)
		}
	}
}
