package cart

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/azizbkh/boutique-client/pkg/api"
	pkgerrors "github.com/azizbkh/boutique-client/pkg/errors"
	"github.com/azizbkh/boutique-client/pkg/logger"
)

const maxConcurrentProductFetches = 8

// LoaderAPI is the read surface the loader needs from the transport.
type LoaderAPI interface {
	GetCart(ctx context.Context, userID string) (*api.Cart, error)
	GetProduct(ctx context.Context, productID string) (*api.Product, error)
}

// Loader fetches a user's cart and the detail of every distinct product it
// references, producing the aggregate View.
type Loader struct {
	api    LoaderAPI
	logger *logger.Logger
}

func NewLoader(client LoaderAPI, logg *logger.Logger) (*Loader, error) {
	if client == nil {
		return nil, fmt.Errorf("api client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Loader{api: client, logger: logg}, nil
}

// Load builds the cart view for a user. A user without a cart gets an empty
// view. Product fetches run concurrently, one per distinct id, and fail fast:
// a single failure surfaces as LOAD_FAILED with no partial view.
func (l *Loader) Load(ctx context.Context, userID string) (*View, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotAuthenticated, "sign in to view your cart")
	}
	ctx = l.logger.WithUserID(ctx, userID)

	record, err := l.api.GetCart(ctx, userID)
	if err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeNotFound) {
			return emptyView(userID), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeLoadFailed, err, "fetching cart")
	}
	if record == nil || len(record.Items) == 0 {
		view := emptyView(userID)
		if record != nil {
			view.Cart = *record
		}
		return view, nil
	}

	counts := CountItems(record.Items)
	products, err := l.fetchProducts(ctx, counts)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeLoadFailed, err, "fetching cart products")
	}

	l.logger.Debug(ctx, "cart view loaded")
	return &View{Cart: *record, Products: products, Counts: counts}, nil
}

func (l *Loader) fetchProducts(ctx context.Context, counts map[string]int) (map[string]api.Product, error) {
	var mu sync.Mutex
	products := make(map[string]api.Product, len(counts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentProductFetches)

	for id := range counts {
		id := id
		g.Go(func() error {
			product, err := l.api.GetProduct(ctx, id)
			if err != nil {
				return fmt.Errorf("product %s: %w", id, err)
			}
			mu.Lock()
			products[id] = *product
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return products, nil
}
