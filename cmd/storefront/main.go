package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/azizbkh/boutique-client/internal/admin"
	"github.com/azizbkh/boutique-client/internal/auth"
	"github.com/azizbkh/boutique-client/internal/cart"
	"github.com/azizbkh/boutique-client/internal/catalog"
	"github.com/azizbkh/boutique-client/internal/orders"
	"github.com/azizbkh/boutique-client/internal/session"
	"github.com/azizbkh/boutique-client/pkg/api"
	"github.com/azizbkh/boutique-client/pkg/config"
	pkgerrors "github.com/azizbkh/boutique-client/pkg/errors"
	"github.com/azizbkh/boutique-client/pkg/logger"
	"github.com/azizbkh/boutique-client/pkg/metrics"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})

	ctx := context.Background()

	a, err := buildApp(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to wire storefront", err)
		os.Exit(1)
	}

	if err := a.run(ctx, os.Args[1:]); err != nil {
		reportError(err)
		os.Exit(1)
	}
}

type app struct {
	client   *api.Client
	sessions *session.Manager
	auth     *auth.Service
	catalog  *catalog.Service
	orders   *orders.Service
	admin    *admin.Service
	loader   *cart.Loader
	logger   *logger.Logger
}

func buildApp(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*app, error) {
	client, err := api.NewClient(cfg.API, logg, metrics.NewAPICallMetrics(prometheus.NewRegistry()))
	if err != nil {
		return nil, err
	}

	var store session.Store
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		store, err = session.NewRedisStore(ctx, cfg.Redis, cfg.Session.TTL)
	default:
		store, err = session.NewFileStore(cfg.Session.FilePath)
	}
	if err != nil {
		return nil, err
	}

	sessions, err := session.NewManager(store, logg)
	if err != nil {
		return nil, err
	}
	if err := sessions.Hydrate(ctx); err != nil {
		return nil, err
	}
	client.SetTokenProvider(sessions.Token)

	authSvc, err := auth.NewService(client, sessions, logg)
	if err != nil {
		return nil, err
	}
	catalogSvc, err := catalog.NewService(client, logg)
	if err != nil {
		return nil, err
	}
	ordersSvc, err := orders.NewService(client, logg)
	if err != nil {
		return nil, err
	}
	adminSvc, err := admin.NewService(client, sessions, logg)
	if err != nil {
		return nil, err
	}
	loader, err := cart.NewLoader(client, logg)
	if err != nil {
		return nil, err
	}

	return &app{
		client:   client,
		sessions: sessions,
		auth:     authSvc,
		catalog:  catalogSvc,
		orders:   ordersSvc,
		admin:    adminSvc,
		loader:   loader,
		logger:   logg,
	}, nil
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		usage()
		return nil
	}

	switch args[0] {
	case "login":
		return a.login(ctx, args[1:])
	case "logout":
		return a.auth.SignOut(ctx)
	case "register":
		return a.register(ctx, args[1:])
	case "catalog":
		return a.browse(ctx, args[1:])
	case "cart":
		return a.cart(ctx, args[1:])
	case "order":
		return a.order(ctx, args[1:])
	case "admin":
		return a.adminCmd(ctx, args[1:])
	default:
		usage()
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown command %q", args[0]))
	}
}

func (a *app) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return pkgerrors.New(pkgerrors.CodeValidation, "usage: login <email> <password>")
	}
	sess, err := a.auth.SignIn(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s %s (%s)\n", sess.User.FirstName, sess.User.Name, sess.User.Email)
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	if len(args) != 4 {
		return pkgerrors.New(pkgerrors.CodeValidation, "usage: register <last-name> <first-name> <email> <password>")
	}
	msg, err := a.auth.Register(ctx, api.RegistrationInput{
		Name:      args[0],
		FirstName: args[1],
		Email:     args[2],
		Password:  args[3],
	})
	if err != nil {
		return err
	}
	fmt.Println(msg)
	return nil
}

func (a *app) browse(ctx context.Context, args []string) error {
	if len(args) > 0 {
		products, err := a.catalog.ProductsByCategory(ctx, args[0])
		if err != nil {
			return err
		}
		printProducts(products)
		return nil
	}

	cat, err := a.catalog.Browse(ctx)
	if err != nil {
		return err
	}
	fmt.Println("categories:")
	for _, c := range cat.Categories {
		fmt.Printf("  %s\t%s\n", c.ID, c.Name)
	}
	fmt.Println("products:")
	printProducts(cat.Products)
	return nil
}

func (a *app) cart(ctx context.Context, args []string) error {
	sess, err := a.sessions.Current()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		view, err := a.loader.Load(ctx, sess.User.ID)
		if err != nil {
			return err
		}
		printCart(view)
		return nil
	}

	switch args[0] {
	case "add":
		if len(args) != 2 {
			return pkgerrors.New(pkgerrors.CodeValidation, "usage: cart add <product-id>")
		}
		record, err := a.catalog.AddToCart(ctx, sess.User.ID, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("cart now holds %d item(s), total %s\n", len(record.Items), record.Total)
		return nil
	case "remove":
		if len(args) != 2 {
			return pkgerrors.New(pkgerrors.CodeValidation, "usage: cart remove <product-id>")
		}
		mutator, err := a.attachedMutator(ctx, sess.User.ID)
		if err != nil {
			return err
		}
		view, err := mutator.RemoveOneUnit(ctx, args[1])
		if err != nil {
			return err
		}
		printCart(view)
		return nil
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown cart command %q", args[0]))
	}
}

func (a *app) order(ctx context.Context, args []string) error {
	sess, err := a.sessions.Current()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "usage: order <place|list>")
	}

	switch args[0] {
	case "place":
		mutator, err := a.attachedMutator(ctx, sess.User.ID)
		if err != nil {
			return err
		}
		order, err := mutator.PlaceOrder(ctx)
		if err != nil {
			// The order may exist even though the flow failed partway.
			if order != nil {
				fmt.Printf("order %s was created; your cart could not be cleared\n", order.ID)
			}
			return err
		}
		fmt.Printf("order %s placed, total %s\n", order.ID, order.Total)
		return nil
	case "list":
		mine, err := a.orders.ListMine(ctx, sess.User.ID)
		if err != nil {
			return err
		}
		for _, o := range mine {
			hydrated, err := a.orders.Hydrate(ctx, o)
			if err != nil {
				return err
			}
			printOrder(hydrated)
		}
		return nil
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order command %q", args[0]))
	}
}

func (a *app) adminCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "usage: admin <product|category|orders|order>")
	}

	switch args[0] {
	case "product":
		return a.adminProduct(ctx, args[1:])
	case "category":
		return a.adminCategory(ctx, args[1:])
	case "orders":
		all, err := a.orders.ListAll(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, o := range all {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d item(s)\t%s\n", o.ID, o.OwnerID, o.Status, len(o.Items), o.Total)
		}
		return w.Flush()
	case "order":
		return a.adminOrder(ctx, args[1:])
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown admin command %q", args[0]))
	}
}

func (a *app) adminProduct(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "usage: admin product <add|update|delete>")
	}
	switch args[0] {
	case "add":
		if len(args) != 4 {
			return pkgerrors.New(pkgerrors.CodeValidation, "usage: admin product add <name> <price> <category-id>")
		}
		input, err := productInput(args[1], args[2], args[3])
		if err != nil {
			return err
		}
		product, err := a.admin.SaveProduct(ctx, "", input)
		if err != nil {
			return err
		}
		fmt.Printf("product %s created\n", product.ID)
		return nil
	case "update":
		if len(args) != 5 {
			return pkgerrors.New(pkgerrors.CodeValidation, "usage: admin product update <id> <name> <price> <category-id>")
		}
		input, err := productInput(args[2], args[3], args[4])
		if err != nil {
			return err
		}
		product, err := a.admin.SaveProduct(ctx, args[1], input)
		if err != nil {
			return err
		}
		fmt.Printf("product %s updated\n", product.ID)
		return nil
	case "delete":
		if len(args) != 2 {
			return pkgerrors.New(pkgerrors.CodeValidation, "usage: admin product delete <id>")
		}
		if err := a.admin.DeleteProduct(ctx, args[1]); err != nil {
			return err
		}
		fmt.Println("product deleted")
		return nil
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown product command %q", args[0]))
	}
}

func (a *app) adminCategory(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "usage: admin category <add|update|delete>")
	}
	switch args[0] {
	case "add":
		if len(args) != 2 {
			return pkgerrors.New(pkgerrors.CodeValidation, "usage: admin category add <name>")
		}
		category, err := a.admin.SaveCategory(ctx, "", api.CategoryInput{Name: args[1]})
		if err != nil {
			return err
		}
		fmt.Printf("category %s created\n", category.ID)
		return nil
	case "update":
		if len(args) != 3 {
			return pkgerrors.New(pkgerrors.CodeValidation, "usage: admin category update <id> <name>")
		}
		category, err := a.admin.SaveCategory(ctx, args[1], api.CategoryInput{Name: args[2]})
		if err != nil {
			return err
		}
		fmt.Printf("category %s updated\n", category.ID)
		return nil
	case "delete":
		if len(args) != 2 {
			return pkgerrors.New(pkgerrors.CodeValidation, "usage: admin category delete <id>")
		}
		if err := a.admin.DeleteCategory(ctx, args[1]); err != nil {
			return err
		}
		fmt.Println("category deleted")
		return nil
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown category command %q", args[0]))
	}
}

func (a *app) adminOrder(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return pkgerrors.New(pkgerrors.CodeValidation, "usage: admin order <toggle|delete> <id>")
	}
	switch args[0] {
	case "toggle":
		all, err := a.orders.ListAll(ctx)
		if err != nil {
			return err
		}
		for _, o := range all {
			if o.ID != args[1] {
				continue
			}
			updated, err := a.orders.ToggleStatus(ctx, o.ID, o.Status)
			if err != nil {
				return err
			}
			fmt.Printf("order %s is now %s\n", updated.ID, updated.Status)
			return nil
		}
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	case "delete":
		if err := a.orders.Delete(ctx, args[1]); err != nil {
			return err
		}
		fmt.Println("order deleted")
		return nil
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order command %q", args[0]))
	}
}

// attachedMutator loads the user's live cart and returns a mutator bound to
// it, so every mutation starts from fresh server state.
func (a *app) attachedMutator(ctx context.Context, userID string) (*cart.Mutator, error) {
	view, err := a.loader.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	mutator, err := cart.NewMutator(a.client, a.logger)
	if err != nil {
		return nil, err
	}
	mutator.Attach(view)
	return mutator, nil
}

func productInput(name, price, categoryID string) (api.ProductInput, error) {
	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return api.ProductInput{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid price %q", price))
	}
	return api.ProductInput{Name: name, Price: parsed, CategoryID: categoryID}, nil
}

func printProducts(products []api.Product) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, p := range products {
		fmt.Fprintf(w, "  %s\t%s\t%s\n", p.ID, p.Name, p.Price)
	}
	_ = w.Flush()
}

func printCart(view *cart.View) {
	if view.IsEmpty() {
		fmt.Println("your cart is empty")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for id, count := range view.Counts {
		product := view.Products[id]
		fmt.Fprintf(w, "  %dx\t%s\t%s\n", count, product.Name, product.Price)
	}
	_ = w.Flush()
	fmt.Printf("total: %s\n", view.Total())
}

func printOrder(h *orders.HydratedOrder) {
	fmt.Printf("order %s (%s), total %s\n", h.Order.ID, h.Order.Status, h.Order.Total)
	for id, count := range h.Counts {
		fmt.Printf("  %dx %s\n", count, h.Products[id].Name)
	}
}

func reportError(err error) {
	typed := pkgerrors.As(err)
	if typed == nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	meta := pkgerrors.MetadataFor(typed.Code())
	fmt.Fprintf(os.Stderr, "error [%s]: %s\n", typed.Code(), meta.PublicMessage)
	if meta.Retryable {
		fmt.Fprintln(os.Stderr, "this usually passes on retry")
	}
}

func usage() {
	fmt.Println(`boutique storefront

  login <email> <password>
  logout
  register <last-name> <first-name> <email> <password>
  catalog [category-id]
  cart
  cart add <product-id>
  cart remove <product-id>
  order place
  order list
  admin product add|update|delete ...
  admin category add|update|delete ...
  admin orders
  admin order toggle|delete <id>`)
}
