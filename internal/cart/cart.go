// Package cart implements the shopping cart: the mutable pre-order state a
// user builds up, and the checkout that turns it into an immutable order in
// a single transaction. A user has at most one live cart; checkout retires
// it and abandonment reaping retires it in the background.
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"shop/internal/config"
	"shop/internal/forms"
	"shop/internal/orders"
	"shop/pkg/domain"
	"shop/pkg/metrics"
	"shop/pkg/serrors"
	"shop/pkg/storage"
)

// Cart-level failure kinds.
var (
	// ErrOutOfStock indicates the requested quantity exceeds the product's
	// available stock, either when adding to the cart or at checkout.
	ErrOutOfStock = serrors.NewKind("OUT_OF_STOCK")
	// ErrEmptyCart indicates a checkout against a cart with no lines.
	ErrEmptyCart = serrors.NewKind("EMPTY_CART")
)

// Options configure cart lifecycle behavior. These settings are typically
// derived from application configuration.
type Options struct {
	// AbandonAfter is how long a cart may sit untouched before the reaper
	// retires it.
	AbandonAfter time.Duration
	// ReapMaxAttempts limits how many times a reap job is retried.
	ReapMaxAttempts int
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		AbandonAfter:    cfg.Cart.AbandonAfter,
		ReapMaxAttempts: cfg.Cart.ReapMaxAttempts,
	}
}

// cart is the concrete implementation of the Cart interface.
type cart struct {
	options Options
	storage storage.Storage
	metrics *metrics.Shop
}

// AddItem puts qty units of a product into the user's cart, creating the
// cart on first use. Adding a product already in the cart increments its
// quantity. The combined quantity is validated against current stock.
func (c cart) AddItem(ctx context.Context,
	userID domain.UserID,
	productID domain.ProductID,
	qty int) (*domain.CartItem, error) {
	if err := (forms.CartItemForm{Quantity: qty}).Validate(); err != nil {
		return nil, err
	}

	var item *domain.CartItem
	if err := c.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		userCart, err := c.ensureCart(ctx, tx, userID)
		if err != nil {
			return err
		}

		product, err := tx.ProductByID(ctx, productID)
		if err != nil {
			return fmt.Errorf("could not get product: %w", err)
		}
		if product == nil {
			return serrors.With(serrors.ErrNotFound, "product not found")
		}

		item, err = tx.UpsertCartItem(ctx, domain.CartItem{
			CartID:    userCart.ID,
			ProductID: productID,
			Quantity:  qty,
		})
		if err != nil {
			return fmt.Errorf("could not upsert cart item: %w", err)
		}

		// validate the combined line quantity; failing here rolls the
		// increment back
		if item.Quantity > product.Stock {
			return serrors.With(ErrOutOfStock,
				"only %d of %q in stock, cart wants %d", product.Stock, product.Name, item.Quantity)
		}

		if err := tx.TouchCart(ctx, userCart.ID); err != nil {
			return fmt.Errorf("could not touch cart: %w", err)
		}

		return nil
	}); err != nil {
		return nil, err
	}

	return item, nil
}

// ensureCart returns the user's live cart, creating it (and scheduling its
// reap job) on first use.
func (c cart) ensureCart(ctx context.Context,
	tx storage.AllStorage,
	userID domain.UserID) (*domain.Cart, error) {
	userCart, err := tx.CartByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("could not get cart: %w", err)
	}
	if userCart != nil {
		return userCart, nil
	}

	userCart, err = tx.CreateCart(ctx, domain.Cart{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("could not create cart: %w", err)
	}

	if _, err := tx.AddJob(ctx, ReapJobArgs{
		CartID:       uuid.UUID(userCart.ID).String(),
		maxAttempts:  c.options.ReapMaxAttempts,
		abandonAfter: c.options.AbandonAfter,
	}, nil); err != nil {
		return nil, fmt.Errorf("could not add reap job: %w", err)
	}

	return userCart, nil
}

// UpdateQuantity replaces the quantity of an existing cart line. Use
// RemoveItem to drop a line entirely.
func (c cart) UpdateQuantity(ctx context.Context,
	userID domain.UserID,
	productID domain.ProductID,
	qty int) (*domain.CartItem, error) {
	if err := (forms.CartItemForm{Quantity: qty}).Validate(); err != nil {
		return nil, err
	}

	var item *domain.CartItem
	if err := c.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		userCart, err := tx.CartByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("could not get cart: %w", err)
		}
		if userCart == nil {
			return serrors.With(serrors.ErrNotFound, "cart not found")
		}

		product, err := tx.ProductByID(ctx, productID)
		if err != nil {
			return fmt.Errorf("could not get product: %w", err)
		}
		if product == nil {
			return serrors.With(serrors.ErrNotFound, "product not found")
		}
		if qty > product.Stock {
			return serrors.With(ErrOutOfStock,
				"only %d of %q in stock", product.Stock, product.Name)
		}

		item, err = tx.SetCartItemQuantity(ctx, userCart.ID, productID, qty)
		if err != nil {
			return fmt.Errorf("could not update cart item: %w", err)
		}
		if item == nil {
			return serrors.With(serrors.ErrNotFound, "product is not in the cart")
		}

		if err := tx.TouchCart(ctx, userCart.ID); err != nil {
			return fmt.Errorf("could not touch cart: %w", err)
		}

		return nil
	}); err != nil {
		return nil, err
	}

	return item, nil
}

// RemoveItem drops a product line from the user's cart.
func (c cart) RemoveItem(ctx context.Context,
	userID domain.UserID,
	productID domain.ProductID) error {
	return c.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		userCart, err := tx.CartByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("could not get cart: %w", err)
		}
		if userCart == nil {
			return serrors.With(serrors.ErrNotFound, "cart not found")
		}

		found, err := tx.DeleteCartItem(ctx, userCart.ID, productID)
		if err != nil {
			return fmt.Errorf("could not delete cart item: %w", err)
		}
		if !found {
			return serrors.With(serrors.ErrNotFound, "product is not in the cart")
		}

		if err := tx.TouchCart(ctx, userCart.ID); err != nil {
			return fmt.Errorf("could not touch cart: %w", err)
		}

		return nil
	})
}

// Get returns the user's cart with its lines, unit count and running total.
// Users who never added anything get an empty summary.
func (c cart) Get(ctx context.Context, userID domain.UserID) (*Summary, error) {
	userCart, err := c.storage.CartByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("could not get cart: %w", err)
	}
	if userCart == nil {
		return &Summary{Total: decimal.Zero}, nil
	}

	storedLines, err := c.storage.CartLines(ctx, userCart.ID)
	if err != nil {
		return nil, fmt.Errorf("could not get cart lines: %w", err)
	}

	summary := &Summary{Cart: *userCart, Total: decimal.Zero}
	for _, stored := range storedLines {
		line := Line{
			Item:      stored.Item,
			Product:   stored.Product,
			Available: stored.Product.ID != domain.ProductID(uuid.Nil),
			Subtotal:  decimal.Zero,
		}
		if line.Available {
			line.Subtotal = stored.Product.Price.Mul(decimal.NewFromInt(int64(stored.Item.Quantity)))
			summary.Total = summary.Total.Add(line.Subtotal)
		}
		summary.ItemCount += stored.Item.Quantity
		summary.Lines = append(summary.Lines, line)
	}

	return summary, nil
}

// Clear removes all lines from the user's cart. Clearing a cart that does
// not exist is a no-op.
func (c cart) Clear(ctx context.Context, userID domain.UserID) error {
	return c.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		userCart, err := tx.CartByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("could not get cart: %w", err)
		}
		if userCart == nil {
			return nil
		}

		if err := tx.ClearCart(ctx, userCart.ID); err != nil {
			return fmt.Errorf("could not clear cart: %w", err)
		}

		return tx.TouchCart(ctx, userCart.ID)
	})
}

// orderNumberRetries bounds how many times a checkout is retried after a
// concurrent checkout commits the same daily order number first.
const orderNumberRetries = 2

// Checkout turns the user's cart into an order in a single transaction:
// every line's stock is re-validated with a conditional decrement, the order
// is created with the current prices frozen onto its lines, and the cart is
// emptied and retired. Any line failing the stock check rolls the whole
// checkout back, so two concurrent checkouts of the last unit produce
// exactly one order. Order numbers are counted per day, so a concurrent
// checkout can claim the same number between the count and the insert; the
// unique index rejects the loser and the transaction is retried with a
// fresh count.
func (c cart) Checkout(ctx context.Context,
	userID domain.UserID,
	contact forms.CheckoutForm) (*domain.Order, []domain.OrderItem, error) {
	if err := contact.Validate(); err != nil {
		return nil, nil, err
	}

	start := time.Now()

	var order *domain.Order
	var items []domain.OrderItem
	var err error
	for attempt := 0; ; attempt++ {
		order, items, err = c.checkout(ctx, userID, contact)
		if !isOrderNumberTaken(err) || attempt >= orderNumberRetries {
			break
		}
	}
	if isOrderNumberTaken(err) {
		err = serrors.Wrap(serrors.ErrConflict, err, "could not allocate an order number")
	}

	result := "ok"
	if err != nil {
		result = "failed"
	}
	attrs := metric.WithAttributes(attribute.String("result", result))
	c.metrics.Checkouts.Add(ctx, 1, attrs)
	c.metrics.CheckoutDuration.Record(ctx, time.Since(start).Seconds(), attrs)

	if err != nil {
		return nil, nil, err
	}

	return order, items, nil
}

// checkout runs a single checkout attempt.
func (c cart) checkout(ctx context.Context,
	userID domain.UserID,
	contact forms.CheckoutForm) (*domain.Order, []domain.OrderItem, error) {
	var order *domain.Order
	var items []domain.OrderItem
	err := c.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		userCart, err := tx.CartByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("could not get cart: %w", err)
		}
		if userCart == nil {
			return serrors.With(ErrEmptyCart, "cart is empty")
		}

		lines, err := tx.CartLines(ctx, userCart.ID)
		if err != nil {
			return fmt.Errorf("could not get cart lines: %w", err)
		}
		if len(lines) == 0 {
			return serrors.With(ErrEmptyCart, "cart is empty")
		}

		total := decimal.Zero
		drafts := make([]domain.OrderItem, 0, len(lines))
		for _, line := range lines {
			if line.Product.ID == domain.ProductID(uuid.Nil) {
				return serrors.With(ErrOutOfStock, "a product in the cart is no longer available")
			}

			applied, err := tx.DecrementStock(ctx, line.Product.ID, line.Item.Quantity)
			if err != nil {
				return fmt.Errorf("could not decrement stock: %w", err)
			}
			if !applied {
				return serrors.With(ErrOutOfStock,
					"not enough stock for %q", line.Product.Name)
			}

			draft := domain.OrderItem{
				ProductID: line.Product.ID,
				Quantity:  line.Item.Quantity,
				UnitPrice: line.Product.Price,
			}
			total = total.Add(draft.Subtotal())
			drafts = append(drafts, draft)
		}

		number, err := orders.NumberFor(ctx, tx, time.Now())
		if err != nil {
			return fmt.Errorf("could not generate order number: %w", err)
		}

		order, items, err = tx.CreateOrder(ctx, domain.Order{
			UserID:  userID,
			Number:  number,
			Status:  domain.OrderStatusPending,
			Total:   total,
			Contact: contact.Contact(),
		}, drafts)
		if err != nil {
			return fmt.Errorf("could not create order: %w", err)
		}

		if err := tx.ClearCart(ctx, userCart.ID); err != nil {
			return fmt.Errorf("could not clear cart: %w", err)
		}
		if _, err := tx.RetireCart(ctx, userCart.ID); err != nil {
			return fmt.Errorf("could not retire cart: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return order, items, nil
}

// isOrderNumberTaken reports whether err is the unique violation raised when
// another checkout committed the same order number first.
func isOrderNumberTaken(err error) bool {
	var dup *storage.DuplicateError
	return errors.As(err, &dup) && dup.Entity == "order" && dup.Field == "number"
}

// New creates a new Cart service backed by the provided storage.
func New(storage storage.Storage, options Options, shopMetrics *metrics.Shop) Cart {
	return &cart{
		options: options,
		storage: storage,
		metrics: shopMetrics,
	}
}
