// Package admin provides the data side of a back-office: per-entity
// descriptors declaring which fields a list view shows, searches and filters
// on, and a List operation that executes those queries against storage. No
// rendering and no routing live here; a back-office frontend consumes the
// rows.
package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"shop/pkg/domain"
	"shop/pkg/serrors"
	"shop/pkg/storage"
)

// Entity names accepted by List.
const (
	EntityUsers      = "users"
	EntityCategories = "categories"
	EntityBrands     = "brands"
	EntityProducts   = "products"
	EntityCarts      = "carts"
	EntityOrders     = "orders"
	EntityReviews    = "reviews"
)

// Descriptor declares how one entity appears in the back-office.
type Descriptor struct {
	// Entity is the name used with List.
	Entity string
	// ListColumns are the row keys produced for the list view, in order.
	ListColumns []string
	// SearchFields documents what the free-text search matches against.
	SearchFields []string
	// FilterFields are the keys accepted in Query.Filters.
	FilterFields []string
}

// Descriptors returns the back-office registration of every entity.
func Descriptors() []Descriptor {
	return []Descriptor{
		{
			Entity:       EntityUsers,
			ListColumns:  []string{"handle", "email", "firstName", "lastName", "admin", "createdAt"},
			SearchFields: []string{"handle", "email"},
		},
		{
			Entity:       EntityCategories,
			ListColumns:  []string{"name", "parentId", "createdAt"},
			SearchFields: []string{"name"},
		},
		{
			Entity:       EntityBrands,
			ListColumns:  []string{"name", "createdAt"},
			SearchFields: []string{"name"},
		},
		{
			Entity:       EntityProducts,
			ListColumns:  []string{"name", "price", "stock", "ratingAvg", "ratingCount", "createdAt"},
			SearchFields: []string{"name"},
			FilterFields: []string{"categoryId", "brandId"},
		},
		{
			Entity:       EntityCarts,
			ListColumns:  []string{"id", "userId", "updatedAt"},
			FilterFields: []string{"userId"},
		},
		{
			Entity:       EntityOrders,
			ListColumns:  []string{"number", "userId", "status", "total", "createdAt"},
			SearchFields: []string{"number"},
			FilterFields: []string{"userId"},
		},
		{
			Entity:       EntityReviews,
			ListColumns:  []string{"productId", "userId", "rating", "createdAt"},
			FilterFields: []string{"productId"},
		},
	}
}

// Query narrows a List call. Search is free text matched against the
// entity's search fields; Filters must use the entity's filter fields.
type Query struct {
	Search  string
	Filters map[string]string
	Cursor  string
	Limit   uint
}

// Row is one list-view row, keyed by the entity's list columns.
type Row map[string]any

// Page is a page of list-view rows.
type Page struct {
	Rows []Row
	// NextCursor is empty when there is no next page.
	NextCursor string
}

//go:generate mockgen -package mockadmin -source=admin.go -destination=mock/mockadmin.go Admin
type Admin interface {
	List(ctx context.Context, entity string, query Query) (Page, error)
}

// admin is the concrete implementation of the Admin interface.
type admin struct {
	storage storage.Storage
}

// defaultPageLimit is used when a query does not set a page size.
const defaultPageLimit = 20

// List executes an entity's list view: search, filters and paging as its
// descriptor declares. A zero limit falls back to defaultPageLimit.
func (a admin) List(ctx context.Context, entity string, query Query) (Page, error) {
	if query.Limit == 0 {
		query.Limit = defaultPageLimit
	}

	switch entity {
	case EntityUsers:
		return a.listUsers(ctx, query)
	case EntityCategories:
		return a.listCategories(ctx, query)
	case EntityBrands:
		return a.listBrands(ctx, query)
	case EntityProducts:
		return a.listProducts(ctx, query)
	case EntityCarts:
		return a.listCarts(ctx, query)
	case EntityOrders:
		return a.listOrders(ctx, query)
	case EntityReviews:
		return a.listReviews(ctx, query)
	default:
		return Page{}, serrors.With(serrors.ErrInvalidInput, "unknown entity %q", entity)
	}
}

// listUsers resolves the search term as an exact handle or email.
func (a admin) listUsers(ctx context.Context, query Query) (Page, error) {
	if query.Search == "" {
		return Page{}, serrors.With(serrors.ErrInvalidInput, "users are listed by handle or email")
	}

	var user *domain.User
	var err error
	if strings.Contains(query.Search, "@") {
		user, err = a.storage.UserByEmail(ctx, query.Search)
	} else {
		user, err = a.storage.UserByHandle(ctx, query.Search)
	}
	if err != nil {
		return Page{}, fmt.Errorf("could not look up user: %w", err)
	}
	if user == nil {
		return Page{}, nil
	}

	return Page{Rows: []Row{{
		"handle":    user.Handle,
		"email":     user.Email,
		"firstName": user.FirstName,
		"lastName":  user.LastName,
		"admin":     user.Admin,
		"createdAt": user.CreatedAt,
	}}}, nil
}

func (a admin) listCategories(ctx context.Context, query Query) (Page, error) {
	categories, err := a.storage.Categories(ctx)
	if err != nil {
		return Page{}, fmt.Errorf("could not get categories: %w", err)
	}

	var page Page
	for _, category := range categories {
		if !matches(category.Name, query.Search) {
			continue
		}
		row := Row{
			"name":      category.Name,
			"parentId":  nil,
			"createdAt": category.CreatedAt,
		}
		if category.ParentID != nil {
			row["parentId"] = uuid.UUID(*category.ParentID).String()
		}
		page.Rows = append(page.Rows, row)
	}

	return page, nil
}

func (a admin) listBrands(ctx context.Context, query Query) (Page, error) {
	brands, err := a.storage.Brands(ctx)
	if err != nil {
		return Page{}, fmt.Errorf("could not get brands: %w", err)
	}

	var page Page
	for _, brand := range brands {
		if !matches(brand.Name, query.Search) {
			continue
		}
		page.Rows = append(page.Rows, Row{
			"name":      brand.Name,
			"createdAt": brand.CreatedAt,
		})
	}

	return page, nil
}

func (a admin) listProducts(ctx context.Context, query Query) (Page, error) {
	filter := storage.ProductFilter{
		NameContains: query.Search,
		Limit:        query.Limit,
	}
	if raw, ok := query.Filters["categoryId"]; ok {
		id, err := uuid.Parse(raw)
		if err != nil {
			return Page{}, serrors.Wrap(serrors.ErrInvalidInput, err, "invalid categoryId filter")
		}
		categoryID := domain.CategoryID(id)
		filter.CategoryID = &categoryID
	}
	if raw, ok := query.Filters["brandId"]; ok {
		id, err := uuid.Parse(raw)
		if err != nil {
			return Page{}, serrors.Wrap(serrors.ErrInvalidInput, err, "invalid brandId filter")
		}
		brandID := domain.BrandID(id)
		filter.BrandID = &brandID
	}
	if query.Cursor != "" {
		t, err := parseCursor(query.Cursor)
		if err != nil {
			return Page{}, err
		}
		filter.Cursor = t
	}

	productPage, err := a.storage.Products(ctx, filter)
	if err != nil {
		return Page{}, fmt.Errorf("could not get products: %w", err)
	}

	var page Page
	for _, product := range productPage.Products {
		page.Rows = append(page.Rows, Row{
			"name":        product.Name,
			"price":       product.Price,
			"stock":       product.Stock,
			"ratingAvg":   product.RatingAvg,
			"ratingCount": product.RatingCount,
			"createdAt":   product.CreatedAt,
		})
	}
	if productPage.NextCursor != nil {
		page.NextCursor = formatCursor(*productPage.NextCursor)
	}

	return page, nil
}

// listCarts shows a single user's live cart; carts are only reachable
// through their owner.
func (a admin) listCarts(ctx context.Context, query Query) (Page, error) {
	raw, ok := query.Filters["userId"]
	if !ok {
		return Page{}, serrors.With(serrors.ErrInvalidInput, "carts are listed by userId")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return Page{}, serrors.Wrap(serrors.ErrInvalidInput, err, "invalid userId filter")
	}

	cart, err := a.storage.CartByUser(ctx, domain.UserID(id))
	if err != nil {
		return Page{}, fmt.Errorf("could not get cart: %w", err)
	}
	if cart == nil {
		return Page{}, nil
	}

	return Page{Rows: []Row{{
		"id":        uuid.UUID(cart.ID).String(),
		"userId":    uuid.UUID(cart.UserID).String(),
		"updatedAt": cart.UpdatedAt,
	}}}, nil
}

func (a admin) listOrders(ctx context.Context, query Query) (Page, error) {
	if query.Search != "" {
		order, err := a.storage.OrderByNumber(ctx, query.Search)
		if err != nil {
			return Page{}, fmt.Errorf("could not get order: %w", err)
		}
		if order == nil {
			return Page{}, nil
		}

		return Page{Rows: []Row{orderRow(*order)}}, nil
	}

	raw, ok := query.Filters["userId"]
	if !ok {
		return Page{}, serrors.With(serrors.ErrInvalidInput, "orders are listed by number or userId")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return Page{}, serrors.Wrap(serrors.ErrInvalidInput, err, "invalid userId filter")
	}

	var cursor time.Time
	if query.Cursor != "" {
		cursor, err = parseCursor(query.Cursor)
		if err != nil {
			return Page{}, err
		}
	}

	orderPage, err := a.storage.UserOrders(ctx, domain.UserID(id), cursor, query.Limit)
	if err != nil {
		return Page{}, fmt.Errorf("could not get user orders: %w", err)
	}

	var page Page
	for _, order := range orderPage.Orders {
		page.Rows = append(page.Rows, orderRow(order))
	}
	if orderPage.NextCursor != nil {
		page.NextCursor = formatCursor(*orderPage.NextCursor)
	}

	return page, nil
}

func orderRow(order domain.Order) Row {
	return Row{
		"number":    order.Number,
		"userId":    uuid.UUID(order.UserID).String(),
		"status":    string(order.Status),
		"total":     order.Total,
		"createdAt": order.CreatedAt,
	}
}

func (a admin) listReviews(ctx context.Context, query Query) (Page, error) {
	raw, ok := query.Filters["productId"]
	if !ok {
		return Page{}, serrors.With(serrors.ErrInvalidInput, "reviews are listed by productId")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return Page{}, serrors.Wrap(serrors.ErrInvalidInput, err, "invalid productId filter")
	}

	var cursor time.Time
	if query.Cursor != "" {
		cursor, err = parseCursor(query.Cursor)
		if err != nil {
			return Page{}, err
		}
	}

	reviewPage, err := a.storage.ProductReviews(ctx, domain.ProductID(id), cursor, query.Limit)
	if err != nil {
		return Page{}, fmt.Errorf("could not get product reviews: %w", err)
	}

	var page Page
	for _, review := range reviewPage.Reviews {
		page.Rows = append(page.Rows, Row{
			"productId": uuid.UUID(review.ProductID).String(),
			"userId":    uuid.UUID(review.UserID).String(),
			"rating":    review.Rating,
			"createdAt": review.CreatedAt,
		})
	}
	if reviewPage.NextCursor != nil {
		page.NextCursor = formatCursor(*reviewPage.NextCursor)
	}

	return page, nil
}

func matches(value, search string) bool {
	if search == "" {
		return true
	}

	return strings.Contains(strings.ToLower(value), strings.ToLower(search))
}

func parseCursor(cursor string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, cursor)
	if err != nil {
		return time.Time{}, serrors.Wrap(serrors.ErrInvalidInput, err, "invalid cursor")
	}

	return t, nil
}

func formatCursor(t time.Time) string { return t.Format(time.RFC3339Nano) }

// New creates a new Admin service backed by the provided storage.
func New(storage storage.Storage) Admin {
	return &admin{storage: storage}
}
