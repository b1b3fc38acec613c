// Package storagetest provides an in-memory implementation of
// storage.Storage for service-level tests. It mirrors the semantics of the
// postgres backend closely enough to exercise service logic without a
// database: soft deletes, duplicate and referenced errors, conditional stock
// decrements and snapshot-based transaction rollback.
package storagetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"shop/pkg/domain"
	"shop/pkg/storage"
)

// InsertedJob records one AddJob call.
type InsertedJob struct {
	Args river.JobArgs
	Opts *river.InsertOpts
}

// Fake is an in-memory storage backend. The zero value is not usable; create
// instances with New. All methods are safe for concurrent use.
type Fake struct {
	mu    sync.Mutex
	txMu  sync.Mutex
	clock time.Time

	users      map[domain.UserID]domain.User
	categories map[domain.CategoryID]domain.Category
	brands     map[domain.BrandID]domain.Brand
	products   map[domain.ProductID]domain.Product
	carts      map[domain.CartID]domain.Cart
	cartItems  map[domain.CartItemID]domain.CartItem
	orders     map[domain.OrderID]domain.Order
	orderItems map[domain.OrderItemID]domain.OrderItem
	reviews    map[domain.ReviewID]domain.Review

	jobs []InsertedJob
	// JobInserted is returned by AddJob; set it to false to simulate a
	// unique-job collision.
	JobInserted bool
}

// New creates an empty Fake with a deterministic clock.
func New() *Fake {
	return &Fake{
		clock:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		users:       make(map[domain.UserID]domain.User),
		categories:  make(map[domain.CategoryID]domain.Category),
		brands:      make(map[domain.BrandID]domain.Brand),
		products:    make(map[domain.ProductID]domain.Product),
		carts:       make(map[domain.CartID]domain.Cart),
		cartItems:   make(map[domain.CartItemID]domain.CartItem),
		orders:      make(map[domain.OrderID]domain.Order),
		orderItems:  make(map[domain.OrderItemID]domain.OrderItem),
		reviews:     make(map[domain.ReviewID]domain.Review),
		JobInserted: true,
	}
}

// now advances the fake clock by one second per call so that rows created in
// sequence always have distinct, ordered timestamps. Callers must hold mu.
func (f *Fake) now() time.Time {
	f.clock = f.clock.Add(time.Second)

	return f.clock
}

// SetClock moves the fake clock. Rows created afterwards get timestamps
// from the new base.
func (f *Fake) SetClock(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.clock = t
}

// Jobs returns a copy of all recorded AddJob calls.
func (f *Fake) Jobs() []InsertedJob {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]InsertedJob, len(f.jobs))
	copy(out, f.jobs)

	return out
}

// snapshot captures the current state for transaction rollback.
type snapshot struct {
	clock      time.Time
	users      map[domain.UserID]domain.User
	categories map[domain.CategoryID]domain.Category
	brands     map[domain.BrandID]domain.Brand
	products   map[domain.ProductID]domain.Product
	carts      map[domain.CartID]domain.Cart
	cartItems  map[domain.CartItemID]domain.CartItem
	orders     map[domain.OrderID]domain.Order
	orderItems map[domain.OrderItemID]domain.OrderItem
	reviews    map[domain.ReviewID]domain.Review
	jobs       []InsertedJob
}

func copyMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}

	return dst
}

func (f *Fake) snapshot() snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	jobs := make([]InsertedJob, len(f.jobs))
	copy(jobs, f.jobs)

	return snapshot{
		clock:      f.clock,
		users:      copyMap(f.users),
		categories: copyMap(f.categories),
		brands:     copyMap(f.brands),
		products:   copyMap(f.products),
		carts:      copyMap(f.carts),
		cartItems:  copyMap(f.cartItems),
		orders:     copyMap(f.orders),
		orderItems: copyMap(f.orderItems),
		reviews:    copyMap(f.reviews),
		jobs:       jobs,
	}
}

func (f *Fake) restore(s snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.clock = s.clock
	f.users = s.users
	f.categories = s.categories
	f.brands = s.brands
	f.products = s.products
	f.carts = s.carts
	f.cartItems = s.cartItems
	f.orders = s.orders
	f.orderItems = s.orderItems
	f.reviews = s.reviews
	f.jobs = s.jobs
}

// tx wraps the Fake with Commit/Rollback. Rollback restores the snapshot
// taken at Begin, giving tests real all-or-nothing semantics. Transactions
// are serialized against each other so a rollback never discards another
// transaction's committed changes.
type tx struct {
	*Fake
	snap snapshot
	done bool
}

func (t *tx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	t.Fake.txMu.Unlock()

	return nil
}

func (t *tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.Fake.restore(t.snap)
	t.Fake.txMu.Unlock()

	return nil
}

// Begin starts a snapshot-backed transaction. It blocks while another
// transaction is in flight.
func (f *Fake) Begin(context.Context) (storage.TxStorage, error) {
	f.txMu.Lock()

	return &tx{Fake: f, snap: f.snapshot()}, nil
}

// WithTx runs cb against a snapshot-backed transaction, rolling back all
// changes when cb returns an error.
func (f *Fake) WithTx(ctx context.Context, cb func(storage.AllStorage) error) error {
	t, err := f.Begin(ctx)
	if err != nil {
		return err
	}
	if err := cb(t); err != nil {
		_ = t.Rollback()

		return err
	}

	return t.Commit()
}

// Close is a no-op.
func (f *Fake) Close() error { return nil }

// AddJob records the call and reports JobInserted.
func (f *Fake) AddJob(_ context.Context, args river.JobArgs, opts *river.InsertOpts) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.jobs = append(f.jobs, InsertedJob{Args: args, Opts: opts})

	return f.JobInserted, nil
}

// --- users ---

func (f *Fake) CreateUser(_ context.Context, user domain.User) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if !u.DeletedAt.IsZero() {
			continue
		}
		if u.Handle == user.Handle {
			return nil, &storage.DuplicateError{Entity: "user", Field: "handle"}
		}
		if u.Email == user.Email {
			return nil, &storage.DuplicateError{Entity: "user", Field: "email"}
		}
	}

	user.ID = domain.UserID(uuid.New())
	user.CreatedAt = f.now()
	user.UpdatedAt = user.CreatedAt
	f.users[user.ID] = user

	return &user, nil
}

func (f *Fake) UserByID(_ context.Context, id domain.UserID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if u, ok := f.users[id]; ok && u.DeletedAt.IsZero() {
		return &u, nil
	}

	return nil, nil //nolint: nilnil
}

func (f *Fake) UserByHandle(_ context.Context, handle string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.DeletedAt.IsZero() && u.Handle == handle {
			return &u, nil
		}
	}

	return nil, nil //nolint: nilnil
}

func (f *Fake) UserByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.DeletedAt.IsZero() && u.Email == email {
			return &u, nil
		}
	}

	return nil, nil //nolint: nilnil
}

func (f *Fake) UpdateUser(_ context.Context,
	id domain.UserID,
	updates storage.UserUpdates) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok || !u.DeletedAt.IsZero() {
		return nil, nil //nolint: nilnil
	}

	if updates.Email != nil {
		for otherID, other := range f.users {
			if otherID != id && other.DeletedAt.IsZero() && other.Email == *updates.Email {
				return nil, &storage.DuplicateError{Entity: "user", Field: "email"}
			}
		}
		u.Email = *updates.Email
	}
	if updates.PasswordHash != nil {
		u.PasswordHash = *updates.PasswordHash
	}
	if updates.FirstName != nil {
		u.FirstName = *updates.FirstName
	}
	if updates.LastName != nil {
		u.LastName = *updates.LastName
	}
	if updates.AvatarURL != nil {
		u.AvatarURL = *updates.AvatarURL
	}
	u.UpdatedAt = f.now()
	f.users[id] = u

	return &u, nil
}

// --- categories ---

func sameParent(a, b *domain.CategoryID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return *a == *b
}

func (f *Fake) CreateCategory(_ context.Context, category domain.Category) (*domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, c := range f.categories {
		if c.Name == category.Name && sameParent(c.ParentID, category.ParentID) {
			return nil, &storage.DuplicateError{Entity: "category", Field: "name"}
		}
	}

	category.ID = domain.CategoryID(uuid.New())
	category.CreatedAt = f.now()
	category.UpdatedAt = category.CreatedAt
	f.categories[category.ID] = category

	return &category, nil
}

func (f *Fake) UpdateCategory(_ context.Context,
	id domain.CategoryID,
	updates storage.CategoryUpdates) (*domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.categories[id]
	if !ok {
		return nil, nil //nolint: nilnil
	}

	if updates.Name != nil {
		for otherID, other := range f.categories {
			if otherID != id && other.Name == *updates.Name && sameParent(other.ParentID, c.ParentID) {
				return nil, &storage.DuplicateError{Entity: "category", Field: "name"}
			}
		}
		c.Name = *updates.Name
	}
	if updates.Description != nil {
		c.Description = *updates.Description
	}
	c.UpdatedAt = f.now()
	f.categories[id] = c

	return &c, nil
}

func (f *Fake) SetCategoryParent(_ context.Context,
	id domain.CategoryID,
	parentID *domain.CategoryID) (*domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.categories[id]
	if !ok {
		return nil, nil //nolint: nilnil
	}

	for otherID, other := range f.categories {
		if otherID != id && other.Name == c.Name && sameParent(other.ParentID, parentID) {
			return nil, &storage.DuplicateError{Entity: "category", Field: "name"}
		}
	}

	c.ParentID = parentID
	c.UpdatedAt = f.now()
	f.categories[id] = c

	return &c, nil
}

func (f *Fake) DeleteCategory(_ context.Context, id domain.CategoryID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.categories[id]; !ok {
		return false, nil
	}
	for _, c := range f.categories {
		if c.ParentID != nil && *c.ParentID == id {
			return false, &storage.ReferencedError{Entity: "category"}
		}
	}
	for _, p := range f.products {
		if p.CategoryID == id {
			return false, &storage.ReferencedError{Entity: "category"}
		}
	}

	delete(f.categories, id)

	return true, nil
}

func (f *Fake) CategoryByID(_ context.Context, id domain.CategoryID) (*domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if c, ok := f.categories[id]; ok {
		return &c, nil
	}

	return nil, nil //nolint: nilnil
}

// CategoryByIDForUpdate is a plain read: fake transactions run one at a
// time, so the row is already exclusive.
func (f *Fake) CategoryByIDForUpdate(ctx context.Context, id domain.CategoryID) (*domain.Category, error) {
	return f.CategoryByID(ctx, id)
}

func (f *Fake) Categories(context.Context) ([]domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]domain.Category, 0, len(f.categories))
	for _, c := range f.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

func (f *Fake) ChildCategoryCount(_ context.Context, id domain.CategoryID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var count int64
	for _, c := range f.categories {
		if c.ParentID != nil && *c.ParentID == id {
			count++
		}
	}

	return count, nil
}

// --- brands ---

func (f *Fake) CreateBrand(_ context.Context, brand domain.Brand) (*domain.Brand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, b := range f.brands {
		if b.Name == brand.Name {
			return nil, &storage.DuplicateError{Entity: "brand", Field: "name"}
		}
	}

	brand.ID = domain.BrandID(uuid.New())
	brand.CreatedAt = f.now()
	brand.UpdatedAt = brand.CreatedAt
	f.brands[brand.ID] = brand

	return &brand, nil
}

func (f *Fake) RenameBrand(_ context.Context, id domain.BrandID, name string) (*domain.Brand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, ok := f.brands[id]
	if !ok {
		return nil, nil //nolint: nilnil
	}
	for otherID, other := range f.brands {
		if otherID != id && other.Name == name {
			return nil, &storage.DuplicateError{Entity: "brand", Field: "name"}
		}
	}

	b.Name = name
	b.UpdatedAt = f.now()
	f.brands[id] = b

	return &b, nil
}

func (f *Fake) DeleteBrand(_ context.Context, id domain.BrandID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.brands[id]; !ok {
		return false, nil
	}
	for _, p := range f.products {
		if p.BrandID == id {
			return false, &storage.ReferencedError{Entity: "brand"}
		}
	}

	delete(f.brands, id)

	return true, nil
}

func (f *Fake) BrandByID(_ context.Context, id domain.BrandID) (*domain.Brand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if b, ok := f.brands[id]; ok {
		return &b, nil
	}

	return nil, nil //nolint: nilnil
}

func (f *Fake) Brands(context.Context) ([]domain.Brand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]domain.Brand, 0, len(f.brands))
	for _, b := range f.brands {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

// --- products ---

func (f *Fake) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	product.ID = domain.ProductID(uuid.New())
	product.CreatedAt = f.now()
	product.UpdatedAt = product.CreatedAt
	f.products[product.ID] = product

	return &product, nil
}

func (f *Fake) UpdateProduct(_ context.Context,
	id domain.ProductID,
	updates storage.ProductUpdates) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.products[id]
	if !ok || !p.DeletedAt.IsZero() {
		return nil, nil //nolint: nilnil
	}

	if updates.Name != nil {
		p.Name = *updates.Name
	}
	if updates.Description != nil {
		p.Description = *updates.Description
	}
	if updates.Price != nil {
		p.Price = *updates.Price
	}
	if updates.Stock != nil {
		p.Stock = *updates.Stock
	}
	if updates.CategoryID != nil {
		p.CategoryID = *updates.CategoryID
	}
	if updates.BrandID != nil {
		p.BrandID = *updates.BrandID
	}
	if updates.RatingAvg != nil {
		p.RatingAvg = *updates.RatingAvg
	}
	if updates.RatingCount != nil {
		p.RatingCount = *updates.RatingCount
	}
	p.UpdatedAt = f.now()
	f.products[id] = p

	return &p, nil
}

func (f *Fake) DecrementStock(_ context.Context, id domain.ProductID, qty int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.products[id]
	if !ok || !p.DeletedAt.IsZero() || p.Stock < qty {
		return false, nil
	}

	p.Stock -= qty
	p.UpdatedAt = f.now()
	f.products[id] = p

	return true, nil
}

func (f *Fake) IncrementStock(_ context.Context, id domain.ProductID, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.products[id]
	if !ok {
		return nil
	}

	p.Stock += qty
	p.UpdatedAt = f.now()
	f.products[id] = p

	return nil
}

func (f *Fake) SoftDeleteProduct(_ context.Context, id domain.ProductID) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.products[id]
	if !ok || !p.DeletedAt.IsZero() {
		return nil, nil //nolint: nilnil
	}

	p.DeletedAt = f.now()
	p.UpdatedAt = p.DeletedAt
	f.products[id] = p

	return &p, nil
}

func (f *Fake) DeleteProduct(_ context.Context, id domain.ProductID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.products[id]; !ok {
		return false, nil
	}
	for _, item := range f.orderItems {
		if item.ProductID == id {
			return false, &storage.ReferencedError{Entity: "product"}
		}
	}
	for _, item := range f.cartItems {
		if item.ProductID == id {
			return false, &storage.ReferencedError{Entity: "product"}
		}
	}

	delete(f.products, id)

	return true, nil
}

func (f *Fake) ProductByID(_ context.Context, id domain.ProductID) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if p, ok := f.products[id]; ok && p.DeletedAt.IsZero() {
		return &p, nil
	}

	return nil, nil //nolint: nilnil
}

func (f *Fake) Products(_ context.Context, filter storage.ProductFilter) (storage.ProductPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var all []domain.Product
	for _, p := range f.products {
		if !p.DeletedAt.IsZero() {
			continue
		}
		if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.BrandID != nil && p.BrandID != *filter.BrandID {
			continue
		}
		if filter.NameContains != "" &&
			!strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.NameContains)) {
			continue
		}
		if !filter.Cursor.IsZero() && !p.CreatedAt.Before(filter.Cursor) {
			continue
		}
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	page := storage.ProductPage{}
	if uint(len(all)) > filter.Limit {
		all = all[:filter.Limit]
		if len(all) > 0 {
			cursor := all[len(all)-1].CreatedAt
			page.NextCursor = &cursor
		}
	}
	page.Products = all

	return page, nil
}

func (f *Fake) ProductCountByCategory(_ context.Context, id domain.CategoryID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var count int64
	for _, p := range f.products {
		if p.DeletedAt.IsZero() && p.CategoryID == id {
			count++
		}
	}

	return count, nil
}

func (f *Fake) ProductCountByBrand(_ context.Context, id domain.BrandID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var count int64
	for _, p := range f.products {
		if p.DeletedAt.IsZero() && p.BrandID == id {
			count++
		}
	}

	return count, nil
}

// --- carts ---

func (f *Fake) CreateCart(_ context.Context, cart domain.Cart) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, c := range f.carts {
		if c.DeletedAt.IsZero() && c.UserID == cart.UserID {
			return nil, &storage.DuplicateError{Entity: "cart", Field: "cart"}
		}
	}

	cart.ID = domain.CartID(uuid.New())
	cart.CreatedAt = f.now()
	cart.UpdatedAt = cart.CreatedAt
	f.carts[cart.ID] = cart

	return &cart, nil
}

func (f *Fake) CartByUser(_ context.Context, userID domain.UserID) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, c := range f.carts {
		if c.DeletedAt.IsZero() && c.UserID == userID {
			return &c, nil
		}
	}

	return nil, nil //nolint: nilnil
}

func (f *Fake) CartByID(_ context.Context, id domain.CartID) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if c, ok := f.carts[id]; ok && c.DeletedAt.IsZero() {
		return &c, nil
	}

	return nil, nil //nolint: nilnil
}

func (f *Fake) TouchCart(_ context.Context, id domain.CartID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if c, ok := f.carts[id]; ok && c.DeletedAt.IsZero() {
		c.UpdatedAt = f.now()
		f.carts[id] = c
	}

	return nil
}

func (f *Fake) RetireCart(_ context.Context, id domain.CartID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.carts[id]
	if !ok || !c.DeletedAt.IsZero() {
		return false, nil
	}

	c.DeletedAt = f.now()
	f.carts[id] = c

	return true, nil
}

func (f *Fake) UpsertCartItem(_ context.Context, item domain.CartItem) (*domain.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, existing := range f.cartItems {
		if existing.CartID == item.CartID && existing.ProductID == item.ProductID {
			existing.Quantity += item.Quantity
			f.cartItems[id] = existing

			return &existing, nil
		}
	}

	item.ID = domain.CartItemID(uuid.New())
	item.AddedAt = f.now()
	f.cartItems[item.ID] = item

	return &item, nil
}

func (f *Fake) SetCartItemQuantity(_ context.Context,
	cartID domain.CartID,
	productID domain.ProductID,
	qty int) (*domain.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, existing := range f.cartItems {
		if existing.CartID == cartID && existing.ProductID == productID {
			existing.Quantity = qty
			f.cartItems[id] = existing

			return &existing, nil
		}
	}

	return nil, nil //nolint: nilnil
}

func (f *Fake) DeleteCartItem(_ context.Context,
	cartID domain.CartID,
	productID domain.ProductID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, existing := range f.cartItems {
		if existing.CartID == cartID && existing.ProductID == productID {
			delete(f.cartItems, id)

			return true, nil
		}
	}

	return false, nil
}

func (f *Fake) ClearCart(_ context.Context, cartID domain.CartID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, existing := range f.cartItems {
		if existing.CartID == cartID {
			delete(f.cartItems, id)
		}
	}

	return nil
}

func (f *Fake) CartLines(_ context.Context, cartID domain.CartID) ([]storage.CartLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var items []domain.CartItem
	for _, item := range f.cartItems {
		if item.CartID == cartID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].AddedAt.Before(items[j].AddedAt) })

	lines := make([]storage.CartLine, 0, len(items))
	for _, item := range items {
		line := storage.CartLine{Item: item}
		if p, ok := f.products[item.ProductID]; ok && p.DeletedAt.IsZero() {
			line.Product = p
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return nil, nil
	}

	return lines, nil
}

// --- orders ---

func (f *Fake) CreateOrder(_ context.Context,
	order domain.Order,
	items []domain.OrderItem) (*domain.Order, []domain.OrderItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, o := range f.orders {
		if o.Number == order.Number {
			return nil, nil, &storage.DuplicateError{Entity: "order", Field: "number"}
		}
	}

	order.ID = domain.OrderID(uuid.New())
	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}
	order.CreatedAt = f.now()
	order.UpdatedAt = order.CreatedAt
	f.orders[order.ID] = order

	stored := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		item.ID = domain.OrderItemID(uuid.New())
		item.OrderID = order.ID
		f.orderItems[item.ID] = item
		stored = append(stored, item)
	}

	return &order, stored, nil
}

func (f *Fake) OrderCountByNumberPrefix(_ context.Context, prefix string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var count int64
	for _, o := range f.orders {
		if strings.HasPrefix(o.Number, prefix) {
			count++
		}
	}

	return count, nil
}

func (f *Fake) UpdateOrderStatus(_ context.Context,
	id domain.OrderID,
	status domain.OrderStatus,
	paidAt *time.Time) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	o, ok := f.orders[id]
	if !ok {
		return nil, nil //nolint: nilnil
	}

	o.Status = status
	if paidAt != nil {
		o.PaidAt = *paidAt
	}
	o.UpdatedAt = f.now()
	f.orders[id] = o

	return &o, nil
}

func (f *Fake) OrderByID(_ context.Context, id domain.OrderID) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if o, ok := f.orders[id]; ok {
		return &o, nil
	}

	return nil, nil //nolint: nilnil
}

func (f *Fake) OrderByNumber(_ context.Context, number string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, o := range f.orders {
		if o.Number == number {
			return &o, nil
		}
	}

	return nil, nil //nolint: nilnil
}

func (f *Fake) OrderItems(_ context.Context, orderID domain.OrderID) ([]domain.OrderItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.OrderItem
	for _, item := range f.orderItems {
		if item.OrderID == orderID {
			out = append(out, item)
		}
	}

	return out, nil
}

func (f *Fake) UserOrders(_ context.Context,
	userID domain.UserID,
	cursor time.Time,
	limit uint) (storage.OrderPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var all []domain.Order
	for _, o := range f.orders {
		if o.UserID != userID {
			continue
		}
		if !cursor.IsZero() && !o.CreatedAt.Before(cursor) {
			continue
		}
		all = append(all, o)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	page := storage.OrderPage{}
	if uint(len(all)) > limit {
		all = all[:limit]
		if len(all) > 0 {
			next := all[len(all)-1].CreatedAt
			page.NextCursor = &next
		}
	}
	page.Orders = all

	return page, nil
}

// --- reviews ---

func (f *Fake) CreateReview(_ context.Context, review domain.Review) (*domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.reviews {
		if r.ProductID == review.ProductID && r.UserID == review.UserID {
			return nil, &storage.DuplicateError{Entity: "review", Field: "product"}
		}
	}

	review.ID = domain.ReviewID(uuid.New())
	review.CreatedAt = f.now()
	review.UpdatedAt = review.CreatedAt
	f.reviews[review.ID] = review

	return &review, nil
}

func (f *Fake) ReviewByID(_ context.Context, id domain.ReviewID) (*domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r, ok := f.reviews[id]; ok {
		return &r, nil
	}

	return nil, nil //nolint: nilnil
}

func (f *Fake) ReviewByProductAndUser(_ context.Context,
	productID domain.ProductID,
	userID domain.UserID) (*domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.reviews {
		if r.ProductID == productID && r.UserID == userID {
			return &r, nil
		}
	}

	return nil, nil //nolint: nilnil
}

func (f *Fake) UpdateReview(_ context.Context,
	id domain.ReviewID,
	updates storage.ReviewUpdates) (*domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.reviews[id]
	if !ok {
		return nil, nil //nolint: nilnil
	}

	if updates.Rating != nil {
		r.Rating = *updates.Rating
	}
	if updates.Body != nil {
		r.Body = *updates.Body
	}
	r.UpdatedAt = f.now()
	f.reviews[id] = r

	return &r, nil
}

func (f *Fake) DeleteReview(_ context.Context, id domain.ReviewID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.reviews[id]; !ok {
		return false, nil
	}
	delete(f.reviews, id)

	return true, nil
}

func (f *Fake) ProductReviews(_ context.Context,
	productID domain.ProductID,
	cursor time.Time,
	limit uint) (storage.ReviewPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var all []domain.Review
	for _, r := range f.reviews {
		if r.ProductID != productID {
			continue
		}
		if !cursor.IsZero() && !r.CreatedAt.Before(cursor) {
			continue
		}
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	page := storage.ReviewPage{}
	if uint(len(all)) > limit {
		all = all[:limit]
		if len(all) > 0 {
			next := all[len(all)-1].CreatedAt
			page.NextCursor = &next
		}
	}
	page.Reviews = all

	return page, nil
}

func (f *Fake) ReviewStats(_ context.Context, productID domain.ProductID) (storage.ReviewStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var sum int
	var count int64
	for _, r := range f.reviews {
		if r.ProductID == productID {
			sum += r.Rating
			count++
		}
	}

	stats := storage.ReviewStats{Count: count}
	if count > 0 {
		stats.Avg = float64(sum) / float64(count)
	}

	return stats, nil
}

var _ storage.Storage = (*Fake)(nil)
var _ storage.TxStorage = (*tx)(nil)
