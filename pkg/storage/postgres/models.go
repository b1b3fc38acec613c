package postgres

import (
	"database/sql"
	"shop/pkg/domain"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

type PgUser struct {
	ID uuid.UUID `db:"id" goqu:"skipinsert"`

	Handle       string `db:"handle"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`

	FirstName sql.NullString `db:"first_name"`
	LastName  sql.NullString `db:"last_name"`
	AvatarURL sql.NullString `db:"avatar_url"`
	IsAdmin   bool           `db:"is_admin"`

	CreatedAt time.Time    `db:"created_at" goqu:"skipinsert"`
	UpdatedAt sql.NullTime `db:"updated_at" goqu:"skipinsert"`
	DeletedAt sql.NullTime `db:"deleted_at" goqu:"skipinsert"`
}

func (p *PgUser) ToDomain() *domain.User {
	return &domain.User{
		ID:           domain.UserID(p.ID),
		Handle:       p.Handle,
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		FirstName:    p.FirstName.String,
		LastName:     p.LastName.String,
		AvatarURL:    p.AvatarURL.String,
		Admin:        p.IsAdmin,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt.Time,
		DeletedAt:    p.DeletedAt.Time,
	}
}

func (p *PgUser) FromDomain(user domain.User) {
	*p = PgUser{
		ID:           uuid.UUID(user.ID),
		Handle:       user.Handle,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		FirstName:    nullString(user.FirstName),
		LastName:     nullString(user.LastName),
		AvatarURL:    nullString(user.AvatarURL),
		IsAdmin:      user.Admin,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    nullTime(user.UpdatedAt),
		DeletedAt:    nullTime(user.DeletedAt),
	}
}

type PgCategory struct {
	ID uuid.UUID `db:"id" goqu:"skipinsert"`

	Name        string        `db:"name"`
	Description string        `db:"description"`
	ParentID    uuid.NullUUID `db:"parent_id"`

	CreatedAt time.Time    `db:"created_at" goqu:"skipinsert"`
	UpdatedAt sql.NullTime `db:"updated_at" goqu:"skipinsert"`
}

func (p *PgCategory) ToDomain() *domain.Category {
	c := &domain.Category{
		ID:          domain.CategoryID(p.ID),
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt.Time,
	}
	if p.ParentID.Valid {
		parent := domain.CategoryID(p.ParentID.UUID)
		c.ParentID = &parent
	}

	return c
}

func (p *PgCategory) FromDomain(category domain.Category) {
	*p = PgCategory{
		ID:          uuid.UUID(category.ID),
		Name:        category.Name,
		Description: category.Description,
		CreatedAt:   category.CreatedAt,
		UpdatedAt:   nullTime(category.UpdatedAt),
	}
	if category.ParentID != nil {
		p.ParentID = uuid.NullUUID{UUID: uuid.UUID(*category.ParentID), Valid: true}
	}
}

type PgBrand struct {
	ID uuid.UUID `db:"id" goqu:"skipinsert"`

	Name string `db:"name"`

	CreatedAt time.Time    `db:"created_at" goqu:"skipinsert"`
	UpdatedAt sql.NullTime `db:"updated_at" goqu:"skipinsert"`
}

func (p *PgBrand) ToDomain() *domain.Brand {
	return &domain.Brand{
		ID:        domain.BrandID(p.ID),
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt.Time,
	}
}

func (p *PgBrand) FromDomain(brand domain.Brand) {
	*p = PgBrand{
		ID:        uuid.UUID(brand.ID),
		Name:      brand.Name,
		CreatedAt: brand.CreatedAt,
		UpdatedAt: nullTime(brand.UpdatedAt),
	}
}

type PgProduct struct {
	ID uuid.UUID `db:"id" goqu:"skipinsert"`

	Name        string          `db:"name"`
	Description string          `db:"description"`
	Price       decimal.Decimal `db:"price"`
	Stock       int             `db:"stock"`
	CategoryID  uuid.UUID       `db:"category_id"`
	BrandID     uuid.UUID       `db:"brand_id"`

	RatingAvg   float64 `db:"rating_avg"   goqu:"skipinsert"`
	RatingCount int     `db:"rating_count" goqu:"skipinsert"`

	CreatedAt time.Time    `db:"created_at" goqu:"skipinsert"`
	UpdatedAt sql.NullTime `db:"updated_at" goqu:"skipinsert"`
	DeletedAt sql.NullTime `db:"deleted_at" goqu:"skipinsert"`
}

func (p *PgProduct) ToDomain() *domain.Product {
	return &domain.Product{
		ID:          domain.ProductID(p.ID),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		CategoryID:  domain.CategoryID(p.CategoryID),
		BrandID:     domain.BrandID(p.BrandID),
		RatingAvg:   p.RatingAvg,
		RatingCount: p.RatingCount,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt.Time,
		DeletedAt:   p.DeletedAt.Time,
	}
}

func (p *PgProduct) FromDomain(product domain.Product) {
	*p = PgProduct{
		ID:          uuid.UUID(product.ID),
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Stock:       product.Stock,
		CategoryID:  uuid.UUID(product.CategoryID),
		BrandID:     uuid.UUID(product.BrandID),
		RatingAvg:   product.RatingAvg,
		RatingCount: product.RatingCount,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   nullTime(product.UpdatedAt),
		DeletedAt:   nullTime(product.DeletedAt),
	}
}

func pgProductsToDomain(products []PgProduct) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for i := range products {
		out = append(out, *products[i].ToDomain())
	}

	return out
}

type PgCart struct {
	ID uuid.UUID `db:"id" goqu:"skipinsert"`

	UserID uuid.UUID `db:"user_id"`

	CreatedAt time.Time    `db:"created_at" goqu:"skipinsert"`
	UpdatedAt sql.NullTime `db:"updated_at" goqu:"skipinsert"`
	DeletedAt sql.NullTime `db:"deleted_at" goqu:"skipinsert"`
}

func (p *PgCart) ToDomain() *domain.Cart {
	return &domain.Cart{
		ID:        domain.CartID(p.ID),
		UserID:    domain.UserID(p.UserID),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt.Time,
		DeletedAt: p.DeletedAt.Time,
	}
}

func (p *PgCart) FromDomain(cart domain.Cart) {
	*p = PgCart{
		ID:        uuid.UUID(cart.ID),
		UserID:    uuid.UUID(cart.UserID),
		CreatedAt: cart.CreatedAt,
		UpdatedAt: nullTime(cart.UpdatedAt),
		DeletedAt: nullTime(cart.DeletedAt),
	}
}

type PgCartItem struct {
	ID uuid.UUID `db:"id" goqu:"skipinsert"`

	CartID    uuid.UUID `db:"cart_id"`
	ProductID uuid.UUID `db:"product_id"`
	Quantity  int       `db:"quantity"`

	AddedAt time.Time `db:"added_at" goqu:"skipinsert"`
}

func (p *PgCartItem) ToDomain() *domain.CartItem {
	return &domain.CartItem{
		ID:        domain.CartItemID(p.ID),
		CartID:    domain.CartID(p.CartID),
		ProductID: domain.ProductID(p.ProductID),
		Quantity:  p.Quantity,
		AddedAt:   p.AddedAt,
	}
}

func (p *PgCartItem) FromDomain(item domain.CartItem) {
	*p = PgCartItem{
		ID:        uuid.UUID(item.ID),
		CartID:    uuid.UUID(item.CartID),
		ProductID: uuid.UUID(item.ProductID),
		Quantity:  item.Quantity,
		AddedAt:   item.AddedAt,
	}
}

type PgOrder struct {
	ID uuid.UUID `db:"id" goqu:"skipinsert"`

	UserID uuid.UUID       `db:"user_id"`
	Number string          `db:"number"`
	Status string          `db:"status"`
	Total  decimal.Decimal `db:"total"`

	FullName string `db:"full_name"`
	Email    string `db:"email"`
	Phone    string `db:"phone"`
	Address  string `db:"address"`
	Payment  string `db:"payment"`

	PaidAt sql.NullTime `db:"paid_at" goqu:"skipinsert"`

	CreatedAt time.Time    `db:"created_at" goqu:"skipinsert"`
	UpdatedAt sql.NullTime `db:"updated_at" goqu:"skipinsert"`
}

func (p *PgOrder) ToDomain() *domain.Order {
	return &domain.Order{
		ID:     domain.OrderID(p.ID),
		UserID: domain.UserID(p.UserID),
		Number: p.Number,
		Status: domain.OrderStatus(p.Status),
		Total:  p.Total,
		Contact: domain.OrderContact{
			FullName: p.FullName,
			Email:    p.Email,
			Phone:    p.Phone,
			Address:  p.Address,
			Payment:  domain.PaymentMethod(p.Payment),
		},
		PaidAt:    p.PaidAt.Time,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt.Time,
	}
}

func (p *PgOrder) FromDomain(order domain.Order) {
	*p = PgOrder{
		ID:        uuid.UUID(order.ID),
		UserID:    uuid.UUID(order.UserID),
		Number:    order.Number,
		Status:    string(order.Status),
		Total:     order.Total,
		FullName:  order.Contact.FullName,
		Email:     order.Contact.Email,
		Phone:     order.Contact.Phone,
		Address:   order.Contact.Address,
		Payment:   string(order.Contact.Payment),
		PaidAt:    nullTime(order.PaidAt),
		CreatedAt: order.CreatedAt,
		UpdatedAt: nullTime(order.UpdatedAt),
	}
}

func pgOrdersToDomain(orders []PgOrder) []domain.Order {
	out := make([]domain.Order, 0, len(orders))
	for i := range orders {
		out = append(out, *orders[i].ToDomain())
	}

	return out
}

type PgOrderItem struct {
	ID uuid.UUID `db:"id" goqu:"skipinsert"`

	OrderID   uuid.UUID       `db:"order_id"`
	ProductID uuid.UUID       `db:"product_id"`
	Quantity  int             `db:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price"`
}

func (p *PgOrderItem) ToDomain() *domain.OrderItem {
	return &domain.OrderItem{
		ID:        domain.OrderItemID(p.ID),
		OrderID:   domain.OrderID(p.OrderID),
		ProductID: domain.ProductID(p.ProductID),
		Quantity:  p.Quantity,
		UnitPrice: p.UnitPrice,
	}
}

func (p *PgOrderItem) FromDomain(item domain.OrderItem) {
	*p = PgOrderItem{
		ID:        uuid.UUID(item.ID),
		OrderID:   uuid.UUID(item.OrderID),
		ProductID: uuid.UUID(item.ProductID),
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
	}
}

func pgOrderItemsToDomain(items []PgOrderItem) []domain.OrderItem {
	out := make([]domain.OrderItem, 0, len(items))
	for i := range items {
		out = append(out, *items[i].ToDomain())
	}

	return out
}

type PgReview struct {
	ID uuid.UUID `db:"id" goqu:"skipinsert"`

	ProductID uuid.UUID `db:"product_id"`
	UserID    uuid.UUID `db:"user_id"`
	Rating    int       `db:"rating"`
	Body      string    `db:"body"`

	CreatedAt time.Time    `db:"created_at" goqu:"skipinsert"`
	UpdatedAt sql.NullTime `db:"updated_at" goqu:"skipinsert"`
}

func (p *PgReview) ToDomain() *domain.Review {
	return &domain.Review{
		ID:        domain.ReviewID(p.ID),
		ProductID: domain.ProductID(p.ProductID),
		UserID:    domain.UserID(p.UserID),
		Rating:    p.Rating,
		Body:      p.Body,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt.Time,
	}
}

func (p *PgReview) FromDomain(review domain.Review) {
	*p = PgReview{
		ID:        uuid.UUID(review.ID),
		ProductID: uuid.UUID(review.ProductID),
		UserID:    uuid.UUID(review.UserID),
		Rating:    review.Rating,
		Body:      review.Body,
		CreatedAt: review.CreatedAt,
		UpdatedAt: nullTime(review.UpdatedAt),
	}
}

func pgReviewsToDomain(reviews []PgReview) []domain.Review {
	out := make([]domain.Review, 0, len(reviews))
	for i := range reviews {
		out = append(out, *reviews[i].ToDomain())
	}

	return out
}
