// Package forms contains the validation structs used by the service layer
// before any entity mutation reaches storage. Each form mirrors the shape of
// one mutating operation and declares its constraints as validator tags, so
// the rules live next to the fields they guard.
package forms

import (
	"errors"
	"fmt"
	"shop/pkg/domain"
	"shop/pkg/serrors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// check runs validator on the given form and converts failures into a single
// invalid-input error listing every offending field.
func check(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return serrors.Wrap(serrors.ErrInvalidInput, err, "invalid input")
	}

	details := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}

	return serrors.With(serrors.ErrInvalidInput, "invalid input: %s", strings.Join(details, ", "))
}

// RegisterForm carries the fields required to create a new account.
type RegisterForm struct {
	Handle    string `validate:"required,min=3,max=32,alphanum"`
	Email     string `validate:"required,email"`
	Password  string `validate:"required,min=8,max=128"`
	FirstName string `validate:"max=64"`
	LastName  string `validate:"max=64"`
	AvatarURL string `validate:"omitempty,url"`
}

func (f RegisterForm) Validate() error { return check(f) }

// ProductForm carries the fields for creating or replacing a product.
// Price is validated by hand because validator has no decimal support.
type ProductForm struct {
	Name        string `validate:"required,max=200"`
	Description string `validate:"max=4000"`
	Price       decimal.Decimal
	Stock       int `validate:"gte=0"`
}

func (f ProductForm) Validate() error {
	if f.Price.IsNegative() {
		return serrors.With(serrors.ErrInvalidInput, "invalid input: Price failed %q", "gte")
	}

	return check(f)
}

// CartItemForm guards quantities on cart mutations.
type CartItemForm struct {
	Quantity int `validate:"gte=1"`
}

func (f CartItemForm) Validate() error { return check(f) }

// CheckoutForm carries the contact snapshot captured at checkout.
type CheckoutForm struct {
	FullName string `validate:"required,max=120"`
	Email    string `validate:"required,email"`
	Phone    string `validate:"required,max=32"`
	Address  string `validate:"required,max=500"`
	Payment  string `validate:"required,oneof=CASH CARD ONLINE"`
}

func (f CheckoutForm) Validate() error { return check(f) }

// Contact converts the validated form into a domain contact snapshot.
func (f CheckoutForm) Contact() domain.OrderContact {
	return domain.OrderContact{
		FullName: f.FullName,
		Email:    f.Email,
		Phone:    f.Phone,
		Address:  f.Address,
		Payment:  domain.PaymentMethod(f.Payment),
	}
}

// ReviewForm guards review submissions and edits. Body is optional.
type ReviewForm struct {
	Rating int    `validate:"gte=1,lte=5"`
	Body   string `validate:"max=2000"`
}

func (f ReviewForm) Validate() error { return check(f) }
