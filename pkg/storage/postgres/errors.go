package postgres

import (
	"errors"
	"shop/pkg/storage"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// constraintFields maps unique-index names from the migrations to the domain
// field they guard. Unknown constraints fall back to an empty field.
var constraintFields = map[string]string{ //nolint: gochecknoglobals
	"users_handle_key":            "handle",
	"users_email_key":             "email",
	"categories_sibling_name_key": "name",
	"categories_root_name_key":    "name",
	"brands_name_key":             "name",
	"carts_user_live_key":         "cart",
	"cart_items_cart_product_key": "product",
	"orders_number_key":           "number",
	"reviews_product_user_key":    "product",
}

// mapUniqueViolation translates a unique-constraint violation into a
// *storage.DuplicateError for the given entity. Other errors pass through.
func mapUniqueViolation(err error, entity string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return &storage.DuplicateError{
			Entity: entity,
			Field:  constraintFields[pgErr.ConstraintName],
		}
	}

	return err
}

// mapRestrictViolation translates a foreign-key violation raised by a delete
// into a *storage.ReferencedError for the given entity. Other errors pass
// through.
func mapRestrictViolation(err error, entity string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
		return &storage.ReferencedError{Entity: entity}
	}

	return err
}
