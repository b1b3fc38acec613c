package postgres

import (
	"context"
	"fmt"
	"shop/pkg/domain"
	"shop/pkg/storage"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

const (
	usersTable = "users"
)

func (p *PgSQL) CreateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	var row PgUser
	row.FromDomain(user)

	var result PgUser
	found, err := p.Builder.Insert(usersTable).
		Rows(row).
		Returning(&PgUser{}).
		Executor().ScanStructContext(ctx, &result)
	if err != nil {
		return nil, fmt.Errorf("could not store user into pg: %w", mapUniqueViolation(err, "user"))
	}
	if !found {
		return nil, fmt.Errorf("insert into %s returned no row", usersTable)
	}

	return result.ToDomain(), nil
}

func (p *PgSQL) UserByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	return p.userBy(ctx, goqu.I("id").Eq(uuid.UUID(id)))
}

func (p *PgSQL) UserByHandle(ctx context.Context, handle string) (*domain.User, error) {
	return p.userBy(ctx, goqu.I("handle").Eq(handle))
}

func (p *PgSQL) UserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return p.userBy(ctx, goqu.I("email").Eq(email))
}

func (p *PgSQL) userBy(ctx context.Context, cond goqu.Expression) (*domain.User, error) {
	var row PgUser
	found, err := p.Builder.From(usersTable).
		Where(cond, goqu.I("deleted_at").IsNull()).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch user: %w", err)
	}
	if !found {
		return nil, nil //nolint: nilnil
	}

	return row.ToDomain(), nil
}

// UpdateUser applies the provided field set to a live user and returns the
// updated row. Only provided fields are changed; updated_at is set
// automatically.
func (p *PgSQL) UpdateUser(ctx context.Context, id domain.UserID, updates storage.UserUpdates) (*domain.User, error) {
	rec := goqu.Record{
		"updated_at": goqu.L("CURRENT_TIMESTAMP"),
	}
	if updates.Email != nil {
		rec["email"] = *updates.Email
	}
	if updates.PasswordHash != nil {
		rec["password_hash"] = *updates.PasswordHash
	}
	if updates.FirstName != nil {
		rec["first_name"] = nullString(*updates.FirstName)
	}
	if updates.LastName != nil {
		rec["last_name"] = nullString(*updates.LastName)
	}
	if updates.AvatarURL != nil {
		rec["avatar_url"] = nullString(*updates.AvatarURL)
	}

	var row PgUser
	found, err := p.Builder.Update(usersTable).
		Set(rec).Where(
		goqu.I("id").Eq(uuid.UUID(id)),
		goqu.I("deleted_at").IsNull(),
	).Returning(&PgUser{}).Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not update user in pg: %w", mapUniqueViolation(err, "user"))
	}
	if !found {
		return nil, nil //nolint: nilnil
	}

	return row.ToDomain(), nil
}
