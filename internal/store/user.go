package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// UserRepo manages users and their API tokens.
type UserRepo struct {
	db *sql.DB
}

var userColumns = []string{"id", "username", "token", "last_node_id", "created_at"}

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var (
		u    User
		last sql.NullInt64
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Token, &last, &u.CreatedAt); err != nil {
		return User{}, err
	}
	if last.Valid {
		id := int(last.Int64)
		u.LastNodeID = &id
	}
	return u, nil
}

// Create adds a user with a freshly generated token.
func (r *UserRepo) Create(ctx context.Context, username string) (User, error) {
	u := User{
		Username:  username,
		Token:     uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
	id, err := insertID(ctx, r.db, sqlb.Insert(UsersTable.Name).
		Columns("username", "token", "created_at").
		Values(u.Username, u.Token, u.CreatedAt))
	if err != nil {
		return User{}, fmt.Errorf("insert user %q: %w", username, err)
	}
	u.ID = id
	return u, nil
}

// Get returns a user by ID.
func (r *UserRepo) Get(ctx context.Context, id int) (User, error) {
	return r.one(ctx, entsql.EQ("id", id), id)
}

// ByUsername returns a user by username.
func (r *UserRepo) ByUsername(ctx context.Context, username string) (User, error) {
	return r.one(ctx, entsql.EQ("username", username), username)
}

// ByToken returns the user owning an API token.
func (r *UserRepo) ByToken(ctx context.Context, token string) (User, error) {
	return r.one(ctx, entsql.EQ("token", token), "with token")
}

func (r *UserRepo) one(ctx context.Context, where *entsql.Predicate, key any) (User, error) {
	query, args := sqlb.Select(userColumns...).
		From(entsql.Table(UsersTable.Name)).
		Where(where).
		Query()
	u, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return User{}, notFound(err, "user", key)
	}
	return u, nil
}

// List returns all users ordered by ID.
func (r *UserRepo) List(ctx context.Context) ([]User, error) {
	query, args := sqlb.Select(userColumns...).
		From(entsql.Table(UsersTable.Name)).
		OrderBy("id").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
