package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/movie-ratings/internal/domain"
)

// UsersRepository persists user accounts.
type UsersRepository struct {
	pool *pgxpool.Pool
}

const userColumns = `id, username, email, password_hash, role, created_at`

// UserCreateParams bundles the fields required to register a user.
type UserCreateParams struct {
	Username     string
	Email        string
	PasswordHash string
	Role         domain.Role
}

// Create inserts a new user. Uniqueness violations map to ErrUsernameTaken or ErrEmailTaken.
func (r *UsersRepository) Create(ctx context.Context, params UserCreateParams) (domain.User, error) {
	if !params.Role.Valid() {
		return domain.User{}, fmt.Errorf("create user: unknown role %q", params.Role)
	}
	query := fmt.Sprintf(`
        INSERT INTO users (username, email, password_hash, role)
        VALUES ($1,$2,$3,$4)
        RETURNING %s
    `, userColumns)

	user, err := scanUser(r.pool.QueryRow(ctx, query, params.Username, params.Email, params.PasswordHash, string(params.Role)))
	if err != nil {
		if constraint, ok := violatedConstraint(err); ok {
			switch constraint {
			case "users_username_key":
				return domain.User{}, ErrUsernameTaken
			case "users_email_key":
				return domain.User{}, ErrEmailTaken
			}
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// GetByID fetches a user by identifier.
func (r *UsersRepository) GetByID(ctx context.Context, id int64) (domain.User, error) {
	return r.getBy(ctx, "id", id)
}

// GetByUsername fetches a user by username.
func (r *UsersRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.getBy(ctx, "username", username)
}

// GetByEmail fetches a user by email.
func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getBy(ctx, "email", email)
}

// UsernameExists reports whether the username is registered.
func (r *UsersRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username", username)
}

// EmailExists reports whether the email is registered.
func (r *UsersRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email", email)
}

// column is always a compile-time constant from this file.
func (r *UsersRepository) getBy(ctx context.Context, column string, value any) (domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s = $1`, userColumns, column)
	user, err := scanUser(r.pool.QueryRow(ctx, query, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, fmt.Errorf("get user by %s: %w", column, err)
	}
	return user, nil
}

func (r *UsersRepository) exists(ctx context.Context, column string, value any) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM users WHERE %s = $1)`, column)
	var found bool
	if err := r.pool.QueryRow(ctx, query, value).Scan(&found); err != nil {
		return false, fmt.Errorf("check user %s: %w", column, err)
	}
	return found, nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		user domain.User
		role string
	)
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &role, &user.CreatedAt); err != nil {
		return domain.User{}, err
	}
	user.Role = domain.Role(role)
	return user, nil
}
