package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/movie-ratings/internal/store"
)

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrUsernameTaken is returned when a username is already registered.
	ErrUsernameTaken = errors.New("repository: username already exists")
	// ErrEmailTaken is returned when an email is already registered.
	ErrEmailTaken = errors.New("repository: email already exists")
	// ErrAlreadyRated is returned when a user rates the same movie twice.
	ErrAlreadyRated = errors.New("repository: rating already exists")
)

const uniqueViolation = "23505"

// Repository aggregates all domain-specific repositories.
type Repository struct {
	Users   *UsersRepository
	Movies  *MoviesRepository
	Ratings *RatingsRepository
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{
		Users:   &UsersRepository{pool: pool},
		Movies:  &MoviesRepository{pool: pool},
		Ratings: &RatingsRepository{pool: pool},
	}
}

// violatedConstraint returns the constraint name when err is a unique violation.
func violatedConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
