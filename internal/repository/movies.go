package repository

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/movie-ratings/internal/domain"
)

// MoviesRepository provides persistence helpers for movie entities.
type MoviesRepository struct {
	pool *pgxpool.Pool
}

const movieColumns = `id, title, description, created_at`

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// MovieCreateParams bundles the fields required to create a movie.
type MovieCreateParams struct {
	Title       string
	Description string
}

// MovieListFilters encapsulates search and pagination options.
type MovieListFilters struct {
	Query  *string
	Limit  int
	Cursor *MovieCursor
}

// MovieCursor allows stable pagination by id.
type MovieCursor struct {
	ID int64 `json:"id"`
}

// MovieListResult returns the paginated payload.
type MovieListResult struct {
	Items      []domain.Movie
	NextCursor *string
}

// Create inserts a new movie row and returns the stored entity.
func (r *MoviesRepository) Create(ctx context.Context, params MovieCreateParams) (domain.Movie, error) {
	query := fmt.Sprintf(`
        INSERT INTO movies (title, description)
        VALUES ($1,$2)
        RETURNING %s
    `, movieColumns)

	movie, err := scanMovie(r.pool.QueryRow(ctx, query, params.Title, params.Description))
	if err != nil {
		return domain.Movie{}, fmt.Errorf("create movie: %w", err)
	}
	return movie, nil
}

// GetByID fetches a movie by its identifier.
func (r *MoviesRepository) GetByID(ctx context.Context, id int64) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE id = $1`, movieColumns)
	movie, err := scanMovie(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, err
	}
	return movie, nil
}

// List returns movies that match the provided filters, ordered by id.
func (r *MoviesRepository) List(ctx context.Context, filters MovieListFilters) (MovieListResult, error) {
	if filters.Limit <= 0 {
		filters.Limit = defaultListLimit
	} else if filters.Limit > maxListLimit {
		filters.Limit = maxListLimit
	}

	where := make([]string, 0)
	args := make([]interface{}, 0)
	arg := func(value interface{}) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.Query != nil && strings.TrimSpace(*filters.Query) != "" {
		where = append(where, fmt.Sprintf("title ILIKE %s", arg("%"+strings.TrimSpace(*filters.Query)+"%")))
	}
	if filters.Cursor != nil {
		where = append(where, fmt.Sprintf("id > %s", arg(filters.Cursor.ID)))
	}

	queryBuilder := strings.Builder{}
	queryBuilder.WriteString("SELECT ")
	queryBuilder.WriteString(movieColumns)
	queryBuilder.WriteString(" FROM movies")
	if len(where) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(where, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY id")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT %d", filters.Limit))

	rows, err := r.pool.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return MovieListResult{}, err
	}
	defer rows.Close()

	items := make([]domain.Movie, 0)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return MovieListResult{}, err
		}
		items = append(items, movie)
	}
	if err := rows.Err(); err != nil {
		return MovieListResult{}, err
	}

	var nextCursor *string
	if len(items) == filters.Limit {
		token, err := encodeCursor(MovieCursor{ID: items[len(items)-1].ID})
		if err != nil {
			return MovieListResult{}, err
		}
		nextCursor = &token
	}

	return MovieListResult{Items: items, NextCursor: nextCursor}, nil
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var movie domain.Movie
	if err := row.Scan(&movie.ID, &movie.Title, &movie.Description, &movie.CreatedAt); err != nil {
		return domain.Movie{}, err
	}
	return movie, nil
}

func encodeCursor(c MovieCursor) (string, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(payload), nil
}

// DecodeCursor parses a cursor token into a MovieCursor.
func DecodeCursor(token string) (*MovieCursor, error) {
	if token == "" {
		return nil, nil
	}
	data, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor: %w", err)
	}
	var cursor MovieCursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return nil, fmt.Errorf("invalid cursor payload: %w", err)
	}
	if cursor.ID <= 0 {
		return nil, fmt.Errorf("invalid cursor id")
	}
	return &cursor, nil
}
