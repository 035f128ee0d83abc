package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/movie-ratings/internal/domain"
)

// RatingsRepository provides helpers for movie ratings.
type RatingsRepository struct {
	pool *pgxpool.Pool
}

const ratingColumns = `id, movie_id, user_id, score, created_at, updated_at`

// RatingCreateParams captures the payload required to insert a rating.
type RatingCreateParams struct {
	MovieID int64
	UserID  int64
	Score   int
}

// Create inserts a rating. A second rating for the same (movie, user) pair yields ErrAlreadyRated
// and a reference to a missing movie yields ErrNotFound.
func (r *RatingsRepository) Create(ctx context.Context, params RatingCreateParams) (domain.Rating, error) {
	query := fmt.Sprintf(`
        INSERT INTO ratings (movie_id, user_id, score)
        VALUES ($1,$2,$3)
        RETURNING %s
    `, ratingColumns)

	rating, err := scanRating(r.pool.QueryRow(ctx, query, params.MovieID, params.UserID, params.Score))
	if err != nil {
		if constraint, ok := violatedConstraint(err); ok && constraint == "ratings_movie_user_key" {
			return domain.Rating{}, ErrAlreadyRated
		}
		if isForeignKeyViolation(err) {
			return domain.Rating{}, ErrNotFound
		}
		return domain.Rating{}, fmt.Errorf("create rating: %w", err)
	}
	return rating, nil
}

// Exists reports whether the user already rated the movie.
func (r *RatingsRepository) Exists(ctx context.Context, movieID, userID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM ratings WHERE movie_id = $1 AND user_id = $2)`
	var found bool
	if err := r.pool.QueryRow(ctx, query, movieID, userID).Scan(&found); err != nil {
		return false, fmt.Errorf("check rating: %w", err)
	}
	return found, nil
}

// GetByID retrieves a rating by identifier.
func (r *RatingsRepository) GetByID(ctx context.Context, id int64) (domain.Rating, error) {
	query := fmt.Sprintf(`SELECT %s FROM ratings WHERE id = $1`, ratingColumns)
	rating, err := scanRating(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Rating{}, ErrNotFound
		}
		return domain.Rating{}, err
	}
	return rating, nil
}

// ListByMovie returns every rating of a movie ordered by rating id.
func (r *RatingsRepository) ListByMovie(ctx context.Context, movieID int64) ([]domain.Rating, error) {
	query := fmt.Sprintf(`SELECT %s FROM ratings WHERE movie_id = $1 ORDER BY id`, ratingColumns)
	rows, err := r.pool.Query(ctx, query, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ratings := make([]domain.Rating, 0)
	for rows.Next() {
		rating, err := scanRating(rows)
		if err != nil {
			return nil, err
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ratings, nil
}

// UpdateScore overwrites the score of a rating owned by userID.
// A rating that does not exist or belongs to someone else yields ErrNotFound.
func (r *RatingsRepository) UpdateScore(ctx context.Context, id, userID int64, score int) (domain.Rating, error) {
	query := fmt.Sprintf(`
        UPDATE ratings
        SET score = $3, updated_at = now()
        WHERE id = $1 AND user_id = $2
        RETURNING %s
    `, ratingColumns)

	rating, err := scanRating(r.pool.QueryRow(ctx, query, id, userID, score))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Rating{}, ErrNotFound
		}
		return domain.Rating{}, fmt.Errorf("update rating: %w", err)
	}
	return rating, nil
}

// Delete removes a rating regardless of its owner.
func (r *RatingsRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM ratings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteOwned removes a rating only when it belongs to userID.
func (r *RatingsRepository) DeleteOwned(ctx context.Context, id, userID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM ratings WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AverageByMovie returns one row per movie that has at least one rating, with the
// mean score rounded to one decimal place. Unrated movies are not included.
func (r *RatingsRepository) AverageByMovie(ctx context.Context) ([]domain.MovieRating, error) {
	const query = `
        SELECT m.id, m.title, m.description, m.created_at,
               ROUND(AVG(r.score)::numeric, 1)::float8 AS average,
               COUNT(r.id)::int8 AS count
        FROM movies m
        JOIN ratings r ON r.movie_id = m.id
        GROUP BY m.id
        ORDER BY m.id
    `

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("aggregate ratings: %w", err)
	}
	defer rows.Close()

	results := make([]domain.MovieRating, 0)
	for rows.Next() {
		var agg domain.MovieRating
		if err := rows.Scan(&agg.ID, &agg.Title, &agg.Description, &agg.CreatedAt, &agg.Average, &agg.Count); err != nil {
			return nil, fmt.Errorf("scan aggregate: %w", err)
		}
		results = append(results, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("aggregate ratings: %w", err)
	}
	return results, nil
}

func scanRating(row pgx.Row) (domain.Rating, error) {
	var rating domain.Rating
	err := row.Scan(
		&rating.ID,
		&rating.MovieID,
		&rating.UserID,
		&rating.Score,
		&rating.CreatedAt,
		&rating.UpdatedAt,
	)
	if err != nil {
		return domain.Rating{}, err
	}
	return rating, nil
}
