package domain

import "time"

// Movie represents a catalog entry.
type Movie struct {
	ID          int64
	Title       string
	Description string
	CreatedAt   time.Time
}

// MovieRating is a movie together with the mean of its scores.
type MovieRating struct {
	Movie
	Average float64
	Count   int64
}
