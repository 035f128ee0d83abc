package domain

import "time"

// Rating represents a single user's score for a movie. At most one exists per (movie, user).
type Rating struct {
	ID        int64
	MovieID   int64
	UserID    int64
	Score     int
	CreatedAt time.Time
	UpdatedAt time.Time
}
