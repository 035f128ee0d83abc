package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/Clark-Hu/movie-ratings/internal/domain"
	"github.com/Clark-Hu/movie-ratings/internal/repository"
)

var (
	errScoreMissing = errors.New("rating is required")
	errScoreInvalid = errors.New("rating must be a whole number")
)

type ratingRequest struct {
	Rating json.RawMessage `json:"rating"`
}

type ratingResponse struct {
	ID      int64 `json:"id"`
	MovieID int64 `json:"movie_id"`
	UserID  int64 `json:"user_id"`
	Rating  int   `json:"rating"`
}

type ratingEnvelope struct {
	Message string         `json:"message"`
	Rating  ratingResponse `json:"rating"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// parseScore accepts only JSON numbers with an integral value within int32 range.
func parseScore(raw json.RawMessage) (int, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return 0, errScoreMissing
	}
	var value float64
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return 0, errScoreInvalid
	}
	if value != math.Trunc(value) || value < math.MinInt32 || value > math.MaxInt32 {
		return 0, errScoreInvalid
	}
	return int(value), nil
}

func (s *Server) handleSubmitRating(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())

	movieID, ok := idParam(r, "movieID")
	if !ok {
		s.respondMovieNotFound(w)
		return
	}

	ctx := r.Context()
	if _, err := s.repo.Movies.GetByID(ctx, movieID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondMovieNotFound(w)
			return
		}
		s.respondInternal(w, "fetch movie for rating", err)
		return
	}

	rated, err := s.repo.Ratings.Exists(ctx, movieID, user.ID)
	if err != nil {
		s.respondInternal(w, "check existing rating", err)
		return
	}
	if rated {
		s.respondAlreadyRated(w)
		return
	}

	var req ratingRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	score, err := parseScore(req.Rating)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	rating, err := s.repo.Ratings.Create(ctx, repository.RatingCreateParams{
		MovieID: movieID,
		UserID:  user.ID,
		Score:   score,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyRated):
			s.respondAlreadyRated(w)
		case errors.Is(err, repository.ErrNotFound):
			s.respondMovieNotFound(w)
		default:
			s.respondInternal(w, "create rating", err)
		}
		return
	}

	s.respondJSON(w, http.StatusCreated, ratingEnvelope{
		Message: "rating submitted successfully",
		Rating:  toRatingResponse(rating),
	})
}

func (s *Server) handleUpdateRating(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())

	ratingID, ok := idParam(r, "ratingID")
	if !ok {
		s.respondRatingNotFound(w)
		return
	}

	ctx := r.Context()
	existing, err := s.repo.Ratings.GetByID(ctx, ratingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondRatingNotFound(w)
			return
		}
		s.respondInternal(w, "fetch rating", err)
		return
	}
	if existing.UserID != user.ID {
		s.respondRatingNotFound(w)
		return
	}

	var req ratingRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	score, err := parseScore(req.Rating)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	rating, err := s.repo.Ratings.UpdateScore(ctx, ratingID, user.ID, score)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondRatingNotFound(w)
			return
		}
		s.respondInternal(w, "update rating", err)
		return
	}

	s.respondJSON(w, http.StatusOK, ratingEnvelope{
		Message: "rating updated successfully",
		Rating:  toRatingResponse(rating),
	})
}

func (s *Server) handleAdminDeleteRating(w http.ResponseWriter, r *http.Request) {
	ratingID, ok := idParam(r, "ratingID")
	if !ok {
		s.respondRatingNotFound(w)
		return
	}
	s.respondDeleteResult(w, s.repo.Ratings.Delete(r.Context(), ratingID))
}

func (s *Server) handleUserDeleteRating(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())

	ratingID, ok := idParam(r, "ratingID")
	if !ok {
		s.respondRatingNotFound(w)
		return
	}
	s.respondDeleteResult(w, s.repo.Ratings.DeleteOwned(r.Context(), ratingID, user.ID))
}

func (s *Server) respondDeleteResult(w http.ResponseWriter, err error) {
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondRatingNotFound(w)
			return
		}
		s.respondInternal(w, "delete rating", err)
		return
	}
	s.respondJSON(w, http.StatusOK, messageResponse{Message: "rating deleted successfully"})
}

func (s *Server) respondAlreadyRated(w http.ResponseWriter) {
	s.respondError(w, http.StatusConflict, "CONFLICT", "you have already submitted a rating for this movie")
}

func (s *Server) respondRatingNotFound(w http.ResponseWriter) {
	s.respondError(w, http.StatusNotFound, "NOT_FOUND", "rating not found")
}

func toRatingResponse(rating domain.Rating) ratingResponse {
	return ratingResponse{
		ID:      rating.ID,
		MovieID: rating.MovieID,
		UserID:  rating.UserID,
		Rating:  rating.Score,
	}
}
