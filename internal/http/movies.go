package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Clark-Hu/movie-ratings/internal/domain"
	"github.com/Clark-Hu/movie-ratings/internal/repository"
)

type movieCreateRequest struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description"`
}

type movieResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type movieCreateResponse struct {
	Message string        `json:"message"`
	Movie   movieResponse `json:"movie"`
}

type movieSummaryResponse struct {
	ID    int64  `json:"id"`
	Movie string `json:"movie"`
	Plot  string `json:"plot"`
}

type movieListResponse struct {
	Items      []movieSummaryResponse `json:"items"`
	NextCursor *string                `json:"nextCursor,omitempty"`
}

type movieRatingEntry struct {
	UserID int64 `json:"user_id"`
	Rating int   `json:"rating"`
}

type movieDetailResponse struct {
	movieSummaryResponse
	Ratings []movieRatingEntry `json:"ratings"`
}

type movieAverageResponse struct {
	movieSummaryResponse
	OverallRating float64 `json:"overall_rating"`
	RatingCount   int64   `json:"rating_count"`
}

func (s *Server) handleCreateMovie(w http.ResponseWriter, r *http.Request) {
	var req movieCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validate.Struct(req); err != nil {
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", validationMessage(err))
		return
	}

	description := ""
	if req.Description != nil {
		description = strings.TrimSpace(*req.Description)
	}

	movie, err := s.repo.Movies.Create(r.Context(), repository.MovieCreateParams{
		Title:       req.Title,
		Description: description,
	})
	if err != nil {
		s.respondInternal(w, "create movie", err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/movies/%d", movie.ID))
	s.respondJSON(w, http.StatusCreated, movieCreateResponse{
		Message: "movie added successfully",
		Movie: movieResponse{
			ID:          movie.ID,
			Title:       movie.Title,
			Description: movie.Description,
		},
	})
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	filters, err := buildMovieFilters(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	result, err := s.repo.Movies.List(r.Context(), filters)
	if err != nil {
		s.respondInternal(w, "list movies", err)
		return
	}

	items := make([]movieSummaryResponse, 0, len(result.Items))
	for _, movie := range result.Items {
		items = append(items, toMovieSummary(movie))
	}
	s.respondJSON(w, http.StatusOK, movieListResponse{Items: items, NextCursor: result.NextCursor})
}

func buildMovieFilters(query url.Values) (repository.MovieListFilters, error) {
	var filters repository.MovieListFilters

	if q := strings.TrimSpace(query.Get("q")); q != "" {
		filters.Query = &q
	}
	if val := strings.TrimSpace(query.Get("limit")); val != "" {
		limit, err := strconv.Atoi(val)
		if err != nil || limit < 0 {
			return filters, fmt.Errorf("invalid limit value")
		}
		filters.Limit = limit
	}
	if val := strings.TrimSpace(query.Get("cursor")); val != "" {
		cursor, err := repository.DecodeCursor(val)
		if err != nil {
			return filters, fmt.Errorf("invalid cursor")
		}
		filters.Cursor = cursor
	}
	return filters, nil
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	movieID, ok := idParam(r, "movieID")
	if !ok {
		s.respondMovieNotFound(w)
		return
	}

	ctx := r.Context()
	movie, err := s.repo.Movies.GetByID(ctx, movieID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondMovieNotFound(w)
			return
		}
		s.respondInternal(w, "fetch movie", err)
		return
	}

	ratings, err := s.repo.Ratings.ListByMovie(ctx, movie.ID)
	if err != nil {
		s.respondInternal(w, "list movie ratings", err)
		return
	}

	entries := make([]movieRatingEntry, 0, len(ratings))
	for _, rating := range ratings {
		entries = append(entries, movieRatingEntry{UserID: rating.UserID, Rating: rating.Score})
	}
	s.respondJSON(w, http.StatusOK, movieDetailResponse{
		movieSummaryResponse: toMovieSummary(movie),
		Ratings:              entries,
	})
}

// handleListMovieRatings reports the mean score of every rated movie.
func (s *Server) handleListMovieRatings(w http.ResponseWriter, r *http.Request) {
	aggregates, err := s.repo.Ratings.AverageByMovie(r.Context())
	if err != nil {
		s.respondInternal(w, "aggregate ratings", err)
		return
	}

	resp := make([]movieAverageResponse, 0, len(aggregates))
	for _, agg := range aggregates {
		resp = append(resp, movieAverageResponse{
			movieSummaryResponse: toMovieSummary(agg.Movie),
			OverallRating:        roundToOneDecimal(agg.Average),
			RatingCount:          agg.Count,
		})
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondMovieNotFound(w http.ResponseWriter) {
	s.respondError(w, http.StatusNotFound, "NOT_FOUND", "movie not found")
}

func toMovieSummary(movie domain.Movie) movieSummaryResponse {
	return movieSummaryResponse{
		ID:    movie.ID,
		Movie: movie.Title,
		Plot:  movie.Description,
	}
}
