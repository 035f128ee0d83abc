package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Clark-Hu/movie-ratings/internal/auth"
	"github.com/Clark-Hu/movie-ratings/internal/config"
	"github.com/Clark-Hu/movie-ratings/internal/domain"
	"github.com/Clark-Hu/movie-ratings/internal/pgtest"
	"github.com/Clark-Hu/movie-ratings/internal/repository"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testServer struct {
	*Server
	clock *testClock
}

func buildTestServer(tb testing.TB) *testServer {
	tb.Helper()
	cfg := config.Config{
		Port:             "0",
		JWTSecret:        "test-secret",
		TokenTTLSecs:     120,
		BcryptCost:       bcrypt.MinCost,
		ReadTimeoutSecs:  15,
		WriteTimeoutSecs: 15,
		IdleTimeoutSecs:  60,
	}

	pool := pgtest.NewPool(tb, "movies_test_handlers", 42000)

	clock := &testClock{now: time.Now()}
	tokens, err := auth.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.TokenTTLSecs)*time.Second, auth.WithClock(clock.Now))
	if err != nil {
		tb.Fatalf("token manager: %v", err)
	}

	repo := repository.NewWithPool(pool)
	logger := log.New(io.Discard, "", 0)
	srv := New(cfg, nil, repo, tokens, logger)
	// Replace chi router to avoid default middleware noise.
	srv.router = chi.NewRouter()
	srv.registerRoutes()
	return &testServer{Server: srv, clock: clock}
}

func (ts *testServer) do(tb testing.TB, method, path, token, body string) *httptest.ResponseRecorder {
	tb.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) mustCreateUser(tb testing.TB, username string, role domain.Role) (domain.User, string) {
	tb.Helper()
	hash, err := auth.HashPassword("password", bcrypt.MinCost)
	if err != nil {
		tb.Fatalf("hash password: %v", err)
	}
	user, err := ts.repo.Users.Create(context.Background(), repository.UserCreateParams{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		tb.Fatalf("create user %s: %v", username, err)
	}
	token, err := ts.tokens.Issue(user.ID)
	if err != nil {
		tb.Fatalf("issue token: %v", err)
	}
	return user, token.Value
}

func (ts *testServer) mustCreateMovie(tb testing.TB, title string) domain.Movie {
	tb.Helper()
	movie, err := ts.repo.Movies.Create(context.Background(), repository.MovieCreateParams{
		Title:       title,
		Description: title + " plot",
	})
	if err != nil {
		tb.Fatalf("create movie %s: %v", title, err)
	}
	return movie
}

func (ts *testServer) mustRate(tb testing.TB, movieID, userID int64, score int) domain.Rating {
	tb.Helper()
	rating, err := ts.repo.Ratings.Create(context.Background(), repository.RatingCreateParams{
		MovieID: movieID,
		UserID:  userID,
		Score:   score,
	})
	if err != nil {
		tb.Fatalf("create rating: %v", err)
	}
	return rating
}

func decodeBody[T any](tb testing.TB, rec *httptest.ResponseRecorder) T {
	tb.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		tb.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func expectStatus(tb testing.TB, rec *httptest.ResponseRecorder, want int) {
	tb.Helper()
	if rec.Code != want {
		tb.Fatalf("status = %d, want %d (body: %s)", rec.Code, want, rec.Body.String())
	}
}

func expectError(tb testing.TB, rec *httptest.ResponseRecorder, status int, message string) {
	tb.Helper()
	expectStatus(tb, rec, status)
	resp := decodeBody[errorResponse](tb, rec)
	if resp.Message != message {
		tb.Fatalf("message = %q, want %q", resp.Message, message)
	}
}

func TestRegister(t *testing.T) {
	ts := buildTestServer(t)

	rec := ts.do(t, http.MethodPost, "/register", "", `{"username":"alice","password":"pw","email":"alice@example.com"}`)
	expectStatus(t, rec, http.StatusCreated)
	created := decodeBody[registerResponse](t, rec)
	if created.User.ID == 0 || created.User.Username != "alice" || created.User.Role != "user" {
		t.Fatalf("unexpected user payload: %+v", created.User)
	}

	stored, err := ts.repo.Users.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if stored.PasswordHash == "pw" {
		t.Fatalf("password stored in plaintext")
	}

	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"duplicate username", `{"username":"alice","password":"pw","email":"other@example.com"}`, http.StatusConflict, "username already exists"},
		{"duplicate email", `{"username":"alice2","password":"pw","email":"alice@example.com"}`, http.StatusConflict, "email already exists"},
		{"invalid email", `{"username":"bob","password":"pw","email":"not-an-email"}`, http.StatusBadRequest, "email must be a valid email address"},
		{"missing password", `{"username":"bob","email":"bob@example.com"}`, http.StatusBadRequest, "password is required"},
		{"blank username", `{"username":"   ","password":"pw","email":"bob@example.com"}`, http.StatusBadRequest, "username is required"},
		{"unknown role", `{"username":"bob","password":"pw","email":"bob@example.com","role":"superuser"}`, http.StatusBadRequest, "role must be one of [user admin]"},
		{"unknown field", `{"username":"bob","password":"pw","email":"bob@example.com","age":3}`, http.StatusBadRequest, "unable to parse request body"},
		{"empty body", ``, http.StatusBadRequest, "request body cannot be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, ts.do(t, http.MethodPost, "/register", "", tt.body), tt.status, tt.message)
		})
	}

	rec = ts.do(t, http.MethodPost, "/register", "", `{"username":"root","password":"pw","email":"root@example.com","role":"admin"}`)
	expectStatus(t, rec, http.StatusCreated)
	if got := decodeBody[registerResponse](t, rec).User.Role; got != "admin" {
		t.Fatalf("role = %s, want admin", got)
	}
}

func TestLogin(t *testing.T) {
	ts := buildTestServer(t)
	ts.mustCreateUser(t, "alice", domain.RoleUser)
	ts.mustCreateUser(t, "bob", domain.RoleUser)

	failures := []struct {
		name string
		body string
	}{
		{"wrong password", `{"username":"alice","email":"alice@example.com","password":"nope"}`},
		{"unknown user", `{"username":"carol","email":"carol@example.com","password":"password"}`},
		{"username and email of different users", `{"username":"alice","email":"bob@example.com","password":"password"}`},
		{"missing email", `{"username":"alice","password":"password"}`},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, ts.do(t, http.MethodPost, "/login", "", tt.body), http.StatusUnauthorized, "invalid credentials")
		})
	}

	rec := ts.do(t, http.MethodPost, "/login", "", `{"username":"alice","email":"alice@example.com","password":"password"}`)
	expectStatus(t, rec, http.StatusOK)
	resp := decodeBody[loginResponse](t, rec)
	if resp.Token == "" {
		t.Fatalf("expected token in login response")
	}
	if want := ts.clock.Now().Add(2 * time.Minute); resp.ExpiresAt.Sub(want) > time.Second || want.Sub(resp.ExpiresAt) > time.Second {
		t.Fatalf("expires_at = %s, want about %s", resp.ExpiresAt, want)
	}
	if resp.ExpiresIn != 120 {
		t.Fatalf("expires_in = %d, want 120", resp.ExpiresIn)
	}
}

func TestLogin_PasswordBeyondBcryptLimit(t *testing.T) {
	ts := buildTestServer(t)
	password := strings.Repeat("a", 72)
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if _, err := ts.repo.Users.Create(context.Background(), repository.UserCreateParams{
		Username:     "longpw",
		Email:        "longpw@example.com",
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	login := func(pw string) *httptest.ResponseRecorder {
		body, err := json.Marshal(loginRequest{Username: "longpw", Email: "longpw@example.com", Password: pw})
		if err != nil {
			t.Fatalf("marshal login: %v", err)
		}
		return ts.do(t, http.MethodPost, "/login", "", string(body))
	}

	expectError(t, login(password+"-anything-else"), http.StatusUnauthorized, "invalid credentials")
	expectStatus(t, login(password), http.StatusOK)
}

func TestAuthenticate_TokenLifecycle(t *testing.T) {
	ts := buildTestServer(t)
	ts.mustCreateUser(t, "alice", domain.RoleUser)

	rec := ts.do(t, http.MethodPost, "/login", "", `{"username":"alice","email":"alice@example.com","password":"password"}`)
	expectStatus(t, rec, http.StatusOK)
	token := decodeBody[loginResponse](t, rec).Token

	// A missing rating past the gate is a 404, proving the token was accepted.
	expectStatus(t, ts.do(t, http.MethodDelete, "/movies/ratings/user-delete/999?token="+token, "", ""), http.StatusNotFound)

	ts.clock.Advance(119 * time.Second)
	expectStatus(t, ts.do(t, http.MethodDelete, "/movies/ratings/user-delete/999", token, ""), http.StatusNotFound)

	ts.clock.Advance(2 * time.Second)
	expectError(t, ts.do(t, http.MethodDelete, "/movies/ratings/user-delete/999?token="+token, "", ""), http.StatusForbidden, "token expired")
}

func TestAuthenticate_Rejections(t *testing.T) {
	ts := buildTestServer(t)
	_, userToken := ts.mustCreateUser(t, "alice", domain.RoleUser)
	_, adminToken := ts.mustCreateUser(t, "root", domain.RoleAdmin)

	ghost, err := ts.tokens.Issue(987654)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	tests := []struct {
		name    string
		method  string
		path    string
		token   string
		message string
	}{
		{"missing token", http.MethodPost, "/movies/add", "", "token missing"},
		{"garbage token", http.MethodPost, "/movies/add", "garbage", "malformed token"},
		{"unknown user", http.MethodPost, "/movies/add", ghost.Value, "unknown user"},
		{"user on admin route", http.MethodPost, "/movies/add", userToken, "access denied, admin privileges required"},
		{"user on admin delete", http.MethodDelete, "/movies/ratings/admin-delete/1", userToken, "access denied, admin privileges required"},
		{"admin on user route", http.MethodPost, "/movies/ratings/submit/1", adminToken, "this endpoint is for users only"},
		{"admin on user delete", http.MethodDelete, "/movies/ratings/user-delete/1", adminToken, "this endpoint is for users only"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, ts.do(t, tt.method, tt.path, tt.token, `{"title":"x"}`), http.StatusForbidden, tt.message)
		})
	}

	movies, err := ts.repo.Movies.List(context.Background(), repository.MovieListFilters{})
	if err != nil {
		t.Fatalf("list movies: %v", err)
	}
	if len(movies.Items) != 0 {
		t.Fatalf("rejected requests must not reach the handler, found %d movies", len(movies.Items))
	}
}

func TestCreateMovie(t *testing.T) {
	ts := buildTestServer(t)
	_, adminToken := ts.mustCreateUser(t, "root", domain.RoleAdmin)

	rec := ts.do(t, http.MethodPost, "/movies/add", adminToken, `{"title":"  Arrival ","description":"Linguist meets heptapods"}`)
	expectStatus(t, rec, http.StatusCreated)
	created := decodeBody[movieCreateResponse](t, rec)
	if created.Movie.Title != "Arrival" || created.Movie.Description != "Linguist meets heptapods" {
		t.Fatalf("unexpected movie payload: %+v", created.Movie)
	}
	if loc := rec.Header().Get("Location"); loc != fmt.Sprintf("/movies/%d", created.Movie.ID) {
		t.Fatalf("Location = %q", loc)
	}

	rec = ts.do(t, http.MethodPost, "/movies/add", adminToken, `{"title":"Heat"}`)
	expectStatus(t, rec, http.StatusCreated)
	if got := decodeBody[movieCreateResponse](t, rec).Movie.Description; got != "" {
		t.Fatalf("description = %q, want empty", got)
	}

	expectError(t, ts.do(t, http.MethodPost, "/movies/add", adminToken, `{"title":"   "}`), http.StatusBadRequest, "title is required")
	expectError(t, ts.do(t, http.MethodPost, "/movies/add", adminToken, `{"title":`), http.StatusBadRequest, "malformed JSON payload")
}

func TestSubmitRating(t *testing.T) {
	ts := buildTestServer(t)
	alice, aliceToken := ts.mustCreateUser(t, "alice", domain.RoleUser)
	movie := ts.mustCreateMovie(t, "Arrival")
	path := fmt.Sprintf("/movies/ratings/submit/%d", movie.ID)

	invalid := []struct {
		name string
		body string
	}{
		{"string", `{"rating":"5"}`},
		{"bool", `{"rating":true}`},
		{"null", `{"rating":null}`},
		{"fraction", `{"rating":4.5}`},
		{"missing", `{}`},
		{"object", `{"rating":{"v":1}}`},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, ts.do(t, http.MethodPost, path, aliceToken, tt.body), http.StatusBadRequest)
		})
	}

	rec := ts.do(t, http.MethodPost, path, aliceToken, `{"rating":4}`)
	expectStatus(t, rec, http.StatusCreated)
	created := decodeBody[ratingEnvelope](t, rec)
	if created.Rating.MovieID != movie.ID || created.Rating.UserID != alice.ID || created.Rating.Rating != 4 {
		t.Fatalf("unexpected rating payload: %+v", created.Rating)
	}

	expectError(t, ts.do(t, http.MethodPost, path, aliceToken, `{"rating":2}`), http.StatusConflict, "you have already submitted a rating for this movie")
	expectError(t, ts.do(t, http.MethodPost, "/movies/ratings/submit/999999", aliceToken, `{"rating":2}`), http.StatusNotFound, "movie not found")
	expectError(t, ts.do(t, http.MethodPost, "/movies/ratings/submit/abc", aliceToken, `{"rating":2}`), http.StatusNotFound, "movie not found")

	ratings, err := ts.repo.Ratings.ListByMovie(context.Background(), movie.ID)
	if err != nil {
		t.Fatalf("list ratings: %v", err)
	}
	if len(ratings) != 1 || ratings[0].Score != 4 {
		t.Fatalf("stored ratings = %+v, want one rating of 4", ratings)
	}
}

func TestSubmitRating_ConcurrentDuplicates(t *testing.T) {
	ts := buildTestServer(t)
	_, token := ts.mustCreateUser(t, "alice", domain.RoleUser)
	movie := ts.mustCreateMovie(t, "Arrival")
	path := fmt.Sprintf("/movies/ratings/submit/%d", movie.ID)

	const workers = 8
	codes := make([]int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(`{"rating":3}`))
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			ts.router.ServeHTTP(rec, req)
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()

	created := 0
	for _, code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
		default:
			t.Fatalf("unexpected status %d", code)
		}
	}
	if created != 1 {
		t.Fatalf("created = %d, want exactly 1", created)
	}
}

func TestListMovieRatings(t *testing.T) {
	ts := buildTestServer(t)

	rec := ts.do(t, http.MethodGet, "/movies/ratings", "", "")
	expectStatus(t, rec, http.StatusOK)
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Fatalf("empty aggregation body = %s, want []", body)
	}

	u1, _ := ts.mustCreateUser(t, "u1", domain.RoleUser)
	u2, _ := ts.mustCreateUser(t, "u2", domain.RoleUser)
	u3, _ := ts.mustCreateUser(t, "u3", domain.RoleUser)
	rated := ts.mustCreateMovie(t, "Arrival")
	ts.mustCreateMovie(t, "Unrated")
	thirds := ts.mustCreateMovie(t, "Heat")

	ts.mustRate(t, rated.ID, u1.ID, 3)
	ts.mustRate(t, rated.ID, u2.ID, 4)
	ts.mustRate(t, rated.ID, u3.ID, 5)
	ts.mustRate(t, thirds.ID, u1.ID, 1)
	ts.mustRate(t, thirds.ID, u2.ID, 2)
	ts.mustRate(t, thirds.ID, u3.ID, 2)

	rec = ts.do(t, http.MethodGet, "/movies/ratings", "", "")
	expectStatus(t, rec, http.StatusOK)
	got := decodeBody[[]movieAverageResponse](t, rec)
	if len(got) != 2 {
		t.Fatalf("aggregation rows = %d, want 2 (%s)", len(got), rec.Body.String())
	}
	if got[0].ID != rated.ID || got[0].Movie != "Arrival" || got[0].Plot != "Arrival plot" || got[0].OverallRating != 4.0 || got[0].RatingCount != 3 {
		t.Fatalf("first row = %+v", got[0])
	}
	if got[1].ID != thirds.ID || got[1].OverallRating != 1.7 || got[1].RatingCount != 3 {
		t.Fatalf("second row = %+v", got[1])
	}
}

func TestGetMovie(t *testing.T) {
	ts := buildTestServer(t)
	u1, _ := ts.mustCreateUser(t, "u1", domain.RoleUser)
	u2, _ := ts.mustCreateUser(t, "u2", domain.RoleUser)
	movie := ts.mustCreateMovie(t, "Arrival")
	ts.mustRate(t, movie.ID, u2.ID, 5)
	ts.mustRate(t, movie.ID, u1.ID, 2)

	rec := ts.do(t, http.MethodGet, fmt.Sprintf("/movies/%d", movie.ID), "", "")
	expectStatus(t, rec, http.StatusOK)
	detail := decodeBody[movieDetailResponse](t, rec)
	if detail.ID != movie.ID || detail.Movie != "Arrival" || detail.Plot != "Arrival plot" {
		t.Fatalf("unexpected detail: %+v", detail)
	}
	want := []movieRatingEntry{{UserID: u2.ID, Rating: 5}, {UserID: u1.ID, Rating: 2}}
	if len(detail.Ratings) != len(want) {
		t.Fatalf("ratings = %+v, want %+v", detail.Ratings, want)
	}
	for i := range want {
		if detail.Ratings[i] != want[i] {
			t.Fatalf("ratings[%d] = %+v, want %+v", i, detail.Ratings[i], want[i])
		}
	}

	expectError(t, ts.do(t, http.MethodGet, "/movies/424242", "", ""), http.StatusNotFound, "movie not found")
	expectError(t, ts.do(t, http.MethodGet, "/movies/abc", "", ""), http.StatusNotFound, "movie not found")
}

func TestListMovies(t *testing.T) {
	ts := buildTestServer(t)
	for _, title := range []string{"Alien", "Aliens", "Heat", "Alien 3"} {
		ts.mustCreateMovie(t, title)
	}

	rec := ts.do(t, http.MethodGet, "/movies?q=alien&limit=2", "", "")
	expectStatus(t, rec, http.StatusOK)
	page := decodeBody[movieListResponse](t, rec)
	if len(page.Items) != 2 || page.NextCursor == nil {
		t.Fatalf("first page = %+v", page)
	}
	if page.Items[0].Movie != "Alien" || page.Items[1].Movie != "Aliens" {
		t.Fatalf("first page order = %+v", page.Items)
	}

	rec = ts.do(t, http.MethodGet, "/movies?q=alien&limit=2&cursor="+*page.NextCursor, "", "")
	expectStatus(t, rec, http.StatusOK)
	page = decodeBody[movieListResponse](t, rec)
	if len(page.Items) != 1 || page.Items[0].Movie != "Alien 3" || page.NextCursor != nil {
		t.Fatalf("second page = %+v", page)
	}

	expectStatus(t, ts.do(t, http.MethodGet, "/movies?cursor=!!!", "", ""), http.StatusBadRequest)
}

func TestUpdateRating(t *testing.T) {
	ts := buildTestServer(t)
	alice, aliceToken := ts.mustCreateUser(t, "alice", domain.RoleUser)
	_, bobToken := ts.mustCreateUser(t, "bob", domain.RoleUser)
	movie := ts.mustCreateMovie(t, "Arrival")
	rating := ts.mustRate(t, movie.ID, alice.ID, 2)
	path := fmt.Sprintf("/movies/ratings/update/%d", rating.ID)

	expectError(t, ts.do(t, http.MethodPut, path, bobToken, `{"rating":5}`), http.StatusNotFound, "rating not found")
	expectStatus(t, ts.do(t, http.MethodPut, path, aliceToken, `{"rating":"five"}`), http.StatusBadRequest)
	expectError(t, ts.do(t, http.MethodPut, "/movies/ratings/update/999999", aliceToken, `{"rating":5}`), http.StatusNotFound, "rating not found")

	ts.clock.Advance(time.Second)
	rec := ts.do(t, http.MethodPut, path, aliceToken, `{"rating":5}`)
	expectStatus(t, rec, http.StatusOK)
	if got := decodeBody[ratingEnvelope](t, rec).Rating.Rating; got != 5 {
		t.Fatalf("updated rating = %d, want 5", got)
	}

	stored, err := ts.repo.Ratings.GetByID(context.Background(), rating.ID)
	if err != nil {
		t.Fatalf("get rating: %v", err)
	}
	if stored.Score != 5 || stored.UpdatedAt.Before(rating.UpdatedAt) {
		t.Fatalf("stored rating = %+v", stored)
	}
}

func TestDeleteRatings(t *testing.T) {
	ts := buildTestServer(t)
	alice, aliceToken := ts.mustCreateUser(t, "alice", domain.RoleUser)
	bob, bobToken := ts.mustCreateUser(t, "bob", domain.RoleUser)
	_, adminToken := ts.mustCreateUser(t, "root", domain.RoleAdmin)
	movie := ts.mustCreateMovie(t, "Arrival")
	aliceRating := ts.mustRate(t, movie.ID, alice.ID, 2)
	bobRating := ts.mustRate(t, movie.ID, bob.ID, 4)

	alicePath := fmt.Sprintf("/movies/ratings/user-delete/%d", aliceRating.ID)
	expectError(t, ts.do(t, http.MethodDelete, alicePath, bobToken, ""), http.StatusNotFound, "rating not found")
	expectStatus(t, ts.do(t, http.MethodDelete, alicePath, aliceToken, ""), http.StatusOK)
	expectStatus(t, ts.do(t, http.MethodDelete, alicePath, aliceToken, ""), http.StatusNotFound)

	adminPath := fmt.Sprintf("/movies/ratings/admin-delete/%d", bobRating.ID)
	expectStatus(t, ts.do(t, http.MethodDelete, adminPath, adminToken, ""), http.StatusOK)
	expectError(t, ts.do(t, http.MethodDelete, adminPath, adminToken, ""), http.StatusNotFound, "rating not found")
	expectStatus(t, ts.do(t, http.MethodDelete, "/movies/ratings/admin-delete/abc", adminToken, ""), http.StatusNotFound)

	remaining, err := ts.repo.Ratings.ListByMovie(context.Background(), movie.ID)
	if err != nil {
		t.Fatalf("list ratings: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("remaining ratings = %+v, want none", remaining)
	}
}
