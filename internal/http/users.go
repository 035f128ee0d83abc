package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Clark-Hu/movie-ratings/internal/auth"
	"github.com/Clark-Hu/movie-ratings/internal/domain"
	"github.com/Clark-Hu/movie-ratings/internal/repository"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type registerResponse struct {
	Message string       `json:"message"`
	User    userResponse `json:"user"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	ExpiresIn int64     `json:"expires_in"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.Role = strings.TrimSpace(req.Role)

	if err := s.validate.Struct(req); err != nil {
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", validationMessage(err))
		return
	}

	role := domain.RoleUser
	if req.Role != "" {
		role = domain.Role(req.Role)
	}

	ctx := r.Context()
	taken, err := s.repo.Users.UsernameExists(ctx, req.Username)
	if err != nil {
		s.respondInternal(w, "check username", err)
		return
	}
	if taken {
		s.respondError(w, http.StatusConflict, "CONFLICT", "username already exists")
		return
	}
	taken, err = s.repo.Users.EmailExists(ctx, req.Email)
	if err != nil {
		s.respondInternal(w, "check email", err)
		return
	}
	if taken {
		s.respondError(w, http.StatusConflict, "CONFLICT", "email already exists")
		return
	}

	hash, err := auth.HashPassword(req.Password, s.cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "password must be at most 72 bytes")
			return
		}
		s.respondInternal(w, "hash password", err)
		return
	}

	user, err := s.repo.Users.Create(ctx, repository.UserCreateParams{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameTaken):
			s.respondError(w, http.StatusConflict, "CONFLICT", "username already exists")
		case errors.Is(err, repository.ErrEmailTaken):
			s.respondError(w, http.StatusConflict, "CONFLICT", "email already exists")
		default:
			s.respondInternal(w, "create user", err)
		}
		return
	}

	s.respondJSON(w, http.StatusCreated, registerResponse{
		Message: "user registered successfully",
		User:    toUserResponse(user),
	})
}

// handleLogin requires the username and the email to name the same account.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.respondInvalidCredentials(w)
		return
	}

	ctx := r.Context()
	byName, err := s.repo.Users.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		s.respondLookupFailure(w, err)
		return
	}
	byEmail, err := s.repo.Users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		s.respondLookupFailure(w, err)
		return
	}
	if byName.ID != byEmail.ID {
		s.respondInvalidCredentials(w)
		return
	}

	ok, err := auth.CheckPassword(byName.PasswordHash, req.Password)
	if err != nil {
		s.respondInternal(w, "check password", err)
		return
	}
	if !ok {
		s.respondInvalidCredentials(w)
		return
	}

	token, err := s.tokens.Issue(byName.ID)
	if err != nil {
		s.respondInternal(w, "issue token", err)
		return
	}
	s.respondJSON(w, http.StatusOK, loginResponse{
		Token:     token.Value,
		ExpiresAt: token.ExpiresAt,
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
	})
}

func (s *Server) respondLookupFailure(w http.ResponseWriter, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		s.respondInvalidCredentials(w)
		return
	}
	s.respondInternal(w, "lookup user", err)
}

func (s *Server) respondInvalidCredentials(w http.ResponseWriter) {
	s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials")
}

func toUserResponse(user domain.User) userResponse {
	return userResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     string(user.Role),
	}
}
