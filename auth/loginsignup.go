package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"parkwatch/middleware"
	"parkwatch/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

const requestTimeout = 5 * time.Second

type Handlers struct {
	svc *Service
	log *zap.Logger
}

func NewHandlers(svc *Service, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{svc: svc, log: log}
}

func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req SignupRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	err := h.svc.Signup(ctx, req)
	switch {
	case err == nil:
		utils.RespondWithMessage(w, http.StatusCreated, "User created successfully.")
	case errors.Is(err, ErrMissingFields):
		utils.RespondWithMessage(w, http.StatusBadRequest, "All fields are required.")
	case errors.Is(err, ErrEmailTaken):
		utils.RespondWithMessage(w, http.StatusBadRequest, "User with this email already exists.")
	default:
		h.log.Error("signup", zap.Error(err))
		utils.RespondWithServerError(w, "Server error during signup.", err)
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req loginRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	session, err := h.svc.Login(ctx, req.Email, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		utils.RespondWithMessage(w, http.StatusBadRequest, "Invalid credentials.")
		return
	}
	if err != nil {
		h.log.Error("login", zap.Error(err))
		utils.RespondWithServerError(w, "Server error during login.", err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message": "Login successful.",
		"user":    session.User,
		"token":   session.Token,
	})
}

// Me returns the profile of the caller; it must sit behind JWT.Authenticate.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	email, ok := middleware.EmailFromContext(r.Context())
	if !ok {
		utils.RespondWithMessage(w, http.StatusUnauthorized, "Missing token")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	profile, err := h.svc.Profile(ctx, email)
	if errors.Is(err, errUserNotFound) {
		utils.RespondWithMessage(w, http.StatusNotFound, "User not found.")
		return
	}
	if err != nil {
		h.log.Error("profile", zap.Error(err))
		utils.RespondWithServerError(w, "Server error", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"user": profile})
}
