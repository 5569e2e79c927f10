package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/anishneema/GymSeekr/internal/telemetry/tracing"
	"github.com/anishneema/GymSeekr/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const minPasswordLength = 8

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Handler struct {
	authService *Service
}

func NewHandler(authService *Service) *Handler {
	return &Handler{
		authService: authService,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router, rateLimit mux.MiddlewareFunc) {
	authSubrouter := mainRouter.PathPrefix("/a").Subrouter()
	authSubrouter.HandleFunc("/signup", handler.handleSignUp).Methods("POST", "OPTIONS").Name("signup")
	authSubrouter.HandleFunc("/signup/confirm", handler.handleConfirmSignUp).Methods("POST", "OPTIONS").Name("confirm-signup")
	authSubrouter.HandleFunc("/login", handler.handleLogin).Methods("POST", "OPTIONS").Name("login")
	authSubrouter.HandleFunc("/logout", handler.handleLogout).Methods("GET", "OPTIONS").Name("logout")
	authSubrouter.HandleFunc("/me", handler.handleMe).Methods("GET", "OPTIONS").Name("me")
	authSubrouter.HandleFunc("/user", handler.handleDeleteUser).Methods("DELETE", "OPTIONS").Name("delete-user")
	authSubrouter.HandleFunc("/reset", handler.handleResetPassword).Methods("POST", "OPTIONS").Name("reset-password")
	authSubrouter.HandleFunc("/reset/confirm", handler.handleConfirmResetPassword).Methods("POST", "OPTIONS").Name("confirm-reset-password")

	// rate limit all auth endpoints to prevent abuse
	authSubrouter.Use(rateLimit)
}

func (handler *Handler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.signup")
	defer span.End()

	var creds Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		log.Errorf("signup, unmarshal json params: %s", err)
		http.Error(w, "signup failed", http.StatusBadRequest)
		return
	}

	if !emailRegex.MatchString(creds.Email) {
		http.Error(w, "error, invalid email address", http.StatusBadRequest)
		return
	}
	if len(creds.Password) < minPasswordLength {
		http.Error(w, "error, password too short", http.StatusBadRequest)
		return
	}

	result, err := handler.authService.SignUp(ctx, creds.Email, creds.Password)
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			http.Error(w, "error, account already exists", http.StatusConflict)
			return
		}
		log.Errorf("signup failed for [%s]: %s", creds.Email, err)
		http.Error(w, "signup failed", http.StatusInternalServerError)
		return
	}

	resultJson, err := json.Marshal(result)
	if err != nil {
		log.Errorf("failed to marshal signup response: %s", err)
		http.Error(w, "signup failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, resultJson, http.StatusCreated)
}

func (handler *Handler) handleConfirmSignUp(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.confirmSignup")
	defer span.End()

	var confirmReq struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&confirmReq); err != nil {
		log.Errorf("confirm signup, unmarshal json params: %s", err)
		http.Error(w, "confirmation failed", http.StatusBadRequest)
		return
	}

	if err := handler.authService.ConfirmSignUp(ctx, confirmReq.Email, confirmReq.Code); err != nil {
		if errors.Is(err, ErrInvalidConfirmationCode) {
			http.Error(w, "error, invalid confirmation code", http.StatusBadRequest)
			return
		}
		log.Errorf("confirm signup failed for [%s]: %s", confirmReq.Email, err)
		http.Error(w, "confirmation failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, `{"confirmed":true}`)
}

func (handler *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.login")
	defer span.End()

	var creds Credentials
	if r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			log.Errorf("login, unmarshal json params: %s", err)
			http.Error(w, "login failed", http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			log.Errorf("login failed, parse form error: %s", err)
			http.Error(w, "parse form error", http.StatusInternalServerError)
			return
		}
		creds = Credentials{
			Email:    r.Form.Get("email"),
			Password: r.Form.Get("password"),
		}
	}

	if creds.Email == "" {
		http.Error(w, "error, email empty", http.StatusBadRequest)
		return
	}
	if creds.Password == "" {
		http.Error(w, "error, password empty", http.StatusBadRequest)
		return
	}

	// an already present session is replaced, not an error: drop it first
	if prevToken := TokenFromRequest(r); prevToken != "" {
		if _, err := handler.authService.SignOut(ctx, prevToken); err != nil {
			log.Tracef("login, drop previous session: %s", err)
		}
	}

	token, err := handler.authService.SignIn(ctx, creds, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotConfirmed):
			http.Error(w, "error, account not confirmed", http.StatusForbidden)
		case errors.Is(err, ErrWrongCredentials):
			log.Tracef("failed login attempt for user: %s", creds.Email)
			http.Error(w, "error, wrong credentials", http.StatusUnauthorized)
		default:
			log.Errorf("login failed: %s", err)
			http.Error(w, "login failed", http.StatusInternalServerError)
		}
		return
	}

	log.Trace("new login success")
	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"token": "%s"}`, token))
}

func (handler *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.logout")
	defer span.End()

	authToken := TokenFromRequest(r)
	if authToken == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	loggedOut, err := handler.authService.SignOut(ctx, authToken)
	if err != nil {
		log.Errorf("logout: %s", err)
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	if !loggedOut {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	pkg.WriteTextResponseOK(w, "logged-out")
}

func (handler *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.me")
	defer span.End()

	email, err := handler.authService.CurrentUser(ctx, TokenFromRequest(r))
	if err != nil {
		if !errors.Is(err, ErrUnauthenticated) {
			// fail-safe: report unexpected provider errors as unauthenticated
			log.Errorf("get current user: %s", err)
		}
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"email": "%s"}`, email))
}

func (handler *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.deleteUser")
	defer span.End()

	if err := handler.authService.DeleteUser(ctx, TokenFromRequest(r)); err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			http.Error(w, "no can do", http.StatusUnauthorized)
			return
		}
		log.Errorf("delete user: %s", err)
		http.Error(w, "delete account failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteTextResponseOK(w, "deleted")
}

func (handler *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.resetPassword")
	defer span.End()

	var resetReq struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&resetReq); err != nil {
		log.Errorf("reset password, unmarshal json params: %s", err)
		http.Error(w, "reset failed", http.StatusBadRequest)
		return
	}

	if resetReq.Email == "" {
		http.Error(w, "error, email empty", http.StatusBadRequest)
		return
	}

	if err := handler.authService.ResetPassword(ctx, resetReq.Email); err != nil {
		log.Errorf("reset password for [%s]: %s", resetReq.Email, err)
		http.Error(w, "reset failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, `{"codeSent":true}`)
}

func (handler *Handler) handleConfirmResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.confirmResetPassword")
	defer span.End()

	var confirmReq struct {
		Email       string `json:"email"`
		Code        string `json:"code"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&confirmReq); err != nil {
		log.Errorf("confirm reset password, unmarshal json params: %s", err)
		http.Error(w, "reset failed", http.StatusBadRequest)
		return
	}

	if len(confirmReq.NewPassword) < minPasswordLength {
		http.Error(w, "error, password too short", http.StatusBadRequest)
		return
	}

	err := handler.authService.ConfirmResetPassword(
		ctx, confirmReq.Email, confirmReq.Code, confirmReq.NewPassword,
	)
	if err != nil {
		if errors.Is(err, ErrInvalidConfirmationCode) {
			http.Error(w, "error, invalid confirmation code", http.StatusBadRequest)
			return
		}
		log.Errorf("confirm reset password for [%s]: %s", confirmReq.Email, err)
		http.Error(w, "reset failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, `{"reset":true}`)
}
