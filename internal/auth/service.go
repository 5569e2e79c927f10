package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/anishneema/GymSeekr/internal/telemetry/tracing"
	"github.com/anishneema/GymSeekr/pkg"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultTTL = 24 * 7 * time.Hour

	sessionKeyPrefix = "gymseekr-session||"
	tokensSetKey     = "gymseekr-sessions"
	confirmKeyPrefix = "gymseekr-confirm||"
	resetKeyPrefix   = "gymseekr-reset||"

	confirmationCodeTTL = 15 * time.Minute
	confirmationCodeLen = 6
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=auth

type usersRepo interface {
	Create(ctx context.Context, email, passwordHash string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Confirm(ctx context.Context, email string) error
	UpdatePasswordHash(ctx context.Context, email, passwordHash string) error
	Delete(ctx context.Context, email string) error
}

// Service resolves and manages session identities: who the current user is,
// how they sign up, confirm, sign in and out, and how they recover access.
type Service struct {
	users       usersRepo
	redisClient *redis.Client
	ttl         time.Duration

	// injectable random funcs for unit and dev testing
	RandStringFunc func(n int) (string, error)
	RandCodeFunc   func(n int) (string, error)
}

func NewService(users usersRepo, ttl time.Duration, redisClient *redis.Client) *Service {
	return &Service{
		users:          users,
		ttl:            ttl,
		redisClient:    redisClient,
		RandStringFunc: pkg.GenerateRandomString,
		RandCodeFunc:   pkg.GenerateNumericCode,
	}
}

type SignUpResult struct {
	UserID               string `json:"userId"`
	ConfirmationRequired bool   `json:"confirmationRequired"`
}

// SignUp creates an unconfirmed account and stashes a short-lived
// confirmation code. The code would normally go out via email; it is
// only logged at trace level here.
func (s *Service) SignUp(ctx context.Context, email, password string) (_ *SignUpResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.signup")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	passwordHash, err := pkg.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, email, passwordHash)
	if err != nil {
		return nil, err
	}

	if err := s.stashCode(ctx, confirmKeyPrefix+email); err != nil {
		return nil, fmt.Errorf("stash confirmation code: %w", err)
	}

	return &SignUpResult{
		UserID:               user.ID,
		ConfirmationRequired: true,
	}, nil
}

func (s *Service) ConfirmSignUp(ctx context.Context, email, code string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.confirmSignup")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := s.checkCode(ctx, confirmKeyPrefix+email, code); err != nil {
		return err
	}

	return s.users.Confirm(ctx, email)
}

// SignIn checks the credentials and opens a new session, returning its token.
// Unknown email and wrong password are deliberately indistinguishable to the
// caller; an unconfirmed account is reported separately so the client can
// redirect to the confirmation flow.
func (s *Service) SignIn(ctx context.Context, credentials Credentials, now time.Time) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.signin")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	user, err := s.users.GetByEmail(ctx, credentials.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrWrongCredentials
		}
		return "", err
	}

	if !pkg.CheckPasswordHash(credentials.Password, user.PasswordHash) {
		log.Tracef("[password] failed login attempt for user: %s", credentials.Email)
		return "", ErrWrongCredentials
	}

	if !user.Confirmed {
		return "", ErrUserNotConfirmed
	}

	token, err := s.RandStringFunc(35)
	if err != nil {
		return "", err
	}

	sessionJson, err := json.Marshal(LoginSession{
		Email:     user.Email,
		CreatedAt: now.Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}

	sessionKey := sessionKeyPrefix + token
	if err := s.redisClient.Set(ctx, sessionKey, sessionJson, 0).Err(); err != nil {
		return "", err
	}

	// add token to list of sessions
	if err := s.redisClient.SAdd(ctx, tokensSetKey, token).Err(); err != nil {
		return "", err
	}

	return token, nil
}

// SignOut removes the persisted session; workout state cached under this
// identity dies with the token.
func (s *Service) SignOut(ctx context.Context, token string) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.signout")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	sessionKey := sessionKeyPrefix + token
	existed, err := s.redisClient.Exists(ctx, sessionKey).Result()
	if err != nil {
		return false, err
	}

	if err := s.redisClient.Del(ctx, sessionKey).Err(); err != nil {
		return false, err
	}

	// remove token from the list of sessions
	if err := s.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
		return false, err
	}

	return existed > 0, nil
}

// CurrentUser resolves the session identity for a token. A missing or expired
// session yields ErrUnauthenticated - an expected steady state, not an error
// worth logging.
func (s *Service) CurrentUser(ctx context.Context, token string) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.currentUser")
	defer func() {
		if err != nil && !errors.Is(err, ErrUnauthenticated) {
			tracing.EndSpanWithErrCheck(span, err)
			return
		}
		span.End()
	}()

	if token == "" {
		return "", ErrUnauthenticated
	}

	session, err := s.getSession(ctx, token)
	if err != nil {
		return "", err
	}

	if time.Since(time.Unix(session.CreatedAt, 0)) > s.ttl {
		return "", ErrUnauthenticated
	}

	return session.Email, nil
}

// DeleteUser removes the account behind the given session together with the
// session itself.
func (s *Service) DeleteUser(ctx context.Context, token string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.deleteUser")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	email, err := s.CurrentUser(ctx, token)
	if err != nil {
		return err
	}

	if err := s.users.Delete(ctx, email); err != nil {
		return err
	}

	if _, err := s.SignOut(ctx, token); err != nil {
		log.Errorf("delete user %s: sign out: %s", email, err)
	}

	return nil
}

// ResetPassword stashes a short-lived reset code for the account. An unknown
// email succeeds silently, so the endpoint cannot be used to enumerate
// accounts.
func (s *Service) ResetPassword(ctx context.Context, email string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.resetPassword")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Tracef("password reset requested for unknown email: %s", email)
			return nil
		}
		return err
	}

	return s.stashCode(ctx, resetKeyPrefix+email)
}

func (s *Service) ConfirmResetPassword(ctx context.Context, email, code, newPassword string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.confirmResetPassword")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := s.checkCode(ctx, resetKeyPrefix+email, code); err != nil {
		return err
	}

	passwordHash, err := pkg.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.users.UpdatePasswordHash(ctx, email, passwordHash)
}

// ScanAndClean will run through all sessions, check the TTL, and clean them if old
func (s *Service) ScanAndClean(ctx context.Context) {
	sessionTokens, err := s.redisClient.SMembers(ctx, tokensSetKey).Result()
	if err != nil {
		log.Errorf("auth service, scan and clean, get sessions: %s", err)
		return
	}

	if len(sessionTokens) == 0 {
		log.Debugln("auth service, scan and clean abort, no sessions")
		return
	}

	log.Debugf("auth service, scan and clean [%d sessions] start ...", len(sessionTokens))
	var toRemove []string
	for _, token := range sessionTokens {
		session, err := s.getSession(ctx, token)
		if err != nil {
			if !errors.Is(err, ErrUnauthenticated) {
				log.Errorf("auth service, scan and clean token %s: %s", token, err)
			}
			toRemove = append(toRemove, token)
			continue
		}

		if time.Since(time.Unix(session.CreatedAt, 0)) > s.ttl {
			toRemove = append(toRemove, token)
		}
	}

	for _, token := range toRemove {
		if err := s.redisClient.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
			log.Errorf("auth service, clean token %s: %s", token, err)
			continue
		}
		if err := s.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
			log.Errorf("auth service, clean token %s: %s", token, err)
		}
	}
}

func (s *Service) getSession(ctx context.Context, token string) (*LoginSession, error) {
	sessionJson, err := s.redisClient.Get(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	var session LoginSession
	if err := json.Unmarshal([]byte(sessionJson), &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

func (s *Service) stashCode(ctx context.Context, key string) error {
	code, err := s.RandCodeFunc(confirmationCodeLen)
	if err != nil {
		return err
	}

	if err := s.redisClient.Set(ctx, key, code, confirmationCodeTTL).Err(); err != nil {
		return err
	}

	// the code would be emailed in a real deployment
	log.Tracef("code for [%s]: %s", key, code)
	return nil
}

func (s *Service) checkCode(ctx context.Context, key, code string) error {
	storedCode, err := s.redisClient.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrInvalidConfirmationCode
		}
		return err
	}

	if code == "" || storedCode != code {
		return ErrInvalidConfirmationCode
	}

	if err := s.redisClient.Del(ctx, key).Err(); err != nil {
		log.Errorf("failed to remove used code [%s]: %s", key, err)
	}
	return nil
}
