package auth

import (
	"errors"
	"net/http"
	"time"
)

// TokenHeader carries the session token on every authenticated request.
const TokenHeader = "X-GYMSEEKR-TOKEN"

var (
	ErrUserExists              = errors.New("user already exists")
	ErrUserNotFound            = errors.New("user not found")
	ErrUserNotConfirmed        = errors.New("user not confirmed")
	ErrWrongCredentials        = errors.New("wrong credentials")
	ErrInvalidConfirmationCode = errors.New("invalid confirmation code")
	ErrUnauthenticated         = errors.New("unauthenticated")
)

// User is an account row. Email doubles as the ownership/partition key
// for all workout data.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Confirmed    bool      `json:"confirmed"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginSession is the redis-persisted session value.
type LoginSession struct {
	Email     string `json:"email"`
	CreatedAt int64  `json:"createdAt"`
}

func TokenFromRequest(r *http.Request) string {
	return r.Header.Get(TokenHeader)
}
