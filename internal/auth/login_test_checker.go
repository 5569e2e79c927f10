package auth

import "context"

// LoginTestChecker is used in unit tests of components that need a Checker.
type LoginTestChecker struct {
	LoggedSessions map[string]bool
}

func NewLoginTestChecker() *LoginTestChecker {
	return &LoginTestChecker{
		LoggedSessions: map[string]bool{},
	}
}

func (lc *LoginTestChecker) IsLogged(_ context.Context, token string) (bool, error) {
	return lc.LoggedSessions[token], nil
}
