package auth

import "context"

var _ Checker = (*LoginChecker)(nil)
var _ Checker = (*LoginTestChecker)(nil)

// Checker answers whether a session token from the X-GYMSEEKR-TOKEN header
// still maps to a live session.
type Checker interface {
	IsLogged(ctx context.Context, token string) (bool, error)
}
