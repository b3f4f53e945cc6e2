package account

import (
	"context"
	"fmt"

	"github.com/clutchpoint/arena/internal/domain/user"
	"github.com/clutchpoint/arena/internal/usecase"
)

// StaticVerifier resolves bearer tokens from a fixed token-to-user map,
// checked against the user store. It stands in for a real identity
// service; the HTTP layer only sees the TokenVerifier interface, so
// swapping in one later is a wiring change.
type StaticVerifier struct {
	users  user.Repository
	tokens map[string]string

	// AllowUserIDTokens accepts the bare user ID as its own token.
	// Development convenience only.
	allowUserIDTokens bool
}

func NewStaticVerifier(users user.Repository, tokens map[string]string, allowUserIDTokens bool) *StaticVerifier {
	if tokens == nil {
		tokens = map[string]string{}
	}
	return &StaticVerifier{
		users:             users,
		tokens:            tokens,
		allowUserIDTokens: allowUserIDTokens,
	}
}

func (v *StaticVerifier) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	userID, ok := v.tokens[token]
	if !ok {
		if !v.allowUserIDTokens {
			return user.Principal{}, fmt.Errorf("%w: unknown access token", usecase.ErrUnauthorized)
		}
		userID = token
	}

	account, exists, err := v.users.GetByID(ctx, userID)
	if err != nil {
		return user.Principal{}, fmt.Errorf("verify token: %w", err)
	}
	if !exists {
		return user.Principal{}, fmt.Errorf("%w: unknown user for token", usecase.ErrUnauthorized)
	}

	return user.Principal{UserID: account.ID, Username: account.Username}, nil
}
