package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cafe-frontdesk/internal/models"

	"golang.org/x/oauth2"
)

// lookupTimeout bounds the store read behind Token, which has no context.
const lookupTimeout = 3 * time.Second

type tokenSource struct {
	store Store
	id    string
}

// TokenSource serves the backend token stored for session id. A missing or
// expired session yields models.ErrUnauthorized, so the API client fails the
// call before sending it.
func TokenSource(store Store, id string) oauth2.TokenSource {
	return tokenSource{store: store, id: id}
}

func (t tokenSource) Token() (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()
	s, err := t.store.Get(ctx, t.id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("session.Token: %w", models.ErrUnauthorized)
		}
		return nil, fmt.Errorf("session.Token: %w", err)
	}
	if s.BackendToken == "" {
		return nil, fmt.Errorf("session.Token: %w", models.ErrUnauthorized)
	}
	return &oauth2.Token{AccessToken: s.BackendToken, TokenType: "Bearer", Expiry: s.ExpiresAt}, nil
}
