package backend

import (
	"context"
	"encoding/json"
	"fmt"

	"mytrade/internal/domain"
	apperrors "mytrade/internal/errors"
)

const (
	loginPath = "/api/auth/login"
	mePath    = "/api/auth/me"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Session struct {
	Token string
	User  domain.Viewer
}

func (c *Client) Login(ctx context.Context, creds Credentials) (*Session, error) {
	env, err := c.post(ctx, "", loginPath, creds)
	if err != nil {
		return nil, err
	}

	token := env.str("token")
	if token == "" {
		return nil, apperrors.NewServerError(0, "login response carried no token")
	}

	user, err := decodeViewer(env)
	if err != nil {
		return nil, err
	}

	return &Session{Token: token, User: *user}, nil
}

// Me resolves the user behind a bearer token.
func (c *Client) Me(ctx context.Context, token string) (*domain.Viewer, error) {
	env, err := c.get(ctx, token, mePath)
	if err != nil {
		return nil, err
	}
	return decodeViewer(env)
}

func decodeViewer(env *envelope) (*domain.Viewer, error) {
	raw := env.object("user")
	if raw == nil {
		return nil, apperrors.NewServerError(0, "response carried no user")
	}

	var viewer domain.Viewer
	if err := json.Unmarshal(raw, &viewer); err != nil {
		return nil, apperrors.NewServerError(0, fmt.Sprintf("decoding user: %v", err))
	}
	if viewer.ID == "" {
		return nil, apperrors.NewServerError(0, "user has no id")
	}
	return &viewer, nil
}
