package cafeapi

import (
	"context"
	"net/http"
)

// LoginResult is what the backend returns for a successful staff login.
type LoginResult struct {
	Token string `json:"token"`
	User  struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	} `json:"user"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges staff credentials for a bearer token. There is no logout
// endpoint; dropping the token is enough.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var res LoginResult
	body := loginRequest{Username: username, Password: password}
	if err := c.do(ctx, "Login", call{method: http.MethodPost, path: "/auth/login", body: body}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
