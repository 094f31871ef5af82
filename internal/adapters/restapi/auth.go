package restapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/stagepass/portal/internal/ports"
)

var _ ports.BackendAuth = (*Client)(nil)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login calls POST /api/auth/login.
func (c *Client) Login(ctx context.Context, in ports.Credentials) (ports.LoginResult, error) {
	req, err := jsonCall(http.MethodPost, "/api/auth/login", "", loginRequest(in))
	if err != nil {
		return ports.LoginResult{}, err
	}
	doc, err := c.doJSON(ctx, req)
	if err != nil {
		return ports.LoginResult{}, err
	}

	token := str(doc, "data.token || token || data.accessToken || accessToken")
	if token == "" {
		return ports.LoginResult{}, errors.New("login response missing token")
	}
	user, ok := extractObject(doc, "user")
	if !ok {
		return ports.LoginResult{}, errors.New("login response missing user")
	}
	return ports.LoginResult{Token: token, User: decodeUser(user)}, nil
}

// Me calls GET /api/auth/me.
func (c *Client) Me(ctx context.Context, token string) (ports.BackendUser, error) {
	doc, err := c.doJSON(ctx, call{method: http.MethodGet, path: "/api/auth/me", endpoint: "/api/auth/me", token: token})
	if err != nil {
		return ports.BackendUser{}, err
	}
	user, ok := extractObject(doc, "user")
	if !ok {
		return ports.BackendUser{}, errors.New("me response missing user")
	}
	return decodeUser(user), nil
}

func decodeUser(obj map[string]any) ports.BackendUser {
	return ports.BackendUser{
		ID:               str(obj, "\"_id\" || id"),
		Username:         str(obj, "username || name"),
		Email:            str(obj, "email"),
		UserType:         str(obj, "userType || user_type || role"),
		SubscriptionPlan: str(obj, "subscriptionPlan || subscription_plan || plan"),
	}
}
