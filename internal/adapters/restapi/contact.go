package restapi

import (
	"context"
	"net/http"

	"github.com/stagepass/portal/internal/ports"
)

var (
	_ ports.ContactSender = (*Client)(nil)
	_ ports.ProfileWriter = (*Client)(nil)
)

// SendContact calls POST /api/contact.
func (c *Client) SendContact(ctx context.Context, msg ports.ContactMessage) error {
	req, err := jsonCall(http.MethodPost, "/api/contact", "", msg)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, req)
	return err
}

// UpdateProfile calls PUT /api/profile.
func (c *Client) UpdateProfile(ctx context.Context, token string, in ports.ProfileUpdate) error {
	req, err := jsonCall(http.MethodPut, "/api/profile", token, in)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, req)
	return err
}
