package givehub

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Auth groups the authentication endpoints. It is the only component that
// changes the client's tokens.
type Auth struct {
	client *Client
}

// Login authenticates with email and password. When the response is flagged
// successful and carries an access token, its tokens are installed in the
// client; a missing refresh token keeps the one already held. The response is returned
// either way so callers can inspect business-level failures.
func (a *Auth) Login(ctx context.Context, email, password string) (Response, error) {
	resp, err := a.client.Request(ctx, Request{
		Method:   http.MethodPost,
		Endpoint: "/auth/login",
		Body:     map[string]string{"email": email, "password": password},
	})
	if err != nil {
		return nil, err
	}

	if !resp.Success() {
		return resp, nil
	}

	tokens := resp.Object("tokens")

	accessToken := tokens.String("accessToken")
	if accessToken == "" {
		a.client.options.requestLogger.Warnf("login for %s succeeded without an access token", email)
		return resp, nil
	}

	refreshToken := tokens.String("refreshToken")
	if refreshToken == "" {
		refreshToken = a.client.tokens.refreshToken()
	}

	a.client.tokens.set(accessToken, refreshToken)
	a.client.options.requestLogger.Debugf("logged in as %s", email)

	return resp, nil
}

// Register creates a user account. It does not authenticate the client.
func (a *Auth) Register(ctx context.Context, user map[string]any) (Response, error) {
	return a.client.Request(ctx, Request{
		Method:   http.MethodPost,
		Endpoint: "/auth/register",
		Body:     user,
	})
}

func (a *Auth) VerifyEmail(ctx context.Context, email, code string) (Response, error) {
	return a.client.Request(ctx, Request{
		Method:   http.MethodPost,
		Endpoint: "/auth/verify",
		Body:     map[string]string{"email": email, "code": code},
	})
}

// RefreshAccessToken exchanges the stored refresh token for a new access
// token. The refresh token itself is kept. Calls made while another refresh
// is in flight wait for that refresh instead of issuing their own.
func (a *Auth) RefreshAccessToken(ctx context.Context) error {
	ch := a.client.refreshGroup.DoChan("refresh", func() (any, error) {
		return nil, a.refresh(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Logout forgets the client's tokens. No request is made.
func (a *Auth) Logout() {
	a.client.ClearTokens()
}

func (a *Auth) refresh(ctx context.Context) error {
	refreshToken := a.client.tokens.refreshToken()
	if refreshToken == "" {
		return &AuthRequiredError{Message: "refresh token required"}
	}

	body, err := a.client.execute(ctx, Request{
		Method:   http.MethodPost,
		Endpoint: "/auth/refresh",
		Body:     map[string]string{"refreshToken": refreshToken},
	}, false)
	if err != nil {
		a.client.metrics.observeRefresh(false)

		var connErr *ConnectionError
		if !errors.As(err, &connErr) {
			a.client.tokens.setAccess("")
		}

		return fmt.Errorf("failed to refresh access token: %w", err)
	}

	var resp Response
	if err := decodeResponse(body, &resp); err != nil {
		a.client.metrics.observeRefresh(false)
		return fmt.Errorf("failed to refresh access token: %w", err)
	}

	accessToken := resp.String("accessToken")
	if !resp.Success() || accessToken == "" {
		a.client.metrics.observeRefresh(false)
		a.client.tokens.setAccess("")

		msg := resp.String("message")
		if msg == "" {
			msg = "token refresh rejected"
		}

		return fmt.Errorf("failed to refresh access token: %w", &RequestError{
			Method:     http.MethodPost,
			URL:        a.client.url("/auth/refresh"),
			StatusCode: http.StatusUnauthorized,
			Message:    msg,
		})
	}

	a.client.tokens.setAccess(accessToken)
	a.client.metrics.observeRefresh(true)
	a.client.options.requestLogger.Debugf("access token refreshed")

	return nil
}
