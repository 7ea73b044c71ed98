package upstream

// Typed endpoints for the upstream auth surface: login, token refresh, the
// cookie-based verify fallback, and the role ACL. Wire shapes follow the
// complaint backend contract.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lapor-kampus/lapor-ui-api/internal/domain/acl"
	domainauth "github.com/lapor-kampus/lapor-ui-api/internal/domain/auth"
	apperrors "github.com/lapor-kampus/lapor-ui-api/internal/errors"
)

type loginRequest struct {
	NoIdentitas string `json:"no_identitas"`
	Password    string `json:"password"`
}

type userPayload struct {
	ID          string `json:"id"`
	NoIdentitas string `json:"no_identitas"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	UserLevel   struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"user_level"`
}

func (u userPayload) profile() domainauth.Profile {
	return domainauth.Profile{
		ID:             u.ID,
		IdentityNumber: u.NoIdentitas,
		Name:           u.Name,
		Email:          u.Email,
		Role:           domainauth.Role(u.UserLevel.Name),
		RoleID:         u.UserLevel.ID,
	}
}

type loginResponse struct {
	Content struct {
		Token        string      `json:"token"`
		RefreshToken string      `json:"refresh_token"`
		User         userPayload `json:"user"`
	} `json:"content"`
	Message string `json:"message"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

type verifyResponse struct {
	Content struct {
		Token        string `json:"token"`
		RefreshToken string `json:"refresh_token"`
	} `json:"content"`
}

type aclResponse struct {
	Content struct {
		UserLevelID string      `json:"userLevelId"`
		Permissions []acl.Entry `json:"permissions"`
	} `json:"content"`
}

// Login exchanges credentials for a token pair and profile.
// A rejected login yields an InvalidCredentials error and nothing is stored.
func (c *Client) Login(
	ctx context.Context,
	identityNumber, password string,
) (domainauth.Credentials, domainauth.Profile, error) {
	payload, err := json.Marshal(loginRequest{NoIdentitas: identityNumber, Password: password})
	if err != nil {
		return domainauth.Credentials{}, domainauth.Profile{}, fmt.Errorf("marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+loginPath, bytes.NewReader(payload))
	if err != nil {
		return domainauth.Credentials{}, domainauth.Profile{}, fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domainauth.Credentials{}, domainauth.Profile{}, fmt.Errorf("login: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest {
		return domainauth.Credentials{}, domainauth.Profile{}, apperrors.InvalidCredentials(readMessage(resp))
	}
	if resp.StatusCode != http.StatusOK {
		return domainauth.Credentials{}, domainauth.Profile{},
			apperrors.Wrapf(errStatus(resp.StatusCode), apperrors.ErrCodeUpstream, "login failed")
	}

	var body loginResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&body); decodeErr != nil {
		return domainauth.Credentials{}, domainauth.Profile{}, fmt.Errorf("decode login response: %w", decodeErr)
	}

	creds := domainauth.Credentials{
		AccessToken:  body.Content.Token,
		RefreshToken: body.Content.RefreshToken,
	}

	// Some deployments issue the token via cookie only; fall back to the
	// cookie-based verify endpoint when the body omits it.
	if creds.AccessToken == "" {
		creds, err = c.verifyToken(ctx, resp.Cookies())
		if err != nil {
			return domainauth.Credentials{}, domainauth.Profile{}, err
		}
	}

	return creds, body.Content.User.profile(), nil
}

// verifyToken recovers the token pair using the cookies issued by /login.
func (c *Client) verifyToken(ctx context.Context, cookies []*http.Cookie) (domainauth.Credentials, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+verifyPath, nil)
	if err != nil {
		return domainauth.Credentials{}, fmt.Errorf("build verify request: %w", err)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domainauth.Credentials{}, fmt.Errorf("verify token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return domainauth.Credentials{},
			apperrors.Wrapf(errStatus(resp.StatusCode), apperrors.ErrCodeUpstream, "verify token failed")
	}

	var body verifyResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&body); decodeErr != nil {
		return domainauth.Credentials{}, fmt.Errorf("decode verify response: %w", decodeErr)
	}
	if body.Content.Token == "" {
		return domainauth.Credentials{}, apperrors.Wrap(
			errMissingToken, apperrors.ErrCodeUpstream, "login issued no token")
	}
	return domainauth.Credentials{
		AccessToken:  body.Content.Token,
		RefreshToken: body.Content.RefreshToken,
	}, nil
}

// Refresh exchanges a refresh token for a rotated pair. Both fields are
// required in the response; absence of either is a refresh failure.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (domainauth.Credentials, error) {
	payload, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return domainauth.Credentials{}, fmt.Errorf("marshal refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+refreshPath, bytes.NewReader(payload))
	if err != nil {
		return domainauth.Credentials{}, fmt.Errorf("build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domainauth.Credentials{}, fmt.Errorf("refresh token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return domainauth.Credentials{}, errStatus(resp.StatusCode)
	}

	var body refreshResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&body); decodeErr != nil {
		return domainauth.Credentials{}, fmt.Errorf("decode refresh response: %w", decodeErr)
	}
	if body.Token == "" || body.RefreshToken == "" {
		return domainauth.Credentials{}, errMissingToken
	}
	return domainauth.Credentials{
		AccessToken:  body.Token,
		RefreshToken: body.RefreshToken,
	}, nil
}

// FetchACL retrieves the permission list for the session's role. It goes
// through Do, so a stale bearer token is refreshed transparently.
func (c *Client) FetchACL(ctx context.Context, sess domainauth.Session) (acl.PermissionSet, error) {
	if sess.Profile.RoleID == "" {
		return nil, apperrors.PermissionUnavailable("session has no role id")
	}

	resp, err := c.Do(ctx, sess.ID, Request{
		Method: http.MethodGet,
		Path:   aclPath + sess.Profile.RoleID,
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Wrapf(
			errStatus(resp.StatusCode), apperrors.ErrCodePermissionUnavailable, "acl fetch failed")
	}

	var body aclResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&body); decodeErr != nil {
		return nil, apperrors.Wrap(decodeErr, apperrors.ErrCodePermissionUnavailable, "decode acl response")
	}
	return acl.Build(body.Content.Permissions), nil
}

// readMessage extracts the backend's message field for user display.
func readMessage(resp *http.Response) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Message == "" {
		return "identity number or password is incorrect"
	}
	return body.Message
}

type statusError int

func (e statusError) Error() string { return fmt.Sprintf("upstream status %d", int(e)) }

func errStatus(code int) error { return statusError(code) }

type missingTokenError struct{}

func (missingTokenError) Error() string { return "upstream response is missing token fields" }

var errMissingToken error = missingTokenError{}
