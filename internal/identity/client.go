// Package identity mirrors local accounts into the hosted identity provider.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ExternalIdentity is the provider-side record created for a mirrored account.
type ExternalIdentity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Client wraps interactions with the identity provider's signup API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient constructs a new client. The key is the service-role API key
// configured at startup.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp registers the credentials with the provider and returns the external
// identity it assigned.
func (c *Client) SignUp(ctx context.Context, email, password string) (ExternalIdentity, error) {
	body, err := json.Marshal(signUpRequest{Email: email, Password: password})
	if err != nil {
		return ExternalIdentity{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/auth/v1/signup", c.baseURL), bytes.NewReader(body))
	if err != nil {
		return ExternalIdentity{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ExternalIdentity{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		// Drain so the connection can be reused; the body is not surfaced
		// to callers.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return ExternalIdentity{}, fmt.Errorf("identity: signup returned status %d", resp.StatusCode)
	}

	var ext ExternalIdentity
	if err := json.NewDecoder(resp.Body).Decode(&ext); err != nil {
		return ExternalIdentity{}, fmt.Errorf("identity: decode response: %w", err)
	}
	return ext, nil
}
