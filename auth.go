package ephdash

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// AuthSettings decides where the user name comes from: a fixed fake user
// for development, or an oauth2 proxy's userinfo endpoint.
type AuthSettings struct {
	FakeUser string
	Proxy    string
}

// Validate requires exactly one of FakeUser or Proxy
func (s AuthSettings) Validate() error {
	if s.FakeUser == "" && s.Proxy == "" {
		return fmt.Errorf("auth settings missing: specify --auth-fake-user or --auth-proxy")
	} else if s.FakeUser != "" && s.Proxy != "" {
		return fmt.Errorf("cannot specify both --auth-fake-user and --auth-proxy")
	}
	return nil
}

// AuthResponse is the oauth2 proxy's userinfo body
type AuthResponse struct {
	User  string `json:"user"`
	Email string `json:"email"`
}

// Username finds the user behind a request. In proxy mode the request's
// cookies are forwarded to /oauth2/userinfo.
func (d *Dashboard) Username(r *http.Request) (string, error) {
	if d.auth.FakeUser != "" {
		return d.auth.FakeUser, nil
	}

	u, err := url.Parse(d.auth.Proxy)
	if err != nil {
		return "", fmt.Errorf("fetching userinfo: %w", err)
	}
	u.Path = "/oauth2/userinfo"

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("fetching userinfo: %w", err)
	}
	for _, c := range r.Cookies() {
		req.AddCookie(c)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching userinfo: bad status code: %d", resp.StatusCode)
	}

	var authResponse AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResponse); err != nil {
		return "", fmt.Errorf("parsing userinfo: %w", err)
	}
	if authResponse.User == "" {
		return "", fmt.Errorf("userinfo empty")
	}
	return authResponse.User, nil
}
