package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultTokeninfoURL = "https://oauth2.googleapis.com/tokeninfo"

// ErrInvalidToken marks a token that is malformed, tampered with, expired,
// or issued for a different audience. Any other verification failure is an
// infrastructure error.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the verified identity carried by a token. Request-scoped.
type Claims struct {
	Subject     string
	Email       string
	DisplayName string
}

// Verifier validates an opaque identity token and yields claims.
type Verifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// GoogleVerifier checks Google ID tokens against the tokeninfo endpoint.
type GoogleVerifier struct {
	endpoint   string
	clientID   string
	httpClient *http.Client
}

// NewGoogleVerifier builds a GoogleVerifier. When clientID is non-empty the
// token audience must match it. GOOGLE_TOKENINFO_URL overrides the endpoint.
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	endpoint := strings.TrimSpace(os.Getenv("GOOGLE_TOKENINFO_URL"))
	if endpoint == "" {
		endpoint = defaultTokeninfoURL
	}
	return &GoogleVerifier{
		endpoint:   endpoint,
		clientID:   strings.TrimSpace(clientID),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type tokeninfoResponse struct {
	Sub   string `json:"sub"`
	Aud   string `json:"aud"`
	Exp   string `json:"exp"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Verify calls the tokeninfo endpoint. A 4xx reply means the token itself is
// bad; transport failures and 5xx replies surface as plain errors.
func (v *GoogleVerifier) Verify(ctx context.Context, token string) (Claims, error) {
	reqURL := v.endpoint + "?id_token=" + url.QueryEscape(token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Claims{}, err
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return Claims{}, fmt.Errorf("tokeninfo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return Claims{}, ErrInvalidToken
	}
	if resp.StatusCode != http.StatusOK {
		return Claims{}, fmt.Errorf("tokeninfo status %d", resp.StatusCode)
	}

	var info tokeninfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return Claims{}, fmt.Errorf("tokeninfo decode: %w", err)
	}

	if info.Sub == "" {
		return Claims{}, ErrInvalidToken
	}
	if v.clientID != "" && info.Aud != v.clientID {
		return Claims{}, ErrInvalidToken
	}
	if exp, err := strconv.ParseInt(info.Exp, 10, 64); err == nil && exp > 0 {
		if time.Now().UTC().Unix() > exp {
			return Claims{}, ErrInvalidToken
		}
	}

	return Claims{
		Subject:     info.Sub,
		Email:       info.Email,
		DisplayName: info.Name,
	}, nil
}
