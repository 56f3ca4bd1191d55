package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	sharedauth "receipt-backend/internal/shared/auth"
	"receipt-backend/internal/shared/server/respond"
)

// OAuthFlow handles the server-side Google login flow. A completed flow
// performs the same user upsert as token login and issues a session token.
type OAuthFlow struct {
	oauthConfig *oauth2.Config
	uiRedirect  string
	stateTTL    time.Duration
	stateStore  *stateStore
	svc         *Service
	sessions    *sharedauth.Manager
}

// NewOAuthFlow builds an OAuthFlow.
func NewOAuthFlow(clientID, clientSecret, redirectURL, uiRedirect string, svc *Service, sessions *sharedauth.Manager) *OAuthFlow {
	return &OAuthFlow{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		uiRedirect: uiRedirect,
		stateTTL:   5 * time.Minute,
		stateStore: newStateStore(),
		svc:        svc,
		sessions:   sessions,
	}
}

// RegisterRoutes attaches the browser login routes.
func (f *OAuthFlow) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/google/start", f.start)
	rg.GET("/auth/google/callback", f.callback)
}

func (f *OAuthFlow) start(c *gin.Context) {
	if f.oauthConfig.ClientID == "" || f.oauthConfig.ClientSecret == "" || f.oauthConfig.RedirectURL == "" {
		respond.Error(c, http.StatusInternalServerError, "Google login is not configured", nil)
		return
	}

	state := uuid.NewString()
	f.stateStore.put(state, time.Now().Add(f.stateTTL))

	c.Redirect(http.StatusFound, f.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline))
}

func (f *OAuthFlow) callback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		respond.Error(c, http.StatusBadRequest, "missing state or code", nil)
		return
	}

	if !f.stateStore.consume(state) {
		respond.Error(c, http.StatusBadRequest, "invalid or expired state", nil)
		return
	}

	ctx := c.Request.Context()
	token, err := f.oauthConfig.Exchange(ctx, code)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "failed to exchange code", nil)
		return
	}

	info, err := f.fetchUserInfo(ctx, token)
	if err != nil {
		respond.Error(c, http.StatusBadGateway, "failed to fetch user profile", nil)
		return
	}
	if info.Sub == "" {
		respond.Error(c, http.StatusBadGateway, "invalid user profile", nil)
		return
	}

	user, _, err := f.svc.Upsert(ctx, Claims{
		Subject:     info.Sub,
		Email:       info.Email,
		DisplayName: info.Name,
	})
	if err != nil {
		if errors.Is(err, ErrStoreDisabled) {
			respond.Error(c, http.StatusInternalServerError, ErrStoreDisabled.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "failed to persist user", nil)
		return
	}

	session, err := f.sessions.Sign(user.Subject, user.Email, user.DisplayName)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "failed to issue session", nil)
		return
	}

	redirectURL, err := appendToken(f.uiRedirect, session)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "failed to redirect", nil)
		return
	}

	c.Redirect(http.StatusFound, redirectURL)
}

type googleUserInfo struct {
	Sub   string `json:"sub"`
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (f *OAuthFlow) fetchUserInfo(ctx context.Context, token *oauth2.Token) (googleUserInfo, error) {
	client := f.oauthConfig.Client(ctx, token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return googleUserInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return googleUserInfo{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return googleUserInfo{}, err
	}

	// Some responses use "id" instead of "sub".
	if info.Sub == "" {
		info.Sub = info.ID
	}
	return info, nil
}

type stateStore struct {
	items map[string]time.Time
	mu    sync.Mutex
}

func newStateStore() *stateStore {
	return &stateStore{items: make(map[string]time.Time)}
}

func (s *stateStore) put(state string, exp time.Time) {
	s.mu.Lock()
	// Abandoned flows never reach consume, so expired entries are swept
	// here to keep the map bounded.
	now := time.Now()
	for k, e := range s.items {
		if now.After(e) {
			delete(s.items, k)
		}
	}
	s.items[state] = exp
	s.mu.Unlock()
}

func (s *stateStore) consume(state string) bool {
	s.mu.Lock()
	exp, ok := s.items[state]
	if ok {
		delete(s.items, state)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}
	return !time.Now().After(exp)
}

func appendToken(rawURL, token string) (string, error) {
	if rawURL == "" {
		return "", errors.New("redirect url required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
