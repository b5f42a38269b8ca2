package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/desy0305/e-KanBan2clicks/internal/middleware"
	"github.com/desy0305/e-KanBan2clicks/internal/routes"
	"github.com/desy0305/e-KanBan2clicks/internal/security"
	"github.com/desy0305/e-KanBan2clicks/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// Env is a fully wired application over in-memory stores.
type Env struct {
	App       *fiber.App
	Users     *UserStore
	Cards     *CardStore
	LogOutput *bytes.Buffer
}

// NewEnv builds the production route table over fresh in-memory stores.
func NewEnv(t *testing.T) *Env {
	t.Helper()
	return NewEnvWithSessionStorage(t, nil)
}

// NewEnvWithSessionStorage is NewEnv with sessions kept in storage instead of
// process memory.
func NewEnvWithSessionStorage(t *testing.T, storage fiber.Storage) *Env {
	t.Helper()

	users := NewUserStore()
	cards := NewCardStore()

	var logs bytes.Buffer
	logger := security.NewLogger()
	logger.SetOutput(&logs)

	secCfg := security.DefaultSecurityConfig()
	secCfg.BcryptCost = bcrypt.MinCost
	validation := security.NewValidationService(secCfg)

	app := routes.NewApp(routes.NewViews("", false))
	routes.Setup(app, routes.Dependencies{
		Store:          middleware.NewSessionStore(secCfg, storage),
		AuthService:    services.NewAuthService(users, validation, secCfg.BcryptCost),
		CardService:    services.NewCardService(cards, validation),
		Logger:         logger,
		SecurityConfig: secCfg,
	})

	return &Env{App: app, Users: users, Cards: cards, LogOutput: &logs}
}

// Client sends requests to an app and keeps its cookies between requests,
// like a browser would.
type Client struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]string
}

// NewClient creates a client without any cookies.
func (e *Env) NewClient(t *testing.T) *Client {
	return &Client{t: t, app: e.App, cookies: make(map[string]string)}
}

// Do sends req with the stored cookies and records any cookies set in the response.
func (c *Client) Do(req *http.Request) *http.Response {
	c.t.Helper()
	for name, value := range c.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)

	for _, ck := range resp.Cookies() {
		if ck.Value == "" || ck.MaxAge < 0 || (!ck.Expires.IsZero() && ck.Expires.Before(time.Now())) {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck.Value
	}
	return resp
}

// JSON sends payload (nil for no body) and returns the response with its body read.
func (c *Client) JSON(method, path string, payload interface{}) (*http.Response, []byte) {
	c.t.Helper()

	var body io.Reader
	switch p := payload.(type) {
	case nil:
	case string:
		body = strings.NewReader(p)
	default:
		raw, err := json.Marshal(p)
		require.NoError(c.t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp := c.Do(req)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, data
}

// Form posts url-encoded values and returns the response with its body read.
func (c *Client) Form(path string, values url.Values) (*http.Response, []byte) {
	c.t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	resp := c.Do(req)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, data
}

// Get fetches path and returns the response with its body read.
func (c *Client) Get(path string) (*http.Response, []byte) {
	return c.JSON(http.MethodGet, path, nil)
}

// Register submits the registration form and requires the redirect to /login.
func (c *Client) Register(username, password, organization string) {
	c.t.Helper()
	resp, body := c.Form("/register", url.Values{
		"username":     {username},
		"password":     {password},
		"organization": {organization},
	})
	require.Equal(c.t, fiber.StatusFound, resp.StatusCode, "register %s: %s", username, body)
	require.Equal(c.t, "/login", resp.Header.Get(fiber.HeaderLocation))
}

// Login submits the login form and requires the redirect to /.
func (c *Client) Login(username, password string) {
	c.t.Helper()
	resp, body := c.Form("/login", url.Values{
		"username": {username},
		"password": {password},
	})
	require.Equal(c.t, fiber.StatusFound, resp.StatusCode, "login %s: %s", username, body)
	require.Equal(c.t, "/", resp.Header.Get(fiber.HeaderLocation))
}

// SignUp registers and logs in.
func (c *Client) SignUp(username, password, organization string) {
	c.t.Helper()
	c.Register(username, password, organization)
	c.Login(username, password)
}
