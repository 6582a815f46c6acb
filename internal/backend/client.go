package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/pos-frontend/internal/config"
	"github.com/spec-kit/pos-frontend/internal/domain"
)

var (
	// ErrInvalidCredentials is returned when the backend rejects a login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized is returned when the backend rejects the session token.
	ErrUnauthorized = errors.New("session token rejected by backend")
	// ErrServer is returned for any other non-success response.
	ErrServer = errors.New("backend server error")
	// ErrNetwork is returned when the backend cannot be reached.
	ErrNetwork = errors.New("backend unreachable")
)

// Client talks to the sales backend's login and profile endpoints.
type Client struct {
	baseURL string
	timeout time.Duration
}

// NewClient builds a client for the configured sales backend.
func NewClient(cfg config.BackendConfig) *Client {
	return &Client{baseURL: strings.TrimRight(cfg.SalesURL, "/"), timeout: cfg.Timeout()}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token json.RawMessage `json:"token"`
}

type errorResponse struct {
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

// Login exchanges credentials for a session token string.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	agent := fiber.Post(c.baseURL + "/login").JSON(loginRequest{Email: email, Password: password})
	status, body, err := c.do(ctx, agent)
	if err != nil {
		return "", err
	}
	if status == http.StatusUnauthorized {
		return "", ErrInvalidCredentials
	}
	if err := statusError(status, body); err != nil {
		return "", err
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: decode login response: %v", ErrServer, err)
	}
	var token string
	if err := json.Unmarshal(resp.Token, &token); err != nil || token == "" {
		return "", fmt.Errorf("%w: invalid token received", ErrServer)
	}
	return token, nil
}

// GetProfile fetches the profile of the token's principal.
func (c *Client) GetProfile(ctx context.Context, token string) (*domain.Profile, error) {
	agent := fiber.Get(c.baseURL+"/profile").Set(fiber.HeaderAuthorization, "Bearer "+token)
	status, body, err := c.do(ctx, agent)
	if err != nil {
		return nil, err
	}
	if err := statusError(status, body); err != nil {
		return nil, err
	}

	var profile domain.Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("%w: decode profile: %v", ErrServer, err)
	}
	return &profile, nil
}

// UpdateProfile submits profile changes for the token's principal.
func (c *Client) UpdateProfile(ctx context.Context, update domain.ProfileUpdate, token string) error {
	agent := fiber.Put(c.baseURL+"/profile").
		Set(fiber.HeaderAuthorization, "Bearer "+token).
		JSON(update)
	status, body, err := c.do(ctx, agent)
	if err != nil {
		return err
	}
	return statusError(status, body)
}

func (c *Client) do(ctx context.Context, agent *fiber.Agent) (int, []byte, error) {
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		fiber.ReleaseAgent(agent)
		return 0, nil, fmt.Errorf("%w: %v", ErrNetwork, context.DeadlineExceeded)
	}

	if err := agent.Parse(); err != nil {
		fiber.ReleaseAgent(agent)
		return 0, nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	status, body, errs := agent.Timeout(timeout).Bytes()
	if len(errs) > 0 {
		return 0, nil, fmt.Errorf("%w: %v", ErrNetwork, errors.Join(errs...))
	}
	return status, body, nil
}

// ServerError carries the status and message of a failed backend response.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %d %s", ErrServer, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: status %d", ErrServer, e.Status)
}

// Is makes ServerError match ErrServer.
func (e *ServerError) Is(target error) bool {
	return target == ErrServer
}

func statusError(status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}
	if status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return &ServerError{Status: status, Message: errorMessage(body)}
}

// errorMessage extracts {"message": ...}, {"error": "..."} or {"error": {"message": ...}}.
func errorMessage(body []byte) string {
	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return ""
	}
	if resp.Message != "" {
		return resp.Message
	}
	var plain string
	if err := json.Unmarshal(resp.Error, &plain); err == nil {
		return plain
	}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp.Error, &nested); err == nil {
		return nested.Message
	}
	return ""
}

// Message returns the user-facing text carried by a backend error, if any.
func Message(err error) string {
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return serverErr.Message
	}
	return ""
}
