package client_poker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/NicolasKocher/sprint-poker/internal/model"
)

// Client is the typed wrapper around the mutation endpoint. One room code,
// one URL; every mutation is a POST with a named action.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type APIError struct {
	Status  int
	Message string
	Details string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

type mutationRequest struct {
	Action string             `json:"action"`
	User   *model.Participant `json:"user,omitempty"`
	UserID string             `json:"userId,omitempty"`
	Size   model.TShirtSize   `json:"size,omitempty"`
}

func (c *Client) GetSession(ctx context.Context, code model.RoomCode) (model.Session, error) {
	return c.doSession(ctx, http.MethodGet, code, nil)
}

func (c *Client) CreateSession(ctx context.Context, code model.RoomCode, user model.Participant) (model.Session, error) {
	return c.doSession(ctx, http.MethodPost, code, &mutationRequest{Action: "create", User: &user})
}

func (c *Client) JoinSession(ctx context.Context, code model.RoomCode, user model.Participant) (model.Session, error) {
	return c.doSession(ctx, http.MethodPost, code, &mutationRequest{Action: "join", User: &user})
}

func (c *Client) StartVoting(ctx context.Context, code model.RoomCode) (model.Session, error) {
	return c.doSession(ctx, http.MethodPost, code, &mutationRequest{Action: "startVoting"})
}

func (c *Client) FinishVoting(ctx context.Context, code model.RoomCode) (model.Session, error) {
	return c.doSession(ctx, http.MethodPost, code, &mutationRequest{Action: "finishVoting"})
}

func (c *Client) ResetVoting(ctx context.Context, code model.RoomCode) (model.Session, error) {
	return c.doSession(ctx, http.MethodPost, code, &mutationRequest{Action: "resetVoting"})
}

func (c *Client) CastVote(ctx context.Context, code model.RoomCode, userID string, size model.TShirtSize) (model.Session, error) {
	return c.doSession(ctx, http.MethodPost, code, &mutationRequest{Action: "vote", UserID: userID, Size: size})
}

// LeaveSession tolerates 404: leaving a room that is already gone is fine.
func (c *Client) LeaveSession(ctx context.Context, code model.RoomCode, userID string) error {
	_, err := c.doSession(ctx, http.MethodPost, code, &mutationRequest{Action: "leave", UserID: userID})
	if err != nil && !IsNotFound(err) {
		return err
	}
	return nil
}

// LeaveAsync is the departure beacon: fire-and-forget, never blocks the
// caller's shutdown path.
func (c *Client) LeaveAsync(code model.RoomCode, userID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = c.LeaveSession(ctx, code, userID)
	}()
}

func (c *Client) doSession(ctx context.Context, method string, code model.RoomCode, body *mutationRequest) (model.Session, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return model.Session{}, err
		}
		reader = bytes.NewReader(raw)
	}

	url := fmt.Sprintf("%s/api/v1/sessions/%s", c.baseURL, code)
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return model.Session{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.Session{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Session{}, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return model.Session{}, decodeAPIError(resp.StatusCode, raw)
	}

	var session model.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return model.Session{}, err
	}
	return session, nil
}

func decodeAPIError(status int, raw []byte) error {
	apiErr := &APIError{Status: status, Message: http.StatusText(status)}

	var body struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Details = body.Details
	}
	return apiErr
}
