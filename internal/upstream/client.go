package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/NikamRenuka/cabadmin/internal/models"
)

// Client performs calls against the external cab-booking backend. Response
// fields beyond the ones decoded here are ignored.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// Bookings fetches the full booking collection.
func (c *Client) Bookings(ctx context.Context) ([]models.Booking, error) {
	var out []models.Booking
	if err := c.getJSON(ctx, "bookings", "/api/bookings", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateBooking sends a point update for one booking: the new status and,
// when non-empty, the driver being allocated.
func (c *Client) UpdateBooking(ctx context.Context, id string, status models.BookingStatus, driverName string) error {
	body := map[string]any{"status": status}
	if driverName != "" {
		body["driverName"] = driverName
	}
	return c.send(ctx, "update_booking", http.MethodPut, "/api/bookings/"+id, body)
}

// Notifications fetches the notification collection.
func (c *Client) Notifications(ctx context.Context) ([]models.Notification, error) {
	var out []models.Notification
	if err := c.getJSON(ctx, "notifications", "/api/notifications", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkNotificationRead flips one notification's read flag on the backend.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.send(ctx, "mark_read", http.MethodPut, "/api/notifications/"+id, map[string]any{"read": true})
}

// Rates fetches the raw rate-sheet object. The backend may legitimately
// return an empty object; decoding is left to the rates package.
func (c *Client) Rates(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.getJSON(ctx, "rates", "/api/rates", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveRates bulk-overwrites the backend rate sheet. A 404 here maps to
// ErrNotFound so the editor can surface its distinguished message.
func (c *Client) SaveRates(ctx context.Context, sheet any) error {
	err := c.send(ctx, "save_rates", http.MethodPost, "/api/rates/save", map[string]any{"rates": sheet})
	var ue *Error
	if errors.As(err, &ue) && ue.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, ue.Message)
	}
	return err
}

// Login exchanges credentials for the admin user record. A non-2xx response
// carries the backend's message field.
func (c *Client) Login(ctx context.Context, username, password string) (models.User, error) {
	payload, _ := json.Marshal(map[string]string{"username": username, "password": password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/auth/login", bytes.NewReader(payload))
	if err != nil {
		return models.User{}, &Error{Op: "login", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return models.User{}, &Error{Op: "login", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var fail struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&fail)
		if fail.Message == "" {
			fail.Message = "login failed"
		}
		return models.User{}, &Error{Op: "login", StatusCode: resp.StatusCode, Message: fail.Message}
	}
	var ok struct {
		User models.User `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ok); err != nil {
		return models.User{}, &Error{Op: "login", Err: err}
	}
	return ok.User, nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{Op: op, StatusCode: resp.StatusCode, Message: readErrorBody(resp.Body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: op, Err: err}
	}
	return nil
}

func (c *Client) send(ctx context.Context, op, method, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{Op: op, StatusCode: resp.StatusCode, Message: readErrorBody(resp.Body)}
	}
	// drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// readErrorBody pulls a short human-readable message out of a failed
// response: the backend's error field when present, raw text otherwise.
func readErrorBody(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, 4096))
	var fail struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &fail); err == nil {
		if fail.Error != "" {
			return fail.Error
		}
		if fail.Message != "" {
			return fail.Message
		}
	}
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		msg = "request failed"
	}
	return msg
}
