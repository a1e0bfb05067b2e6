// Package client is the kiosk side of the timeclock API: a typed HTTP
// client, a connectivity monitor and the terminal that falls back to the
// offline queue.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cmlabs-hris/timeclock-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/schema"
	"github.com/shopspring/decimal"
)

// TimeEntry is a time entry as returned by the API.
type TimeEntry struct {
	ID         string          `json:"id" validate:"required,uuid"`
	EmployeeID string          `json:"employee_id" validate:"required,uuid"`
	Date       string          `json:"date" validate:"required,datetime=2006-01-02"`
	ClockIn    *string         `json:"clock_in" validate:"omitempty,datetime=15:04"`
	ClockOut   *string         `json:"clock_out" validate:"omitempty,datetime=15:04"`
	BreakTaken bool            `json:"break_taken"`
	Hours      decimal.Decimal `json:"hours"`
}

type ClockInRequest struct {
	EmployeeID string `json:"employee_id" validate:"required,uuid"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Time       string `json:"time" validate:"required,datetime=15:04"`
}

type ClockOutRequest struct {
	EntryID string `json:"-" validate:"required,uuid"`
	Time    string `json:"time" validate:"required,datetime=15:04"`
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

// Client calls the timeclock API with a bearer token. Every error it returns
// is an *apperror.Error.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Ping checks that the API answers its heartbeat.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ping", nil)
	if err != nil {
		return apperror.Wrap(apperror.KindInternal, "build ping request", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperror.Wrap(apperror.KindNetwork, "ping", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return apperror.New(apperror.KindNetwork, fmt.Sprintf("ping: unexpected status %d", resp.StatusCode))
	}
	return nil
}

func (c *Client) ClockIn(ctx context.Context, req ClockInRequest) (TimeEntry, error) {
	if err := schema.Check(req); err != nil {
		return TimeEntry{}, err
	}
	var entry TimeEntry
	if err := c.do(ctx, http.MethodPost, "/api/v1/time-entries/clock-in", req, &entry); err != nil {
		return TimeEntry{}, err
	}
	return entry, nil
}

func (c *Client) ClockOut(ctx context.Context, req ClockOutRequest) (TimeEntry, error) {
	if err := schema.Check(req); err != nil {
		return TimeEntry{}, err
	}
	var entry TimeEntry
	path := "/api/v1/time-entries/" + url.PathEscape(req.EntryID) + "/clock-out"
	if err := c.do(ctx, http.MethodPatch, path, req, &entry); err != nil {
		return TimeEntry{}, err
	}
	return entry, nil
}

// FindOpen returns the latest open entry of an employee on date.
func (c *Client) FindOpen(ctx context.Context, employeeID, date string) (TimeEntry, error) {
	q := url.Values{}
	q.Set("employee_id", employeeID)
	q.Set("date", date)

	var entry TimeEntry
	if err := c.do(ctx, http.MethodGet, "/api/v1/time-entries/open?"+q.Encode(), nil, &entry); err != nil {
		return TimeEntry{}, err
	}
	return entry, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return apperror.Wrap(apperror.KindInternal, "encode request", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperror.Wrap(apperror.KindInternal, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperror.Wrap(apperror.KindNetwork, method+" "+path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= http.StatusInternalServerError || errors.Is(err, io.ErrUnexpectedEOF) {
			return apperror.Wrap(apperror.KindNetwork, fmt.Sprintf("%s %s: status %d", method, path, resp.StatusCode), err)
		}
		return apperror.Wrap(apperror.KindValidation, "decode response", err)
	}

	if resp.StatusCode >= 300 || !env.Success {
		msg := http.StatusText(resp.StatusCode)
		if env.Error != nil && env.Error.Message != "" {
			msg = env.Error.Message
		}
		return apperror.New(kindForStatus(resp.StatusCode), msg)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return apperror.Wrap(apperror.KindValidation, "decode response data", err)
	}
	return schema.Check(out)
}

func kindForStatus(status int) apperror.Kind {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return apperror.KindUnauthorized
	case status == http.StatusNotFound:
		return apperror.KindNotFound
	case status == http.StatusConflict:
		return apperror.KindConflict
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return apperror.KindValidation
	case status == http.StatusBadGateway, status == http.StatusServiceUnavailable, status == http.StatusGatewayTimeout:
		return apperror.KindNetwork
	default:
		return apperror.KindInternal
	}
}
