package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cmlabs-hris/timeclock-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/timeclock-go/internal/handler/http/response"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/sse"
	"github.com/cmlabs-hris/timeclock-go/internal/pkg/validator"
)

type RealtimeHandler interface {
	GetSSEToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type realtimeHandlerImpl struct {
	hub        *sse.Hub
	jwtService jwt.Service
	tables     []string
	keepalive  time.Duration
}

type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// NewRealtimeHandler creates the change stream handler. tables are the
// topics a client may subscribe to.
func NewRealtimeHandler(hub *sse.Hub, jwtService jwt.Service, tables []string) RealtimeHandler {
	return &realtimeHandlerImpl{
		hub:        hub,
		jwtService: jwtService,
		tables:     tables,
		keepalive:  30 * time.Second,
	}
}

// GetSSEToken generates a short-lived token for SSE connections
func (h *realtimeHandlerImpl) GetSSEToken(w http.ResponseWriter, r *http.Request) {
	subject := middleware.Subject(r)
	if subject == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(subject)
	if err != nil {
		response.InternalServerError(w, "Failed to generate SSE token")
		return
	}

	response.Success(w, SSETokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

// Stream handles GET /realtime/stream?token=&tables=a,b. Each change to a
// subscribed table is sent as a "change" event naming the table only.
func (h *realtimeHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// Get token from query parameter (SSE doesn't support custom headers)
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	subject, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	tables := h.tables
	if raw := r.URL.Query().Get("tables"); raw != "" {
		tables = nil
		for _, t := range strings.Split(raw, ",") {
			t = strings.TrimSpace(t)
			if !validator.IsInSlice(t, h.tables) {
				response.BadRequest(w, fmt.Sprintf("unknown table %q", t), nil)
				return
			}
			tables = append(tables, t)
		}
	}

	// Check if streaming is supported
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(tables...)
	defer cleanup()

	connected, _ := json.Marshal(map[string]interface{}{
		"status":  "connected",
		"subject": subject,
		"tables":  tables,
	})
	fmt.Fprintf(w, "event: connected\ndata: %s\n\n", connected)
	flusher.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
