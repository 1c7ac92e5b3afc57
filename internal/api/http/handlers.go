package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/jekabolt/grbpwr-analytics/internal/dto"
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	gerr "github.com/jekabolt/grbpwr-analytics/internal/errors"
)

const (
	dateLayout = "2006-01-02"
	// statusClientClosedRequest is the nginx convention for a request the
	// client abandoned before the response was ready.
	statusClientClosedRequest = 499
)

// ErrResponse is the body of every non-2xx response.
type ErrResponse struct {
	StatusText string `json:"status"`
	ErrorText  string `json:"error,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	req, err := parseSnapshotRequest(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	snap, err := s.dashboard.Snapshot(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		level := slog.LevelError
		switch {
		case errors.Is(err, gerr.ErrInvalidRequest):
			status = http.StatusBadRequest
		case errors.Is(err, context.DeadlineExceeded):
			status = http.StatusGatewayTimeout
		case errors.Is(err, context.Canceled):
			status = statusClientClosedRequest
			level = slog.LevelInfo
		}
		slog.Default().Log(r.Context(), level, "can't build dashboard snapshot",
			slog.String("err", err.Error()),
			slog.String("period", string(req.Period)),
		)
		writeError(w, r, status, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ConvertEntitySnapshotToDto(snap))
}

func (s *Server) handleInventory(w http.ResponseWriter, r *http.Request) {
	inv, err := s.dashboard.Inventory(r.Context())
	if err != nil {
		slog.Default().ErrorContext(r.Context(), "can't build inventory summary",
			slog.String("err", err.Error()),
		)
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ConvertEntityInventoryToDto(*inv))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health.Ping(ctx); err != nil {
			writeError(w, r, http.StatusServiceUnavailable, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parseSnapshotRequest reads period, from, to and top query parameters.
// Dates are either 2006-01-02 or RFC 3339.
func parseSnapshotRequest(r *http.Request) (entity.SnapshotRequest, error) {
	q := r.URL.Query()
	req := entity.SnapshotRequest{Period: entity.Period(q.Get("period"))}

	var err error
	if req.From, err = parseDate(q.Get("from")); err != nil {
		return req, fmt.Errorf("%w: bad from: %v", gerr.ErrInvalidRequest, err)
	}
	if req.To, err = parseDate(q.Get("to")); err != nil {
		return req, fmt.Errorf("%w: bad to: %v", gerr.ErrInvalidRequest, err)
	}
	if v := q.Get("top"); v != "" {
		req.TopN, err = strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("%w: bad top: %v", gerr.ErrInvalidRequest, err)
		}
	}
	return req, nil
}

func parseDate(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(dateLayout, v); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("can't encode response", slog.String("err", err.Error()))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	text := http.StatusText(status)
	if status == statusClientClosedRequest {
		text = "Client Closed Request"
	}
	writeJSON(w, status, ErrResponse{
		StatusText: text,
		ErrorText:  err.Error(),
		RequestID:  middleware.GetReqID(r.Context()),
	})
}
