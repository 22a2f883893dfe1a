package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/couchcryptid/hebcal-calendar-service/internal/domain"
	"github.com/couchcryptid/hebcal-calendar-service/internal/observability"
	"github.com/couchcryptid/hebcal-calendar-service/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5/middleware"
)

// CookieName is the preference cookie read and refreshed by the calendar
// endpoint.
const CookieName = "C"

// CalendarBuilder decodes a request and materializes its calendar.
// *pipeline.CalendarTransformer implements it.
type CalendarBuilder interface {
	Build(ctx context.Context, req domain.Request) (domain.CalendarExport, domain.Result, error)
}

// CalendarHandler serves GET /v1/calendar.
type CalendarHandler struct {
	builder      CalendarBuilder
	metrics      *observability.Metrics
	cookieMaxAge time.Duration
	logger       *slog.Logger
}

func NewCalendarHandler(builder CalendarBuilder, metrics *observability.Metrics, cookieMaxAge time.Duration, logger *slog.Logger) *CalendarHandler {
	return &CalendarHandler{
		builder:      builder,
		metrics:      metrics,
		cookieMaxAge: cookieMaxAge,
		logger:       logger,
	}
}

type errorBody struct {
	Error errorInfo `json:"error"`
}

type errorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Param   string `json:"param,omitempty"`
}

func (h *CalendarHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := domain.Request{
		Query:    domain.QueryFromValues(r.URL.Query()),
		ClientIP: clientIP(r),
	}
	if c, err := r.Cookie(CookieName); err == nil {
		req.Cookie = c.Value
	}

	export, res, err := h.builder.Build(r.Context(), req)
	h.metrics.Requests.WithLabelValues("http", pipeline.Outcome(err)).Inc()
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if req.Query.Get("set") != "off" {
		h.setCookie(w, res)
	}
	sharedobs.WriteJSON(w, http.StatusOK, export)
}

func (h *CalendarHandler) setCookie(w http.ResponseWriter, res domain.Result) {
	exp := domain.Now().Add(h.cookieMaxAge)
	value, _ := domain.EncodeCookie(res.UID, res.Query, exp)
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		MaxAge:   int(h.cookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// writeError renders err as a JSON error body. Internal failures are logged
// and their message withheld.
func writeError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status := domain.HTTPStatus(err)
	info := errorInfo{Message: err.Error(), Code: "internal_error"}
	var de *domain.Error
	if errors.As(err, &de) {
		info.Code = de.Kind.String()
		info.Param = de.Param
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "error", err, "request_id", middleware.GetReqID(r.Context()))
		info.Message = http.StatusText(status)
	} else {
		logger.Debug("request rejected", "error", err, "status", status)
	}
	sharedobs.WriteJSON(w, status, errorBody{Error: info})
}

// clientIP returns the address set by middleware.RealIP, stripping any port.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
