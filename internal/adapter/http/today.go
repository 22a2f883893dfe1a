package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/hebcal-calendar-service/internal/domain"
	"github.com/couchcryptid/hebcal-calendar-service/internal/observability"
	"github.com/couchcryptid/hebcal-calendar-service/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// TodayHandler serves GET /v1/today: the Hebrew date of a reference day,
// advanced past local sunset when the day is today and a location is known.
type TodayHandler struct {
	locations domain.LocationResolver
	sun       domain.SunsetCalculator
	metrics   *observability.Metrics
	logger    *slog.Logger
}

func NewTodayHandler(locations domain.LocationResolver, sun domain.SunsetCalculator, metrics *observability.Metrics, logger *slog.Logger) *TodayHandler {
	return &TodayHandler{locations: locations, sun: sun, metrics: metrics, logger: logger}
}

type todayResponse struct {
	Date        string           `json:"date"`
	HebrewDate  string           `json:"hdate"`
	HebrewYear  int              `json:"hy"`
	HebrewMonth int              `json:"hm"`
	HebrewDay   int              `json:"hd"`
	AfterSunset bool             `json:"afterSunset"`
	Location    *domain.Location `json:"location,omitempty"`
}

func (h *TodayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := domain.QueryFromValues(r.URL.Query())
	loc, _, err := h.locations.ResolveOrGeoIP(r.Context(), q, clientIP(r))
	if err == nil {
		var sd domain.SunsetDate
		sd, err = domain.SunsetAwareDate(q, loc, h.sun)
		if err == nil {
			h.metrics.Requests.WithLabelValues("http", "ok").Inc()
			sharedobs.WriteJSON(w, http.StatusOK, todayResponse{
				Date:        sd.Date.Format(time.DateOnly),
				HebrewDate:  sd.HDate.String(),
				HebrewYear:  sd.HDate.Year(),
				HebrewMonth: int(sd.HDate.Month()),
				HebrewDay:   sd.HDate.Day(),
				AfterSunset: sd.AfterSunset,
				Location:    loc,
			})
			return
		}
	}
	h.metrics.Requests.WithLabelValues("http", pipeline.Outcome(err)).Inc()
	writeError(w, r, err, h.logger)
}
