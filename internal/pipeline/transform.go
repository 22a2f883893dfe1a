package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/couchcryptid/hebcal-calendar-service/internal/domain"
	"github.com/couchcryptid/hebcal-calendar-service/internal/observability"
)

// Decoder turns raw request parameters into calendar options.
type Decoder interface {
	Decode(ctx context.Context, req domain.Request) (domain.Result, error)
}

// Materializer produces the event list for decoded options.
type Materializer interface {
	Materialize(ctx context.Context, opts domain.CalendarOptions) ([]domain.Event, error)
}

// Output header names set on every export.
const (
	HeaderContentType = "content_type"
	HeaderUID         = "uid"
	HeaderQuery       = "query"
	HeaderStatus      = "status"
)

// CalendarTransformer answers calendar requests. The HTTP handler calls
// Build directly; the stream pipeline goes through Transform.
type CalendarTransformer struct {
	decoder      Decoder
	materializer Materializer
	metrics      *observability.Metrics
	logger       *slog.Logger
}

func NewTransformer(decoder Decoder, materializer Materializer, metrics *observability.Metrics, logger *slog.Logger) *CalendarTransformer {
	return &CalendarTransformer{
		decoder:      decoder,
		materializer: materializer,
		metrics:      metrics,
		logger:       logger,
	}
}

// Build decodes req and materializes its calendar.
func (t *CalendarTransformer) Build(ctx context.Context, req domain.Request) (domain.CalendarExport, domain.Result, error) {
	res, err := t.decoder.Decode(ctx, req)
	if err != nil {
		return domain.CalendarExport{}, domain.Result{}, err
	}
	kind := domain.ResolutionNone
	if res.Options.Location != nil {
		kind = res.Options.Location.Kind()
	}
	t.metrics.LocationResolutions.WithLabelValues(kind.String()).Inc()

	events, err := t.materializer.Materialize(ctx, res.Options)
	if err != nil {
		return domain.CalendarExport{}, res, err
	}
	t.metrics.EventsMaterialized.Observe(float64(len(events)))
	return domain.NewCalendarExport(res.Options, events, domain.Now()), res, nil
}

// Transform answers one streamed request. The message value is a URL-encoded
// query string; cookie and client address travel as headers.
func (t *CalendarTransformer) Transform(ctx context.Context, raw domain.RawRequest) (domain.OutputMessage, error) {
	out, err := t.transform(ctx, raw)
	t.metrics.Requests.WithLabelValues("stream", Outcome(err)).Inc()
	return out, err
}

func (t *CalendarTransformer) transform(ctx context.Context, raw domain.RawRequest) (domain.OutputMessage, error) {
	q, err := domain.ParseQueryString(string(raw.Value))
	if err != nil {
		return domain.OutputMessage{}, err
	}
	req := domain.Request{
		Query:    q,
		Cookie:   raw.Headers[domain.HeaderCookie],
		ClientIP: raw.Headers[domain.HeaderClientIP],
	}

	export, res, err := t.Build(ctx, req)
	if err != nil {
		return domain.OutputMessage{}, err
	}
	data, err := json.Marshal(export)
	if err != nil {
		return domain.OutputMessage{}, fmt.Errorf("serialize calendar export: %w", err)
	}
	headers := map[string]string{
		HeaderContentType: "application/json",
		HeaderQuery:       res.Query.Encode(),
		HeaderStatus:      "200",
	}
	if res.UID != "" {
		headers[HeaderUID] = res.UID
	}
	t.logger.Debug("calendar request answered", "key", string(raw.Key), "items", len(export.Items))
	return domain.OutputMessage{Key: raw.Key, Value: data, Headers: headers}, nil
}

// Outcome labels a request result for the requests metric.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case domain.HTTPStatus(err) < http.StatusInternalServerError:
		return "client_error"
	default:
		return "error"
	}
}
