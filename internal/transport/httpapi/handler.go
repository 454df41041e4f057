// Package httpapi exposes the readiness engine over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"releasegate/internal/bootstrap/logging"
	domainreadiness "releasegate/internal/domain/readiness"
	"releasegate/internal/errs"
	"releasegate/internal/usecase/readiness"
)

var errBadRequest = errors.New("bad request")

type Handler struct {
	svc      *readiness.Service
	validate *validator.Validate
}

// NewRouter mounts the API, /healthz and /metrics. gatherer may be nil when
// prometheus is disabled; /metrics is then not mounted.
func NewRouter(svc *readiness.Service, gatherer prometheus.Gatherer) http.Handler {
	h := &Handler{svc: svc, validate: validator.New()}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", h.health)
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/checklist", h.listChecklist)
		r.Post("/checklist", h.createChecklistItem)
		r.Get("/checklist/{slug}", h.getChecklistItem)
		r.Patch("/checklist/{slug}", h.updateChecklistItem)

		r.Get("/runs", h.listRuns)
		r.Post("/runs", h.scheduleRun)
		r.Get("/runs/{runID}", h.getRun)
		r.Put("/runs/{runID}/gates/{gateKey}", h.recordGate)
		r.Post("/runs/{runID}/evaluate", h.evaluateRun)
		r.Post("/runs/{runID}/transition", h.transitionRun)

		r.Get("/dashboard", h.dashboard)
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithAttrs(
			r.Context(),
			slog.String("component", "transport.httpapi"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r.WithContext(ctx))

		logging.Debug(
			ctx,
			"http request served",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("elapsed", time.Since(start)),
		)
	})
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) listChecklist(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pageParams(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	listing, err := h.svc.ListChecklist(r.Context(), readiness.ListChecklistInput{
		Category: r.URL.Query().Get("category"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (h *Handler) createChecklistItem(w http.ResponseWriter, r *http.Request) {
	var req CreateChecklistItemRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	item, err := h.svc.CreateChecklistItem(r.Context(), req.ToInput())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) getChecklistItem(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	item, err := h.svc.GetChecklistItem(r.Context(), slug)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if item == nil {
		notFound(w, "checklist item", slug)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) updateChecklistItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateChecklistItemRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	slug := chi.URLParam(r, "slug")
	item, err := h.svc.UpdateChecklistItem(r.Context(), readiness.UpdateChecklistItemInput{
		Slug:  slug,
		Patch: req.ToPatch(),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if item == nil {
		notFound(w, "checklist item", slug)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) listRuns(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pageParams(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	query := r.URL.Query()
	var statuses []string
	for _, raw := range query["status"] {
		for _, status := range strings.Split(raw, ",") {
			if status = strings.TrimSpace(status); status != "" {
				statuses = append(statuses, status)
			}
		}
	}

	page, err := h.svc.ListRuns(r.Context(), readiness.ListRunsInput{
		Environment: query.Get("environment"),
		Statuses:    statuses,
		VersionTag:  query.Get("versionTag"),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	items := page.Items
	if items == nil {
		items = []domainreadiness.ReleaseRun{}
	}
	writeJSON(w, http.StatusOK, RunListResponse{Items: items, Total: page.Total})
}

func (h *Handler) scheduleRun(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRunRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.svc.ScheduleReleaseRun(r.Context(), req.ToInput())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) getRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	result, err := h.svc.GetRun(r.Context(), runID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if result == nil {
		notFound(w, "release run", runID)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) recordGate(w http.ResponseWriter, r *http.Request) {
	var req RecordGateRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	runID := chi.URLParam(r, "runID")
	gate, err := h.svc.RecordGateEvaluation(r.Context(), req.ToInput(runID, chi.URLParam(r, "gateKey")))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if gate == nil {
		notFound(w, "release run", runID)
		return
	}
	writeJSON(w, http.StatusOK, gate)
}

func (h *Handler) evaluateRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	evaluation, err := h.svc.EvaluateRun(r.Context(), runID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if evaluation == nil {
		notFound(w, "release run", runID)
		return
	}
	writeJSON(w, http.StatusOK, evaluation)
}

func (h *Handler) transitionRun(w http.ResponseWriter, r *http.Request) {
	var req TransitionRunRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	runID := chi.URLParam(r, "runID")
	run, err := h.svc.TransitionRun(r.Context(), runID, req.Status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if run == nil {
		notFound(w, "release run", runID)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.svc.GetDashboard(r.Context(), r.URL.Query().Get("environment"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func (h *Handler) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if err := h.validate.Struct(dst); err != nil {
		return err
	}
	return nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var invalid validator.ValidationErrors
	switch {
	case errors.As(err, &invalid),
		errors.Is(err, errBadRequest),
		domainreadiness.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logging.Error(r.Context(), "request failed", slog.Any("err", errs.Loggable(err)))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func pageParams(r *http.Request) (int, int, error) {
	limit, err := intParam(r, "limit")
	if err != nil {
		return 0, 0, err
	}
	offset, err := intParam(r, "offset")
	if err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}

func intParam(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", errBadRequest, name)
	}
	return v, nil
}

func notFound(w http.ResponseWriter, kind string, id string) {
	writeError(w, http.StatusNotFound, fmt.Sprintf("%s %q not found", kind, id))
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
