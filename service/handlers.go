package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/meenmo/multicurve/market"
)

const dateLayout = "2006-01-02"

// Handlers serves curve queries against the registry. The runner may be
// nil for a query-only service; POST calibrate then returns 404.
type Handlers struct {
	registry *Registry
	runner   *Runner
	log      zerolog.Logger
	started  time.Time
}

// NewHandlers wires the HTTP handlers.
func NewHandlers(registry *Registry, runner *Runner, log zerolog.Logger) *Handlers {
	return &Handlers{registry: registry, runner: runner, log: log, started: time.Now()}
}

type healthResponse struct {
	Status  string     `json:"status"`
	Uptime  string     `json:"uptime"`
	LastRun *RunRecord `json:"last_run,omitempty"`
}

// Health reports liveness and the outcome of the latest run.
// GET /health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Uptime: time.Since(h.started).Round(time.Second).String()}
	if rec, ok := h.registry.LastRun(); ok {
		resp.LastRun = &rec
		if rec.Err != "" {
			resp.Status = "degraded"
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

type groupInfo struct {
	Group        string   `json:"group"`
	Valuation    string   `json:"valuation"`
	Curves       []string `json:"curves"`
	Iterations   int      `json:"iterations"`
	ResidualNorm float64  `json:"residual_norm"`
	Elapsed      string   `json:"elapsed"`
}

// ListGroups returns every published group with its diagnostics.
// GET /api/groups
func (h *Handlers) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups := make([]groupInfo, 0)
	for _, name := range h.registry.Groups() {
		provider, ok := h.registry.Provider(name)
		if !ok {
			continue
		}
		diag := provider.Diagnostics()
		groups = append(groups, groupInfo{
			Group:        name,
			Valuation:    provider.Valuation().Format(dateLayout),
			Curves:       provider.CurveNames(),
			Iterations:   diag.Iterations,
			ResidualNorm: diag.ResidualNorm,
			Elapsed:      diag.Elapsed.String(),
		})
	}
	respondJSON(w, http.StatusOK, groups)
}

// ListRuns returns the bounded run history, oldest first.
// GET /api/runs
func (h *Handlers) ListRuns(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.registry.History())
}

type discountResponse struct {
	Group          string  `json:"group"`
	Currency       string  `json:"currency"`
	Date           string  `json:"date"`
	DiscountFactor float64 `json:"discount_factor"`
}

// DiscountFactor serves discount factor queries.
// GET /api/groups/{group}/discount/{ccy}?date=2027-07-15
func (h *Handlers) DiscountFactor(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	provider, ok := h.registry.Provider(vars["group"])
	if !ok {
		respondError(w, http.StatusNotFound, fmt.Sprintf("unknown group %s", vars["group"]))
		return
	}
	date, err := parseDateParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	df, err := provider.DiscountFactor(market.Currency(vars["ccy"]), date)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, discountResponse{
		Group:          vars["group"],
		Currency:       vars["ccy"],
		Date:           date.Format(dateLayout),
		DiscountFactor: df,
	})
}

type forwardResponse struct {
	Group       string  `json:"group"`
	Index       string  `json:"index"`
	Date        string  `json:"date"`
	ForwardRate float64 `json:"forward_rate"`
}

// ForwardRate serves index forward queries.
// GET /api/groups/{group}/forward/{index}?date=2027-07-15
func (h *Handlers) ForwardRate(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	provider, ok := h.registry.Provider(vars["group"])
	if !ok {
		respondError(w, http.StatusNotFound, fmt.Sprintf("unknown group %s", vars["group"]))
		return
	}
	date, err := parseDateParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	fwd, err := provider.ForwardRate(market.Index(vars["index"]), date)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, forwardResponse{
		Group:       vars["group"],
		Index:       vars["index"],
		Date:        date.Format(dateLayout),
		ForwardRate: fwd,
	})
}

type zeroResponse struct {
	Group    string  `json:"group"`
	Currency string  `json:"currency"`
	Date     string  `json:"date"`
	ZeroRate float64 `json:"zero_rate"`
}

// ZeroRate serves zero rate queries.
// GET /api/groups/{group}/zero/{ccy}?date=2027-07-15
func (h *Handlers) ZeroRate(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	provider, ok := h.registry.Provider(vars["group"])
	if !ok {
		respondError(w, http.StatusNotFound, fmt.Sprintf("unknown group %s", vars["group"]))
		return
	}
	date, err := parseDateParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	zero, err := provider.ZeroRate(market.Currency(vars["ccy"]), date)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, zeroResponse{
		Group:    vars["group"],
		Currency: vars["ccy"],
		Date:     date.Format(dateLayout),
		ZeroRate: zero,
	})
}

// Calibrate triggers a synchronous calibration run.
// POST /api/groups/{group}/calibrate
func (h *Handlers) Calibrate(w http.ResponseWriter, r *http.Request) {
	group := mux.Vars(r)["group"]
	if h.runner == nil || h.runner.GroupName() != group {
		respondError(w, http.StatusNotFound, fmt.Sprintf("no runner for group %s", group))
		return
	}
	h.log.Info().Str("group", group).Msg("manual calibration triggered")
	rec, err := h.runner.Run(r.Context())
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, rec)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func parseDateParam(r *http.Request) (time.Time, error) {
	v := r.URL.Query().Get("date")
	if v == "" {
		return time.Time{}, fmt.Errorf("query parameter date is required (2006-01-02)")
	}
	d, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q: want 2006-01-02", v)
	}
	return d, nil
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
