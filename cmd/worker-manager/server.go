// cmd/worker-manager/server.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"enrichment-workers/internal/common/logger"
	"enrichment-workers/internal/ledger"
	"enrichment-workers/internal/orchestrator"
	"enrichment-workers/internal/providers"
	"enrichment-workers/internal/ratelimit"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const readinessTimeout = 3 * time.Second

// dependencyCheck is one readiness check, e.g. a database ping.
type dependencyCheck struct {
	name  string
	check func(ctx context.Context) error
}

type server struct {
	registry *orchestrator.Registry
	balances ledger.BalanceReader
	checks   []dependencyCheck
	version  string
	logger   logger.Logger
}

type providerStatus struct {
	Name         string                 `json:"name"`
	Capabilities []providers.Capability `json:"capabilities"`
	RateLimit    *ratelimit.Stats       `json:"rateLimit,omitempty"`
}

type limited interface {
	Limiter() *ratelimit.Limiter
}

func (s *server) router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.HandleFunc("/ready", s.ready).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/providers", s.listProviders).Methods(http.MethodGet)
	api.HandleFunc("/clients/{clientId}/balance", s.clientBalance).Methods(http.MethodGet)
	return r
}

func (s *server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"version": s.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// ready reports 503 when any dependency check fails.
func (s *server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(s.checks))
	for _, c := range s.checks {
		if err := c.check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			results[c.name] = err.Error()
			s.logger.Warn("Readiness check failed", map[string]interface{}{
				"dependency": c.name,
				"error":      err.Error(),
			})
			continue
		}
		results[c.name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	writeJSON(w, status, map[string]interface{}{
		"status":       state,
		"dependencies": results,
		"providers":    s.registry.Len(),
		"time":         time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *server) listProviders(w http.ResponseWriter, _ *http.Request) {
	out := make([]providerStatus, 0, s.registry.Len())
	for _, name := range s.registry.Names() {
		p, ok := s.registry.Get(name)
		if !ok {
			continue
		}
		st := providerStatus{Name: name, Capabilities: p.Capabilities()}
		if l, ok := p.(limited); ok && l.Limiter() != nil {
			stats := l.Limiter().Stats()
			st.RateLimit = &stats
		}
		out = append(out, st)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"providers": out})
}

func (s *server) clientBalance(w http.ResponseWriter, r *http.Request) {
	clientID := mux.Vars(r)["clientId"]
	if s.balances == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "ledger does not report balances"})
		return
	}

	balance, err := s.balances.Balance(r.Context(), clientID)
	switch {
	case errors.Is(err, ledger.ErrUnknownClient):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown client"})
		return
	case err != nil:
		s.logger.Error("Balance lookup failed", map[string]interface{}{
			"clientId": clientID,
			"error":    err.Error(),
		})
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "ledger unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"clientId": clientID, "balance": balance})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
