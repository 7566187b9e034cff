package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/dativo-io/piiredact/internal/batch"
	"github.com/dativo-io/piiredact/internal/classifier"
	"github.com/dativo-io/piiredact/internal/evaluator"
	"github.com/dativo-io/piiredact/internal/otel"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.startTime).String(),
	})
}

// handleRedact evaluates one JSON object and returns the redacted record,
// the PII flag and the findings.
func (s *Server) handleRedact(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request_too_large", "request body exceeds 1 MiB")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_request", "reading request body failed")
		return
	}

	rec, err := batch.DecodeRecord(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON format")
		return
	}

	res := evaluator.Evaluate(rec)
	log.Debug().
		Str("request_id", middleware.GetReqID(r.Context())).
		Bool("is_pii", res.IsPII).
		Int("findings", len(res.Findings)).
		Func(otel.LogTraceFields(r.Context())).
		Msg("record evaluated")
	writeJSON(w, http.StatusOK, res)
}

type ruleView struct {
	Name     string              `json:"name"`
	Kind     classifier.Kind     `json:"kind"`
	Category classifier.Category `json:"category,omitempty"`
	Fields   []string            `json:"fields"`
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	rules := classifier.Rules()
	out := make([]ruleView, 0, len(rules))
	for _, rule := range rules {
		out = append(out, ruleView{
			Name:     rule.Name,
			Kind:     rule.Kind,
			Category: rule.Category,
			Fields:   rule.Fields,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rules":                out,
		"escalation_threshold": evaluator.EscalationThreshold,
	})
}
