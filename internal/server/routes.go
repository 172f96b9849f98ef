package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wheelhouse-labs/wheelhouse/pkg/marker"
	"github.com/wheelhouse-labs/wheelhouse/pkg/requirement"
)

// routes mounts all API endpoints.
func (s *Server) routes(r chi.Router) {
	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/project", s.handleProject)
		r.Get("/distributions", s.handleDistributions)
		r.Get("/distributions/{dist}", s.handleDistribution)
		r.Get("/distributions/{dist}/extras", s.handleExtras)
		r.Get("/distributions/{dist}/eval", s.handleEval)
		r.Get("/graph", s.handleGraph)
		r.Get("/diagnostics", s.handleDiagnostics)
		r.Post("/parse/requirement", s.handleParseRequirement)
		r.Post("/parse/marker", s.handleParseMarker)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProject(w http.ResponseWriter, _ *http.Request) {
	g := s.engine.Graph()

	configs := make([]string, 0)
	for _, f := range s.engine.Configs() {
		configs = append(configs, f.Path)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"root":          s.engine.Root(),
		"distributions": s.engine.Distributions(),
		"configs":       configs,
		"graph": map[string]int{
			"nodes": g.NodeCount(),
			"edges": g.EdgeCount(),
		},
	})
}

func (s *Server) handleDistributions(w http.ResponseWriter, _ *http.Request) {
	type distSummary struct {
		Name   string   `json:"name"`
		Path   string   `json:"path"`
		Extras []string `json:"extras,omitempty"`
	}

	out := make([]distSummary, 0)
	for _, name := range s.engine.Distributions() {
		m, err := s.engine.Manifest(name)
		if err != nil {
			continue
		}
		out = append(out, distSummary{Name: name, Path: m.Path, Extras: m.Extras()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"distributions": out})
}

func (s *Server) handleDistribution(w http.ResponseWriter, r *http.Request) {
	dist := chi.URLParam(r, "dist")
	m, err := s.engine.Manifest(dist)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	type sectionInfo struct {
		Header       string   `json:"header,omitempty"`
		Extra        string   `json:"extra,omitempty"`
		Marker       string   `json:"marker,omitempty"`
		Requirements []string `json:"requirements"`
	}

	sections := make([]sectionInfo, 0, len(m.Sections))
	for _, sec := range m.Sections {
		info := sectionInfo{
			Header:       sec.RawHeader,
			Extra:        sec.Extra,
			Requirements: make([]string, 0, len(sec.Entries)),
		}
		if sec.Marker != nil {
			info.Marker = sec.Marker.String()
		}
		for _, e := range sec.Entries {
			info.Requirements = append(info.Requirements, e.Requirement.String())
		}
		sections = append(sections, info)
	}

	problems := make([]map[string]any, 0, len(m.Problems))
	for _, p := range m.Problems {
		problems = append(problems, map[string]any{
			"line":  p.Line,
			"raw":   p.Raw,
			"error": p.Err.Error(),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"name":     requirement.CanonicalName(m.Name),
		"path":     m.Path,
		"extras":   m.Extras(),
		"sections": sections,
		"problems": problems,
	})
}

func (s *Server) handleExtras(w http.ResponseWriter, r *http.Request) {
	dist := chi.URLParam(r, "dist")
	extras, err := s.engine.Extras(dist)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"distribution": requirement.CanonicalName(dist),
		"extras":       extras,
	})
}

// handleEval evaluates a distribution's requirements. Extras come from
// repeated "extra" query params; marker overrides from "key=value"
// pairs in repeated "marker" params.
func (s *Server) handleEval(w http.ResponseWriter, r *http.Request) {
	dist := chi.URLParam(r, "dist")
	query := r.URL.Query()

	env := s.engine.Environment().Clone()
	for _, override := range query["marker"] {
		key, value, ok := strings.Cut(override, "=")
		if !ok {
			writeError(w, http.StatusBadRequest, "marker override must be key=value: "+override)
			return
		}
		env[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	reqs, err := s.engine.Evaluate(dist, env, query["extra"])
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	out := make([]string, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, req.String())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"distribution": requirement.CanonicalName(dist),
		"extras":       query["extra"],
		"requirements": out,
	})
}

func (s *Server) handleGraph(w http.ResponseWriter, _ *http.Request) {
	g := s.engine.Graph()

	type nodeInfo struct {
		ID        string   `json:"id"`
		Kind      string   `json:"kind"`
		DependsOn []string `json:"depends_on,omitempty"`
	}

	nodes := make([]nodeInfo, 0, g.NodeCount())
	for _, n := range g.Nodes() {
		nodes = append(nodes, nodeInfo{
			ID:        n.ID,
			Kind:      n.Kind.String(),
			DependsOn: g.Dependencies(n.ID),
		})
	}

	payload := map[string]any{
		"nodes": nodes,
		"edges": g.EdgeCount(),
	}
	if waves, err := g.InstallWaves(); err == nil {
		payload["waves"] = waves
	} else if cycle, found := g.FindCycle(); found {
		payload["cycle"] = cycle
	}

	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, _ *http.Request) {
	diags := s.engine.Lint(s.lintCfg)

	type diagInfo struct {
		RuleID   string `json:"rule_id"`
		Severity string `json:"severity"`
		Message  string `json:"message"`
		File     string `json:"file,omitempty"`
		Line     int    `json:"line,omitempty"`
	}

	out := make([]diagInfo, 0, len(diags))
	for _, d := range diags {
		out = append(out, diagInfo{
			RuleID:   d.RuleID,
			Severity: d.Severity.String(),
			Message:  d.Message,
			File:     d.File,
			Line:     d.Line,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"diagnostics": out,
		"count":       len(out),
	})
}

type parseRequest struct {
	Input string `json:"input"`
}

func (s *Server) handleParseRequirement(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	parsed, err := requirement.Parse(req.Input)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"ok": false, "error": err.Error()})
		return
	}

	payload := map[string]any{
		"ok":        true,
		"name":      parsed.Name,
		"canonical": parsed.CanonicalNameKey(),
	}
	if len(parsed.Extras) > 0 {
		payload["extras"] = parsed.Extras
	}
	if !parsed.Specifiers.Empty() {
		payload["specifier"] = parsed.Specifiers.String()
	}
	if parsed.URL != "" {
		payload["url"] = parsed.URL
	}
	if parsed.Marker != nil {
		payload["marker"] = parsed.Marker.String()
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleParseMarker(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	m, err := marker.Parse(req.Input)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"ok": false, "error": err.Error()})
		return
	}

	result, err := m.Eval(s.engine.Environment())
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":     true,
			"marker": m.String(),
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":     true,
		"marker": m.String(),
		"result": result,
	})
}
