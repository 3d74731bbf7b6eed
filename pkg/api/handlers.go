package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/AnClark/cygpm-prototype/pkg/buildinfo"
	"github.com/AnClark/cygpm-prototype/pkg/catalog"
	"github.com/AnClark/cygpm-prototype/pkg/errors"
	cio "github.com/AnClark/cygpm-prototype/pkg/io"
	"github.com/AnClark/cygpm-prototype/pkg/render/nodelink"
)

// DefaultSearchLimit caps /packages?q= results unless limit is given.
const DefaultSearchLimit = 50

type healthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Packages int    `json:"packages"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	n, err := s.catalog.PackageCount(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: buildinfo.Version, Packages: n})
}

type manifestResponse struct {
	Header  map[string]string `json:"header"`
	LastRun *catalog.Run      `json:"last_run,omitempty"`
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	info, err := s.catalog.ManifestInfo(ctx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	run, err := s.catalog.LastRun(ctx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := manifestResponse{Header: info}
	if run.ID != "" {
		resp.LastRun = &run
	}
	writeJSON(w, http.StatusOK, resp)
}

type listResponse struct {
	Packages []string        `json:"packages,omitempty"`
	Matches  []catalog.Match `json:"matches,omitempty"`
}

// handleList lists every package, the packages of ?category=, or the fuzzy
// matches for ?q=.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	limit := DefaultSearchLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}

	switch {
	case q.Get("q") != "":
		matches, err := catalog.SearchStore(ctx, s.catalog, q.Get("q"), limit)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, listResponse{Matches: matches})
	case q.Get("category") != "":
		names, err := s.catalog.Category(ctx, q.Get("category"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, listResponse{Packages: names})
	default:
		names, err := s.catalog.Names(ctx)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, listResponse{Packages: names})
	}
}

func (s *Server) handlePackage(w http.ResponseWriter, r *http.Request) {
	p, err := s.catalog.Package(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type versionsResponse struct {
	Name     string   `json:"name"`
	Current  string   `json:"current"`
	Previous []string `json:"previous"`
}

func (s *Server) handleVersions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")

	current, err := s.catalog.NewestVersion(ctx, name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	prev, err := s.catalog.PreviousVersions(ctx, name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if prev == nil {
		prev = []string{}
	}
	writeJSON(w, http.StatusOK, versionsResponse{Name: name, Current: current, Previous: prev})
}

// handleVersion returns the current record when version is the newest one,
// and the previous-version record otherwise.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name, version := chi.URLParam(r, "name"), chi.URLParam(r, "version")

	p, err := s.catalog.Package(ctx, name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if p.Version == version {
		writeJSON(w, http.StatusOK, p)
		return
	}
	pv, err := s.catalog.PrevVersion(ctx, name, version)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pv)
}

type fieldResponse struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	Field   string `json:"field"`
	Value   string `json:"value"`
}

func (s *Server) handleField(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	f, err := catalog.ParseField(chi.URLParam(r, "field"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	version := r.URL.Query().Get("version")
	v, err := s.catalog.Field(r.Context(), name, version, f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fieldResponse{Name: name, Version: version, Field: f.String(), Value: v})
}

type depsResponse struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Depends []string `json:"depends"`
}

// handleDeps lists the direct dependencies of ?version= (default: newest).
func (s *Server) handleDeps(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")

	version, err := s.version(r, name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	deps, err := s.catalog.DependenciesOf(ctx, name, version)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, depsResponse{Name: name, Version: version, Depends: deps})
}

func (s *Server) handleClosure(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	version, err := s.version(r, name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	pkgs, err := s.resolver.ResolveVersion(r.Context(), name, version)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"root": name, "version": version, "packages": pkgs})
}

// handleGraph returns the closure graph as JSON (default), YAML, or DOT
// (?format=).
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	q := r.URL.Query()

	format := q.Get("format")
	switch format {
	case "", "json", "yaml", "dot":
	default:
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidFormat, "unknown graph format %q", format))
		return
	}

	g, err := s.resolver.Graph(r.Context(), name, q.Get("version"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	switch format {
	case "", "json":
		w.Header().Set("Content-Type", "application/json")
		_ = cio.WriteJSON(g, w)
	case "yaml":
		w.Header().Set("Content-Type", "application/yaml")
		_ = cio.WriteYAML(g, w)
	case "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = w.Write([]byte(nodelink.ToDOT(g, nodelink.Options{Detailed: true, MarkCycles: true})))
	}
}

// handlePlan builds an install plan for every ?pkg= value.
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	roots := r.URL.Query()["pkg"]
	for _, name := range roots {
		if err := errors.ValidatePackageName(name); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	plan, err := s.resolver.Plan(r.Context(), roots...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// version returns ?version= or, when absent, the newest version of name.
func (s *Server) version(r *http.Request, name string) (string, error) {
	if v := r.URL.Query().Get("version"); v != "" {
		return v, nil
	}
	return s.catalog.NewestVersion(r.Context(), name)
}
