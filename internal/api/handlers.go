package api

import (
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/netforce/pkg/buildinfo"
	"github.com/matzehuels/netforce/pkg/errors"
	"github.com/matzehuels/netforce/pkg/pipeline"
	"github.com/matzehuels/netforce/pkg/store"
)

// Response headers set by createLayout.
const (
	headerCache    = "X-Netforce-Cache"
	headerWarnings = "X-Netforce-Warnings"
)

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	info := buildinfo.Get()
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": info.Version,
		"commit":  info.Commit,
	})
}

// createLayout handles POST /v1/layouts.
func (s *Server) createLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := s.requestOptions(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	src, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(src) == 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "request body is empty"))
		return
	}

	res, err := s.runner.Execute(r.Context(), src, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	snap := store.NewRecord(res.Snapshot)
	if err := s.store.Put(r.Context(), snap); err != nil {
		s.writeError(w, r, err)
		return
	}

	for _, warn := range res.Warnings {
		s.logger.Warn("skipped edge", "request_id", chimiddleware.GetReqID(r.Context()), "warning", warn.String())
	}
	cacheState := "miss"
	if res.CacheInfo.LayoutHit {
		cacheState = "hit"
	}
	w.Header().Set(headerCache, cacheState)
	w.Header().Set(headerWarnings, strconv.Itoa(len(res.Warnings)))
	w.Header().Set("Location", "/v1/layouts/"+snap.ID)
	writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) listLayouts(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"layouts": list})
}

func (s *Server) getLayout(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) deleteLayout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.Get(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Query overrides
// =============================================================================

// requestOptions applies query parameters on top of the server defaults.
func (s *Server) requestOptions(q url.Values) (pipeline.Options, error) {
	opts := s.defaults
	opts.Order = append([]int(nil), s.defaults.Order...)

	ints := []struct {
		name string
		dst  *int
	}{
		{"graph", &opts.GraphIndex},
		{"ticks", &opts.Ticks},
		{"max_nodes", &opts.MaxNodes},
	}
	for _, p := range ints {
		if v := q.Get(p.name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return opts, badParam(p.name, v)
			}
			*p.dst = n
		}
	}
	if q.Get("ticks") != "" {
		if err := errors.ValidateRange("ticks", opts.Ticks, 1, s.cfg.MaxTicks); err != nil {
			return opts, err
		}
	}

	floats := []struct {
		name string
		dst  *float64
	}{
		{"desired_distance", &opts.DesiredDistance},
		{"connection_force", &opts.ConnectionForce},
		{"repulsion_force", &opts.RepulsionForce},
		{"damping", &opts.Damping},
		{"tolerance", &opts.Tolerance},
	}
	for _, p := range floats {
		if v := q.Get(p.name); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return opts, badParam(p.name, v)
			}
			*p.dst = f
		}
	}

	if v := q.Get("locked"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, badParam("locked", v)
		}
		opts.LockedNodes = &n
	}
	if v := q.Get("seed"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return opts, badParam("seed", v)
		}
		opts.Seed = n
	}
	if v := q.Get("placement"); v != "" {
		opts.Placement = v
	}
	if v := q.Get("refresh"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, badParam("refresh", v)
		}
		opts.Refresh = b
	}
	return opts, nil
}

func badParam(name, value string) error {
	return errors.New(errors.ErrCodeInvalidInput, "invalid value %q for query parameter %s", value, name)
}
