// Package server exposes the derived county dataset over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/countymap/internal/county"
	"github.com/sells-group/countymap/internal/geo"
	"github.com/sells-group/countymap/internal/render"
)

// Options configures the API.
type Options struct {
	AllowedOrigins []string
	Map            render.Options
	// MaxToleranceKM caps the tolerance_km query parameter of /resolve.
	MaxToleranceKM float64
}

// Server serves a fixed snapshot of county records.
type Server struct {
	records []county.Record
	opts    Options
	log     *zap.Logger
}

// New creates a Server over records. The slice must not be modified afterwards.
func New(records []county.Record, opts Options) *Server {
	if opts.MaxToleranceKM <= 0 {
		opts.MaxToleranceKM = 100
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return &Server{
		records: records,
		opts:    opts,
		log:     zap.L().With(zap.String("component", "server")),
	}
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/counties", s.handleCounties)
	r.Get("/counties/{geoid}", s.handleCounty)
	r.Get("/points", s.handlePoints)
	r.Get("/resolve", s.handleResolve)
	r.Get("/destinations/{name}", s.handleDestinations)
	r.Get("/map.svg", s.handleMap)
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("starting server", zap.String("addr", addr), zap.Int("records", len(s.records)))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return eris.Wrap(err, "server: listen")
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCounties(w http.ResponseWriter, r *http.Request) {
	records, ok := s.scoped(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleCounty(w http.ResponseWriter, r *http.Request) {
	geoid := chi.URLParam(r, "geoid")
	rec, ok := county.ByGEOID(geoid, s.records)
	if !ok {
		writeError(w, http.StatusNotFound, "county "+geoid+" not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handlePoints(w http.ResponseWriter, _ *http.Request) {
	m := s.mapOptions()
	proj := geo.NewAlbers(m.Scale, float64(m.Width), float64(m.Height))
	points, err := county.Project(county.FilterContiguous(s.records), proj, m.Divisor)
	if err != nil {
		s.log.Error("project points", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "projection failed")
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target, err := geo.ParsePoint(q.Get("lon") + "," + q.Get("lat"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if raw := q.Get("tolerance_km"); raw != "" {
		tol, err := strconv.ParseFloat(raw, 64)
		if err != nil || tol < 0 || tol > s.opts.MaxToleranceKM {
			writeError(w, http.StatusBadRequest, "tolerance_km must be a number between 0 and "+
				strconv.FormatFloat(s.opts.MaxToleranceKM, 'f', -1, 64))
			return
		}
		rec, ok, err := county.ResolveNearest(target, s.records, tol)
		if err != nil {
			s.log.Error("resolve nearest", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "resolve failed")
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "no county within "+raw+" km of "+target.String())
			return
		}
		writeJSON(w, http.StatusOK, rec)
		return
	}

	rec, ok := county.Resolve(target, s.records)
	if !ok {
		writeError(w, http.StatusNotFound, "no county with centroid "+target.String())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDestinations(w http.ResponseWriter, r *http.Request) {
	found, ok := s.destinations(w, chi.URLParam(r, "name"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	var dests []county.Record
	if name := r.URL.Query().Get("destinations"); name != "" {
		var ok bool
		if dests, ok = s.destinations(w, name); !ok {
			return
		}
	}

	m := s.mapOptions()
	m.Title = r.URL.Query().Get("title")
	w.Header().Set("Content-Type", "image/svg+xml")
	if err := render.Map(w, s.records, dests, m); err != nil {
		s.log.Error("render map", zap.Error(err))
	}
}

// destinations resolves a named destination set, writing the error response
// itself when that fails.
func (s *Server) destinations(w http.ResponseWriter, name string) ([]county.Record, bool) {
	set, ok := county.DestinationSetByName(name)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown destination set "+strconv.Quote(name))
		return nil, false
	}
	found, missing := set.Resolve(s.records)
	if len(missing) > 0 {
		writeError(w, http.StatusNotFound, "county "+missing[0]+" of set "+strconv.Quote(name)+" not found")
		return nil, false
	}
	return found, true
}

func (s *Server) scoped(w http.ResponseWriter, r *http.Request) ([]county.Record, bool) {
	switch scope := r.URL.Query().Get("scope"); scope {
	case "", "contiguous":
		return county.FilterContiguous(s.records), true
	case "all":
		return s.records, true
	default:
		writeError(w, http.StatusBadRequest, "scope must be contiguous or all")
		return nil, false
	}
}

func (s *Server) mapOptions() render.Options {
	m := s.opts.Map.WithDefaults()
	m.Title = ""
	return m
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
