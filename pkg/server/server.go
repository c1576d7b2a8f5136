package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/intake"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/logging"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/model"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/render"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/renderers/vanilla"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/taxonomy"
)

// maxBodyBytes caps validate request bodies.
const maxBodyBytes = 1 << 20

// Taxonomy is the read side of the taxonomy store.
type Taxonomy interface {
	Snapshot() taxonomy.Snapshot
}

// Server serves the taxonomy and form previews over HTTP.
type Server struct {
	router     *chi.Mux
	taxonomy   Taxonomy
	renderer   render.Renderer
	theme      string
	language   string
	translator render.Translator
	logger     *slog.Logger
}

type Options func(*Server)

// WithRenderer replaces the vanilla HTML renderer used for previews.
func WithRenderer(renderer render.Renderer) Options {
	return func(s *Server) {
		s.renderer = renderer
	}
}

// WithAppearance sets the theme and language passed to every render.
func WithAppearance(theme, language string) Options {
	return func(s *Server) {
		s.theme = theme
		s.language = language
	}
}

func WithTranslator(translator render.Translator) Options {
	return func(s *Server) {
		s.translator = translator
	}
}

func WithLogger(logger *slog.Logger) Options {
	return func(s *Server) {
		s.logger = logger
	}
}

// New builds the router. The default renderer is vanilla with the embedded
// layout.
func New(tax Taxonomy, opts ...Options) (*Server, error) {
	r := chi.NewRouter()
	s := &Server{
		router:   r,
		taxonomy: tax,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.logger == nil {
		s.logger = logging.Default()
	}
	if s.renderer == nil {
		renderer, err := vanilla.New(vanilla.WithLogger(s.logger))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to build preview renderer")
		}
		s.renderer = renderer
	}

	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(s.accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", healthHandler)
	r.Get("/api/taxonomy", s.taxonomyHandler)
	r.Get("/forms/{category}/{subcategory}", s.formHandler)
	r.Post("/api/forms/{category}/{subcategory}/validate", s.validateHandler)
	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(vanilla.AssetsFS()))))

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestLogger scopes the logger to the request id.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := s.logger.With("request_id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(logging.With(r.Context(), logger)))
	})
}

// accessLogger is a middleware that logs HTTP requests
func (s *Server) accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.From(r.Context()).Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) taxonomyHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, s.taxonomy.Snapshot())
}

func (s *Server) lookup(r *http.Request) (taxonomy.Category, taxonomy.SubCategory, error) {
	return s.taxonomy.Snapshot().Lookup(chi.URLParam(r, "category"), chi.URLParam(r, "subcategory"))
}

// formHandler renders a sub-category form pre-filled from the query string.
// Query values go through the value policy; rejected ones become field
// errors.
func (s *Server) formHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cat, sub, err := s.lookup(r)
	if err != nil {
		handleHTTP(ctx, w, err)
		return
	}

	values, fieldErrors := valuesFromQuery(sub, r.URL.Query())
	opts := render.Options{
		Values:     values,
		Errors:     fieldErrors,
		Action:     r.URL.Path,
		Hidden:     hiddenFields(r.URL.Query(), values),
		Theme:      s.theme,
		Language:   s.language,
		Translator: s.translator,
	}
	if size, ok := values.Number("size"); ok {
		opts.PlotSize = size
	}

	out, err := s.renderer.Render(ctx, render.Form{Category: cat, SubCategory: sub}, opts)
	if err != nil {
		handleHTTP(ctx, w, goerr.Wrap(err, "failed to render form",
			goerr.V(taxonomy.CategoryKey, cat.Name), goerr.V(taxonomy.SubCategoryKey, sub.Name)))
		return
	}
	w.Header().Set("Content-Type", s.renderer.ContentType())
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out); err != nil {
		logging.From(ctx).Warn("failed to write form", "error", err)
	}
}

// validateHandler checks a JSON object of values against a sub-category.
func (s *Server) validateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cat, sub, err := s.lookup(r)
	if err != nil {
		handleHTTP(ctx, w, err)
		return
	}

	var values model.Values
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&values); err != nil {
		handleHTTP(ctx, w, goerr.Wrap(ErrBadRequest, "invalid values body", goerr.V("cause", err.Error())))
		return
	}

	report := intake.Check(cat, sub, values)
	logging.From(ctx).Debug("values checked",
		"category", cat.Name,
		"sub_category", sub.Name,
		"valid", report.Valid,
		"missing", len(report.Missing),
		"issues", len(report.Issues),
	)
	writeJSON(ctx, w, http.StatusOK, report)
}

func valuesFromQuery(sub taxonomy.SubCategory, query url.Values) (model.Values, map[string][]string) {
	values := model.Values{}
	for _, name := range []string{intake.FieldUPI, intake.FieldOwnerID, intake.FieldOwnerName} {
		if v := strings.TrimSpace(query.Get(name)); v != "" {
			values[name] = v
		}
	}
	if size := strings.TrimSpace(query.Get("size")); size != "" {
		if n, ok := model.Number(size); ok {
			values["size"] = n
		}
	}

	fieldErrors := make(map[string][]string)
	for _, field := range sub.Fields {
		raw, ok := query[field.Name]
		if !ok || field.Type == taxonomy.FieldSectionHeader {
			continue
		}
		var input any = strings.TrimSpace(firstOf(raw))
		if field.Type == taxonomy.FieldMultiSelect {
			input = raw
		}
		change, err := render.Apply(field, input, 0)
		if err != nil {
			fieldErrors[field.Name] = append(fieldErrors[field.Name], "Invalid value")
			continue
		}
		if !model.IsEmpty(change.Value) {
			values[field.Name] = change.Value
		}
	}
	return values, fieldErrors
}

// hiddenFields carries the identity values, the plot size and an optional
// session id through the form, ordered by name.
func hiddenFields(query url.Values, values model.Values) []render.HiddenField {
	fields := render.IdentityFields(values)
	if values.Has("size") {
		fields = append(fields, render.Hidden("size", values["size"]))
	}
	if session := strings.TrimSpace(query.Get("session_id")); session != "" {
		fields = append(fields, render.SessionField(session))
	}
	return render.SortedHiddenFields(render.MergeHiddenFields(nil, fields...))
}

func firstOf(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- goerr.Wrap(err, "failed to start server", goerr.V("addr", addr))
		}
		close(errCh)
	}()
	s.logger.Info("server started", "addr", addr)

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return goerr.Wrap(err, "failed to shutdown server gracefully")
	}
	s.logger.Info("server stopped")
	return nil
}
