package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/desertthunder/founders/internal/auth"
	"github.com/desertthunder/founders/internal/blob"
	"github.com/desertthunder/founders/internal/repositories"
	"github.com/desertthunder/founders/internal/shared"
	"github.com/desertthunder/founders/internal/tasks"
)

// Options holds the dependencies of a [Server].
type Options struct {
	Config        *shared.Config
	Directory     *repositories.Directory
	Blob          blob.Store         // nil disables uploads and import archiving
	Authenticator auth.Authenticator // nil treats every caller as anonymous
	Policy        auth.Policy        // defaults to a casbin policy over Config.Auth.AdminEmails
	Logger        *log.Logger
}

// Server is the founders directory HTTP API.
type Server struct {
	config *shared.Config
	dir    *repositories.Directory
	engine *tasks.ImportEngine
	blob   blob.Store
	authn  auth.Authenticator
	policy auth.Policy
	logger *log.Logger

	// importMu serializes imports; the engine must not run two batches against one store.
	importMu sync.Mutex
}

// New creates a Server. Directory is required.
func New(opts Options) (*Server, error) {
	if opts.Directory == nil {
		return nil, fmt.Errorf("%w: directory", shared.ErrMissingArgument)
	}
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Policy == nil {
		policy, err := auth.NewPolicy(opts.Config.Auth.AdminEmails)
		if err != nil {
			return nil, err
		}
		opts.Policy = policy
	}

	logger := shared.WithLogger(opts.Logger, "component", "server")
	return &Server{
		config: opts.Config,
		dir:    opts.Directory,
		engine: tasks.NewImportEngine(repositories.NewImportAdapter(opts.Directory), shared.WithLogger(opts.Logger, "component", "import")),
		blob:   opts.Blob,
		authn:  opts.Authenticator,
		policy: opts.Policy,
		logger: logger,
	}, nil
}

// Handler builds the routed handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	router := NewBasicRouter()
	router.Use(Metrics(), Authenticate(s.authn, s.logger))
	s.routes(router)

	return Chain(router,
		Recover(s.logger),
		Logging(s.logger),
		CORS(s.config.Server.AllowedOrigins),
		RateLimit(s.config.Server.RateLimit, s.config.Server.RateBurst),
	)
}

func (s *Server) routes(r *BasicRouter) {
	r.HandleFunc("GET", "/{$}", s.handleRoot)
	r.HandleFunc("GET", "/health", s.handleHealth)
	r.Handle("GET", "/metrics", promhttp.Handler())

	r.HandleFunc("GET", "/founders", s.listFounders)
	r.HandleFunc("POST", "/founders", s.createFounder)
	r.HandleFunc("GET", "/founders/{id}", s.getFounder)
	r.HandleFunc("PUT", "/founders/{id}", s.updateFounder)
	r.HandleFunc("DELETE", "/founders/{id}", s.deleteFounder)
	r.HandleFunc("PATCH", "/founders/{id}/visibility", s.setVisibility)

	r.HandleFunc("GET", "/startups", s.listStartups)
	r.HandleFunc("POST", "/startups", s.createStartup)
	r.HandleFunc("GET", "/startups/{id}", s.getStartup)
	r.HandleFunc("PUT", "/startups/{id}", s.updateStartup)
	r.HandleFunc("DELETE", "/startups/{id}", s.deleteStartup)

	for _, t := range []tagRoutes{{"/skills", auth.ObjSkills, s.dir.Skills}, {"/hobbies", auth.ObjHobbies, s.dir.Hobbies}} {
		r.HandleFunc("GET", t.path, s.listTags(t))
		r.HandleFunc("POST", t.path, s.createTag(t))
		r.HandleFunc("GET", t.path+"/{id}", s.getTag(t))
		r.HandleFunc("PUT", t.path+"/{id}", s.updateTag(t))
		r.HandleFunc("DELETE", t.path+"/{id}", s.deleteTag(t))
	}

	r.HandleFunc("GET", "/help-requests", s.listHelpRequests)
	r.HandleFunc("POST", "/help-requests", s.createHelpRequest)
	r.HandleFunc("GET", "/help-requests/{id}", s.getHelpRequest)
	r.HandleFunc("PUT", "/help-requests/{id}", s.updateHelpRequest)
	r.HandleFunc("DELETE", "/help-requests/{id}", s.deleteHelpRequest)

	r.HandleFunc("GET", "/events", s.listEvents)
	r.HandleFunc("POST", "/events", s.createEvent)
	r.HandleFunc("GET", "/events/{id}", s.getEvent)
	r.HandleFunc("PUT", "/events/{id}", s.updateEvent)
	r.HandleFunc("DELETE", "/events/{id}", s.deleteEvent)

	r.HandleFunc("POST", "/auth/check-profile", s.checkProfile)
	r.HandleFunc("POST", "/admin/import", s.importFounders)
	r.HandleFunc("GET", "/admin/imports", s.listImports)
	r.HandleFunc("POST", "/upload-image", s.uploadImage)
	r.HandleFunc("GET", "/search", s.search)

	if fs, ok := s.blob.(*blob.FSStore); ok && strings.HasPrefix(fs.PublicURL(), "/") {
		r.Handler(newUploadsHandler(fs))
	}
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Server.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// require returns the caller when policy allows action on object. Otherwise it writes 401 or 403 and returns nil.
func (s *Server) require(w http.ResponseWriter, r *http.Request, object, action string) *auth.Principal {
	p := auth.FromContext(r.Context())
	if p == nil {
		writeError(w, fmt.Errorf("%w: bearer token required", shared.ErrNotAuthenticated))
		return nil
	}
	if !s.policy.Allow(p, object, action) {
		writeError(w, fmt.Errorf("%w: %s may not %s %s", shared.ErrForbidden, p.Email, action, object))
		return nil
	}
	return p
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Founders Community Directory API"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.dir.DB().PingContext(r.Context()); err != nil {
		s.logger.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// uploadsHandler serves files written by an [blob.FSStore].
type uploadsHandler struct {
	prefix string
	files  http.Handler
}

func newUploadsHandler(fs *blob.FSStore) *uploadsHandler {
	prefix := strings.TrimRight(fs.PublicURL(), "/") + "/"
	return &uploadsHandler{prefix: prefix, files: http.StripPrefix(prefix, http.FileServer(http.Dir(fs.Root())))}
}

func (h *uploadsHandler) Routes() []string { return []string{"GET " + h.prefix} }

func (h *uploadsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	h.files.ServeHTTP(w, r)
}
