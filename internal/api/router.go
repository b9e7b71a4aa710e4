package api

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/gigboard/engine/internal/api/docs"
	"github.com/gigboard/engine/internal/api/handlers"
	mw "github.com/gigboard/engine/internal/api/middleware"
	"github.com/gigboard/engine/internal/models"
)

type Dependencies struct {
	Tokens           mw.TokenParser
	Accounts         mw.ActorResolver
	AuthHandler      *handlers.AuthHandler
	ProjectsHandler  *handlers.ProjectsHandler
	FilesHandler     *handlers.FilesHandler
	NotesHandler     *handlers.NotesHandler
	UsersHandler     *handlers.UsersHandler
	ReferenceHandler *handlers.ReferenceHandler
	HealthHandler    *handlers.HealthHandler

	// UploadDir is served read-only under UploadURLPrefix when both are set.
	UploadDir       string
	UploadURLPrefix string

	RateLimitRPS   float64
	RateLimitBurst int
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxy bool
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	// Built-in middleware
	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.Recovery)
	r.Use(mw.CORS)
	if dep.TrustProxy {
		r.Use(chimid.RealIP)
	}
	r.Use(mw.RateLimit(dep.RateLimitRPS, dep.RateLimitBurst))
	r.Use(chimid.Compress(5, "application/json"))

	// Health endpoints
	r.Get("/healthz", dep.HealthHandler.Liveness)
	r.Get("/readyz", dep.HealthHandler.Readiness)

	// API docs
	r.Get("/docs/openapi.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(docs.OpenAPI)
	})
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/openapi.json")))

	if dep.UploadDir != "" && dep.UploadURLPrefix != "" {
		prefix := "/" + strings.Trim(dep.UploadURLPrefix, "/")
		files := http.StripPrefix(prefix+"/", http.FileServer(noDirFS{http.Dir(dep.UploadDir)}))
		r.Handle(prefix+"/*", files)
	}

	r.Route("/api", func(api chi.Router) {
		// Auth routes (public)
		api.Post("/register", dep.AuthHandler.Register)
		api.Post("/login", dep.AuthHandler.Login)

		// Protected routes
		api.Group(func(protected chi.Router) {
			protected.Use(mw.Auth(dep.Tokens, dep.Accounts))

			protected.Route("/projects", func(pr chi.Router) {
				pr.Get("/", dep.ProjectsHandler.List)
				pr.Post("/", dep.ProjectsHandler.Create)
				pr.Get("/{id}", dep.ProjectsHandler.Get)
				pr.Put("/{id}", dep.ProjectsHandler.Update)
				pr.Put("/{id}/status", dep.ProjectsHandler.UpdateStatus)
				pr.Delete("/{id}", dep.ProjectsHandler.Delete)
				pr.Get("/{id}/timeline", dep.ProjectsHandler.Timeline)
				pr.Get("/{id}/files", dep.FilesHandler.ListForProject)
				pr.Get("/{id}/notes", dep.NotesHandler.List)
				pr.Post("/{id}/notes", dep.NotesHandler.Add)
				pr.Delete("/{id}/notes/{noteId}", dep.NotesHandler.Delete)
			})

			protected.Get("/customers", dep.ReferenceHandler.ListCustomers)
			protected.Post("/customers", dep.ReferenceHandler.AddCustomer)
			protected.Get("/writers", dep.ReferenceHandler.ListWriters)
			protected.Post("/writers", dep.ReferenceHandler.AddWriter)

			protected.Post("/upload", dep.FilesHandler.Upload)
			protected.Delete("/files/{id}", dep.FilesHandler.Delete)

			// User management is superadmin only
			protected.Route("/users", func(ur chi.Router) {
				ur.Use(mw.RequireRole(models.RoleSuperadmin))
				ur.Get("/", dep.UsersHandler.List)
				ur.Put("/{id}", dep.UsersHandler.Update)
				ur.Delete("/{id}", dep.UsersHandler.Delete)
			})
		})
	})

	return r
}

// noDirFS hides directory listings from the attachment file server.
type noDirFS struct {
	fs http.FileSystem
}

func (n noDirFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if st.IsDir() {
		_ = f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}
