package handler

import (
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"docstore/internal/events"
	"docstore/internal/http/middleware"
	"docstore/internal/service"
)

// Routes carries what the HTTP handlers need.
type Routes struct {
	DB        *sql.DB
	Documents service.DocumentService
	Catalog   service.CatalogService
	Hub       *events.Hub
	Auth      middleware.TokenVerifier
	// KeepAlive is the SSE comment interval; zero selects 15s.
	KeepAlive time.Duration
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Health checks
// are public; everything else requires a bearer token.
func RegisterRoutes(app *fiber.App, r Routes) {
	app.Get("/health", HealthCheck(r.DB))
	app.Get("/healthz", Liveness())

	requireAuth := middleware.RequireAuth(r.Auth)

	docs := app.Group("/documents", requireAuth)
	docs.Post("/", UploadDocument(r.Documents))
	docs.Get("/", ListDocuments(r.Documents))
	docs.Get("/:id", GetDocument(r.Documents))
	docs.Patch("/:id", UpdateDocument(r.Documents))
	docs.Delete("/:id", DeleteDocument(r.Documents))
	docs.Post("/:id/versions", UploadVersion(r.Documents))
	docs.Get("/:id/versions", ListVersions(r.Documents))
	docs.Get("/:id/download", DownloadDocument(r.Documents))
	docs.Get("/:id/tags", DocumentTags(r.Documents))
	docs.Post("/:id/tags/regenerate", RegenerateTags(r.Documents))
	docs.Get("/:id/tagging-runs", TaggingRuns(r.Documents))
	docs.Post("/:id/authors/:authorId", AttachAuthor(r.Documents))

	tags := app.Group("/tags", requireAuth)
	tags.Get("/", ListTags(r.Catalog))
	tags.Post("/", CreateTag(r.Catalog))

	authors := app.Group("/authors", requireAuth)
	authors.Get("/", ListAuthors(r.Catalog))
	authors.Post("/", CreateAuthor(r.Catalog))

	app.Get("/events", requireAuth, StreamEvents(r.Hub, r.KeepAlive))
}
