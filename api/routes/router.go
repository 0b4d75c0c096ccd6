package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/postoko-backend/api/controllers"
	"github.com/angelmondragon/postoko-backend/api/middleware"
	"github.com/angelmondragon/postoko-backend/internal/auth"
	"github.com/angelmondragon/postoko-backend/internal/inventory"
	"github.com/angelmondragon/postoko-backend/internal/invoices"
	"github.com/angelmondragon/postoko-backend/internal/media"
	product "github.com/angelmondragon/postoko-backend/internal/products"
	"github.com/angelmondragon/postoko-backend/pkg/config"
	"github.com/angelmondragon/postoko-backend/pkg/db"
	"github.com/angelmondragon/postoko-backend/pkg/logger"
	"github.com/angelmondragon/postoko-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/postoko-backend/pkg/redis"
)

// Dependencies is everything the router hands to controllers. Redis and
// Metrics are optional.
type Dependencies struct {
	Config *config.Config
	Logger *logger.Logger

	DB    db.Pinger
	Redis *pkgredis.Client

	RegisterService  auth.RegisterService
	AuthService      auth.Service
	InventoryService inventory.Service
	ProductService   product.Service
	InvoiceService   invoices.Service
	Images           *media.Store

	Metrics  *metrics.HTTPMetrics
	Gatherer prometheus.Gatherer
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
		middleware.Metrics(deps.Metrics),
	)

	// A nil *Client stored in the interface would not compare equal to nil.
	var idemStore pkgredis.IdempotencyStore
	readiness := map[string]controllers.Pinger{"database": deps.DB}
	if deps.Redis != nil {
		idemStore = deps.Redis
		readiness["redis"] = deps.Redis
	}
	maxUpload := cfg.Media.MaxUploadBytes()
	idempotency := middleware.Idempotency(idemStore, maxUpload+(1<<20), logg)
	requireSession := middleware.Auth(cfg.JWT, cfg.Cookie, logg)

	r.Get("/", controllers.Root())

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, readiness, logg))
	})

	if cfg.Metrics.Enabled && deps.Gatherer != nil {
		r.Method(http.MethodGet, cfg.Metrics.Path, promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	uploads := controllers.Uploads(deps.Images, logg)
	prefix := "/" + strings.Trim(cfg.Media.URLPrefix, "/")
	r.Get(prefix+"/*", uploads)
	r.Head(prefix+"/*", uploads)

	r.Route(apiPrefix(cfg), func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(idempotency).Post("/register", controllers.AuthRegister(deps.RegisterService, logg))
			r.Post("/login", controllers.AuthLogin(deps.AuthService, cfg, logg))
			r.Post("/logout", controllers.AuthLogout(cfg))
		})

		r.Group(func(r chi.Router) {
			r.Use(requireSession, idempotency)

			r.Route("/inventory", func(r chi.Router) {
				r.Get("/", controllers.InventoryList(deps.InventoryService, logg))
				r.Post("/", controllers.InventoryCreate(deps.InventoryService, logg))
				r.Get("/{id}", controllers.InventoryGet(deps.InventoryService, logg))
				r.Put("/{id}", controllers.InventoryUpdate(deps.InventoryService, logg))
				r.Delete("/{id}", controllers.InventoryDelete(deps.InventoryService, logg))
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.ProductList(deps.ProductService, cfg.App.TrustProxy, logg))
				r.Post("/", controllers.ProductCreate(deps.ProductService, maxUpload, logg))
				r.Get("/{id}", controllers.ProductGet(deps.ProductService, cfg.App.TrustProxy, logg))
				r.Put("/{id}", controllers.ProductUpdate(deps.ProductService, maxUpload, logg))
				r.Delete("/{id}", controllers.ProductDelete(deps.ProductService, logg))
			})

			r.Route("/invoices", func(r chi.Router) {
				r.Get("/", controllers.InvoiceList(deps.InvoiceService, logg))
				r.Get("/email/{email}", controllers.InvoicesByEmail(deps.InvoiceService, logg))
				r.Get("/{id}", controllers.InvoiceGet(deps.InvoiceService, logg))
			})
		})
	})

	return r
}

func apiPrefix(cfg *config.Config) string {
	prefix := "/" + strings.Trim(cfg.App.APIPrefix, "/")
	if prefix == "/" {
		return "/api"
	}
	return prefix
}
