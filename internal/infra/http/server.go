package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"storefront/internal/authz"
	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/infra/auth"
	"storefront/internal/infra/cachemem"
	"storefront/internal/infra/db"
	"storefront/internal/infra/etag"
	"storefront/internal/infra/memstore"
	"storefront/internal/infra/policyopa"
	"storefront/internal/infra/productfilter"
	"storefront/internal/infra/ratelimit"
	"storefront/internal/usecase"

	"github.com/expr-lang/expr/vm"
	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	cfg    config.Config
	r      *gin.Engine
	logger *slog.Logger

	catalog *usecase.CatalogService
	carts   *usecase.CartService

	authenticator domain.Authenticator
	healthPolicy  authz.Evaluator
	chain         *authz.Chain
	etags         *etag.Hasher

	rateLimiter         domain.RateLimiter
	rateLimitRequests   int
	rateLimitWindow     time.Duration
	rateLimitFailClosed bool
}

type ServerDeps struct {
	Products      usecase.ProductRepository
	Carts         usecase.CartRepository
	Filters       usecase.FilterCompiler
	Authenticator domain.Authenticator
	HealthPolicy  authz.Evaluator
	Chain         *authz.Chain
	ETags         *etag.Hasher
	RateLimiter   domain.RateLimiter
	Logger        *slog.Logger
}

// NewServer wires repositories and policies from configuration. Postgres is
// used when store holds a connection, otherwise seeded in-memory stores.
func NewServer(ctx context.Context, cfg config.Config, store *db.Store) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	deps := ServerDeps{
		Filters: productfilter.NewCompiler(cachemem.New[*vm.Program](256)),
		ETags:   etag.NewHasher(cfg.ETagSalt, cfg.ETagIterations, cachemem.New[string](1024)),
		Logger:  slog.Default(),
	}

	products := memstore.SeedProducts()
	if store.Enabled() {
		if err := store.Migrate(ctx); err != nil {
			return nil, err
		}
		if err := store.SeedIfEmpty(ctx, products, memstore.SeedCarts(products)); err != nil {
			return nil, err
		}
		deps.Products = db.NewProductRepository(store.DB)
		deps.Carts = db.NewCartRepository(store.DB)
	} else {
		deps.Products = memstore.NewProductStore(products...)
		deps.Carts = memstore.NewCartStore(memstore.SeedCarts(products)...)
	}

	authenticator, err := auth.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	deps.Authenticator = authenticator

	policy, err := healthPolicyFromConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	deps.HealthPolicy = policy

	chain, err := authz.ChainFromNames(cfg.ResultTransformers)
	if err != nil {
		return nil, err
	}
	deps.Chain = chain

	if cfg.RateLimitRequests > 0 {
		deps.RateLimiter, err = rateLimiterFromConfig(cfg)
		if err != nil {
			return nil, err
		}
	}
	return NewServerWithDeps(cfg, deps)
}

func NewServerWithDeps(cfg config.Config, deps ServerDeps) (*Server, error) {
	if deps.Products == nil || deps.Carts == nil {
		return nil, errors.New("product and cart repositories are required")
	}
	if deps.Authenticator == nil || deps.HealthPolicy == nil || deps.Chain == nil {
		return nil, errors.New("authenticator, health policy and transformer chain are required")
	}
	if deps.ETags == nil {
		deps.ETags = etag.NewHasher(cfg.ETagSalt, cfg.ETagIterations, cachemem.New[string](1024))
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	r := gin.New()
	r.RedirectFixedPath = true
	r.Use(gin.Recovery())

	s := &Server{
		cfg:           cfg,
		r:             r,
		logger:        deps.Logger,
		catalog:       usecase.NewCatalogService(deps.Products, deps.Filters),
		carts:         usecase.NewCartService(deps.Carts),
		authenticator: deps.Authenticator,
		healthPolicy:  deps.HealthPolicy,
		chain:         deps.Chain,
		etags:         deps.ETags,
	}
	s.initRateLimit(deps.RateLimiter)
	s.routes()
	return s, nil
}

func healthPolicyFromConfig(ctx context.Context, cfg config.Config) (authz.Evaluator, error) {
	minimumAge := uint16(cfg.MinimumAge)
	switch cfg.PolicyEngine {
	case config.PolicyEngineOPA:
		settings := policyopa.Settings{
			RequireAuthenticated: cfg.AuthenticationEnabled,
			SecretHeaderName:     cfg.SecretHeaderName,
			SecretHeaderValue:    cfg.SecretHeaderValue,
			AgeHeaderName:        cfg.AgeHeaderName,
			MinimumAge:           minimumAge,
		}
		if cfg.PolicyBundlePath != "" {
			engine, err := policyopa.NewEngineFromBundlePath(ctx, settings, cfg.PolicyBundlePath)
			if err != nil {
				return nil, fmt.Errorf("load policy bundle: %w", err)
			}
			slog.Info("loaded policy bundle", "path", cfg.PolicyBundlePath, "hash", engine.BundleHash())
			return engine, nil
		}
		engine, err := policyopa.NewEngine(ctx, settings, policyopa.DefaultModule)
		if err != nil {
			return nil, fmt.Errorf("compile policy: %w", err)
		}
		return engine, nil
	default:
		return authz.HealthCheckPolicy(cfg.AuthenticationEnabled, cfg.SecretHeaderName, cfg.SecretHeaderValue, cfg.AgeHeaderName, minimumAge), nil
	}
}

func rateLimiterFromConfig(cfg config.Config) (domain.RateLimiter, error) {
	if cfg.RedisAddr != "" {
		return ratelimit.NewRedis(ratelimit.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	}
	return ratelimit.NewMemory(ratelimit.MemoryConfig{MaxKeys: cfg.RateLimitMaxKeys}), nil
}

func (s *Server) initRateLimit(limiter domain.RateLimiter) {
	s.rateLimiter = limiter
	s.rateLimitRequests = s.cfg.RateLimitRequests
	s.rateLimitWindow = time.Minute
	if s.cfg.RateLimitWindowSeconds > 0 {
		s.rateLimitWindow = time.Duration(s.cfg.RateLimitWindowSeconds) * time.Second
	}
	s.rateLimitFailClosed = s.cfg.RateLimitFailClosed
}

func (s *Server) routes() {
	s.r.Use(requestID(), s.accessLog(), securityHeaders(), s.authenticate())

	s.r.GET("/", s.handleEcho)
	s.r.GET("/healthz", s.authorize(s.healthPolicy), s.handleHealth)

	api := s.r.Group("/api", s.rateLimit())
	{
		api.GET("/products", s.handleListProducts)
		api.GET("/products/:id", s.handleGetProduct)
		api.POST("/products", s.handleCreateProduct)
		api.PUT("/products", s.handleUpdateProduct)
		api.DELETE("/products/:id", s.handleDeleteProduct)

		api.GET("/shoppingcart", s.handleListCarts)
		api.GET("/shoppingcart/:customerId", s.handleGetCart)
		api.POST("/shoppingcart", s.handleCreateCart)
		api.PUT("/shoppingcart", s.handleUpdateCart)
		api.DELETE("/shoppingcart/:customerId", s.handleDeleteCart)
		api.POST("/shoppingcart/checkout", s.handleCheckout)
	}

	s.r.NoRoute(s.handleNoRoute)
}

// Handler returns the gin engine wrapped in CORS handling.
func (s *Server) Handler() http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"ETag", "Location", "X-Request-ID"},
		MaxAge:         300,
	})(s.r)
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", s.cfg.HTTPAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
