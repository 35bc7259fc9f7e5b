// Package server assembles the storefront gin engine and runs it.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/config"
	"storefront/internal/guard"
	"storefront/internal/handlers"
	"storefront/internal/metrics"
	"storefront/internal/services"
	"storefront/internal/session"
	"storefront/internal/storeapi"
	"storefront/web"
)

// visitorIdle is how long an unused visitor's cart and wishlist stay cached.
const visitorIdle = 30 * time.Minute

// Option customises New.
type Option func(*options)

type options struct {
	httpClient *http.Client
	assets     fs.FS
	mailSender services.Sender
}

// WithHTTPClient replaces the client used to reach the store API.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithAssets replaces the embedded templates and static files.
func WithAssets(fsys fs.FS) Option {
	return func(o *options) { o.assets = fsys }
}

// WithMailSender replaces the SMTP dialer.
func WithMailSender(s services.Sender) Option {
	return func(o *options) { o.mailSender = s }
}

// Server is a configured storefront.
type Server struct {
	Engine *gin.Engine

	cfg      *config.Config
	logger   *slog.Logger
	resolver *session.Resolver
	visitors *services.VisitorService
	limiter  *handlers.RateLimiter
}

// New builds the engine, its middleware and every route.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Server, error) {
	o := options{assets: web.FS}
	for _, opt := range opts {
		opt(&o)
	}

	if err := handlers.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("registering validators: %w", err)
	}

	clientOpts := []storeapi.Option{storeapi.WithLogger(logger)}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, storeapi.WithHTTPClient(o.httpClient))
	}
	client := storeapi.NewClient(storeapi.Config{BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout}, clientOpts...)

	if cfg.Session.Secret == "" {
		logger.Warn("session.secret not set, token cookies will not survive a restart")
	}
	sealer, err := session.NewSealer(cfg.Session.Secret)
	if err != nil {
		return nil, fmt.Errorf("creating cookie sealer: %w", err)
	}

	renderer, err := handlers.LoadTemplates(o.assets)
	if err != nil {
		return nil, err
	}
	static, err := fs.Sub(o.assets, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	email := services.NewEmailService(cfg.SMTP, logger)
	if o.mailSender != nil {
		email.WithSender(o.mailSender)
	}
	security := services.NewSecurityLogger(logger)

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		resolver: session.NewResolver(cfg.Session.CacheTTL),
		visitors: services.NewVisitorService(visitorIdle, logger),
		limiter:  handlers.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, security),
	}

	h := handlers.NewHandler(handlers.Deps{
		Client:   client,
		Resolver: s.resolver,
		Sealer:   sealer,
		Cookie: session.CookieOptions{
			Name:   cfg.Session.CookieName,
			MaxAge: cfg.Session.MaxAge,
			Secure: cfg.Session.SecureCookie,
		},
		Visitors:  s.visitors,
		Email:     email,
		Security:  security,
		Logger:    logger,
		PublicURL: cfg.Server.PublicURL,
	})

	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic recovered", "error", recovered, "path", c.Request.URL.Path)
		c.AbortWithStatus(http.StatusInternalServerError)
	}))
	r.Use(handlers.RequestID(), handlers.RequestLogger(logger), handlers.SecurityHeaders())
	if err := r.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.HTMLRender = renderer

	r.StaticFS("/static", http.FS(static))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	site := r.Group("", h.SessionMiddleware())
	registerRoutes(site, h, s.limiter)
	r.NoRoute(h.SessionMiddleware(), h.NotFound)

	s.Engine = r
	return s, nil
}

func registerRoutes(r *gin.RouterGroup, h *handlers.Handler, rl *handlers.RateLimiter) {
	guest := r.Group("", h.Require(guard.Guest))
	{
		guest.GET("/", h.RegisterPage)
		guest.GET("/register", h.RegisterPage)
		guest.POST("/register", rl.Middleware(), h.HandleRegister)
	}

	r.GET("/login", h.LoginPage)
	r.POST("/login", rl.Middleware(), h.HandleLogin)
	r.GET("/logout", h.Logout)
	r.POST("/logout", h.Logout)
	r.GET("/home", h.HomePage)
	r.GET("/products/:id", h.ProductDetails)

	user := r.Group("", h.Require(guard.Authenticated))
	{
		user.GET("/products", h.ProductsPage)
		user.GET("/brands", h.BrandsPage)

		user.GET("/cart", h.CartPage)
		user.POST("/cart/add", h.AddToCart)
		user.POST("/cart/update", h.UpdateCartItem)
		user.POST("/cart/remove", h.RemoveFromCart)
		user.POST("/cart/clear", h.ClearCart)

		user.GET("/wishlist", h.WishlistPage)
		user.POST("/wishlist/toggle", h.ToggleWishlist)
		user.POST("/wishlist/remove", h.RemoveFromWishlist)

		user.GET("/order", h.CheckoutPage)
		user.POST("/order", h.HandleCheckout)

		user.GET("/account", h.AccountPage)
		user.POST("/account/profile", h.UpdateProfile)
		user.POST("/account/password", h.ChangePassword)
	}

	admin := r.Group("/admin", h.Require(guard.Admin))
	{
		admin.GET("", h.DashboardPage)
		admin.GET("/dashboard", h.DashboardPage)

		admin.GET("/products", h.AdminProducts)
		admin.GET("/products/new", h.AdminNewProduct)
		admin.POST("/products", h.AdminSaveProduct)
		admin.GET("/products/:id/edit", h.AdminEditProduct)
		admin.POST("/products/:id", h.AdminSaveProduct)
		admin.GET("/products/:id/delete", h.AdminConfirmDeleteProduct)
		admin.POST("/products/:id/delete", h.AdminDeleteProduct)

		h.BrandRoutes(admin.Group("/brands"))
		h.CategoryRoutes(admin.Group("/categories"))

		admin.GET("/orders", h.AdminOrders)
		admin.GET("/orders/:id", h.AdminOrderDetail)

		admin.GET("/users", h.AdminUsers)
		admin.POST("/users/:id/role", h.AdminUpdateUserRole)
		admin.GET("/users/:id/delete", h.AdminConfirmDeleteUser)
		admin.POST("/users/:id/delete", h.AdminDeleteUser)
	}
}

// Close releases background loops.
func (s *Server) Close() {
	s.limiter.Close()
	s.visitors.Close()
	s.resolver.Close()
}

// Run serves until ctx is cancelled. With TLS enabled it serves HTTPS on the
// TLS port and redirects plain HTTP there.
func (s *Server) Run(ctx context.Context) error {
	var servers []*http.Server
	errCh := make(chan error, 2)

	if s.cfg.Server.TLS {
		cert, err := s.certificate()
		if err != nil {
			return err
		}
		httpsServer := &http.Server{
			Addr:              ":" + s.cfg.Server.TLSPort,
			Handler:           s.Engine,
			ReadHeaderTimeout: 10 * time.Second,
			TLSConfig:         &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12},
		}
		redirect := &http.Server{
			Addr:              ":" + s.cfg.Server.Port,
			Handler:           httpsRedirect(s.cfg.Server.TLSPort),
			ReadHeaderTimeout: 10 * time.Second,
		}
		servers = append(servers, httpsServer, redirect)

		s.logger.Info("HTTPS server starting", "addr", httpsServer.Addr)
		go func() { errCh <- httpsServer.ListenAndServeTLS("", "") }()
		s.logger.Info("HTTP redirect server starting", "addr", redirect.Addr)
		go func() { errCh <- redirect.ListenAndServe() }()
	} else {
		httpServer := &http.Server{
			Addr:              ":" + s.cfg.Server.Port,
			Handler:           s.Engine,
			ReadHeaderTimeout: 10 * time.Second,
		}
		servers = append(servers, httpServer)
		s.logger.Info("HTTP server starting", "addr", httpServer.Addr)
		go func() { errCh <- httpServer.ListenAndServe() }()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("server stopped: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("shutdown failed", "addr", srv.Addr, "error", err)
		}
	}
	s.logger.Info("server stopped")
	return runErr
}

func (s *Server) certificate() (tls.Certificate, error) {
	if s.cfg.Server.CertFile != "" && s.cfg.Server.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(s.cfg.Server.CertFile, s.cfg.Server.KeyFile)
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("loading certificate: %w", err)
		}
		s.logger.Info("External certificate loaded", "cert", s.cfg.Server.CertFile)
		return cert, nil
	}
	certPEM, keyPEM, err := SelfSignedCert([]string{"localhost"}, 365*24*time.Hour)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("generating self-signed certificate: %w", err)
	}
	s.logger.Info("Using a self-signed certificate")
	return tls.X509KeyPair(certPEM, keyPEM)
}

func httpsRedirect(tlsPort string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Host
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		target := fmt.Sprintf("https://%s:%s%s", host, tlsPort, r.URL.RequestURI())
		http.Redirect(w, r, target, http.StatusMovedPermanently)
	})
}
