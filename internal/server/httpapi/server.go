// Package httpapi exposes the backend services over the REST API the bakery
// client speaks. Routes:
//
//	POST /auth/register, /auth/login, /auth/refresh
//	POST /auth/forgot-password, /auth/reset-password
//	POST /auth/set-password                        (bearer)
//	POST /2fa/verify                               (challenge or bearer)
//	GET  /2fa/status, POST /2fa/enable, /2fa/disable (bearer)
//	GET  /user/profile, PUT /user/profile, PUT /user/updateNameProfile (bearer)
//	GET  /cart, POST /cart, GET /cart/count        (bearer)
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/bakerykit/internal/logging"
	"github.com/dmitrijs2005/bakerykit/internal/server/models"
	"github.com/dmitrijs2005/bakerykit/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// UserAPI is the account side of the backend, implemented by
// services.UserService.
type UserAPI interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	VerifyLogin(ctx context.Context, challengeID, code string) (*services.Session, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.Session, error)
	SetPassword(ctx context.Context, userID, phone, password string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, password string) error

	Profile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) error
	UpdateName(ctx context.Context, userID, firstName, lastName string) error

	TwoFactorStatus(ctx context.Context, userID string) (bool, error)
	EnableTwoFactor(ctx context.Context, userID string) (*services.TwoFactorSetup, error)
	ConfirmTwoFactor(ctx context.Context, userID, code string) error
	DisableTwoFactor(ctx context.Context, userID string) error
}

// CartAPI is implemented by services.CartService.
type CartAPI interface {
	Items(ctx context.Context, userID string) ([]models.CartItem, error)
	SetItem(ctx context.Context, userID string, item models.CartItem) error
	Count(ctx context.Context, userID string) (int, error)
}

const shutdownTimeout = 5 * time.Second

type HTTPServer struct {
	address   string
	users     UserAPI
	carts     CartAPI
	logger    logging.Logger
	jwtSecret []byte
}

func NewHTTPServer(a string, l logging.Logger, us UserAPI, cs CartAPI, secretKey string) *HTTPServer {
	return &HTTPServer{
		address:   a,
		logger:    l.With("module", "http_server"),
		users:     us,
		carts:     cs,
		jwtSecret: []byte(secretKey),
	}
}

// Handler builds the router.
func (s *HTTPServer) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.register)
		r.Post("/login", s.login)
		r.Post("/refresh", s.refresh)
		r.Post("/forgot-password", s.forgotPassword)
		r.Post("/reset-password", s.resetPassword)
		r.With(s.requireAuth).Post("/set-password", s.setPassword)
	})

	r.Route("/2fa", func(r chi.Router) {
		// verify authenticates itself: a challenge id or a bearer token.
		r.Post("/verify", s.verifyTwoFactor)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/status", s.twoFactorStatus)
			r.Post("/enable", s.enableTwoFactor)
			r.Post("/disable", s.disableTwoFactor)
		})
	})

	r.Route("/user", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/profile", s.getProfile)
		r.Put("/profile", s.updateProfile)
		r.Put("/updateNameProfile", s.updateName)
	})

	r.Route("/cart", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/", s.getCart)
		r.Post("/", s.setCartItem)
		r.Get("/count", s.cartCount)
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
