package stubserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/lodgely/bookingkit/internal/infrastructure/config"
	"github.com/lodgely/bookingkit/internal/infrastructure/logger"
)

var registerValidationsOnce sync.Once

// registerValidations adds the futuredate rule used by booking requests:
// the value must not fall on a calendar day before today.
func registerValidations() {
	registerValidationsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("futuredate", func(fl validator.FieldLevel) bool {
			date, ok := fl.Field().Interface().(time.Time)
			if !ok {
				return false
			}
			y, m, d := time.Now().Date()
			today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
			dy, dm, dd := date.UTC().Date()
			return !time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC).Before(today)
		})
	})
}

// idempotencyTTL bounds how long a processed Idempotency-Key is remembered
const idempotencyTTL = 24 * time.Hour

// Server is the stub booking API
type Server struct {
	cfg         config.StubConfig
	store       *Store
	idempotency *IdempotencyStore
	logger      *zap.Logger
	engine      *gin.Engine
	httpServer  *http.Server
}

// NewServer builds the stub API over a fresh in-memory store
func NewServer(cfg config.StubConfig, zapLogger *zap.Logger) (*Server, error) {
	store, err := NewStore(zapLogger)
	if err != nil {
		return nil, err
	}
	if cfg.Seed {
		if err := store.Seed(); err != nil {
			return nil, err
		}
	}

	s := &Server{
		cfg:         cfg,
		store:       store,
		idempotency: NewIdempotencyStore(idempotencyTTL),
		logger:      zapLogger.Named("stubserver"),
	}
	s.engine = s.buildRouter()
	return s, nil
}

// Store exposes the backing store for test seeding
func (s *Server) Store() *Store { return s.store }

func (s *Server) buildRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	registerValidations()
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.GinMiddleware(s.logger))
	engine.Use(otelgin.Middleware("bookingkit-stub"))

	engine.GET("/rooms", s.handleListRooms)
	engine.GET("/rooms/:id", s.handleGetRoom)
	engine.GET("/rooms/:id/reviews", s.handleListReviews)

	engine.POST("/auth/register", s.handleRegister)
	engine.POST("/auth/login", s.handleLogin)
	engine.POST("/auth/profile", s.handleProfileUpdate)
	engine.POST("/jwt", s.handleIssueCookie)
	engine.POST("/logout", s.handleLogout)

	authed := engine.Group("/", s.requireCookie())
	authed.POST("/rooms/:id/book", s.handleBookRoom)
	authed.POST("/rooms/:id/reviews", s.handlePostReview)
	authed.GET("/bookings", s.handleListBookings)
	authed.DELETE("/bookings/:id/cancel", s.handleCancelBooking)
	authed.PUT("/bookings/:id/update", s.handleRescheduleBooking)

	return engine
}

// Handler returns the HTTP handler, for mounting under httptest
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until the context is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:    ":" + s.cfg.Port,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("stub API listening", zap.String("port", s.cfg.Port))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.idempotency.Close()
	return s.httpServer.Shutdown(shutdownCtx)
}
