package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/harumaki2000/medication-app/confs"
	"github.com/harumaki2000/medication-app/db"
	httpHandler "github.com/harumaki2000/medication-app/handlers/http"
	"github.com/harumaki2000/medication-app/logger"
	"github.com/harumaki2000/medication-app/metrics"
	"github.com/harumaki2000/medication-app/repositories"
	"github.com/harumaki2000/medication-app/services"
	"github.com/harumaki2000/medication-app/usecases"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type Server struct {
	app *gin.Engine
	db  db.Database
	cfg *confs.Config
	log *logrus.Logger
}

func NewServer(database db.Database, cfg *confs.Config, log *logrus.Logger) *Server {
	gin.SetMode(cfg.GinMode)

	s := &Server{
		app: gin.New(),
		db:  database,
		cfg: cfg,
		log: log,
	}
	s.routes()
	return s
}

// Handler exposes the configured router.
func (s *Server) Handler() http.Handler { return s.app }

func (s *Server) routes() {
	s.app.Use(gin.Recovery())
	s.app.Use(logger.Middleware(s.log))
	s.app.Use(metrics.Middleware())
	s.app.Use(cors.New(corsConfig(s.cfg.CORSAllowedOrigins)))

	s.app.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "API is running!"})
	})
	s.app.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	s.app.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Initialize repositories and services
	repos := repositories.NewGormManager()
	credentials := services.NewCredentialService(s.cfg.SecretKey, s.cfg.AccessTokenTTL)

	// Initialize use cases
	userUseCase := usecases.NewUserUseCase(s.db, repos, credentials, s.log)
	medicationUseCase := usecases.NewMedicationUseCase(s.db, repos, s.log)
	intakeUseCase := usecases.NewIntakeRecordUseCase(s.db, repos, s.log)

	// Initialize handlers
	userHandler := httpHandler.NewUserHandler(userUseCase, s.log)
	medicationHandler := httpHandler.NewMedicationHandler(medicationUseCase, s.log)
	intakeHandler := httpHandler.NewIntakeRecordHandler(intakeUseCase, medicationUseCase, s.log)
	loginHandler := httpHandler.NewLoginHandler(userUseCase, s.log)

	s.app.POST("/token", loginHandler.Login)

	users := s.app.Group("/users")
	{
		users.POST("/", userHandler.CreateUser)
		users.OPTIONS("/", userHandler.Options)

		owned := users.Group("/:user_id")
		if s.cfg.RequireAuth {
			owned.Use(httpHandler.RequireUser(userUseCase))
		}
		{
			owned.POST("/medications/", medicationHandler.CreateMedication)
			owned.GET("/medications/", medicationHandler.ListMedications)
			owned.DELETE("/medications/:medication_id", medicationHandler.DeleteMedication)

			owned.POST("/intake-records/", intakeHandler.CreateIntakeRecord)
			owned.GET("/intake-records/", intakeHandler.ListIntakeRecords)
			owned.GET("/records/today", intakeHandler.ListTodayRecords)
		}
	}
}

func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", logger.RequestIDHeader}
	config.ExposeHeaders = []string{logger.RequestIDHeader}

	for _, o := range origins {
		if o == "*" {
			config.AllowAllOrigins = true
			return config
		}
	}
	config.AllowOrigins = origins
	config.AllowCredentials = true
	return config
}

// Start serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ServerAddr,
		Handler:           s.app,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.cfg.ServerAddr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
