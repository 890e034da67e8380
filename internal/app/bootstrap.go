package app

import (
	"context"
	"fmt"
	"strings"

	"getjobs/internal/config"
	"getjobs/internal/database/migration"
	"getjobs/internal/database/seeder"
	"getjobs/internal/delivery/http/handler"
	"getjobs/internal/delivery/http/middleware"
	"getjobs/internal/delivery/http/routes"
	v1 "getjobs/internal/delivery/http/routes/v1"
	"getjobs/internal/infrastructure/mail"
	"getjobs/internal/pkg/jwt"
	"getjobs/internal/pkg/logging"
	"getjobs/internal/repository"
	"getjobs/internal/scheduler"
	"getjobs/internal/usecase"
	ucauth "getjobs/internal/usecase/auth"
	ucjob "getjobs/internal/usecase/job"
	"getjobs/internal/ws"
	"getjobs/migrations"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber     *fiber.App
	Hub       *ws.Hub
	Scheduler *scheduler.Scheduler
}

// Services are the usecases wired on top of a container.
type Services struct {
	Jobs    *ucjob.Service
	Sweeper *ucjob.Sweeper
}

func NewServices(c *Container, events ucjob.EventPublisher) Services {
	jobRepo := repository.NewPostgresJobRepository(c.DB)
	userRepo := repository.NewPostgresUserRepository(c.DB)

	loc := c.Config.Sweeper.Location()

	return Services{
		Jobs:    ucjob.NewService(jobRepo, userRepo, c.Cache, events, c.Logger).WithLocation(loc),
		Sweeper: ucjob.NewSweeper(jobRepo, c.Cache, events, c.Logger, c.Config.Sweeper.StaleAfterDays).WithLocation(loc),
	}
}

func New(c *Container) (*App, error) {
	cfg := c.Config

	hub := ws.NewHub(c.Logger)
	publisher := ws.NewPublisher(hub)
	svcs := NewServices(c, publisher)

	userRepo := repository.NewPostgresUserRepository(c.DB)
	mailRepo := repository.NewPostgresMailRepository(c.DB)

	jwtSvc := jwt.NewHMACService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ExpiresIn)
	authSvc := ucauth.NewService(
		userRepo,
		jwtSvc,
		mail.NewSMTPMailer(cfg.SMTP),
		c.Cache,
		c.Logger,
		ucauth.Options{OTPTTL: cfg.OTP.TTL, ResendAfter: cfg.OTP.ResendAfter},
	)
	newsletter := usecase.NewNewsletterUsecase(mailRepo, c.Logger)

	f := fiber.New(fiber.Config{AppName: cfg.App.AppName})
	registerGlobalMiddleware(f, c.Logger)

	routes.NewRegistry(
		handler.NewHealthHandler(c.DB),
		ws.NewHandler(hub, c.Logger, cfg.App.AllowedOrigins...).HandleJobsWS,
		v1.Handlers{
			Auth:       handler.NewAuthHandler(authSvc),
			Jobs:       handler.NewJobsHandler(svcs.Jobs),
			UserJobs:   handler.NewUserJobsHandler(svcs.Jobs),
			Newsletter: handler.NewNewsletterHandler(newsletter),
			AuthMw:     middleware.NewAuthMiddleware(jwtSvc),
		},
	).Register(f)

	out := &App{Fiber: f, Hub: hub}
	if cfg.Sweeper.Enabled {
		s, err := scheduler.New(cfg.Sweeper, svcs.Sweeper, c.Logger)
		if err != nil {
			return nil, err
		}
		out.Scheduler = s
	}
	return out, nil
}

// Bootstrap connects to the store, applies migrations and optional seeders,
// then builds the app. The returned cleanup releases every resource.
func Bootstrap(cfg config.Config, logger *logging.Logger) (*App, func() error, error) {
	c, err := NewContainer(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	if err := Prepare(context.Background(), c); err != nil {
		_ = c.Close()
		return nil, nil, err
	}

	a, err := New(c)
	if err != nil {
		_ = c.Close()
		return nil, nil, err
	}
	return a, c.Close, nil
}

// Prepare applies pending migrations and, when enabled, the demo seeders.
func Prepare(ctx context.Context, c *Container) error {
	runner := migration.Runner{FS: migrations.FS, Dir: c.Config.Database.MigrationsDir, Logger: c.Logger}
	applied, err := runner.Run(ctx, c.DB.SQLDB())
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	c.Logger.Info("migrations applied", "count", applied)

	if c.Config.Database.RunSeeders {
		r := seeder.Runner{Seeders: seeder.Defaults(), Logger: c.Logger}
		if err := r.Run(ctx, c.DB); err != nil {
			return err
		}
	}
	return nil
}

func registerGlobalMiddleware(app *fiber.App, logger *logging.Logger) {
	if app == nil {
		return
	}

	app.Use(middleware.NewAccessLogMiddleware(logger).Middleware())
	app.Use(middleware.NewErrorMiddleware(logger).Middleware())
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
