package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"agency-service/internal/activity"
	"agency-service/internal/agent"
	"agency-service/internal/application"
	"agency-service/internal/auth"
	"agency-service/internal/card"
	"agency-service/internal/config"
	"agency-service/internal/db"
	"agency-service/internal/event"
	"agency-service/internal/events"
	"agency-service/internal/health"
	"agency-service/internal/jobs"
	"agency-service/internal/kafka"
	"agency-service/internal/logger"
	"agency-service/internal/message"
	"agency-service/internal/messaging"
	"agency-service/internal/metrics"
	"agency-service/internal/middleware"
	"agency-service/internal/student"
	"agency-service/internal/telemetry"
	"agency-service/internal/university"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/uptrace/bun"
)

type App struct {
	config    *config.Config
	router    chi.Router
	server    *http.Server
	logger    *slog.Logger
	db        *bun.DB
	nats      *messaging.Producer
	publisher events.Publisher
	consumer  eventConsumer
	stop      context.CancelFunc
	jobs      *jobs.Scheduler
	telemetry *telemetry.Telemetry
}

// eventConsumer feeds the activity log from whichever broker carries events.
type eventConsumer interface {
	Start(ctx context.Context) error
	Close() error
}

// Models lists every table, parents first.
func Models() []interface{} {
	return []interface{}{
		(*auth.User)(nil),
		(*auth.RefreshToken)(nil),
		(*student.Student)(nil),
		(*university.University)(nil),
		(*university.Program)(nil),
		(*agent.Agent)(nil),
		(*application.Application)(nil),
		(*card.Card)(nil),
		(*event.Event)(nil),
		(*message.Message)(nil),
		(*activity.Entry)(nil),
	}
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.NewWithServiceContext(ServiceName, Version, logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	slog.SetDefault(log)
	log.Info("initializing application", "env", cfg.Env, "commit", GitCommit, "build_time", BuildTime)

	// the exporter must be installed before instruments are created
	var tel *telemetry.Telemetry
	if cfg.Telemetry.Enabled {
		tel, err = telemetry.Init(ctx, telemetry.Config{
			Endpoint: cfg.Telemetry.Endpoint,
			Insecure: cfg.Telemetry.Insecure,
			Interval: time.Duration(cfg.Telemetry.IntervalSeconds) * time.Second,
		}, telemetry.Service{Name: ServiceName, Version: Version, Env: cfg.Env}, log)
		if err != nil {
			log.Warn("telemetry disabled", "error", err)
		}
	}

	m, err := metrics.New(ServiceName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	database, err := db.New(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(ctx, database, Models()...); err != nil {
		database.Close()
		return nil, err
	}
	tel.ObserveDB(database.DB)

	a := &App{
		config:    cfg,
		router:    chi.NewRouter(),
		logger:    log,
		db:        database,
		telemetry: tel,
	}

	a.connectBrokers()
	emitter := events.NewEmitter(a.publisher, log)

	tokens := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       cfg.Auth.JWTSecret,
		Issuer:          cfg.Auth.Issuer,
		AccessTokenExp:  time.Duration(cfg.Auth.AccessTokenMinutes) * time.Minute,
		RefreshTokenExp: time.Duration(cfg.Auth.RefreshTokenHours) * time.Hour,
	})
	authService := auth.NewService(auth.NewRepository(database, m), tokens, log)
	if err := authService.SeedAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
		log.Warn("admin seeding failed", "error", err)
	}
	authHandler := auth.NewHandler(authService, tokens, auth.Cookies{
		Secure:     cfg.Auth.SecureCookies,
		AccessTTL:  tokens.AccessTokenTTL(),
		RefreshTTL: time.Duration(cfg.Auth.RefreshTokenHours) * time.Hour,
	}, log, m)

	studentService := student.NewService(student.NewRepository(database, m), emitter)
	universityService := university.NewService(university.NewRepository(database, m), emitter)
	agentService := agent.NewService(agent.NewRepository(database, m), emitter)
	applicationService := application.NewService(application.NewRepository(database, m),
		studentService, universityService, agentService, emitter)
	cardService := card.NewService(card.NewRepository(database, m), studentService, emitter)
	eventService := event.NewService(event.NewRepository(database, m), emitter)
	activityService := activity.NewService(activity.NewRepository(database, m), log)
	if cfg.Events.Consume {
		a.connectConsumer(activityService.Record, m)
	}

	handlers := []interface{ RegisterRoutes(chi.Router) }{
		student.NewHandler(studentService, log, m, cfg.Server.MaxUploadMB<<20),
		university.NewHandler(universityService, log, m),
		agent.NewHandler(agentService, log, m),
		application.NewHandler(applicationService, log, m),
		card.NewHandler(cardService, log, m),
		event.NewHandler(eventService, log, m),
		activity.NewHandler(activityService, log),
	}
	// messages need the bus
	if a.nats != nil {
		messageService := message.NewService(message.NewRepository(database, m), studentService, a.nats, log)
		handlers = append(handlers, message.NewHandler(messageService, log, m))
	} else {
		log.Warn("NATS unavailable, /api/messages disabled")
	}

	a.router.Use(chimw.Recoverer)
	a.router.Use(middleware.RequestLogger(log))
	a.router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	health.NewHandler(database, log).RegisterRoutes(a.router)

	a.router.Route("/api", func(r chi.Router) {
		authHandler.RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(tokens, log))
			for _, h := range handlers {
				h.RegisterRoutes(r)
			}
		})
	})

	a.jobs = jobs.NewScheduler(log)
	if cfg.Jobs.TokenCleanupSchedule != "" {
		if err := a.jobs.AddTokenCleanup(cfg.Jobs.TokenCleanupSchedule, authService); err != nil {
			a.close()
			return nil, err
		}
	}

	log.Info("application initialized successfully")
	return a, nil
}

// connectBrokers opens the NATS connection and picks the domain event
// publisher. A broker that cannot be reached is logged and skipped.
func (a *App) connectBrokers() {
	cfg := a.config

	if cfg.NATS.URL != "" {
		producer, err := messaging.NewProducer(cfg.NATS.URL, cfg.NATS.Subject, cfg.Events.SubjectPrefix, a.logger)
		if err != nil {
			a.logger.Warn("failed to initialize NATS producer", "error", err)
		} else {
			a.nats = producer
		}
	}

	switch cfg.Events.Broker {
	case "nats":
		if a.nats != nil {
			a.publisher = a.nats
		}
	case "kafka":
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, a.logger)
		if err != nil {
			a.logger.Warn("failed to initialize kafka producer", "error", err)
		} else {
			a.publisher = producer
		}
	case "", "none":
	default:
		a.logger.Warn("unknown events broker, events disabled", "broker", cfg.Events.Broker)
	}

	if a.publisher == nil {
		a.publisher = events.Noop{}
	}
}

// connectConsumer subscribes the activity log to the configured events
// broker. Without a broker the log simply stays empty.
func (a *App) connectConsumer(handle events.Handler, m *metrics.Metrics) {
	cfg := a.config

	var (
		consumer eventConsumer
		err      error
	)
	switch cfg.Events.Broker {
	case "nats":
		if a.nats == nil {
			return
		}
		consumer, err = messaging.NewConsumer(cfg.NATS.URL, cfg.Events.SubjectPrefix+".>", handle, a.logger, m)
	case "kafka":
		consumer, err = kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, handle, a.logger, m)
	default:
		return
	}
	if err != nil {
		a.logger.Warn("failed to initialize activity consumer", "broker", cfg.Events.Broker, "error", err)
		return
	}
	a.consumer = consumer
}

// Router exposes the HTTP handler for in-process tests.
func (a *App) Router() http.Handler {
	return a.router
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	a.jobs.Start()

	if a.consumer != nil {
		ctx, stop := context.WithCancel(context.Background())
		a.stop = stop
		go func() {
			if err := a.consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("activity consumer stopped", "error", err)
			}
		}()
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")

	var err error
	if a.server != nil {
		err = a.server.Shutdown(ctx)
	}
	a.jobs.Stop(ctx)
	a.close()
	if terr := a.telemetry.Shutdown(ctx); terr != nil {
		a.logger.Warn("failed to flush metrics", "error", terr)
	}
	return err
}

func (a *App) close() {
	if a.stop != nil {
		a.stop()
	}
	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			a.logger.Warn("failed to close activity consumer", "error", err)
		}
	}
	if a.publisher != nil && a.publisher != events.Publisher(a.nats) {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("failed to close event publisher", "error", err)
		}
	}
	if a.nats != nil {
		if err := a.nats.Close(); err != nil {
			a.logger.Warn("failed to close NATS producer", "error", err)
		}
	}
	db.Close(a.db)
}
