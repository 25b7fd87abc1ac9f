package server

import (
	"io"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/mailagent/config"
	"github.com/customeros/mailagent/internal/database"
	"github.com/customeros/mailagent/internal/logger"
	"github.com/customeros/mailagent/internal/repository"
	"github.com/customeros/mailagent/internal/tracing"
	"github.com/customeros/mailagent/services"
)

// Runtime is everything both the HTTP server and the one-shot CLI commands need.
type Runtime struct {
	Config       *config.Config
	Log          logger.Logger
	Services     *services.Services
	Repositories *repository.Repositories
	tracerCloser io.Closer
}

func NewRuntime(cfg *config.Config) (*Runtime, error) {
	appLogger := logger.NewAppLogger(cfg.Logger)
	appLogger.InitLogger()

	tracer, closer, err := tracing.NewJaegerTracer(cfg.Tracing, appLogger)
	if err != nil {
		return nil, errors.Wrap(err, "could not initialize jaeger tracer")
	}
	opentracing.SetGlobalTracer(tracer)

	var repos *repository.Repositories
	if cfg.MailagentDatabaseConfig.Enabled() {
		db, err := database.InitMailagentDatabase(cfg.MailagentDatabaseConfig)
		if err != nil {
			closer.Close()
			return nil, err
		}
		repos = repository.InitRepositories(db)
	} else {
		appLogger.Info("MAILAGENT_POSTGRES_HOST not set, conversation memory is kept in process")
	}

	svcs, err := services.InitServices(cfg, appLogger, repos)
	if err != nil {
		closer.Close()
		return nil, err
	}

	return &Runtime{
		Config:       cfg,
		Log:          appLogger,
		Services:     svcs,
		Repositories: repos,
		tracerCloser: closer,
	}, nil
}

func (r *Runtime) Close() {
	if err := r.Services.EventsService.Close(); err != nil {
		r.Log.Errorf("Error closing events service: %v", err)
	}
	if r.tracerCloser != nil {
		r.tracerCloser.Close()
	}
	r.Log.Sync()
}
