package cli

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"quizctl/internal/api"
	"quizctl/internal/app"
	"quizctl/internal/config"
	"quizctl/internal/infra/file"
	"quizctl/internal/infra/memory"
	redisstore "quizctl/internal/infra/redis"
	"quizctl/internal/logging"
)

// env is everything a client command needs, built once per invocation.
type env struct {
	cfg      config.Config
	logger   *zap.Logger
	auth     *app.AuthService
	catalog  *app.Catalog
	attempts *app.AttemptCoordinator
	admin    *app.AdminService

	closers []func() error
}

func loadConfig(flags *rootFlags) (config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if flags.apiURL != "" {
		cfg.API.BaseURL = flags.apiURL
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	return cfg, nil
}

func openEnv(flags *rootFlags) (*env, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, logger: logger}
	e.closers = append(e.closers, func() error {
		_ = logger.Sync()
		return nil
	})

	sessions, drafts, err := e.stores()
	if err != nil {
		e.Close()
		return nil, err
	}

	v := app.NewValidator()
	// The client reads the token through auth, which is built on the client.
	client := api.NewClient(cfg.API.BaseURL,
		api.WithTimeout(config.TTLDuration(cfg.API.Timeout, 0)),
		api.WithTokenSource(func(ctx context.Context) (string, error) { return e.auth.Token(ctx) }),
		api.WithLogger(logger.Named("api")),
	)
	e.auth = app.NewAuthService(client, sessions, v, logger)

	quizzes := memory.NewQuizRepository(client, config.TTLDuration(cfg.Quiz.TTL, 0))
	e.catalog = app.NewCatalog(client, quizzes, logger)
	e.attempts = app.NewAttemptCoordinator(client, quizzes, drafts, logger)
	e.admin = app.NewAdminService(client, sessions, quizzes, v, logger)
	return e, nil
}

// stores picks the session and draft backends from config.
func (e *env) stores() (app.SessionRepository, app.DraftRepository, error) {
	switch e.cfg.Session.Backend {
	case "", "file":
		return file.NewSessionStore(e.cfg.Session.StateDir), file.NewDraftStore(e.cfg.Session.StateDir), nil
	case "memory":
		return memory.NewSessionStore(), memory.NewDraftStore(), nil
	case "redis":
		if e.cfg.Redis.Addr == "" {
			return nil, nil, fmt.Errorf("session backend redis needs redis.addr")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     e.cfg.Redis.Addr,
			Password: e.cfg.Redis.Password,
			DB:       e.cfg.Redis.DB,
		})
		e.closers = append(e.closers, client.Close)
		draftTTL := config.TTLDuration(e.cfg.Redis.DraftTTL, 0)
		return redisstore.NewSessionStore(client, e.cfg.Session.Profile), redisstore.NewDraftStore(client, draftTTL), nil
	}
	return nil, nil, fmt.Errorf("unknown session backend %q", e.cfg.Session.Backend)
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i]()
	}
}
