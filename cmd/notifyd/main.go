// Command notifyd serves the notification API and live streams and fans
// notifications out to mail, text and push.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/modernmen/notifier/modules/notifications"
	"github.com/modernmen/notifier/pkg/config"
	"github.com/modernmen/notifier/pkg/email"
	"github.com/modernmen/notifier/pkg/httpserver"
	"github.com/modernmen/notifier/pkg/logger"
	notify "github.com/modernmen/notifier/pkg/notifications"
	"github.com/modernmen/notifier/pkg/pg"
	"github.com/modernmen/notifier/pkg/push"
	"github.com/modernmen/notifier/pkg/redis"
	"github.com/modernmen/notifier/pkg/requestid"
	"github.com/modernmen/notifier/pkg/sms"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, err := config.Load[Config]()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	opts := append(logger.FromConfig(cfg.Log), logger.WithContextExtractors(requestid.LoggerExtractor()))
	log := logger.New(opts...)
	slog.SetDefault(log)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("notifyd stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, log *slog.Logger) error {
	var checks []httpserver.Check

	storage, closeStorage, err := openStorage(ctx, cfg, log, &checks)
	if err != nil {
		return err
	}
	defer closeStorage()

	rdb, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()
	checks = append(checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(rdb)})

	mailer, err := email.New(cfg.Mail)
	if err != nil {
		return err
	}

	hub := notify.NewHub(cfg.Notify, notify.WithHubLogger(log))
	manager := notify.NewManager(storage, hub,
		notify.WithManagerLogger(log),
		notify.WithDispatcher(notify.NewMailDispatcher(mailer, cfg.Brand)),
		notify.WithDispatcher(notify.NewTextDispatcher(sms.New(cfg.SMS, log))),
		notify.WithDispatcher(notify.NewPushDispatcher(push.NewStreamPublisher(rdb, cfg.Push))),
		notify.WithContactResolver(notify.NewRedisContacts(rdb, cfg.ContactsPrefix)),
		notify.WithPreferences(notify.NewRedisPreferences(rdb, cfg.PrefsPrefix)),
		notify.WithOutcomeSink(notify.MultiSink{
			notify.NewLogSink(log),
			notify.NewRedisSink(rdb, cfg.StatsPrefix, log),
		}),
		notify.WithDispatchMode(cfg.Notify.DispatchMode),
		notify.WithDispatchTimeout(cfg.Notify.DispatchTimeout),
	)

	api := notifications.NewHandler(manager, hub,
		notifications.WithLogger(log),
		notifications.WithConfig(cfg.Stream),
	)

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(log, checks...))
	r.Mount("/notifications", api.Handle())

	srv := httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithLogger(log),
		// Streams end first so shutdown does not wait on them; their
		// unsent notifications return to the pending queue.
		httpserver.WithDrainHook(func() { _ = hub.Close() }),
		httpserver.WithStopHook(func(l *slog.Logger) {
			_ = manager.Close()
			l.Info("pending side-channel dispatches finished")
		}),
	)
	return srv.Run(ctx, r)
}

// openStorage returns the record store selected by NOTIFY_STORAGE and
// registers its readiness check.
func openStorage(ctx context.Context, cfg Config, log *slog.Logger, checks *[]httpserver.Check) (notify.Storage, func(), error) {
	switch cfg.Storage {
	case storageMemory:
		log.Warn("using in-memory storage, notifications are lost on restart")
		return notify.NewMemoryStorage(), func() {}, nil
	case storagePostgres:
	default:
		return nil, nil, fmt.Errorf("unknown NOTIFY_STORAGE %q", cfg.Storage)
	}

	pgCfg, err := config.Load[pg.Config]()
	if err != nil {
		return nil, nil, err
	}
	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return nil, nil, err
	}
	if err := pg.Migrate(ctx, pool, pgCfg, notify.Migrations, log); err != nil {
		pool.Close()
		return nil, nil, err
	}

	db := pg.OpenDB(pool)
	*checks = append(*checks, httpserver.Check{Name: "postgres", Fn: pg.Healthcheck(pool)})
	closeFn := func() {
		_ = db.Close()
		pool.Close()
	}
	return notify.NewPostgresStorage(db), closeFn, nil
}
