package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	badgeservice "github.com/Black-And-White-Club/pitwall-bot/app/modules/badge/application"
	badgedb "github.com/Black-And-White-Club/pitwall-bot/app/modules/badge/infrastructure/repositories"
	notifyservice "github.com/Black-And-White-Club/pitwall-bot/app/modules/notify/application"
	notifypublisher "github.com/Black-And-White-Club/pitwall-bot/app/modules/notify/infrastructure/publisher"
	raceservice "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/application"
	racequeue "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/infrastructure/queue"
	racedb "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/infrastructure/repositories"
	racescheduler "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/infrastructure/scheduler"
	rankingservice "github.com/Black-And-White-Club/pitwall-bot/app/modules/ranking/application"
	rankingdb "github.com/Black-And-White-Club/pitwall-bot/app/modules/ranking/infrastructure/repositories"
	rivalryservice "github.com/Black-And-White-Club/pitwall-bot/app/modules/rivalry/application"
	rivalrydb "github.com/Black-And-White-Club/pitwall-bot/app/modules/rivalry/infrastructure/repositories"
	scoringservice "github.com/Black-And-White-Club/pitwall-bot/app/modules/scoring/application"
	scoringdb "github.com/Black-And-White-Club/pitwall-bot/app/modules/scoring/infrastructure/repositories"
	teamservice "github.com/Black-And-White-Club/pitwall-bot/app/modules/team/application"
	teamdb "github.com/Black-And-White-Club/pitwall-bot/app/modules/team/infrastructure/repositories"
	"github.com/Black-And-White-Club/pitwall-bot/app/observability"
	"github.com/Black-And-White-Club/pitwall-bot/app/observability/attr"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/clock"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/lock"
	"github.com/Black-And-White-Club/pitwall-bot/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/valkey-io/valkey-go"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 10 * time.Second

// App holds every service of the bot and the infrastructure they share.
type App struct {
	Config *config.Config
	Logger *slog.Logger
	Obs    *observability.Observability
	DB     *bun.DB

	Races     *raceservice.RaceService
	Scoring   *scoringservice.ScoringService
	Teams     *teamservice.TeamService
	Rankings  *rankingservice.RankingService
	Badges    *badgeservice.BadgeService
	Rivalries *rivalryservice.RivalryService

	Queue     *racequeue.Service
	Scheduler *racescheduler.Scheduler

	publisher    *notifypublisher.Publisher
	valkey       valkey.Client
	queueStarted bool
}

// NewApp opens the database, the lock server and the notification stream,
// then builds every service. Nothing is started: Run starts the queue, the
// phase scheduler and the ops server.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	obs, err := observability.New(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	a := &App{Config: cfg, Logger: logger, Obs: obs}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	civil, err := clock.NewCivil(cfg.Scheduler.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load race timezone: %w", err)
	}

	a.DB = bun.NewDB(sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN))), pgdialect.New())
	if err := a.DB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	locker, err := a.newLocker()
	if err != nil {
		return nil, err
	}

	a.publisher, err = notifypublisher.NewNATSPublisher(ctx, cfg.NATS.URL, cfg.Notifications.Topic, logger)
	if err != nil {
		return nil, err
	}

	metrics := obs.Metrics
	dispatcher := notifyservice.NewDispatcher(
		a.publisher,
		cfg.Notifications.Topic,
		rate.NewLimiter(rate.Limit(cfg.Notifications.RatePerSecond), cfg.Notifications.Burst),
		logger.With(attr.String("module", "notify")),
		metrics,
		obs.Tracer("notify"),
	)

	raceRepo := racedb.NewRepository(a.DB)

	a.Teams = teamservice.NewTeamService(teamdb.NewRepository(a.DB), locker, logger.With(attr.String("module", "team")), metrics, obs.Tracer("team"), a.DB)
	a.Rankings = rankingservice.NewRankingService(rankingdb.NewRepository(a.DB), locker, logger.With(attr.String("module", "ranking")), metrics, obs.Tracer("ranking"), a.DB)
	a.Badges = badgeservice.NewBadgeService(badgedb.NewRepository(a.DB), a.Rankings, dispatcher, logger.With(attr.String("module", "badge")), metrics, obs.Tracer("badge"), a.DB)
	a.Rivalries = rivalryservice.NewRivalryService(rivalrydb.NewRepository(a.DB), raceRepo, dispatcher, logger.With(attr.String("module", "rivalry")), metrics, obs.Tracer("rivalry"), a.DB)

	a.Scoring = scoringservice.NewScoringService(
		scoringdb.NewRepository(a.DB),
		raceRepo,
		a.Teams.Ledger(),
		a.Teams,
		scoringservice.Hooks{
			Badges:      a.Badges,
			Rivalries:   a.Rivalries,
			Leaderboard: a.Rankings,
			Notifier:    dispatcher,
		},
		locker,
		civil,
		cfg.Scoring.LockTTL,
		logger.With(attr.String("module", "scoring")),
		metrics,
		obs.Tracer("scoring"),
		a.DB,
	)

	// The close-season worker and the race service refer to each other;
	// the worker only resolves a.Races when a job runs.
	a.Queue, err = racequeue.NewService(ctx, a.DB, logger, cfg.Postgres.DSN, metrics, racequeue.Handlers{
		Scorer: a.Scoring,
		Seasons: racequeue.SeasonCloserFunc(func(ctx context.Context, seasonID int64) (int, error) {
			return a.Races.CloseSeason(ctx, seasonID)
		}),
	}, racequeue.Options{
		MaxWorkers:   cfg.Queue.MaxWorkers,
		Snooze:       cfg.Scoring.Snooze,
		ScoreTimeout: cfg.Scoring.LockTTL,
	})
	if err != nil {
		return nil, err
	}

	a.Races = raceservice.NewRaceService(
		raceRepo,
		dispatcher,
		a.Queue,
		a.Badges,
		locker,
		civil,
		logger.With(attr.String("module", "race")),
		metrics,
		obs.Tracer("race"),
		a.DB,
	)
	a.Scheduler = racescheduler.New(a.Races, cfg.Scheduler.Interval, logger)

	return a, nil
}

// newLocker returns the valkey locker when an address is configured, and the
// in-process locker otherwise.
func (a *App) newLocker() (lock.Locker, error) {
	if a.Config.Valkey.Address == "" {
		a.Logger.Warn("No valkey address configured, using in-process locks")
		return lock.NewMemoryLocker(), nil
	}
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:  []string{a.Config.Valkey.Address},
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to valkey: %w", err)
	}
	a.valkey = client
	return lock.NewValkeyLocker(client, a.Logger.With(attr.String("component", "lock"))), nil
}

// Run starts the queue workers, the phase scheduler and the ops server, and
// blocks until ctx is cancelled or one of them fails. Shutdown gives running
// work shutdownTimeout to finish.
func (a *App) Run(ctx context.Context) error {
	if err := a.Queue.Start(ctx); err != nil {
		return err
	}
	a.queueStarted = true
	if err := a.Scheduler.Start(ctx); err != nil {
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return errors.Join(err, a.Queue.Stop(stopCtx))
	}

	ops := &http.Server{
		Addr:              a.Config.Observability.MetricsAddress,
		Handler:           NewOpsRouter(a.DB, a.Queue, a.Obs.Registry),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	if ops.Addr != "" {
		g.Go(func() error {
			a.Logger.Info("Ops server listening", attr.String("address", ops.Addr))
			if err := ops.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("ops server failed: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		return errors.Join(
			a.Scheduler.Stop(shutdownCtx),
			a.Queue.Stop(shutdownCtx),
			ops.Shutdown(shutdownCtx),
		)
	})

	a.Logger.Info("Pitwall started")
	err := g.Wait()
	a.Logger.Info("Pitwall stopped")
	return err
}

// Close releases the connections opened by NewApp. The queue pool is closed
// here only when Run never started it.
func (a *App) Close() error {
	var errs []error
	if a.Queue != nil && !a.queueStarted {
		a.Queue.Close()
	}
	if a.publisher != nil {
		errs = append(errs, a.publisher.Close())
	}
	if a.valkey != nil {
		a.valkey.Close()
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
