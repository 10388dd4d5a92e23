package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/tycoon-backend/internal/config"
	"github.com/rocketscienceinc/tycoon-backend/internal/finance"
	"github.com/rocketscienceinc/tycoon-backend/internal/pkg/keylock"
	"github.com/rocketscienceinc/tycoon-backend/internal/repository"
	"github.com/rocketscienceinc/tycoon-backend/internal/repository/memory"
	"github.com/rocketscienceinc/tycoon-backend/internal/repository/storage"
	"github.com/rocketscienceinc/tycoon-backend/internal/service"
	"github.com/rocketscienceinc/tycoon-backend/internal/usecase"
	"github.com/rocketscienceinc/tycoon-backend/transport/rest"
	"github.com/rocketscienceinc/tycoon-backend/transport/websocket"
)

const shutdownTimeout = 10 * time.Second

var ErrAddrNotFound = errors.New("redis address string is empty")

type repositories struct {
	games     repository.GameRepository
	rounds    repository.RoundRepository
	players   repository.PlayerRepository
	companies repository.CompanyRepository
}

// RunApp - runs the application until SIGINT or SIGTERM.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	repos, closeStorage, err := openStorage(ctx, log, conf)
	if err != nil {
		return err
	}
	defer closeStorage()

	locker := keylock.New()
	random := service.NewRandom()
	consultants := service.NewConsultantFactory(random)

	snapshotter := service.NewSnapshotter(repos.games, repos.companies)
	wsServer := websocket.New(logger, snapshotter)
	defer wsServer.Close()

	games := service.NewGameService(logger, repos.games, repos.rounds, consultants, conf.Game.ConsultantsPerRound, wsServer)
	rounds := service.NewRoundService(logger, service.RoundServiceDeps{
		GameRepo:    repos.games,
		RoundRepo:   repos.rounds,
		PlayerRepo:  repos.players,
		CompanyRepo: repos.companies,
		Games:       games,
		Applier:     service.NewActionApplier(consultants),
		Payroll:     finance.NewPayroll(logger),
		Locker:      locker,
		Random:      random,
		Notifier:    wsServer,
	})
	lobby := service.NewLobbyService(logger, repos.games, repos.players, repos.companies, locker, wsServer, conf.Game.DefaultRounds)

	gameUseCase := usecase.NewGameUseCase(repos.games, locker, lobby, games, rounds, snapshotter)

	router := rest.NewRouter(logger, rest.NewHandlers(logger, gameUseCase), wsServer)
	httpServer := rest.NewServer(logger, conf.HTTPPort, router)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		httpErrCh <- httpServer.Start()
	}()

	select {
	case err = <-httpErrCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("Received signal, shutting down")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err = httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}

	return nil
}

func openStorage(ctx context.Context, log *slog.Logger, conf *config.Config) (*repositories, func(), error) {
	if conf.Storage == config.StorageMemory {
		log.Warn("using in-memory storage, state is lost on restart")

		store := memory.NewStore()

		return &repositories{
			games:     store.Games(),
			rounds:    store.Rounds(),
			players:   store.Players(),
			companies: store.Companies(),
		}, func() {}, nil
	}

	redisAddrString := conf.Redis.GetRedisAddr()
	if conf.Redis.Host == "" {
		return nil, nil, ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString, conf.Redis.Password, conf.Redis.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	closeStorage := func() {
		if err := redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}

	return &repositories{
		games:     repository.NewGameRepository(redisStorage.Connection),
		rounds:    repository.NewRoundRepository(redisStorage.Connection),
		players:   repository.NewPlayerRepository(redisStorage.Connection),
		companies: repository.NewCompanyRepository(redisStorage.Connection),
	}, closeStorage, nil
}
