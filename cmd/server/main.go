package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cmnord/jep-sub001/internal/common/clock"
	"github.com/cmnord/jep-sub001/internal/common/uuid"
	"github.com/cmnord/jep-sub001/internal/engine"
	"github.com/cmnord/jep-sub001/internal/handlers/web"
	gameRepo "github.com/cmnord/jep-sub001/internal/repositories/game"
	roomRepo "github.com/cmnord/jep-sub001/internal/repositories/room"
	eventRepo "github.com/cmnord/jep-sub001/internal/repositories/room_event"
	roomService "github.com/cmnord/jep-sub001/internal/services/room"
)

type config struct {
	bind          string
	port          int
	baseURL       string
	redisAddr     string
	redisPassword string
	wagerFloor    int
	verbose       bool
}

func (c *config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.wagerFloor < 0 {
		return fmt.Errorf("invalid wager floor: %d", c.wagerFloor)
	}
	return nil
}

func newCmd(cfg *config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("TRIVIA")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Multiplayer trivia room server backed by an append-only event log.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: TRIVIA_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: TRIVIA_PORT)")
	fs.StringVar(&cfg.baseURL, "base-url", "http://localhost:8080", "externally visible URL, used for join QR codes (env: TRIVIA_BASE_URL)")
	fs.StringVar(&cfg.redisAddr, "redis-addr", "localhost:6379", "redis address (env: TRIVIA_REDIS_ADDR)")
	fs.StringVar(&cfg.redisPassword, "redis-password", "", "redis password (env: TRIVIA_REDIS_PASSWORD)")
	fs.IntVar(&cfg.wagerFloor, "wager-floor", engine.DefaultWagerFloor, "wager ceiling for players with low scores (env: TRIVIA_WAGER_FLOOR)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: TRIVIA_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

func run(ctx context.Context, cfg *config) error {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.redisAddr,
		Password: cfg.redisPassword,
		DB:       0,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	rooms, err := roomRepo.NewRedis(&roomRepo.Config{RedisClient: redisClient})
	if err != nil {
		return fmt.Errorf("failed to create room repository: %w", err)
	}

	games, err := gameRepo.NewRedis(&gameRepo.Config{RedisClient: redisClient})
	if err != nil {
		return fmt.Errorf("failed to create game repository: %w", err)
	}

	events, err := eventRepo.NewRedis(&eventRepo.Config{RedisClient: redisClient})
	if err != nil {
		return fmt.Errorf("failed to create room event repository: %w", err)
	}

	svc, err := roomService.NewService(&roomService.Config{
		RoomRepo:      rooms,
		GameRepo:      games,
		EventRepo:     events,
		Clock:         &clock.DefaultClock{},
		UUIDGenerator: uuid.New(),
		Rules:         engine.Rules{WagerFloor: cfg.wagerFloor},
	})
	if err != nil {
		return fmt.Errorf("failed to create room service: %w", err)
	}

	handler, err := web.New(&web.Config{
		BaseURL: cfg.baseURL,
		Verbose: cfg.verbose,
	}, svc)
	if err != nil {
		return fmt.Errorf("failed to create web handler: %w", err)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.bind, cfg.port),
		Handler:      handler.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0,
	}

	shutdownCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, 1)
	go func() {
		log.Printf("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	select {
	case err := <-errs:
		return err
	case <-shutdownCtx.Done():
	}

	log.Println("Shutting down...")
	drainCtx, cancelDrain := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelDrain()
	return srv.Shutdown(drainCtx)
}

func main() {
	// Load optional .env before flags and env vars are read.
	_ = godotenv.Load()

	cfg := &config{}
	cobra.CheckErr(newCmd(cfg).Execute())
}
