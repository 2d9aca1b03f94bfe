// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/debatecast/showroom/internal/cache"
	"github.com/debatecast/showroom/internal/config"
	"github.com/debatecast/showroom/internal/handlers"
	"github.com/debatecast/showroom/internal/hub"
	"github.com/debatecast/showroom/internal/media"
	"github.com/debatecast/showroom/internal/middleware"
	"github.com/debatecast/showroom/internal/room"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "showroom",
	Short: "Real-time coordinator for live debate shows",
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viper.GetViper()
		if cfgFile != "" {
			v.SetConfigFile(cfgFile)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("read config %s: %w", cfgFile, err)
			}
		}
		cfg, err := config.Load(v)
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
	SilenceUsage: true,
}

func init() {
	config.SetDefaults(viper.GetViper())

	rootCmd.Flags().StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")
	rootCmd.Flags().String("port", "", "listen port")
	rootCmd.Flags().Duration("tick", 0, "show clock interval")
	_ = viper.BindPFlag(config.KeyPort, rootCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag(config.KeyTickInterval, rootCmd.Flags().Lookup("tick"))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logrus.Fatalf("server exited: %v", err)
	}
}

func newLogger(cfg config.Config) *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("unknown log level %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if strings.EqualFold(cfg.LogFormat, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}

func newRecorder(ctx context.Context, cfg config.Config, logger *logrus.Logger) *cache.Recorder {
	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set, show events are not journaled")
		return cache.NewRecorder(nil, logger)
	}
	client, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Warnf("journal disabled: %v", err)
		return cache.NewRecorder(nil, logger)
	}
	logger.Infof("journaling show events to %s (%s)", cfg.RedisAddr, cfg.JournalQueue)
	return cache.NewRecorder(cache.NewRedisJournal(client, cfg.JournalQueue), logger)
}

func serve(ctx context.Context, cfg config.Config) error {
	logger := newLogger(cfg)
	if !cfg.MediaConfigured() {
		logger.Warn("LIVEKIT_API_KEY/LIVEKIT_API_SECRET not set, /token will fail")
	}

	rec := newRecorder(ctx, cfg, logger)

	store := room.NewRoomStore()
	store.OnCreate = func(id string) {
		logger.Infof("Room %q created", id)
		rec.Record(id, cache.KindRoomCreated, nil)
	}
	h := hub.NewHub(logger)
	minter := media.NewLiveKitMinter(cfg.MediaAPIKey, cfg.MediaSecret, cfg.TokenTTL)

	srv := handlers.NewShowServer(store, h, minter, rec, logger)
	srv.MediaURL = cfg.MediaURL
	srv.TickInterval = cfg.TickInterval
	srv.ChatRate = cfg.ChatRate
	srv.ChatBurst = cfg.ChatBurst

	sched := room.NewScheduler(store, h, logger)
	sched.Interval = cfg.TickInterval
	sched.IdleTTL = cfg.RoomIdleTTL
	sched.SweepEvery = cfg.SweepInterval
	sched.OnExpire = func(id string) {
		rec.Record(id, cache.KindRoomExpired, nil)
	}
	go sched.Run(ctx)

	var policy middleware.OriginPolicy = middleware.AllowList(cfg.AllowedOrigins)
	if cfg.CORSSoft {
		policy = middleware.SoftPolicy{Inner: policy, Logger: logger}
	}
	wrap := func(next http.Handler) http.Handler {
		return middleware.LogMiddleware(logger)(middleware.CORS(policy)(next))
	}

	mux := http.NewServeMux()

	// room websocket
	wsHandler := handlers.RoomWSHandler(logger, srv, wsOriginPatterns(cfg))
	mux.Handle("/ws", wrap(wsHandler))
	mux.Handle("/ws/", wrap(wsHandler))

	// rooms and media tokens
	mux.Handle("/rooms", wrap(handlers.ListRoomsHandler(srv)))
	mux.Handle("/token", wrap(handlers.TokenHandler(srv)))

	mux.Handle("/healthz", handlers.HealthHandler(srv))
	mux.Handle("/config", wrap(handlers.ConfigHandler(srv)))

	httpSrv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     mux,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Running on %s", httpSrv.Addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// wsOriginPatterns maps the allowed origins to websocket origin patterns.
// Soft CORS accepts any origin on the socket as well.
func wsOriginPatterns(cfg config.Config) []string {
	if cfg.CORSSoft {
		return []string{"*"}
	}
	patterns := make([]string, 0, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		o = strings.TrimPrefix(o, "https://")
		o = strings.TrimPrefix(o, "http://")
		patterns = append(patterns, o)
	}
	return patterns
}
