package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/myabroadportal/portal/backend/internal/analysis/intent"
	"github.com/myabroadportal/portal/backend/internal/config"
	"github.com/myabroadportal/portal/backend/internal/handler"
	"github.com/myabroadportal/portal/backend/internal/logger"
	"github.com/myabroadportal/portal/backend/internal/model/funnel"
	"github.com/myabroadportal/portal/backend/internal/model/lead"
	"github.com/myabroadportal/portal/backend/internal/service/analytics"
	"github.com/myabroadportal/portal/backend/internal/service/chat"
	"github.com/myabroadportal/portal/backend/internal/service/collector"
	funnelservice "github.com/myabroadportal/portal/backend/internal/service/funnel"
	"github.com/myabroadportal/portal/backend/internal/service/handoff"
	"github.com/myabroadportal/portal/backend/internal/store/memory"
	redisstore "github.com/myabroadportal/portal/backend/internal/store/redis"
	"github.com/myabroadportal/portal/backend/internal/store/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	zap.ReplaceGlobals(zl)

	leads, funnelRepo, cleanup := openStores(ctx, cfg.Storage, zl)
	defer cleanup()

	var sink collector.Collector = collector.Noop{}
	if cfg.Collector.Enabled() {
		sink = collector.NewClient(cfg.Collector.URL, collector.WithTimeout(cfg.Collector.Timeout))
		zl.Info("lead collector enabled", zap.String("url", cfg.Collector.URL))
	} else {
		zl.Info("COLLECTOR_URL not set, leads are only stored locally")
	}
	dispatcher := collector.NewDispatcher(sink, cfg.Collector.Timeout, zl)
	defer dispatcher.Wait()

	formatter := handoff.New(cfg.Handoff.BaseURL, cfg.Handoff.Destination)
	analyticsSvc := analytics.NewService(funnelRepo, zl)
	defer analyticsSvc.Close()

	chatSvc := chat.NewService(
		chat.WithClassifier(intent.NewClassifier(intent.Seed())),
		chat.WithTypingDelay(cfg.Widgets.ChatTypingDelay),
		chat.WithHandoff(formatter),
		chat.WithLeadRepository(leads),
		chat.WithLogger(zl),
	)
	defer chatSvc.Wait()

	funnelStore := funnel.NewMemoryStore([]funnel.Definition{
		funnelservice.QuizDefinition(cfg.Widgets.QuizAnalyzeDelay),
		funnelservice.MatchmakerDefinition(cfg.Widgets.MatchmakerAnalyzeDelay, cfg.Widgets.MatchmakerStatusInterval),
	})
	funnelSvc := funnelservice.NewService(funnelStore,
		funnelservice.WithHandoff(formatter),
		funnelservice.WithCollector(dispatcher),
		funnelservice.WithLeadRepository(leads),
		funnelservice.WithAnalytics(analyticsSvc),
		funnelservice.WithLogger(zl),
	)
	defer funnelSvc.Wait()

	router := handler.NewRouter(handler.Services{
		Chat:      chatSvc,
		Funnels:   funnelSvc,
		Store:     funnelStore,
		Analytics: analyticsSvc,
		Logger:    zl,

		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	startServer(ctx, cfg.Server, router, zl)
}

// openStores 选择线索存储与统计后端。配置了 Redis 时统计写入 Redis；
// SQLite 保存线索，没有 Redis 时也保存统计；两者都不可用时退回内存。
func openStores(ctx context.Context, cfg config.StorageConfig, zl *zap.Logger) (lead.Repository, analytics.Repository, func()) {
	var (
		leads   lead.Repository      = memory.NewLeadRepo()
		hits    analytics.Repository = memory.NewFunnelRepo()
		closers []func()
	)

	if cfg.SQLiteDSN != "" {
		db, err := sqlite.Open(cfg.SQLiteDSN)
		if err != nil {
			zl.Warn("sqlite unavailable, keeping leads in memory", zap.String("dsn", cfg.SQLiteDSN), zap.Error(err))
		} else {
			leads = sqlite.NewLeadRepo(db)
			hits = sqlite.NewFunnelRepo(db)
			closers = append(closers, func() { _ = db.Close() })
			zl.Info("sqlite lead store opened", zap.String("dsn", cfg.SQLiteDSN))
		}
	}

	if cfg.RedisAddr != "" {
		rdb, err := redisstore.NewClient(ctx, redisstore.Config{
			Address:  cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			zl.Warn("redis unavailable, funnel analytics stay local", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			hits = redisstore.NewFunnelRepo(rdb)
			closers = append(closers, func() { _ = rdb.Close() })
			zl.Info("redis funnel analytics enabled", zap.String("addr", cfg.RedisAddr))
		}
	}

	return leads, hits, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, zl *zap.Logger) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	zl.Info("My Abroad Portal backend listening", zap.String("addr", addr))
	if err := runServer(ctx, srv); err != nil {
		zl.Fatal("server error", zap.Error(err))
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
