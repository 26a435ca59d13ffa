package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"wordfight/config"
	"wordfight/game"
	"wordfight/server"
	"wordfight/store"
)

// WordFight 入口：加载配置，启动世界 Tick 循环、结果写协程与 HTTP + WebSocket 服务
func main() {
	cfg, err := config.Load(".env", os.Args[1:])
	if err != nil {
		panic(err)
	}
	// 使用第三方 zap 日志库写入日志文件（带滚动）
	if err := server.InitLogger(cfg.LogFile, cfg.LogLevel, cfg.LogConsole); err != nil {
		panic(err)
	}
	defer server.SyncLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := server.WorldOptions{ArenaSize: cfg.ArenaSize, TickRate: cfg.TickRate}
	if cfg.DictionaryPath != "" {
		words, err := game.LoadWordListFile(cfg.DictionaryPath)
		if err != nil {
			server.Log.Fatalw("load dictionary", "path", cfg.DictionaryPath, "error", err)
		}
		opts.Dictionary = words
		server.Log.Infow("dictionary loaded", "path", cfg.DictionaryPath, "words", words.Len())
	}

	var wg sync.WaitGroup
	srvOpts := server.ServerOptions{
		RequireToken: cfg.RequireToken,
		InputRate:    cfg.InputRate,
		InputBurst:   cfg.InputBurst,
		IdleTimeout:  cfg.IdleTimeout,
	}
	if cfg.DBPath != "" {
		results, err := store.Open(cfg.DBPath)
		if err != nil {
			server.Log.Fatalw("open results store", "path", cfg.DBPath, "error", err)
		}
		defer results.Close()
		opts.Results = results
		srvOpts.Results = results
		wg.Add(1)
		go func() {
			defer wg.Done()
			results.Run(ctx, server.Log)
		}()
	}

	secret := cfg.TokenSecret
	if secret == "" {
		// 未配置时使用进程级随机密钥，令牌仅在本次运行内有效
		secret = uuid.NewString()
	}
	tokens, err := server.NewTokenIssuer(secret, cfg.TokenTTL)
	if err != nil {
		server.Log.Fatalw("token issuer", "error", err)
	}
	srvOpts.Tokens = tokens

	world := server.NewWorld(opts)
	wg.Add(1)
	go func() {
		defer wg.Done()
		world.Run(ctx, cfg.TickInterval())
	}()

	mux := http.NewServeMux()
	server.NewServer(world, srvOpts).Routes(mux)
	srv := &http.Server{Addr: cfg.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		server.Log.Infof("WordFight listening on %s (tick %v, arena %d)", cfg.Addr, cfg.TickInterval(), cfg.ArenaSize)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	<-ctx.Done()
	server.Log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		server.Log.Warnw("http shutdown", "error", err)
	}
	wg.Wait()
}
