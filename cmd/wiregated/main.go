package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"wiregate/go-bridge/internal/adapters/rpchttp"
	"wiregate/go-bridge/internal/bootstrap/bridgeconfig"
	"wiregate/go-bridge/internal/platform/redactlog"
	"wiregate/go-bridge/internal/rpcmeta"
	"wiregate/go-bridge/internal/wire"
	"wiregate/go-bridge/pkg/arith"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	listenAddr := flag.String("addr", "", "RPC bridge listen address (overrides config)")
	configPath := flag.String("config", "", "Path to config.yaml (optional)")
	flag.Parse()
	if *showVersion {
		fmt.Printf("wiregated version=%s commit=%s build_date=%s\n", version, commit, buildDate)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if *listenAddr != "" {
		_ = os.Setenv("WIREGATE_LISTEN_ADDR", *listenAddr)
	}

	cfg := bridgeconfig.LoadFromPath(*configPath)
	logger := redactlog.NewLogger(os.Stdout, redactlog.ParseLevel(os.Getenv("WIREGATE_LOG_LEVEL")))

	registry, err := rpcmeta.NewRegistry(arith.ServiceDesc, &arith.Calculator{})
	if err != nil {
		log.Fatalf("wiregated failed to build registry: %v", err)
	}
	bridge, err := rpchttp.NewBridge(cfg, wire.DefaultCodecSet(), registry, logger)
	if err != nil {
		log.Fatalf("wiregated failed to initialize: %v", err)
	}
	srv := rpchttp.NewServer(cfg, bridge)

	log.Printf("wiregated starting on %s (default format %s)", cfg.ListenAddr, cfg.DefaultFormat)
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("wiregated failed: %v", err)
	}
	log.Println("wiregated stopped")
}
