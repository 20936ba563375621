// voice-bridge - realtime voice bridge between the telephony media stream
// and the speech/LLM realtime service.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/gofiber/websocket/v2"

	"github.com/atlascommand/voice-bridge/internal/config"
	applog "github.com/atlascommand/voice-bridge/internal/log"
	"github.com/atlascommand/voice-bridge/pkg/bridge"
	"github.com/atlascommand/voice-bridge/pkg/calllog"
	"github.com/atlascommand/voice-bridge/pkg/web"
)

func main() {
	port := flag.String("port", "", "HTTP port (overrides PORT env var)")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	if *port != "" {
		cfg.Port = *port
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	applog.Init(cfg.LogLevel, cfg.LogFormat)

	summarizer := bridge.NewSummarizer(cfg.OpenAIKey, cfg.SummaryBaseURL, cfg.SummaryModel, cfg.SummaryPrompt)
	sink := calllog.New(cfg.CallLogURL, cfg.CallLogAnonKey, cfg.CallLogSecret)
	finalizer := bridge.NewFinalizer(summarizer, sink, cfg.SummaryModel, cfg.OrgID)

	srv := web.NewServer(cfg.Port, func(conn *websocket.Conn) {
		bridge.NewSession(cfg, conn, finalizer).Run()
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		applog.Info("listening", "port", cfg.Port, "path", web.MediaStreamPath)
		if err := srv.Start(); err != nil {
			applog.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	applog.Info("shutting down")
	if err := srv.Shutdown(); err != nil {
		applog.Error("shutdown error", "error", err)
	}
}
