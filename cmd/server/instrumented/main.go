package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joeshaw/envdecode"

	"fridgevision"
	"fridgevision/inventory"
	"fridgevision/inventory/storage"
	"fridgevision/llm"
	"fridgevision/llm/bedrock"
	"fridgevision/llm/ollama"
	"fridgevision/recognize"
	"fridgevision/server"
	"fridgevision/suggest"
)

func main() {
	ctx := context.Background()

	var modelConfig fridgevision.ModelConfig
	if err := envdecode.Decode(&modelConfig); err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	var serverConfig fridgevision.ServerConfig
	if err := envdecode.Decode(&serverConfig); err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	snapshot, err := newSnapshotState(ctx, serverConfig)
	if err != nil {
		slog.Error("SETUP: Failed to create snapshot state", "error", err)
		return
	}

	invoker, err := newInvoker(ctx, modelConfig, serverConfig)
	if err != nil {
		slog.Error("SETUP: Failed to create model client", "error", err)
		return
	}

	callLog, cleanup, err := newModelCallLogger(serverConfig, modelConfig)
	if err != nil {
		slog.Error("SETUP: Failed to create model call logger", "error", err)
		return
	}
	defer func() {
		if err := cleanup(); err != nil {
			slog.Error("Failed to flush model call log", "error", err)
		}
	}()

	tracerProvider, meterProvider, otelShutdown, err := fridgevision.InitOtel(ctx)
	if err != nil {
		slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
		return
	}
	defer func() {
		if err := otelShutdown(ctx); err != nil {
			slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
		}
	}()

	store := inventory.NewStore()

	recognizer := recognize.NewInstrumentedGateway(
		recognize.NewGateway(invoker, callLog),
		tracerProvider.Tracer(fridgevision.TracerNameRecognize),
		meterProvider.Meter(fridgevision.TracerNameRecognize),
	)
	suggester := suggest.NewInstrumentedGateway(
		suggest.NewGateway(invoker, store, callLog),
		tracerProvider.Tracer(fridgevision.TracerNameSuggest),
		meterProvider.Meter(fridgevision.TracerNameSuggest),
	)

	srv := server.New(store, recognizer, suggester, snapshot)
	if err := srv.Seed(ctx); err != nil {
		slog.Error("SETUP: Failed to seed inventory from snapshot", "error", err)
		return
	}

	if err := srv.Run(serverConfig.Addr); err != nil {
		slog.Error("RESULT: Server stopped", "error", err)
	}
}

func newSnapshotState(ctx context.Context, cfg fridgevision.ServerConfig) (storage.State, error) {
	if cfg.SnapshotS3Bucket == "" {
		slog.Info("SETUP: Using file inventory snapshot", "path", cfg.SnapshotPath)
		return storage.NewFileState(cfg.SnapshotPath), nil
	}

	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("SETUP: Using S3 inventory snapshot", "bucket", cfg.SnapshotS3Bucket, "key", cfg.SnapshotS3Key)
	return storage.NewS3State(s3.NewFromConfig(awsCfg), cfg.SnapshotS3Bucket, cfg.SnapshotS3Key), nil
}

func newInvoker(ctx context.Context, modelCfg fridgevision.ModelConfig, serverCfg fridgevision.ServerConfig) (llm.Invoker, error) {
	switch modelCfg.Backend {
	case "ollama":
		slog.Info("SETUP: Using Ollama backend", "endpoint", serverCfg.BaseOllamaEndpoint, "model", modelCfg.ModelID)
		return ollama.NewClient(ollama.ClientOpts{
			BaseEndpoint: serverCfg.BaseOllamaEndpoint,
			ModelID:      modelCfg.ModelID,
			HTTPClient:   http.DefaultClient,
		})
	default:
		awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(5))
		if err != nil {
			return nil, err
		}
		slog.Info("SETUP: Using Bedrock backend", "model", modelCfg.ModelID)
		return bedrock.NewClient(bedrockruntime.NewFromConfig(awsCfg), bedrock.ClientOptions{
			ModelID:     modelCfg.ModelID,
			MaxTokens:   modelCfg.MaxTokens,
			Temperature: modelCfg.Temperature,
			TopP:        modelCfg.TopP,
		}), nil
	}
}

func newModelCallLogger(serverCfg fridgevision.ServerConfig, modelCfg fridgevision.ModelConfig) (fridgevision.ModelCallLogger, func() error, error) {
	noop := func() error { return nil }

	switch serverCfg.ModelCallLogPath {
	case "":
		return fridgevision.NewNoOpModelCallLogger(), noop, nil
	case "stdout":
		return fridgevision.NewStdoutModelCallLogger(), noop, nil
	}

	path := serverCfg.ModelCallLogPath
	if path == "auto" {
		path = fridgevision.NewModelCallLogFilePath(modelCfg.ModelID)
	}

	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, noop, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := fridgevision.NewFileModelCallLogger(logFile)
	cleanup := func() error {
		return errors.Join(logger.Flush(), logFile.Close())
	}
	slog.Info("SETUP: Logging model calls", "path", path)
	return logger, cleanup, nil
}
