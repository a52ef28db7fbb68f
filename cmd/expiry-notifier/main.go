package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joeshaw/envdecode"

	"fridgevision"
	"fridgevision/inventory"
	"fridgevision/inventory/storage"
	"fridgevision/notify"
)

type Params struct {
	// WindowDays overrides the configured expiry window when positive.
	WindowDays int `json:"windowDays"`
}

type Results struct {
	ExpiringCount int  `json:"expiringCount"`
	Notified      bool `json:"notified"`
}

func main() {
	fn := func(ctx context.Context, params Params) (Results, error) {
		var notifierConfig fridgevision.NotifierConfig
		if err := envdecode.Decode(&notifierConfig); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}

		var serverConfig fridgevision.ServerConfig
		if err := envdecode.Decode(&serverConfig); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}

		if serverConfig.SnapshotS3Bucket == "" {
			return Results{}, fmt.Errorf("missing S3 config: INVENTORY_SNAPSHOT_S3_BUCKET must be set")
		}

		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return Results{}, fmt.Errorf("failed to load AWS config: %w", err)
		}
		snapshot := storage.NewS3State(s3.NewFromConfig(awsCfg), serverConfig.SnapshotS3Bucket, serverConfig.SnapshotS3Key)

		store := inventory.NewStore()
		data, err := snapshot.Load(ctx)
		if err != nil {
			if storage.IsNoSnapshot(err) {
				slog.Info("SETUP: No inventory snapshot found, nothing to report")
				return Results{}, nil
			}
			slog.Error("SETUP: Failed to load inventory snapshot from S3", "error", err)
			return Results{}, err
		}

		var items []inventory.Item
		if err := json.Unmarshal(data, &items); err != nil {
			return Results{}, fmt.Errorf("failed to decode inventory snapshot: %w", err)
		}
		store.Restore(items)
		slog.Info("SETUP: Inventory loaded from S3", "items_count", len(items))

		windowDays := notifierConfig.ExpiryWindowDays
		if params.WindowDays > 0 {
			windowDays = params.WindowDays
		}

		expiring := store.ExpiringWithin(windowDays)
		if len(expiring) == 0 {
			slog.Info("RESULT: Nothing expiring within window", "window_days", windowDays)
			return Results{ExpiringCount: 0, Notified: false}, nil
		}

		slackClient := notify.NewSlackClient(notifierConfig.SlackWebhookURL, http.DefaultClient)
		reporter := notify.NewExpiryReporter(slackClient, notifierConfig.SlackChannel)
		if err := reporter.Report(ctx, expiring, windowDays); err != nil {
			slog.Error("RESULT: Failed to post expiry report", "error", err)
			return Results{}, err
		}

		slog.Info("RESULT: Expiry report posted", "expiring_count", len(expiring), "window_days", windowDays)
		return Results{ExpiringCount: len(expiring), Notified: true}, nil
	}

	lambda.Start(fn)
}
