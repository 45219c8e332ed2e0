package main

import (
	"context"
	"log/slog"

	"babnet-backend/lib/serviceutil"
	"babnet-backend/lib/telemetry"
)

func InitTelemetry(ctx context.Context, verbose bool) {
	telemetry.InitSlog(verbose)

	if verbose {
		slog.DebugContext(ctx, "verbose logging enabled")
	}

	otel, err := telemetry.SetupFromEnv(ctx, "server")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	go func() {
		<-ctx.Done()
		otel.Shutdown(context.Background())
	}()
	telemetry.InstrumentPerfStats(ctx)
}
