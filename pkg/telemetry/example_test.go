package telemetry_test

import (
	"context"
	"fmt"
	"time"

	"github.com/skybridge/skybridge/pkg/telemetry"
)

func Example_basicSetup() {
	tel, err := telemetry.NewTelemetry(telemetry.DefaultConfig())
	if err != nil {
		fmt.Println("setup failed:", err)
		return
	}
	defer tel.Shutdown(context.Background())

	tel.Logger.Info("telemetry ready")
	// Output varies, no output specified
}

func Example_distributedTracing() {
	cfg := telemetry.DefaultConfig()
	cfg.Tracing.Enabled = true
	cfg.Tracing.Exporter = "none"

	tel, err := telemetry.NewTelemetry(cfg)
	if err != nil {
		fmt.Println("setup failed:", err)
		return
	}
	defer tel.Shutdown(context.Background())

	ctx, span := tel.Tracer.StartWaitSpan(context.Background(), "instance", "i-1234")
	span.SetAttributes(telemetry.AttrResourceState.String("pending"))
	telemetry.RecordSuccess(span)
	span.End()
	_ = ctx
	// Output varies, no output specified
}

func Example_metricsCollection() {
	cfg := telemetry.DefaultConfig()
	cfg.Metrics.Enabled = true

	tel, err := telemetry.NewTelemetry(cfg)
	if err != nil {
		fmt.Println("setup failed:", err)
		return
	}
	defer tel.Shutdown(context.Background())

	tel.Metrics.RecordWaitStarted("volume")
	tel.Metrics.RecordWaitCompleted("volume", telemetry.WaitOutcomeSuccess, 120*time.Millisecond)
	tel.Metrics.RecordWaitPolls("volume", 3)
	// Output varies, no output specified
}
