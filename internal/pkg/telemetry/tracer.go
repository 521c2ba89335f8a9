// Package telemetry wires structured logging and OpenTelemetry tracing.
//
// Call SetupTracer once at the top of main(), defer the returned shutdown
// function, and every span created in the process is exported:
//
//	shutdown, err := telemetry.SetupTracer(ctx, "storefront", cfg.OTLPEndpoint, cfg.Environment)
//	if err != nil { ... }
//	defer shutdown(context.Background())
package telemetry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ShutdownFunc flushes buffered spans and closes the exporter connection.
type ShutdownFunc func(ctx context.Context) error

// SetupTracer installs the global TracerProvider and W3C propagators. With an
// empty endpoint no exporter is created: spans are still recorded so trace ids
// reach logs and the saga log, they just never leave the process.
func SetupTracer(ctx context.Context, serviceName, endpoint, environment string) (ShutdownFunc, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			semconv.ServiceName(serviceName),
			semconv.DeploymentEnvironment(environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: failed to build resource: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}

	var conn *grpc.ClientConn
	if endpoint != "" {
		conn, err = grpc.NewClient(
			stripScheme(endpoint),
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		)
		if err != nil {
			return nil, fmt.Errorf("telemetry: failed to dial OTel Collector at %s: %w", endpoint, err)
		}

		exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("telemetry: failed to create OTLP trace exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	shutdown := func(ctx context.Context) error {
		if err := tp.Shutdown(ctx); err != nil {
			return fmt.Errorf("telemetry: error shutting down TracerProvider: %w", err)
		}
		if conn != nil {
			return conn.Close()
		}
		return nil
	}

	return shutdown, nil
}

// stripScheme removes "http://" or "https://" so the raw host:port can be
// handed to grpc.NewClient.
func stripScheme(endpoint string) string {
	for _, prefix := range []string{"http://", "https://"} {
		if rest, ok := strings.CutPrefix(endpoint, prefix); ok && rest != "" {
			return rest
		}
	}
	return endpoint
}
