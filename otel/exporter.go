// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otel

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Protocol is the OTLP transport used to reach the collector.
type Protocol string

const (
	ProtocolGRPC Protocol = "grpc"
	ProtocolHTTP Protocol = "http"
)

// UnknownProtocolError is returned for an unsupported OTLP protocol.
type UnknownProtocolError struct {
	Protocol Protocol
}

// Error implements the [error] interface.
func (e UnknownProtocolError) Error() string {
	return fmt.Sprintf("unknown otlp protocol: %s", e.Protocol)
}

type exporters struct {
	conn   *grpc.ClientConn
	span   sdktrace.SpanExporter
	metric sdkmetric.Exporter
	log    sdklog.Exporter
}

func newExporters(ctx context.Context, p Protocol, endpoint string) (exporters, error) {
	switch p {
	case ProtocolGRPC:
		return newGrpcExporters(ctx, endpoint)
	case ProtocolHTTP:
		return newHttpExporters(ctx, endpoint)
	default:
		return exporters{}, UnknownProtocolError{Protocol: p}
	}
}

// All three signals share a single client connection.
func newGrpcExporters(ctx context.Context, target string) (exporters, error) {
	cc, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return exporters{}, fmt.Errorf("failed to create otlp grpc client: %w", err)
	}

	span, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(cc))
	if err != nil {
		return exporters{}, errors.Join(err, cc.Close())
	}

	metric, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(cc))
	if err != nil {
		return exporters{}, errors.Join(err, cc.Close())
	}

	log, err := otlploggrpc.New(ctx, otlploggrpc.WithGRPCConn(cc))
	if err != nil {
		return exporters{}, errors.Join(err, cc.Close())
	}

	return exporters{
		conn:   cc,
		span:   span,
		metric: metric,
		log:    log,
	}, nil
}

func newHttpExporters(ctx context.Context, endpoint string) (exporters, error) {
	span, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(endpoint), otlptracehttp.WithInsecure())
	if err != nil {
		return exporters{}, err
	}

	metric, err := otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpoint(endpoint), otlpmetrichttp.WithInsecure())
	if err != nil {
		return exporters{}, err
	}

	log, err := otlploghttp.New(ctx, otlploghttp.WithEndpoint(endpoint), otlploghttp.WithInsecure())
	if err != nil {
		return exporters{}, err
	}

	return exporters{
		span:   span,
		metric: metric,
		log:    log,
	}, nil
}
