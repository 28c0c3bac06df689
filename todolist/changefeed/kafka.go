// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package changefeed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/z5labs/todo"
	"github.com/z5labs/todo/config"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"
	"github.com/twmb/franz-go/plugin/kslog"
	"go.opentelemetry.io/otel"
)

// BrokersFromEnv reads Kafka broker addresses from the KAFKA_BROKERS
// environment variable. Brokers are comma separated.
func BrokersFromEnv() config.Reader[[]string] {
	return config.Map(
		config.Env("KAFKA_BROKERS"),
		func(ctx context.Context, s string) ([]string, error) {
			return strings.Split(s, ","), nil
		},
	)
}

// TopicFromEnv reads the change feed topic from the TODO_CHANGEFEED_TOPIC
// environment variable.
func TopicFromEnv() config.Reader[string] {
	return config.Env("TODO_CHANGEFEED_TOPIC")
}

// NewClient creates a Kafka producer client which logs through slog and
// reports traces and metrics to the global OpenTelemetry providers.
func NewClient(brokers []string, opts ...kgo.Opt) (*kgo.Client, error) {
	clientOpts := []kgo.Opt{
		kgo.WithLogger(kslog.New(todo.Logger("github.com/twmb/franz-go/pkg/kgo"))),
		kgo.WithHooks(
			kotel.NewTracer(
				kotel.TracerProvider(otel.GetTracerProvider()),
				kotel.TracerPropagator(otel.GetTextMapPropagator()),
			),
			kotel.NewMeter(
				kotel.MeterProvider(otel.GetMeterProvider()),
				kotel.WithMergedConnectsMeter(),
			),
		),
		kgo.SeedBrokers(brokers...),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	}
	clientOpts = append(clientOpts, opts...)

	client, err := kgo.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}
	return client, nil
}

// EnsureTopic creates topic unless it already exists.
func EnsureTopic(ctx context.Context, client *kgo.Client, topic string, partitions int32, replicationFactor int16) error {
	admin := kadm.NewClient(client)

	resp, err := admin.CreateTopics(ctx, partitions, replicationFactor, nil, topic)
	if err != nil {
		return fmt.Errorf("failed to create topic: %w", err)
	}

	for _, topicResp := range resp {
		if topicResp.Err == nil || errors.Is(topicResp.Err, kerr.TopicAlreadyExists) {
			continue
		}
		return fmt.Errorf("failed to create topic %s: %w", topicResp.Topic, topicResp.Err)
	}
	return nil
}
