// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package eventprocessor

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/feedrank/internal/config"
)

const (
	maxReconnects = -1
	reconnectWait = 2 * time.Second
	ackWait       = 30 * time.Second
)

func natsOptions(logger watermill.LoggerAdapter, role string) []natsgo.Option {
	return []natsgo.Option{
		natsgo.Name("feedrank-" + role),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(maxReconnects),
		natsgo.ReconnectWait(reconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, watermill.LogFields{"role": role})
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{
				"role": role,
				"url":  nc.ConnectedUrl(),
			})
		}),
	}
}

// NewSubscriber creates a Watermill subscriber for like events. Core NATS
// queue subscriptions balance events across instances; with JetStream the
// subscription is a durable consumer.
func NewSubscriber(cfg *config.NATSConfig, logger watermill.LoggerAdapter) (message.Subscriber, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	jsCfg := wmNats.JetStreamConfig{Disabled: true}
	if cfg.JetStream {
		jsCfg = wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: true,
			AckAsync:      false,
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.AckWait(ackWait),
				natsgo.DeliverNew(),
			},
			DurablePrefix: cfg.DurableName,
		}
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              cfg.URL,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: cfg.SubscribersCount,
		AckWaitTimeout:   ackWait,
		CloseTimeout:     cfg.RouterCloseTimeout,
		NatsOptions:      natsOptions(logger, "subscriber"),
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream:        jsCfg,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill subscriber: %w", err)
	}
	return sub, nil
}

// NewPublisher creates a Watermill publisher on the same NATS server, used
// for the poison queue.
func NewPublisher(cfg *config.NATSConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	jsCfg := wmNats.JetStreamConfig{Disabled: true}
	if cfg.JetStream {
		jsCfg = wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: true,
			TrackMsgId:    true,
		}
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOptions(logger, "publisher"),
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   jsCfg,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}
	return pub, nil
}
