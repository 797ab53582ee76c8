package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	commonmqtt "hostel-portal/common/mqtt"
	commonredis "hostel-portal/common/redis"
	"hostel-portal/internal/domain"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// AllotmentEvents records bed movements so other processes (and the history
// view) can follow them.
type AllotmentEvents interface {
	Publish(ctx context.Context, ev domain.AllotmentEvent) error
	Recent(ctx context.Context, limit int) ([]AllotmentRecord, error)
}

// AllotmentRecord is one stored event with its stream id.
type AllotmentRecord struct {
	ID string `json:"id"`
	domain.AllotmentEvent
}

const allotmentStreamMaxLen = 10000

// RedisAllotmentEvents appends events to a Redis stream.
type RedisAllotmentEvents struct {
	client *redis.Client
	stream string
	logger *zap.Logger
}

func NewRedisAllotmentEvents(client *redis.Client, stream string, logger *zap.Logger) *RedisAllotmentEvents {
	return &RedisAllotmentEvents{client: client, stream: stream, logger: logger}
}

func (e *RedisAllotmentEvents) Publish(ctx context.Context, ev domain.AllotmentEvent) error {
	id, err := commonredis.PublishJSONToStream(ctx, e.client, e.stream, allotmentStreamMaxLen, ev.Type, ev)
	if err != nil {
		return fmt.Errorf("publish %s event: %w", ev.Type, err)
	}
	e.logger.Debug("Allotment event published",
		zap.String("stream", e.stream),
		zap.String("id", id),
		zap.String("type", ev.Type),
		zap.String("application_number", ev.ApplicationNumber),
	)
	return nil
}

func (e *RedisAllotmentEvents) Recent(ctx context.Context, limit int) ([]AllotmentRecord, error) {
	msgs, err := commonredis.ReadLatest(ctx, e.client, e.stream, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", e.stream, err)
	}
	out := make([]AllotmentRecord, 0, len(msgs))
	for _, m := range msgs {
		rec := AllotmentRecord{ID: m.ID}
		data, _ := m.Values["data"].(string)
		if err := json.Unmarshal([]byte(data), &rec.AllotmentEvent); err != nil {
			e.logger.Warn("Skipping malformed allotment event", zap.String("id", m.ID), zap.Error(err))
			continue
		}
		if rec.At.IsZero() {
			if ts, err := strconv.ParseInt(fmt.Sprint(m.Values["timestamp"]), 10, 64); err == nil {
				rec.At = time.Unix(ts, 0).UTC()
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// NoticeBroadcaster pushes notices to display boards.
type NoticeBroadcaster interface {
	Broadcast(n *domain.Notice) error
}

// MQTTNoticeBroadcaster publishes notices as retained JSON messages so a
// board that reconnects shows the latest one.
type MQTTNoticeBroadcaster struct {
	client *commonmqtt.Client
	topic  string
	qos    byte
}

func NewMQTTNoticeBroadcaster(client *commonmqtt.Client, topic string, qos byte) *MQTTNoticeBroadcaster {
	return &MQTTNoticeBroadcaster{client: client, topic: topic, qos: qos}
}

func (b *MQTTNoticeBroadcaster) Broadcast(n *domain.Notice) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return b.client.Publish(b.topic, b.qos, true, payload)
}

type nopAllotmentEvents struct{}

func (nopAllotmentEvents) Publish(context.Context, domain.AllotmentEvent) error { return nil }
func (nopAllotmentEvents) Recent(context.Context, int) ([]AllotmentRecord, error) {
	return []AllotmentRecord{}, nil
}

type nopBroadcaster struct{}

func (nopBroadcaster) Broadcast(*domain.Notice) error { return nil }
