// Package publisher announces freshly written gold matches on a Redis stream.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/albapepper/scoracle-cricket/internal/config"
	"github.com/albapepper/scoracle-cricket/internal/model"
)

// RedisStream publishes one entry per gold match to config.GoldEventsStream.
type RedisStream struct {
	client *redis.Client
	stream string
	now    func() time.Time
}

// NewRedisStream connects to redisURL and verifies the connection.
func NewRedisStream(ctx context.Context, redisURL string) (*RedisStream, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStream{client: client, stream: config.GoldEventsStream, now: time.Now}, nil
}

// Close closes the Redis connection.
func (p *RedisStream) Close() error {
	return p.client.Close()
}

// PublishMatch appends the match result to the stream.
func (p *RedisStream) PublishMatch(ctx context.Context, set model.GoldSet) error {
	values, err := streamValues(set, p.now())
	if err != nil {
		return err
	}
	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: values,
	}).Err()
}

// MatchEvent is the JSON body carried in the "data" field of a stream entry.
type MatchEvent struct {
	MatchID int64                  `json:"match_id"`
	Winner  string                 `json:"winner"`
	Margin  string                 `json:"margin"`
	Innings []model.InningsSummary `json:"innings"`
}

func streamValues(set model.GoldSet, at time.Time) (map[string]any, error) {
	ev := MatchEvent{MatchID: set.MatchID, Innings: set.Innings}
	if set.Summary != nil {
		ev.Winner = set.Summary.Winner
		ev.Margin = set.Summary.Margin
	}
	if ev.Innings == nil {
		ev.Innings = []model.InningsSummary{}
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal match event: %w", err)
	}
	return map[string]any{
		"data":      string(data),
		"timestamp": at.Unix(),
	}, nil
}
