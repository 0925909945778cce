package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wesen/stategraph/pkg/graphmodel"
	"github.com/wesen/stategraph/pkg/nodekind"
)

// Redis keeps each graph's JSON document under its own key and indexes
// names in a set.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	reg    *nodekind.Registry
}

// RedisOptions configures NewRedis.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // default "stategraph:"
	TTL      time.Duration // default 0, no expiry
	Registry *nodekind.Registry
}

func NewRedis(opts RedisOptions) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "stategraph:"
	}
	return &Redis{client: client, prefix: prefix, ttl: opts.TTL, reg: opts.Registry}
}

func (s *Redis) graphKey(name string) string {
	return fmt.Sprintf("%sgraph:%s", s.prefix, name)
}

func (s *Redis) indexKey() string {
	return s.prefix + "graphs"
}

func (s *Redis) Save(ctx context.Context, g *graphmodel.Graph) error {
	data, err := json.Marshal(Encode(g))
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}
	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.graphKey(g.Name), data, s.ttl)
	pipe.SAdd(ctx, s.indexKey(), g.Name)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save graph to redis: %w", err)
	}
	return nil
}

func (s *Redis) Load(ctx context.Context, name string) (*graphmodel.Graph, error) {
	data, err := s.client.Get(ctx, s.graphKey(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load graph from redis: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph %q: %w", name, err)
	}
	return Decode(&doc, s.reg)
}

// List returns indexed graph names, sorted.
func (s *Redis) List(ctx context.Context) ([]string, error) {
	names, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list graphs: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Redis) Delete(ctx context.Context, name string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.graphKey(name))
	pipe.SRem(ctx, s.indexKey(), name)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Redis) Close() error {
	return s.client.Close()
}
