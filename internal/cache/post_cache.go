// Package cache keeps recently read posts in redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gator-commons/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const DefaultTTL = 30 * time.Second

// PostCache is a read-through cache for single posts. Writers that change a post's
// counters call Invalidate after their transaction commits. Each post has a generation
// key that Invalidate bumps; a load only writes its row back if the generation is
// unchanged since before it read the store, so a read racing a commit cannot re-cache
// the old counts. Redis failures degrade to store reads and are never returned to callers.
type PostCache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger
}

func NewPostCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *PostCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &PostCache{
		client: client,
		ttl:    ttl,
		logger: logger.Named("post_cache"),
	}
}

// Connect opens a redis client and verifies it with PING.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

func postKey(postID uuid.UUID) string {
	return fmt.Sprintf("post:%s", postID)
}

func genKey(postID uuid.UUID) string {
	return fmt.Sprintf("post:%s:gen", postID)
}

var errStaleLoad = errors.New("post changed during load")

// GetOrLoad returns the cached post, or calls load once per key for concurrent misses
// and caches the result. Errors from load (including not found) are not cached.
func (c *PostCache) GetOrLoad(ctx context.Context, postID uuid.UUID, load func(context.Context) (*models.Post, error)) (*models.Post, error) {
	key := postKey(postID)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var post models.Post
		if jsonErr := json.Unmarshal(data, &post); jsonErr == nil {
			return &post, nil
		}
		c.logger.Warn("dropping undecodable cache entry", zap.String("key", key))
		c.client.Del(ctx, key)
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("post cache read failed", zap.String("key", key), zap.Error(err))
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		gen, genErr := c.client.Get(ctx, genKey(postID)).Result()
		if genErr != nil && !errors.Is(genErr, redis.Nil) {
			c.logger.Warn("post cache read failed", zap.String("key", genKey(postID)), zap.Error(genErr))
		}
		post, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if genErr == nil || errors.Is(genErr, redis.Nil) {
			c.store(ctx, postID, post, gen)
		}
		return post, nil
	})
	if err != nil {
		return nil, err
	}

	// Callers sharing a flight must not share the struct.
	post := *v.(*models.Post)
	return &post, nil
}

// store writes post under its key if the generation still equals gen.
func (c *PostCache) store(ctx context.Context, postID uuid.UUID, post *models.Post, gen string) {
	data, err := json.Marshal(post)
	if err != nil {
		return
	}
	key, gk := postKey(postID), genKey(postID)

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, gk).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleLoad
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, c.ttl)
			return nil
		})
		return err
	}, gk)

	switch {
	case err == nil:
	case errors.Is(err, errStaleLoad), errors.Is(err, redis.TxFailedErr):
		c.logger.Debug("skipped caching stale post", zap.String("key", key))
	default:
		c.logger.Warn("post cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops the cached post and bumps its generation in one transaction.
func (c *PostCache) Invalidate(ctx context.Context, postID uuid.UUID) {
	gk := genKey(postID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, gk)
		pipe.Expire(ctx, gk, c.generationTTL())
		pipe.Del(ctx, postKey(postID))
		return nil
	})
	if err != nil {
		c.logger.Warn("post cache invalidation failed", zap.Stringer("post_id", postID), zap.Error(err))
	}
}

// generationTTL outlives any cached entry and any load in flight. An expired generation
// reads as empty, which only makes an older load's check fail.
func (c *PostCache) generationTTL() time.Duration {
	return 2*c.ttl + time.Minute
}
