package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// FeedCachePrefix is the key prefix for per-user feed caches
	FeedCachePrefix = "feed:user:"

	// FeedCacheCap is the maximum number of posts cached per user
	FeedCacheCap = 500

	// FeedCacheTTL is the TTL for feed cache entries
	FeedCacheTTL = 7 * 24 * time.Hour
)

// PostScore is a post id paired with its creation timestamp, used as the
// sorted-set score so the cache preserves feed ordering. Timestamps are
// Unix microseconds everywhere (scores, events, cursors), so a cursor
// minted by the database path reads back correctly against the cache.
type PostScore struct {
	PostID    int64
	Timestamp int64 // Unix microseconds
}

// FeedCache defines the feed cache operations. An interface so services and
// workers can be tested with in-memory fakes.
type FeedCache interface {
	// AddPost adds a post to a user's feed cache, trimming to the cap.
	AddPost(ctx context.Context, userID, postID int64, timestamp int64) error

	// RemovePost removes a post from a user's feed cache.
	RemovePost(ctx context.Context, userID, postID int64) error

	// GetFeed returns post ids from a user's feed cache, newest first.
	// With a cursor score, only posts strictly older than it are returned.
	GetFeed(ctx context.Context, userID int64, cursorScore *float64, limit int) (postIDs []int64, scores []float64, err error)

	// WarmCache bulk-inserts posts into a user's feed cache.
	WarmCache(ctx context.Context, userID int64, posts []PostScore) error

	// Exists reports whether the user has a feed cache entry. False means
	// new user or expired TTL; the service layer warms the cache then.
	Exists(ctx context.Context, userID int64) (bool, error)
}

// RedisFeedCache implements FeedCache using Redis sorted sets.
type RedisFeedCache struct {
	client *redis.Client
}

// NewFeedCache creates a FeedCache backed by Redis.
func NewFeedCache(client *redis.Client) FeedCache {
	return &RedisFeedCache{client: client}
}

func feedKey(userID int64) string {
	return fmt.Sprintf("%s%d", FeedCachePrefix, userID)
}

// AddPost pipelines ZADD + ZREMRANGEBYRANK (keep the newest FeedCacheCap
// entries) + EXPIRE (refresh TTL).
func (c *RedisFeedCache) AddPost(ctx context.Context, userID, postID int64, timestamp int64) error {
	key := feedKey(userID)

	pipe := c.client.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(timestamp),
		Member: strconv.FormatInt(postID, 10),
	})
	pipe.ZRemRangeByRank(ctx, key, 0, int64(-FeedCacheCap-1))
	pipe.Expire(ctx, key, FeedCacheTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("add post to feed: %w", err)
	}
	return nil
}

func (c *RedisFeedCache) RemovePost(ctx context.Context, userID, postID int64) error {
	member := strconv.FormatInt(postID, 10)
	if err := c.client.ZRem(ctx, feedKey(userID), member).Err(); err != nil {
		return fmt.Errorf("remove post from feed: %w", err)
	}
	return nil
}

// GetFeed reads newest-first. Without a cursor it uses ZREVRANGE; with one it
// uses ZREVRANGEBYSCORE with an exclusive upper bound so pages never overlap.
func (c *RedisFeedCache) GetFeed(ctx context.Context, userID int64, cursorScore *float64, limit int) ([]int64, []float64, error) {
	key := feedKey(userID)

	var results []redis.Z
	var err error
	if cursorScore == nil {
		results, err = c.client.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	} else {
		results, err = c.client.ZRevRangeByScoreWithScores(ctx, key, &redis.ZRangeBy{
			Min:   "-inf",
			Max:   fmt.Sprintf("(%f", *cursorScore),
			Count: int64(limit),
		}).Result()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get feed from cache: %w", err)
	}

	postIDs := make([]int64, 0, len(results))
	scores := make([]float64, 0, len(results))
	for _, z := range results {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			continue
		}
		postIDs = append(postIDs, id)
		scores = append(scores, z.Score)
	}

	return postIDs, scores, nil
}

// WarmCache bulk-inserts with a single pipelined ZADD plus trim and TTL.
func (c *RedisFeedCache) WarmCache(ctx context.Context, userID int64, posts []PostScore) error {
	if len(posts) == 0 {
		return nil
	}
	key := feedKey(userID)

	members := make([]redis.Z, len(posts))
	for i, p := range posts {
		members[i] = redis.Z{
			Score:  float64(p.Timestamp),
			Member: strconv.FormatInt(p.PostID, 10),
		}
	}

	pipe := c.client.Pipeline()
	pipe.ZAdd(ctx, key, members...)
	pipe.ZRemRangeByRank(ctx, key, 0, int64(-FeedCacheCap-1))
	pipe.Expire(ctx, key, FeedCacheTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("warm feed cache: %w", err)
	}
	return nil
}

func (c *RedisFeedCache) Exists(ctx context.Context, userID int64) (bool, error) {
	n, err := c.client.Exists(ctx, feedKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("check feed cache: %w", err)
	}
	return n > 0, nil
}
