package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/powerhour/internal/model"
	"github.com/Nixie-Tech-LLC/powerhour/internal/random"
	"github.com/Nixie-Tech-LLC/powerhour/internal/redis"
)

const keyPrefix = "powerhour:catalog"

// Cache keeps search results and playlist membership in Redis so repeated
// searches don't burn API quota. Video metadata is always fetched live.
// Redis failures fall through to the wrapped catalog.
type Cache struct {
	next Catalog
	rdb  goredis.Cmdable
	ttl  time.Duration
	src  random.Source
}

var _ Catalog = (*Cache)(nil)

func NewCache(next Catalog, rdb goredis.Cmdable, ttl time.Duration, src random.Source) *Cache {
	return &Cache{next: next, rdb: rdb, ttl: ttl, src: src}
}

func searchKey(query string) string {
	return fmt.Sprintf("%s:search:%s", keyPrefix, strings.ToLower(strings.TrimSpace(query)))
}

func membersKey(playlistID string) string {
	return fmt.Sprintf("%s:playlist:%s:videos", keyPrefix, playlistID)
}

func playlistKey(playlistID string) string {
	return fmt.Sprintf("%s:playlist:%s", keyPrefix, playlistID)
}

func (c *Cache) load(ctx context.Context, key string, dst any) bool {
	found, err := redis.GetJSON(ctx, c.rdb, key, dst)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("[catalog] cache read failed")
		return false
	}
	if found {
		log.Debug().Str("key", key).Msg("[catalog] cache hit")
	}
	return found
}

func (c *Cache) store(ctx context.Context, key string, value any) {
	if err := redis.SetJSON(ctx, c.rdb, key, value, c.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("[catalog] cache write failed")
	}
}

func (c *Cache) SearchPlaylists(ctx context.Context, query string) ([]model.PlaylistSummary, error) {
	key := searchKey(query)
	var cached []model.PlaylistSummary
	if c.load(ctx, key, &cached) {
		return cached, nil
	}
	out, err := c.next.SearchPlaylists(ctx, query)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, out)
	return out, nil
}

func (c *Cache) PlaylistVideoIDs(ctx context.Context, playlistID string) ([]string, error) {
	key := membersKey(playlistID)
	var cached []string
	if c.load(ctx, key, &cached) {
		return random.Shuffle(c.src, cached), nil
	}
	ids, err := c.next.PlaylistVideoIDs(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, ids)
	return ids, nil
}

func (c *Cache) Videos(ctx context.Context, ids []string, eligible func(model.RawVideo) bool) ([]model.RawVideo, error) {
	return c.next.Videos(ctx, ids, eligible)
}

func (c *Cache) Playlist(ctx context.Context, playlistID string) (model.PlaylistSummary, bool, error) {
	key := playlistKey(playlistID)
	var cached model.PlaylistSummary
	if c.load(ctx, key, &cached) {
		return cached, true, nil
	}
	s, ok, err := c.next.Playlist(ctx, playlistID)
	if err != nil || !ok {
		return s, ok, err
	}
	c.store(ctx, key, s)
	return s, true, nil
}
