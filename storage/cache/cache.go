// Package cache implements the best-effort overlay in front of the durable
// store (spec §4.5). It is purely an optimization: any cache failure is
// logged and swallowed, never propagated to the caller, and correctness
// never depends on the cache holding anything. Three teacher-grounded
// layers do different jobs:
//
//   - redis (go-redis/v7) is the shared, cross-process cache — the one whose
//     value can race ahead of the durable store and must win on overlay.
//   - golang-lru is a process-local memoization layer for cheap repeated
//     checks (admin/participant membership, message-pagination tails).
//   - fastcache is a process-local byte-oriented cache for wrapped-key blobs,
//     which are opaque ciphertext and benefit from its zero-GC byte storage.
package cache

import (
	"context"
	"fmt"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/go-redis/redis/v7"
	lru "github.com/hashicorp/golang-lru"

	flog "github.com/ground-x/feedscore/log"
	"github.com/ground-x/feedscore/metrics"
	"github.com/ground-x/feedscore/types"
)

var logger = flog.NewModuleLogger(flog.Cache)

// messageTail is a cached, contiguous window of the newest messages of a
// feed, starting at block Origin. It can only answer a pagination request
// whose sinceBlock is >= Origin (spec §4.5 gap detection); older requests
// are a gap and fall through to the durable store.
type messageTail struct {
	Origin   types.BlockIndex
	Messages []types.EncryptedMessage
}

// Overlay bundles the three cache layers and the cross-cutting overlay
// rules (max-wins on lastBlockIndex, cache-aside population, empty results
// never cached).
type Overlay struct {
	redis    *redis.Client
	local    *lru.Cache // membership + message tail memoization
	keyBytes *fastcache.Cache
}

const localCacheSize = 8192

func New(redisAddr string) (*Overlay, error) {
	local, err := lru.New(localCacheSize)
	if err != nil {
		return nil, err
	}
	var client *redis.Client
	if redisAddr != "" {
		client = redis.NewClient(&redis.Options{Addr: redisAddr})
	}
	return &Overlay{
		redis:    client,
		local:    local,
		keyBytes: fastcache.New(32 * 1024 * 1024),
	}, nil
}

// --- lastBlockIndex overlay (spec §4.5, §8 overlay-maximum property) ---

func lastBlockKey(feedId types.FeedId) string { return "feeds:lastblock:" + feedId.String() }

// GetLastBlockIndex returns the cached value for feedId, if any.
func (o *Overlay) GetLastBlockIndex(ctx context.Context, feedId types.FeedId) (types.BlockIndex, bool) {
	if o.redis == nil {
		return 0, false
	}
	val, err := o.redis.Get(lastBlockKey(feedId)).Uint64()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("cache read failed", "op", "GetLastBlockIndex", "err", err)
			metrics.CacheResult.WithLabelValues("lastBlockIndex", "error").Inc()
		} else {
			metrics.CacheResult.WithLabelValues("lastBlockIndex", "miss").Inc()
		}
		return 0, false
	}
	metrics.CacheResult.WithLabelValues("lastBlockIndex", "hit").Inc()
	return types.BlockIndex(val), true
}

// PutLastBlockIndex writes through only if the new value is higher than
// whatever is cached, so a slow writer never regresses a fresher value
// (the overlay's max-wins rule applies on read, but keeping the cache
// itself monotonic avoids needless oscillation).
func (o *Overlay) PutLastBlockIndex(ctx context.Context, feedId types.FeedId, at types.BlockIndex) {
	if o.redis == nil {
		return
	}
	if cur, ok := o.GetLastBlockIndex(ctx, feedId); ok && cur >= at {
		return
	}
	if err := o.redis.Set(lastBlockKey(feedId), uint64(at), 0).Err(); err != nil {
		logger.Warn("cache write failed", "op", "PutLastBlockIndex", "err", err)
	}
}

// Overlay combines a durable value with whatever the cache holds: the
// maximum of the two wins, per spec §4.5/§8.
func (o *Overlay) OverlayLastBlockIndex(ctx context.Context, feedId types.FeedId, durable types.BlockIndex) types.BlockIndex {
	cached, ok := o.GetLastBlockIndex(ctx, feedId)
	if ok && cached > durable {
		return cached
	}
	return durable
}

// --- read position overlay (spec §4.5: zero bookmark on any failure) ---

func readPosKey(addr types.Address, feedId types.FeedId) string {
	return fmt.Sprintf("feeds:readpos:%s:%s", addr, feedId.String())
}

func (o *Overlay) GetReadPosition(ctx context.Context, addr types.Address, feedId types.FeedId) types.BlockIndex {
	if o.redis == nil {
		return 0
	}
	val, err := o.redis.Get(readPosKey(addr, feedId)).Uint64()
	if err != nil {
		metrics.CacheResult.WithLabelValues("readPosition", resultLabel(err)).Inc()
		return 0
	}
	metrics.CacheResult.WithLabelValues("readPosition", "hit").Inc()
	return types.BlockIndex(val)
}

func (o *Overlay) PutReadPosition(ctx context.Context, addr types.Address, feedId types.FeedId, at types.BlockIndex) {
	if o.redis == nil {
		return
	}
	if err := o.redis.Set(readPosKey(addr, feedId), uint64(at), 0).Err(); err != nil {
		logger.Warn("cache write failed", "op", "PutReadPosition", "err", err)
	}
}

// --- membership / admin memoization (golang-lru, process-local) ---

type membershipKey struct {
	feedId types.FeedId
	addr   types.Address
}

func (o *Overlay) GetMembership(feedId types.FeedId, addr types.Address) (isAdmin, isActive bool, ok bool) {
	v, found := o.local.Get(membershipKey{feedId, addr})
	if !found {
		return false, false, false
	}
	m := v.([2]bool)
	return m[0], m[1], true
}

func (o *Overlay) PutMembership(feedId types.FeedId, addr types.Address, isAdmin, isActive bool) {
	o.local.Add(membershipKey{feedId, addr}, [2]bool{isAdmin, isActive})
}

func (o *Overlay) InvalidateMembership(feedId types.FeedId, addr types.Address) {
	o.local.Remove(membershipKey{feedId, addr})
}

// --- key generation overlay (fastcache, opaque wrapped-key bytes) ---

func wrappedKeyCacheKey(feedId types.FeedId, version uint32, addr types.Address) []byte {
	return []byte(fmt.Sprintf("%s:%d:%s", feedId.String(), version, addr))
}

func (o *Overlay) GetWrappedKey(feedId types.FeedId, version uint32, addr types.Address) ([]byte, bool) {
	v, ok := o.keyBytes.HasGet(nil, wrappedKeyCacheKey(feedId, version, addr))
	if !ok {
		metrics.CacheResult.WithLabelValues("wrappedKey", "miss").Inc()
		return nil, false
	}
	metrics.CacheResult.WithLabelValues("wrappedKey", "hit").Inc()
	return v, true
}

func (o *Overlay) PutWrappedKey(feedId types.FeedId, version uint32, addr types.Address, ciphertext []byte) {
	if len(ciphertext) == 0 {
		return // empty results/values are never cached
	}
	o.keyBytes.Set(wrappedKeyCacheKey(feedId, version, addr), ciphertext)
}

// --- message pagination tail (golang-lru, gap-detected) ---

func (o *Overlay) GetMessageTail(feedId types.FeedId, sinceBlock types.BlockIndex) ([]types.EncryptedMessage, bool) {
	v, ok := o.local.Get(tailKey(feedId))
	if !ok {
		return nil, false
	}
	tail := v.(messageTail)
	if sinceBlock < tail.Origin {
		// Gap: the cache doesn't go back far enough to answer this request.
		return nil, false
	}
	out := make([]types.EncryptedMessage, 0, len(tail.Messages))
	for _, m := range tail.Messages {
		if m.BlockIndex >= sinceBlock {
			out = append(out, m)
		}
	}
	return out, true
}

func (o *Overlay) PutMessageTail(feedId types.FeedId, origin types.BlockIndex, messages []types.EncryptedMessage) {
	if len(messages) == 0 {
		return
	}
	o.local.Add(tailKey(feedId), messageTail{Origin: origin, Messages: messages})
}

func tailKey(feedId types.FeedId) string { return "tail:" + feedId.String() }

func resultLabel(err error) string {
	if err == redis.Nil {
		return "miss"
	}
	return "error"
}
