package cache

import (
	"context"

	"github.com/ground-x/feedscore/storage/repo"
	"github.com/ground-x/feedscore/types"
)

// CachedReader implements repo.Reader by fronting a durable repo.Reader with
// the Overlay. It is the type API handlers and content handlers are handed;
// none of them need to know caching is happening (spec §4.5).
type CachedReader struct {
	durable repo.Reader
	overlay *Overlay
}

func NewCachedReader(durable repo.Reader, overlay *Overlay) *CachedReader {
	return &CachedReader{durable: durable, overlay: overlay}
}

func (c *CachedReader) GetMaxKeyGeneration(ctx context.Context, feedId types.FeedId) (uint32, bool, error) {
	return c.durable.GetMaxKeyGeneration(ctx, feedId)
}

func (c *CachedReader) GetActiveGroupMemberAddresses(ctx context.Context, feedId types.FeedId, at types.BlockIndex) ([]types.Address, error) {
	return c.durable.GetActiveGroupMemberAddresses(ctx, feedId, at)
}

func (c *CachedReader) GetFeedsForAddress(ctx context.Context, addr types.Address) ([]types.Feed, error) {
	feeds, err := c.durable.GetFeedsForAddress(ctx, addr)
	if err != nil {
		return nil, err
	}
	for i := range feeds {
		feeds[i].LastBlockIndex = c.overlay.OverlayLastBlockIndex(ctx, feeds[i].Id, feeds[i].LastBlockIndex)
	}
	return feeds, nil
}

func (c *CachedReader) GetGroupFeedsForAddress(ctx context.Context, addr types.Address) ([]types.GroupFeed, error) {
	feeds, err := c.durable.GetGroupFeedsForAddress(ctx, addr)
	if err != nil {
		return nil, err
	}
	for i := range feeds {
		feeds[i].LastBlockIndex = c.overlay.OverlayLastBlockIndex(ctx, feeds[i].Id, feeds[i].LastBlockIndex)
	}
	return feeds, nil
}

func (c *CachedReader) GetGroupFeed(ctx context.Context, feedId types.FeedId) (*types.GroupFeed, error) {
	gf, err := c.durable.GetGroupFeed(ctx, feedId)
	if err != nil || gf == nil {
		return gf, err
	}
	gf.LastBlockIndex = c.overlay.OverlayLastBlockIndex(ctx, feedId, gf.LastBlockIndex)
	return gf, nil
}

func (c *CachedReader) GetParticipantWithHistory(ctx context.Context, feedId types.FeedId, addr types.Address) (*types.Participant, error) {
	return c.durable.GetParticipantWithHistory(ctx, feedId, addr)
}

func (c *CachedReader) GetPaginatedMessages(ctx context.Context, feedId types.FeedId, sinceBlock types.BlockIndex, limit int, fetchLatest bool, beforeBlock *types.BlockIndex) ([]types.EncryptedMessage, error) {
	// Only the "latest window" query (no beforeBlock, newest-first) is
	// eligible for the tail cache; explicit historical pagination always
	// goes to the durable store.
	if fetchLatest && beforeBlock == nil {
		if cached, ok := c.overlay.GetMessageTail(feedId, sinceBlock); ok {
			if limit > 0 && len(cached) > limit {
				cached = cached[:limit]
			}
			return cached, nil
		}
	}
	msgs, err := c.durable.GetPaginatedMessages(ctx, feedId, sinceBlock, limit, fetchLatest, beforeBlock)
	if err != nil {
		return nil, err
	}
	if fetchLatest && beforeBlock == nil && len(msgs) > 0 {
		origin := msgs[len(msgs)-1].BlockIndex
		for _, m := range msgs {
			if m.BlockIndex < origin {
				origin = m.BlockIndex
			}
		}
		c.overlay.PutMessageTail(feedId, origin, msgs)
	}
	return msgs, nil
}

func (c *CachedReader) GetMessageById(ctx context.Context, feedId types.FeedId, messageId types.MessageId) (*types.EncryptedMessage, error) {
	return c.durable.GetMessageById(ctx, feedId, messageId)
}

func (c *CachedReader) IsAdmin(ctx context.Context, feedId types.FeedId, addr types.Address) (bool, error) {
	if isAdmin, _, ok := c.overlay.GetMembership(feedId, addr); ok {
		return isAdmin, nil
	}
	isAdmin, err := c.durable.IsAdmin(ctx, feedId, addr)
	if err != nil {
		return false, err
	}
	isActive, err := c.durable.IsUserParticipantOfFeed(ctx, feedId, addr)
	if err != nil {
		return false, err
	}
	c.overlay.PutMembership(feedId, addr, isAdmin, isActive)
	return isAdmin, nil
}

func (c *CachedReader) IsUserParticipantOfFeed(ctx context.Context, feedId types.FeedId, addr types.Address) (bool, error) {
	if _, isActive, ok := c.overlay.GetMembership(feedId, addr); ok {
		return isActive, nil
	}
	isActive, err := c.durable.IsUserParticipantOfFeed(ctx, feedId, addr)
	if err != nil {
		return false, err
	}
	isAdmin, err := c.durable.IsAdmin(ctx, feedId, addr)
	if err != nil {
		return false, err
	}
	c.overlay.PutMembership(feedId, addr, isAdmin, isActive)
	return isActive, nil
}

func (c *CachedReader) GetAllKeyGenerations(ctx context.Context, feedId types.FeedId) ([]types.KeyGeneration, error) {
	gens, err := c.durable.GetAllKeyGenerations(ctx, feedId)
	if err != nil {
		return nil, err
	}
	for _, g := range gens {
		for _, wk := range g.EncryptedKeys {
			c.overlay.PutWrappedKey(feedId, g.Version, wk.MemberAddress, wk.Ciphertext)
		}
	}
	return gens, nil
}

// GetWrappedKeysForUser answers getKeyGenerations(feedId, userAddress) (spec
// §4.6): the durable GetWrappedKeysForUser (one query scoped to addr) lists
// the versions addr holds a key for; each ciphertext is then served from the
// per-(version, address) cache when present and cached otherwise. The
// durable store is read on every call.
func (c *CachedReader) GetWrappedKeysForUser(ctx context.Context, feedId types.FeedId, addr types.Address) ([]types.WrappedKey, error) {
	wrapped, err := c.durable.GetWrappedKeysForUser(ctx, feedId, addr)
	if err != nil {
		return nil, err
	}
	out := make([]types.WrappedKey, 0, len(wrapped))
	for _, wk := range wrapped {
		if ct, ok := c.overlay.GetWrappedKey(feedId, wk.Version, addr); ok {
			wk.Ciphertext = ct
		} else {
			c.overlay.PutWrappedKey(feedId, wk.Version, addr, wk.Ciphertext)
		}
		out = append(out, wk)
	}
	return out, nil
}

func (c *CachedReader) GetReadPositionsForUser(ctx context.Context, addr types.Address) ([]types.ReadPosition, error) {
	positions, err := c.durable.GetReadPositionsForUser(ctx, addr)
	if err != nil {
		// Graceful cache failure rule applies symmetrically here: if the
		// durable read itself fails we still must not error the whole
		// listing (spec §4.5) — return an empty set, the API layer
		// defaults each feed's bookmark to 0.
		return nil, nil
	}
	return positions, nil
}

func (c *CachedReader) GetAllLastBlockIndexes(ctx context.Context) (map[types.FeedId]types.BlockIndex, error) {
	durableIdx, err := c.durable.GetAllLastBlockIndexes(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[types.FeedId]types.BlockIndex, len(durableIdx))
	for feedId, at := range durableIdx {
		out[feedId] = c.overlay.OverlayLastBlockIndex(ctx, feedId, at)
	}
	return out, nil
}

func (c *CachedReader) GetAttachmentById(ctx context.Context, id types.AttachmentId) (*types.Attachment, error) {
	return c.durable.GetAttachmentById(ctx, id)
}
