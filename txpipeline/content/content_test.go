package content

import (
	"context"
	"testing"

	"github.com/ground-x/feedscore/storage"
	"github.com/ground-x/feedscore/types"
)

// fakeReader is a minimal repo.Reader fixture: only the handful of fields
// each test populates are consulted, the rest return zero values.
type fakeReader struct {
	groups       map[types.FeedId]*types.GroupFeed
	participants map[types.FeedId]map[types.Address]*types.Participant
	admins       map[types.Address]bool
}

func newFakeReader() *fakeReader {
	return &fakeReader{
		groups:       map[types.FeedId]*types.GroupFeed{},
		participants: map[types.FeedId]map[types.Address]*types.Participant{},
		admins:       map[types.Address]bool{},
	}
}

func (r *fakeReader) GetMaxKeyGeneration(ctx context.Context, feedId types.FeedId) (uint32, bool, error) {
	return 0, false, nil
}
func (r *fakeReader) GetActiveGroupMemberAddresses(ctx context.Context, feedId types.FeedId, at types.BlockIndex) ([]types.Address, error) {
	return nil, nil
}
func (r *fakeReader) GetFeedsForAddress(ctx context.Context, addr types.Address) ([]types.Feed, error) {
	return nil, nil
}
func (r *fakeReader) GetGroupFeedsForAddress(ctx context.Context, addr types.Address) ([]types.GroupFeed, error) {
	return nil, nil
}
func (r *fakeReader) GetGroupFeed(ctx context.Context, feedId types.FeedId) (*types.GroupFeed, error) {
	return r.groups[feedId], nil
}
func (r *fakeReader) GetParticipantWithHistory(ctx context.Context, feedId types.FeedId, addr types.Address) (*types.Participant, error) {
	byFeed, ok := r.participants[feedId]
	if !ok {
		return nil, nil
	}
	return byFeed[addr], nil
}
func (r *fakeReader) GetPaginatedMessages(ctx context.Context, feedId types.FeedId, sinceBlock types.BlockIndex, limit int, fetchLatest bool, beforeBlock *types.BlockIndex) ([]types.EncryptedMessage, error) {
	return nil, nil
}
func (r *fakeReader) GetMessageById(ctx context.Context, feedId types.FeedId, messageId types.MessageId) (*types.EncryptedMessage, error) {
	return nil, nil
}
func (r *fakeReader) IsAdmin(ctx context.Context, feedId types.FeedId, addr types.Address) (bool, error) {
	return r.admins[addr], nil
}
func (r *fakeReader) IsUserParticipantOfFeed(ctx context.Context, feedId types.FeedId, addr types.Address) (bool, error) {
	return false, nil
}
func (r *fakeReader) GetAllKeyGenerations(ctx context.Context, feedId types.FeedId) ([]types.KeyGeneration, error) {
	return nil, nil
}
func (r *fakeReader) GetWrappedKeysForUser(ctx context.Context, feedId types.FeedId, addr types.Address) ([]types.WrappedKey, error) {
	return nil, nil
}
func (r *fakeReader) GetReadPositionsForUser(ctx context.Context, addr types.Address) ([]types.ReadPosition, error) {
	return nil, nil
}
func (r *fakeReader) GetAllLastBlockIndexes(ctx context.Context) (map[types.FeedId]types.BlockIndex, error) {
	return nil, nil
}
func (r *fakeReader) GetAttachmentById(ctx context.Context, id types.AttachmentId) (*types.Attachment, error) {
	return nil, nil
}

func unitOfWork(r *fakeReader) *storage.UnitOfWork {
	return &storage.UnitOfWork{Reader: r}
}

func (r *fakeReader) addGroup(id types.FeedId, gf types.GroupFeed) {
	gf.Id = id
	r.groups[id] = &gf
}

func (r *fakeReader) addParticipant(feedId types.FeedId, p types.Participant) {
	if r.participants[feedId] == nil {
		r.participants[feedId] = map[types.Address]*types.Participant{}
	}
	r.participants[feedId][p.Address] = &p
	if p.Role == types.RoleAdmin {
		r.admins[p.Address] = true
	}
}
