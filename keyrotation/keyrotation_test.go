package keyrotation

import (
	"context"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ground-x/feedscore/errs"
	"github.com/ground-x/feedscore/types"
)

// fakeRepo is a minimal in-memory repo.ReaderWriter covering exactly what a
// single feed's rotation touches; every other method is unused by the
// engine and returns a zero value.
type fakeRepo struct {
	members     []types.Address
	generations []types.KeyGeneration
	current     uint32
	exists      bool
}

func (r *fakeRepo) GetMaxKeyGeneration(ctx context.Context, feedId types.FeedId) (uint32, bool, error) {
	return r.current, r.exists, nil
}
func (r *fakeRepo) GetActiveGroupMemberAddresses(ctx context.Context, feedId types.FeedId, at types.BlockIndex) ([]types.Address, error) {
	return r.members, nil
}
func (r *fakeRepo) GetFeedsForAddress(ctx context.Context, addr types.Address) ([]types.Feed, error) {
	return nil, nil
}
func (r *fakeRepo) GetGroupFeedsForAddress(ctx context.Context, addr types.Address) ([]types.GroupFeed, error) {
	return nil, nil
}
func (r *fakeRepo) GetGroupFeed(ctx context.Context, feedId types.FeedId) (*types.GroupFeed, error) {
	return nil, nil
}
func (r *fakeRepo) GetParticipantWithHistory(ctx context.Context, feedId types.FeedId, addr types.Address) (*types.Participant, error) {
	return nil, nil
}
func (r *fakeRepo) GetPaginatedMessages(ctx context.Context, feedId types.FeedId, sinceBlock types.BlockIndex, limit int, fetchLatest bool, beforeBlock *types.BlockIndex) ([]types.EncryptedMessage, error) {
	return nil, nil
}
func (r *fakeRepo) GetMessageById(ctx context.Context, feedId types.FeedId, messageId types.MessageId) (*types.EncryptedMessage, error) {
	return nil, nil
}
func (r *fakeRepo) IsAdmin(ctx context.Context, feedId types.FeedId, addr types.Address) (bool, error) {
	return false, nil
}
func (r *fakeRepo) IsUserParticipantOfFeed(ctx context.Context, feedId types.FeedId, addr types.Address) (bool, error) {
	return false, nil
}
func (r *fakeRepo) GetAllKeyGenerations(ctx context.Context, feedId types.FeedId) ([]types.KeyGeneration, error) {
	return r.generations, nil
}
func (r *fakeRepo) GetWrappedKeysForUser(ctx context.Context, feedId types.FeedId, addr types.Address) ([]types.WrappedKey, error) {
	var out []types.WrappedKey
	for _, g := range r.generations {
		for _, wk := range g.EncryptedKeys {
			if wk.MemberAddress == addr {
				out = append(out, wk)
			}
		}
	}
	return out, nil
}
func (r *fakeRepo) GetReadPositionsForUser(ctx context.Context, addr types.Address) ([]types.ReadPosition, error) {
	return nil, nil
}
func (r *fakeRepo) GetAllLastBlockIndexes(ctx context.Context) (map[types.FeedId]types.BlockIndex, error) {
	return nil, nil
}
func (r *fakeRepo) GetAttachmentById(ctx context.Context, id types.AttachmentId) (*types.Attachment, error) {
	return nil, nil
}
func (r *fakeRepo) CreateGroupFeed(ctx context.Context, group types.GroupFeed, participants []types.Participant) error {
	return nil
}
func (r *fakeRepo) AddParticipant(ctx context.Context, p types.Participant) error { return nil }
func (r *fakeRepo) UpdateParticipantRejoin(ctx context.Context, feedId types.FeedId, addr types.Address, joinedAtBlock types.BlockIndex) error {
	return nil
}
func (r *fakeRepo) UpdateParticipantType(ctx context.Context, feedId types.FeedId, addr types.Address, role types.ParticipantRole) error {
	return nil
}
func (r *fakeRepo) UpdateParticipantLeft(ctx context.Context, feedId types.FeedId, addr types.Address, leftAtBlock types.BlockIndex) error {
	return nil
}
func (r *fakeRepo) CreateKeyRotation(ctx context.Context, gen types.KeyGeneration) error {
	r.generations = append(r.generations, gen)
	return nil
}
func (r *fakeRepo) UpdateCurrentKeyGeneration(ctx context.Context, feedId types.FeedId, version uint32) error {
	r.current = version
	return nil
}
func (r *fakeRepo) UpdateFeedBlockIndex(ctx context.Context, feedId types.FeedId, at types.BlockIndex) error {
	return nil
}
func (r *fakeRepo) CreateFeedMessage(ctx context.Context, msg types.EncryptedMessage) error {
	return nil
}
func (r *fakeRepo) UpdateGroupFeedTitle(ctx context.Context, feedId types.FeedId, title string) error {
	return nil
}
func (r *fakeRepo) UpdateGroupFeedDescription(ctx context.Context, feedId types.FeedId, description string) error {
	return nil
}
func (r *fakeRepo) DeleteGroupFeed(ctx context.Context, feedId types.FeedId) error { return nil }
func (r *fakeRepo) UpsertReadPosition(ctx context.Context, pos types.ReadPosition) error {
	return nil
}

// fakeIdentity hands out a fresh secp256k1 public key per address on first
// use, stable across calls for the same address.
type fakeIdentity struct {
	keys map[types.Address]types.EncryptKey
}

func newFakeIdentity() *fakeIdentity { return &fakeIdentity{keys: map[types.Address]types.EncryptKey{}} }

func (f *fakeIdentity) EncryptKeyFor(ctx context.Context, addr types.Address) (types.EncryptKey, error) {
	if k, ok := f.keys[addr]; ok {
		return k, nil
	}
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return "", err
	}
	k := types.EncryptKey(priv.PubKey().SerializeUncompressed())
	f.keys[addr] = k
	return k, nil
}

func TestTriggerRotationWrapsKeyForEveryActiveMember(t *testing.T) {
	repo := &fakeRepo{members: []types.Address{"alice", "bob"}, current: 3, exists: true}
	ids := newFakeIdentity()
	engine := NewEngine(ids, 10)

	gen, err := engine.TriggerRotation(context.Background(), repo, types.FeedId{}, 100, types.TriggerManual, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), gen.Version)
	assert.Len(t, gen.EncryptedKeys, 2)
	assert.Equal(t, uint32(4), repo.current)
}

func TestTriggerRotationAppliesJoinAndLeaveDelta(t *testing.T) {
	repo := &fakeRepo{members: []types.Address{"alice", "bob"}, current: 0, exists: true}
	ids := newFakeIdentity()
	engine := NewEngine(ids, 10)

	joining := types.Address("carol")
	leaving := types.Address("bob")
	gen, err := engine.TriggerRotation(context.Background(), repo, types.FeedId{}, 1, types.TriggerJoin, &joining, &leaving)
	require.NoError(t, err)

	addrs := make([]string, 0, len(gen.EncryptedKeys))
	for _, wk := range gen.EncryptedKeys {
		addrs = append(addrs, string(wk.MemberAddress))
	}
	assert.ElementsMatch(t, []string{"alice", "carol"}, addrs)
}

func TestTriggerRotationRejectsEmptyMemberSet(t *testing.T) {
	repo := &fakeRepo{members: []types.Address{"alice"}, current: 0, exists: true}
	ids := newFakeIdentity()
	engine := NewEngine(ids, 10)

	leaving := types.Address("alice")
	_, err := engine.TriggerRotation(context.Background(), repo, types.FeedId{}, 1, types.TriggerLeave, nil, &leaving)
	require.Error(t, err)
	assert.Equal(t, errs.FailedPrecondition, errs.KindOf(err))
}

func TestTriggerRotationRejectsOverCapacity(t *testing.T) {
	repo := &fakeRepo{members: []types.Address{"alice", "bob"}, current: 0, exists: true}
	ids := newFakeIdentity()
	engine := NewEngine(ids, 1)

	_, err := engine.TriggerRotation(context.Background(), repo, types.FeedId{}, 1, types.TriggerManual, nil, nil)
	require.Error(t, err)
	assert.Equal(t, errs.Capacity, errs.KindOf(err))
}

func TestTriggerRotationRejectsMissingGroup(t *testing.T) {
	repo := &fakeRepo{exists: false}
	ids := newFakeIdentity()
	engine := NewEngine(ids, 10)

	_, err := engine.TriggerRotation(context.Background(), repo, types.FeedId{}, 1, types.TriggerManual, nil, nil)
	require.Error(t, err)
	assert.Equal(t, errs.NotFound, errs.KindOf(err))
}

func TestNewEngineFallsBackToDefaultMaxMembers(t *testing.T) {
	engine := NewEngine(newFakeIdentity(), 0)
	assert.Equal(t, DefaultMaxGroupMembers, engine.maxGroupMembers)
}

func TestInGraceWindow(t *testing.T) {
	// current generation is always accepted.
	assert.True(t, InGraceWindow(5, 5, 100, 100, 4))
	// one generation back, within the window.
	assert.True(t, InGraceWindow(4, 5, 100, 102, 4))
	// one generation back, exactly at the boundary.
	assert.True(t, InGraceWindow(4, 5, 100, 104, 4))
	// one generation back, past the boundary.
	assert.False(t, InGraceWindow(4, 5, 100, 105, 4))
	// more than one generation back is never accepted.
	assert.False(t, InGraceWindow(3, 5, 100, 101, 4))
}
