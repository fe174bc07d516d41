package content

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ground-x/feedscore/errs"
	"github.com/ground-x/feedscore/txpipeline"
	"github.com/ground-x/feedscore/types"
)

func TestJoinGroupFeedRejectsPrivateGroup(t *testing.T) {
	r := newFakeReader()
	feedId := types.FeedId{2}
	r.addGroup(feedId, types.GroupFeed{IsPublic: false})

	h := JoinGroupFeedHandler{}
	tx := txpipeline.Transaction{Signer: "eve", Payload: txpipeline.JoinGroupFeedPayload{FeedId: feedId, Address: "eve"}}
	_, err := h.ValidateAndSign(context.Background(), unitOfWork(r), 1, tx)
	require.Error(t, err)
	assert.Equal(t, errs.PermissionDenied, errs.KindOf(err))
}

func TestJoinGroupFeedRejectsBannedAddress(t *testing.T) {
	r := newFakeReader()
	feedId := types.FeedId{2}
	r.addGroup(feedId, types.GroupFeed{IsPublic: true})
	r.addParticipant(feedId, types.Participant{Address: "eve", Role: types.RoleBanned})

	h := JoinGroupFeedHandler{}
	tx := txpipeline.Transaction{Signer: "eve", Payload: txpipeline.JoinGroupFeedPayload{FeedId: feedId, Address: "eve"}}
	_, err := h.ValidateAndSign(context.Background(), unitOfWork(r), 1, tx)
	require.Error(t, err)
	assert.Equal(t, errs.PermissionDenied, errs.KindOf(err))
}

func TestJoinGroupFeedRejectsAlreadyActiveMember(t *testing.T) {
	r := newFakeReader()
	feedId := types.FeedId{2}
	r.addGroup(feedId, types.GroupFeed{IsPublic: true})
	r.addParticipant(feedId, types.Participant{Address: "eve", Role: types.RoleMember})

	h := JoinGroupFeedHandler{}
	tx := txpipeline.Transaction{Signer: "eve", Payload: txpipeline.JoinGroupFeedPayload{FeedId: feedId, Address: "eve"}}
	_, err := h.ValidateAndSign(context.Background(), unitOfWork(r), 1, tx)
	require.Error(t, err)
	assert.Equal(t, errs.FailedPrecondition, errs.KindOf(err))
}

func TestJoinGroupFeedEnforcesRejoinCooldown(t *testing.T) {
	r := newFakeReader()
	feedId := types.FeedId{2}
	r.addGroup(feedId, types.GroupFeed{IsPublic: true})
	leftAt := types.BlockIndex(50)
	r.addParticipant(feedId, types.Participant{
		Address: "eve", Role: types.RoleMember,
		LeftAtBlock: &leftAt, LastLeaveBlock: &leftAt,
	})

	h := JoinGroupFeedHandler{CooldownBlocks: 100}
	tx := txpipeline.Transaction{Signer: "eve", Payload: txpipeline.JoinGroupFeedPayload{FeedId: feedId, Address: "eve"}}

	_, err := h.ValidateAndSign(context.Background(), unitOfWork(r), 60, tx)
	require.Error(t, err)
	assert.Equal(t, errs.FailedPrecondition, errs.KindOf(err))

	vtx, err := h.ValidateAndSign(context.Background(), unitOfWork(r), 151, tx)
	require.NoError(t, err)
	assert.Equal(t, tx.Payload, vtx.Payload)
}

func TestJoinGroupFeedRejectsSignerMismatch(t *testing.T) {
	r := newFakeReader()
	feedId := types.FeedId{2}
	r.addGroup(feedId, types.GroupFeed{IsPublic: true})

	h := JoinGroupFeedHandler{}
	tx := txpipeline.Transaction{Signer: "mallory", Payload: txpipeline.JoinGroupFeedPayload{FeedId: feedId, Address: "eve"}}
	_, err := h.ValidateAndSign(context.Background(), unitOfWork(r), 1, tx)
	require.Error(t, err)
	assert.Equal(t, errs.PermissionDenied, errs.KindOf(err))
}
