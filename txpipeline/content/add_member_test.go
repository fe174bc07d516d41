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

func TestAddMemberRejectsNonAdminRequester(t *testing.T) {
	r := newFakeReader()
	feedId := types.FeedId{1}
	r.addGroup(feedId, types.GroupFeed{})
	r.addParticipant(feedId, types.Participant{Address: "alice", Role: types.RoleMember})

	h := AddMemberToGroupFeedHandler{}
	tx := txpipeline.Transaction{
		Signer: "alice",
		Payload: txpipeline.AddMemberToGroupFeedPayload{
			FeedId: feedId, RequesterAddr: "alice", NewMemberAddr: "carol",
		},
	}
	_, err := h.ValidateAndSign(context.Background(), unitOfWork(r), 1, tx)
	require.Error(t, err)
	assert.Equal(t, errs.PermissionDenied, errs.KindOf(err))
}

func TestAddMemberRejectsBannedTarget(t *testing.T) {
	r := newFakeReader()
	feedId := types.FeedId{1}
	r.addGroup(feedId, types.GroupFeed{})
	r.addParticipant(feedId, types.Participant{Address: "admin", Role: types.RoleAdmin})
	r.addParticipant(feedId, types.Participant{Address: "carol", Role: types.RoleBanned})

	h := AddMemberToGroupFeedHandler{}
	tx := txpipeline.Transaction{
		Signer: "admin",
		Payload: txpipeline.AddMemberToGroupFeedPayload{
			FeedId: feedId, RequesterAddr: "admin", NewMemberAddr: "carol",
		},
	}
	_, err := h.ValidateAndSign(context.Background(), unitOfWork(r), 1, tx)
	require.Error(t, err)
	assert.Equal(t, errs.FailedPrecondition, errs.KindOf(err))
}

func TestAddMemberAcceptsAdminAddingNewAddress(t *testing.T) {
	r := newFakeReader()
	feedId := types.FeedId{1}
	r.addGroup(feedId, types.GroupFeed{})
	r.addParticipant(feedId, types.Participant{Address: "admin", Role: types.RoleAdmin})

	h := AddMemberToGroupFeedHandler{}
	tx := txpipeline.Transaction{
		Signer: "admin",
		Payload: txpipeline.AddMemberToGroupFeedPayload{
			FeedId: feedId, RequesterAddr: "admin", NewMemberAddr: "dave",
		},
	}
	vtx, err := h.ValidateAndSign(context.Background(), unitOfWork(r), 1, tx)
	require.NoError(t, err)
	assert.Equal(t, tx.Payload, vtx.Payload)
}

func TestAddMemberRejectsSignerMismatch(t *testing.T) {
	r := newFakeReader()
	feedId := types.FeedId{1}
	r.addGroup(feedId, types.GroupFeed{})
	r.addParticipant(feedId, types.Participant{Address: "admin", Role: types.RoleAdmin})

	h := AddMemberToGroupFeedHandler{}
	tx := txpipeline.Transaction{
		Signer: "someone-else",
		Payload: txpipeline.AddMemberToGroupFeedPayload{
			FeedId: feedId, RequesterAddr: "admin", NewMemberAddr: "dave",
		},
	}
	_, err := h.ValidateAndSign(context.Background(), unitOfWork(r), 1, tx)
	require.Error(t, err)
	assert.Equal(t, errs.PermissionDenied, errs.KindOf(err))
}
