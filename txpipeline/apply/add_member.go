package apply

import (
	"context"

	"github.com/ground-x/feedscore/errs"
	"github.com/ground-x/feedscore/events"
	"github.com/ground-x/feedscore/keyrotation"
	"github.com/ground-x/feedscore/storage"
	"github.com/ground-x/feedscore/storage/repo"
	"github.com/ground-x/feedscore/txpipeline"
	"github.com/ground-x/feedscore/types"
)

type AddMemberToGroupFeedHandler struct {
	Rotation *keyrotation.Engine
}

func (AddMemberToGroupFeedHandler) Kind() txpipeline.PayloadKind {
	return txpipeline.KindAddMemberToGroupFeed
}

// Handle adds the member and rotates the group key in the same commit. On
// rotation failure the whole transaction rolls back: the member add is
// undone and the feed's lastBlockIndex is not advanced (spec §4.1.1).
func (h AddMemberToGroupFeedHandler) Handle(ctx context.Context, storageSvc *storage.Service, now types.BlockIndex, vtx txpipeline.ValidatedTransaction) error {
	p := vtx.Payload.(txpipeline.AddMemberToGroupFeedPayload)

	return storageSvc.CreateWritable(ctx, func(rw repo.ReaderWriter) error {
		existing, err := rw.GetParticipantWithHistory(ctx, p.FeedId, p.NewMemberAddr)
		if err != nil {
			return errs.Wrap(errs.Transient, err, "read target participant")
		}
		if existing != nil {
			if err := rw.UpdateParticipantRejoin(ctx, p.FeedId, p.NewMemberAddr, now); err != nil {
				return errs.Wrap(errs.Transient, err, "rejoin participant")
			}
		} else {
			if err := rw.AddParticipant(ctx, types.Participant{
				FeedId: p.FeedId, Address: p.NewMemberAddr, Role: types.RoleMember, JoinedAtBlock: now,
			}); err != nil {
				return errs.Wrap(errs.Transient, err, "add participant")
			}
		}

		joining := p.NewMemberAddr
		if _, err := h.Rotation.TriggerRotation(ctx, rw, p.FeedId, now, types.TriggerJoin, &joining, nil); err != nil {
			return err
		}
		return rw.UpdateFeedBlockIndex(ctx, p.FeedId, now)
	})
}
