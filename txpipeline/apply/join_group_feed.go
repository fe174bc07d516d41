package apply

import (
	"context"

	"github.com/ground-x/feedscore/errs"
	"github.com/ground-x/feedscore/keyrotation"
	"github.com/ground-x/feedscore/storage"
	"github.com/ground-x/feedscore/storage/repo"
	"github.com/ground-x/feedscore/txpipeline"
	"github.com/ground-x/feedscore/types"
)

type JoinGroupFeedHandler struct {
	Rotation *keyrotation.Engine
}

func (JoinGroupFeedHandler) Kind() txpipeline.PayloadKind { return txpipeline.KindJoinGroupFeed }

func (h JoinGroupFeedHandler) Handle(ctx context.Context, storageSvc *storage.Service, now types.BlockIndex, vtx txpipeline.ValidatedTransaction) error {
	p := vtx.Payload.(txpipeline.JoinGroupFeedPayload)

	return storageSvc.CreateWritable(ctx, func(rw repo.ReaderWriter) error {
		existing, err := rw.GetParticipantWithHistory(ctx, p.FeedId, p.Address)
		if err != nil {
			return errs.Wrap(errs.Transient, err, "read participant")
		}
		if existing != nil {
			if err := rw.UpdateParticipantRejoin(ctx, p.FeedId, p.Address, now); err != nil {
				return errs.Wrap(errs.Transient, err, "rejoin participant")
			}
		} else {
			if err := rw.AddParticipant(ctx, types.Participant{
				FeedId: p.FeedId, Address: p.Address, Role: types.RoleMember, JoinedAtBlock: now,
			}); err != nil {
				return errs.Wrap(errs.Transient, err, "add participant")
			}
		}

		joining := p.Address
		if _, err := h.Rotation.TriggerRotation(ctx, rw, p.FeedId, now, types.TriggerJoin, &joining, nil); err != nil {
			return err
		}
		return rw.UpdateFeedBlockIndex(ctx, p.FeedId, now)
	})
}
