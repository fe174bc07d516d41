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

type BanFromGroupFeedHandler struct {
	Rotation *keyrotation.Engine
}

func (BanFromGroupFeedHandler) Kind() txpipeline.PayloadKind { return txpipeline.KindBanFromGroupFeed }

func (h BanFromGroupFeedHandler) Handle(ctx context.Context, storageSvc *storage.Service, now types.BlockIndex, vtx txpipeline.ValidatedTransaction) error {
	p := vtx.Payload.(txpipeline.BanFromGroupFeedPayload)

	return storageSvc.CreateWritable(ctx, func(rw repo.ReaderWriter) error {
		if err := rw.UpdateParticipantType(ctx, p.FeedId, p.TargetAddr, types.RoleBanned); err != nil {
			return errs.Wrap(errs.Transient, err, "ban participant")
		}
		if err := rw.UpdateParticipantLeft(ctx, p.FeedId, p.TargetAddr, now); err != nil {
			return errs.Wrap(errs.Transient, err, "record exclusion")
		}
		leaving := p.TargetAddr
		if _, err := h.Rotation.TriggerRotation(ctx, rw, p.FeedId, now, types.TriggerBan, nil, &leaving); err != nil {
			return err
		}
		return rw.UpdateFeedBlockIndex(ctx, p.FeedId, now)
	})
}
