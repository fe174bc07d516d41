package apply

import (
	"context"

	"github.com/ground-x/feedscore/errs"
	"github.com/ground-x/feedscore/storage"
	"github.com/ground-x/feedscore/storage/repo"
	"github.com/ground-x/feedscore/txpipeline"
	"github.com/ground-x/feedscore/types"
)

type BlockMemberHandler struct{}

func (BlockMemberHandler) Kind() txpipeline.PayloadKind { return txpipeline.KindBlockMember }

func (BlockMemberHandler) Handle(ctx context.Context, storageSvc *storage.Service, now types.BlockIndex, vtx txpipeline.ValidatedTransaction) error {
	p := vtx.Payload.(txpipeline.BlockMemberPayload)

	return storageSvc.CreateWritable(ctx, func(rw repo.ReaderWriter) error {
		if err := rw.UpdateParticipantType(ctx, p.FeedId, p.TargetAddr, types.RoleBlocked); err != nil {
			return errs.Wrap(errs.Transient, err, "block participant")
		}
		return rw.UpdateFeedBlockIndex(ctx, p.FeedId, now)
	})
}
