package apply

import (
	"context"

	"github.com/ground-x/feedscore/errs"
	"github.com/ground-x/feedscore/storage"
	"github.com/ground-x/feedscore/storage/repo"
	"github.com/ground-x/feedscore/txpipeline"
	"github.com/ground-x/feedscore/types"
)

type PromoteToAdminHandler struct{}

func (PromoteToAdminHandler) Kind() txpipeline.PayloadKind { return txpipeline.KindPromoteToAdmin }

func (PromoteToAdminHandler) Handle(ctx context.Context, storageSvc *storage.Service, now types.BlockIndex, vtx txpipeline.ValidatedTransaction) error {
	p := vtx.Payload.(txpipeline.PromoteToAdminPayload)

	return storageSvc.CreateWritable(ctx, func(rw repo.ReaderWriter) error {
		if err := rw.UpdateParticipantType(ctx, p.FeedId, p.TargetAddr, types.RoleAdmin); err != nil {
			return errs.Wrap(errs.Transient, err, "promote participant")
		}
		return rw.UpdateFeedBlockIndex(ctx, p.FeedId, now)
	})
}
