package apply

import (
	"context"

	"github.com/ground-x/feedscore/errs"
	"github.com/ground-x/feedscore/storage"
	"github.com/ground-x/feedscore/storage/repo"
	"github.com/ground-x/feedscore/txpipeline"
	"github.com/ground-x/feedscore/types"
)

type UpdateGroupFeedTitleHandler struct{}

func (UpdateGroupFeedTitleHandler) Kind() txpipeline.PayloadKind {
	return txpipeline.KindUpdateGroupFeedTitle
}

func (UpdateGroupFeedTitleHandler) Handle(ctx context.Context, storageSvc *storage.Service, now types.BlockIndex, vtx txpipeline.ValidatedTransaction) error {
	p := vtx.Payload.(txpipeline.UpdateGroupFeedTitlePayload)

	return storageSvc.CreateWritable(ctx, func(rw repo.ReaderWriter) error {
		if err := rw.UpdateGroupFeedTitle(ctx, p.FeedId, p.Title); err != nil {
			return errs.Wrap(errs.Transient, err, "update title")
		}
		return rw.UpdateFeedBlockIndex(ctx, p.FeedId, now)
	})
}
