package apply

import (
	"context"

	"github.com/ground-x/feedscore/errs"
	"github.com/ground-x/feedscore/storage"
	"github.com/ground-x/feedscore/storage/repo"
	"github.com/ground-x/feedscore/txpipeline"
	"github.com/ground-x/feedscore/types"
)

type DeleteGroupFeedHandler struct{}

func (DeleteGroupFeedHandler) Kind() txpipeline.PayloadKind { return txpipeline.KindDeleteGroupFeed }

func (DeleteGroupFeedHandler) Handle(ctx context.Context, storageSvc *storage.Service, now types.BlockIndex, vtx txpipeline.ValidatedTransaction) error {
	p := vtx.Payload.(txpipeline.DeleteGroupFeedPayload)

	return storageSvc.CreateWritable(ctx, func(rw repo.ReaderWriter) error {
		if err := rw.DeleteGroupFeed(ctx, p.FeedId); err != nil {
			return errs.Wrap(errs.Transient, err, "delete group feed")
		}
		return nil
	})
}
