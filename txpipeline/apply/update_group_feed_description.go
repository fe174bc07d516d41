package apply

import (
	"context"

	"github.com/ground-x/feedscore/errs"
	"github.com/ground-x/feedscore/storage"
	"github.com/ground-x/feedscore/storage/repo"
	"github.com/ground-x/feedscore/txpipeline"
	"github.com/ground-x/feedscore/types"
)

type UpdateGroupFeedDescriptionHandler struct{}

func (UpdateGroupFeedDescriptionHandler) Kind() txpipeline.PayloadKind {
	return txpipeline.KindUpdateGroupFeedDescription
}

func (UpdateGroupFeedDescriptionHandler) Handle(ctx context.Context, storageSvc *storage.Service, now types.BlockIndex, vtx txpipeline.ValidatedTransaction) error {
	p := vtx.Payload.(txpipeline.UpdateGroupFeedDescriptionPayload)

	return storageSvc.CreateWritable(ctx, func(rw repo.ReaderWriter) error {
		if err := rw.UpdateGroupFeedDescription(ctx, p.FeedId, p.Description); err != nil {
			return errs.Wrap(errs.Transient, err, "update description")
		}
		return rw.UpdateFeedBlockIndex(ctx, p.FeedId, now)
	})
}
