package apply

import (
	"context"

	"github.com/ground-x/feedscore/errs"
	"github.com/ground-x/feedscore/storage"
	"github.com/ground-x/feedscore/storage/repo"
	"github.com/ground-x/feedscore/txpipeline"
	"github.com/ground-x/feedscore/types"
)

// UnbanFromGroupFeedHandler restores a banned address to plain membership.
// It does not re-add them as an active participant by itself: a subsequent
// AddMemberToGroupFeed or JoinGroupFeed re-admits them and triggers the
// rotation that actually regrants key access.
type UnbanFromGroupFeedHandler struct{}

func (UnbanFromGroupFeedHandler) Kind() txpipeline.PayloadKind {
	return txpipeline.KindUnbanFromGroupFeed
}

func (UnbanFromGroupFeedHandler) Handle(ctx context.Context, storageSvc *storage.Service, now types.BlockIndex, vtx txpipeline.ValidatedTransaction) error {
	p := vtx.Payload.(txpipeline.UnbanFromGroupFeedPayload)

	return storageSvc.CreateWritable(ctx, func(rw repo.ReaderWriter) error {
		if err := rw.UpdateParticipantType(ctx, p.FeedId, p.TargetAddr, types.RoleMember); err != nil {
			return errs.Wrap(errs.Transient, err, "unban participant")
		}
		return rw.UpdateFeedBlockIndex(ctx, p.FeedId, now)
	})
}
