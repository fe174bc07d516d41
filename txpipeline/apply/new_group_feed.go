package apply

import (
	"context"

	flog "github.com/ground-x/feedscore/log"
	"github.com/ground-x/feedscore/errs"
	"github.com/ground-x/feedscore/events"
	"github.com/ground-x/feedscore/keyrotation"
	"github.com/ground-x/feedscore/storage"
	"github.com/ground-x/feedscore/storage/repo"
	"github.com/ground-x/feedscore/txpipeline"
	"github.com/ground-x/feedscore/types"
)

var logger = flog.NewModuleLogger(flog.TxPipeline)

type NewGroupFeedHandler struct {
	Rotation  *keyrotation.Engine
	Publisher events.Publisher
}

func (NewGroupFeedHandler) Kind() txpipeline.PayloadKind { return txpipeline.KindNewGroupFeed }

func (h NewGroupFeedHandler) Handle(ctx context.Context, storageSvc *storage.Service, now types.BlockIndex, vtx txpipeline.ValidatedTransaction) error {
	p := vtx.Payload.(txpipeline.NewGroupFeedPayload)

	return storageSvc.CreateWritable(ctx, func(rw repo.ReaderWriter) error {
		group := types.GroupFeed{
			Feed: types.Feed{
				Id:             p.FeedId,
				Kind:           types.FeedKindGroup,
				CreatedAtBlock: now,
				LastBlockIndex: now,
			},
			Title:                p.Title,
			Description:          p.Description,
			IsPublic:             p.IsPublic,
			CurrentKeyGeneration: 0,
		}
		participants := make([]types.Participant, 0, len(p.Participants)+1)
		participants = append(participants, types.Participant{
			FeedId: p.FeedId, Address: p.Creator, Role: types.RoleAdmin, JoinedAtBlock: now,
		})
		for _, addr := range p.Participants {
			participants = append(participants, types.Participant{
				FeedId: p.FeedId, Address: addr, Role: types.RoleMember, JoinedAtBlock: now,
			})
		}
		if err := rw.CreateGroupFeed(ctx, group, participants); err != nil {
			return errs.Wrap(errs.Transient, err, "create group feed")
		}

		all := append([]types.Address{p.Creator}, p.Participants...)
		var nobody *types.Address
		if _, err := h.Rotation.TriggerRotation(ctx, rw, p.FeedId, now, types.TriggerManual, nobody, nobody); err != nil {
			return err
		}

		if h.Publisher != nil {
			if err := h.Publisher.PublishFeedCreated(events.FeedCreated{
				FeedId: p.FeedId, Creator: p.Creator, Participants: all, AtBlock: now,
			}); err != nil {
				logger.Warn("feed created event publish failed", "feedId", p.FeedId.String(), "err", err)
			}
		}
		return nil
	})
}
