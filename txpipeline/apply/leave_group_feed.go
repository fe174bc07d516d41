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

type LeaveGroupFeedHandler struct {
	Rotation *keyrotation.Engine
}

func (LeaveGroupFeedHandler) Kind() txpipeline.PayloadKind { return txpipeline.KindLeaveGroupFeed }

// Handle records the departure and rotates the key around the remaining
// members. If the leaving member was the last admin, the group is
// soft-deleted instead of left adminless (spec §4.1.1).
func (h LeaveGroupFeedHandler) Handle(ctx context.Context, storageSvc *storage.Service, now types.BlockIndex, vtx txpipeline.ValidatedTransaction) error {
	p := vtx.Payload.(txpipeline.LeaveGroupFeedPayload)

	return storageSvc.CreateWritable(ctx, func(rw repo.ReaderWriter) error {
		leaver, err := rw.GetParticipantWithHistory(ctx, p.FeedId, p.Address)
		if err != nil {
			return errs.Wrap(errs.Transient, err, "read participant")
		}
		if err := rw.UpdateParticipantLeft(ctx, p.FeedId, p.Address, now); err != nil {
			return errs.Wrap(errs.Transient, err, "record departure")
		}

		remaining, err := rw.GetActiveGroupMemberAddresses(ctx, p.FeedId, now)
		if err != nil {
			return errs.Wrap(errs.Transient, err, "read active members")
		}
		if len(remaining) == 0 {
			return rw.DeleteGroupFeed(ctx, p.FeedId)
		}
		if leaver.Role == types.RoleAdmin {
			lastAdmin := true
			for _, addr := range remaining {
				isAdmin, err := rw.IsAdmin(ctx, p.FeedId, addr)
				if err != nil {
					return errs.Wrap(errs.Transient, err, "check remaining admins")
				}
				if isAdmin {
					lastAdmin = false
					break
				}
			}
			if lastAdmin {
				return rw.DeleteGroupFeed(ctx, p.FeedId)
			}
		}

		leaving := p.Address
		if _, err := h.Rotation.TriggerRotation(ctx, rw, p.FeedId, now, types.TriggerLeave, nil, &leaving); err != nil {
			return err
		}
		return rw.UpdateFeedBlockIndex(ctx, p.FeedId, now)
	})
}
