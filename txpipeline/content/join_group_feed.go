package content

import (
	"context"

	"github.com/ground-x/feedscore/errs"
	"github.com/ground-x/feedscore/storage"
	"github.com/ground-x/feedscore/txpipeline"
	"github.com/ground-x/feedscore/types"
)

// DefaultRejoinCooldownBlocks is the minimum gap between a self-leave and a
// self-rejoin of a public group (spec §4.1.1, §6) used when the handler's
// CooldownBlocks is zero. The pipeline is wired with the configured value at
// construction; this is the spec default.
const DefaultRejoinCooldownBlocks = 100

type JoinGroupFeedHandler struct {
	CooldownBlocks uint64
}

func (JoinGroupFeedHandler) Kind() txpipeline.PayloadKind { return txpipeline.KindJoinGroupFeed }

func (h JoinGroupFeedHandler) ValidateAndSign(ctx context.Context, ro *storage.UnitOfWork, now types.BlockIndex, tx txpipeline.Transaction) (*txpipeline.ValidatedTransaction, error) {
	p, ok := tx.Payload.(txpipeline.JoinGroupFeedPayload)
	if !ok {
		return nil, errs.New(errs.InvalidArgument, "malformed JoinGroupFeed payload")
	}
	if tx.Signer != p.Address {
		return nil, errs.New(errs.PermissionDenied, "signatory does not match joining address")
	}
	gf, err := requireGroupExists(ctx, ro, p.FeedId)
	if err != nil {
		return nil, err
	}
	if err := requireNotDeleted(gf); err != nil {
		return nil, err
	}
	if !gf.IsPublic {
		return nil, errs.New(errs.PermissionDenied, "group is not public")
	}
	existing, err := ro.Reader.GetParticipantWithHistory(ctx, p.FeedId, p.Address)
	if err != nil {
		return nil, errs.Wrap(errs.Transient, err, "read participant")
	}
	if existing != nil {
		if existing.Role == types.RoleBanned {
			return nil, errs.New(errs.PermissionDenied, "address is banned from this group")
		}
		if existing.IsActive() {
			return nil, errs.New(errs.FailedPrecondition, "already an active participant")
		}
		if existing.LastLeaveBlock != nil {
			cooldown := h.CooldownBlocks
			if cooldown == 0 {
				cooldown = DefaultRejoinCooldownBlocks
			}
			if uint64(now)-uint64(*existing.LastLeaveBlock) < cooldown {
				return nil, errs.New(errs.FailedPrecondition, "rejoin cooldown has not elapsed")
			}
		}
	}
	return stamp(tx), nil
}
