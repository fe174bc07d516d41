package content

import (
	"context"

	"github.com/ground-x/feedscore/errs"
	"github.com/ground-x/feedscore/storage"
	"github.com/ground-x/feedscore/txpipeline"
	"github.com/ground-x/feedscore/types"
)

type PromoteToAdminHandler struct{}

func (PromoteToAdminHandler) Kind() txpipeline.PayloadKind { return txpipeline.KindPromoteToAdmin }

func (PromoteToAdminHandler) ValidateAndSign(ctx context.Context, ro *storage.UnitOfWork, now types.BlockIndex, tx txpipeline.Transaction) (*txpipeline.ValidatedTransaction, error) {
	p, ok := tx.Payload.(txpipeline.PromoteToAdminPayload)
	if !ok {
		return nil, errs.New(errs.InvalidArgument, "malformed PromoteToAdmin payload")
	}
	if tx.Signer != p.RequesterAddr {
		return nil, errs.New(errs.PermissionDenied, "signatory does not match requester")
	}
	if _, err := requireGroupExists(ctx, ro, p.FeedId); err != nil {
		return nil, err
	}
	if err := requireAdmin(ctx, ro, p.FeedId, p.RequesterAddr); err != nil {
		return nil, err
	}
	target, err := ro.Reader.GetParticipantWithHistory(ctx, p.FeedId, p.TargetAddr)
	if err != nil {
		return nil, errs.Wrap(errs.Transient, err, "read target participant")
	}
	if target == nil || !target.IsActive() {
		return nil, errs.New(errs.FailedPrecondition, "target is not an active participant")
	}
	if target.Role == types.RoleAdmin {
		return nil, errs.New(errs.FailedPrecondition, "target is already an admin")
	}
	return stamp(tx), nil
}
