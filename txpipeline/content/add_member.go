package content

import (
	"context"

	"github.com/ground-x/feedscore/errs"
	"github.com/ground-x/feedscore/storage"
	"github.com/ground-x/feedscore/txpipeline"
	"github.com/ground-x/feedscore/types"
)

type AddMemberToGroupFeedHandler struct{}

func (AddMemberToGroupFeedHandler) Kind() txpipeline.PayloadKind {
	return txpipeline.KindAddMemberToGroupFeed
}

func (AddMemberToGroupFeedHandler) ValidateAndSign(ctx context.Context, ro *storage.UnitOfWork, now types.BlockIndex, tx txpipeline.Transaction) (*txpipeline.ValidatedTransaction, error) {
	p, ok := tx.Payload.(txpipeline.AddMemberToGroupFeedPayload)
	if !ok {
		return nil, errs.New(errs.InvalidArgument, "malformed AddMemberToGroupFeed payload")
	}
	if !nonBlank(p.NewMemberAddr) {
		return nil, errs.New(errs.InvalidArgument, "new member address is required")
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
	existing, err := ro.Reader.GetParticipantWithHistory(ctx, p.FeedId, p.NewMemberAddr)
	if err != nil {
		return nil, errs.Wrap(errs.Transient, err, "read target participant")
	}
	if existing != nil && existing.Role == types.RoleBanned {
		return nil, errs.New(errs.FailedPrecondition, "target is banned from this group")
	}
	if existing != nil && existing.IsActive() {
		return nil, errs.New(errs.FailedPrecondition, "target is already an active participant")
	}
	return stamp(tx), nil
}
