package content

import (
	"context"

	"github.com/ground-x/feedscore/errs"
	"github.com/ground-x/feedscore/storage"
	"github.com/ground-x/feedscore/txpipeline"
	"github.com/ground-x/feedscore/types"
)

type UpdateGroupFeedTitleHandler struct{}

func (UpdateGroupFeedTitleHandler) Kind() txpipeline.PayloadKind {
	return txpipeline.KindUpdateGroupFeedTitle
}

func (UpdateGroupFeedTitleHandler) ValidateAndSign(ctx context.Context, ro *storage.UnitOfWork, now types.BlockIndex, tx txpipeline.Transaction) (*txpipeline.ValidatedTransaction, error) {
	p, ok := tx.Payload.(txpipeline.UpdateGroupFeedTitlePayload)
	if !ok {
		return nil, errs.New(errs.InvalidArgument, "malformed UpdateGroupFeedTitle payload")
	}
	if tx.Signer != p.RequesterAddr {
		return nil, errs.New(errs.PermissionDenied, "signatory does not match requester")
	}
	if !validTitle(p.Title) {
		return nil, errs.New(errs.InvalidArgument, "title is blank or too long")
	}
	gf, err := requireGroupExists(ctx, ro, p.FeedId)
	if err != nil {
		return nil, err
	}
	if err := requireNotDeleted(gf); err != nil {
		return nil, err
	}
	if err := requireAdmin(ctx, ro, p.FeedId, p.RequesterAddr); err != nil {
		return nil, err
	}
	return stamp(tx), nil
}
