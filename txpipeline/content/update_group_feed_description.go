package content

import (
	"context"

	"github.com/ground-x/feedscore/errs"
	"github.com/ground-x/feedscore/storage"
	"github.com/ground-x/feedscore/txpipeline"
	"github.com/ground-x/feedscore/types"
)

type UpdateGroupFeedDescriptionHandler struct{}

func (UpdateGroupFeedDescriptionHandler) Kind() txpipeline.PayloadKind {
	return txpipeline.KindUpdateGroupFeedDescription
}

func (UpdateGroupFeedDescriptionHandler) ValidateAndSign(ctx context.Context, ro *storage.UnitOfWork, now types.BlockIndex, tx txpipeline.Transaction) (*txpipeline.ValidatedTransaction, error) {
	p, ok := tx.Payload.(txpipeline.UpdateGroupFeedDescriptionPayload)
	if !ok {
		return nil, errs.New(errs.InvalidArgument, "malformed UpdateGroupFeedDescription payload")
	}
	if tx.Signer != p.RequesterAddr {
		return nil, errs.New(errs.PermissionDenied, "signatory does not match requester")
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
