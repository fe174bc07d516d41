package content

import (
	"context"

	"github.com/ground-x/feedscore/errs"
	"github.com/ground-x/feedscore/storage"
	"github.com/ground-x/feedscore/txpipeline"
	"github.com/ground-x/feedscore/types"
)

type NewGroupFeedHandler struct{}

func (NewGroupFeedHandler) Kind() txpipeline.PayloadKind { return txpipeline.KindNewGroupFeed }

func (NewGroupFeedHandler) ValidateAndSign(ctx context.Context, ro *storage.UnitOfWork, now types.BlockIndex, tx txpipeline.Transaction) (*txpipeline.ValidatedTransaction, error) {
	p, ok := tx.Payload.(txpipeline.NewGroupFeedPayload)
	if !ok {
		return nil, errs.New(errs.InvalidArgument, "malformed NewGroupFeed payload")
	}
	if !validTitle(p.Title) {
		return nil, errs.New(errs.InvalidArgument, "title must be 1..100 non-whitespace characters")
	}
	if !nonBlank(p.Creator) {
		return nil, errs.New(errs.InvalidArgument, "creator address is required")
	}
	all := append([]types.Address{p.Creator}, p.Participants...)
	for _, a := range all {
		if !nonBlank(a) {
			return nil, errs.New(errs.InvalidArgument, "participant address must not be blank")
		}
	}
	if !uniqueAddresses(all) {
		return nil, errs.New(errs.Conflict, "duplicate participant address")
	}
	if len(all) < 1 {
		return nil, errs.New(errs.InvalidArgument, "group must have at least one participant")
	}
	return stamp(tx), nil
}
