package content

import (
	"context"

	"github.com/ground-x/feedscore/errs"
	"github.com/ground-x/feedscore/storage"
	"github.com/ground-x/feedscore/txpipeline"
	"github.com/ground-x/feedscore/types"
)

type LeaveGroupFeedHandler struct{}

func (LeaveGroupFeedHandler) Kind() txpipeline.PayloadKind { return txpipeline.KindLeaveGroupFeed }

func (LeaveGroupFeedHandler) ValidateAndSign(ctx context.Context, ro *storage.UnitOfWork, now types.BlockIndex, tx txpipeline.Transaction) (*txpipeline.ValidatedTransaction, error) {
	p, ok := tx.Payload.(txpipeline.LeaveGroupFeedPayload)
	if !ok {
		return nil, errs.New(errs.InvalidArgument, "malformed LeaveGroupFeed payload")
	}
	if tx.Signer != p.Address {
		return nil, errs.New(errs.PermissionDenied, "signatory does not match leaving address")
	}
	if _, err := requireGroupExists(ctx, ro, p.FeedId); err != nil {
		return nil, err
	}
	participant, err := ro.Reader.GetParticipantWithHistory(ctx, p.FeedId, p.Address)
	if err != nil {
		return nil, errs.Wrap(errs.Transient, err, "read participant")
	}
	if participant == nil || !participant.IsActive() {
		return nil, errs.New(errs.FailedPrecondition, "not an active participant")
	}
	return stamp(tx), nil
}
