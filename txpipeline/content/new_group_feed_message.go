package content

import (
	"context"

	"github.com/ground-x/feedscore/errs"
	"github.com/ground-x/feedscore/keyrotation"
	"github.com/ground-x/feedscore/storage"
	"github.com/ground-x/feedscore/txpipeline"
	"github.com/ground-x/feedscore/types"
)

// DefaultGraceBlocks is the number of blocks past a rotation's
// validFromBlock during which the previous key generation remains
// acceptable (spec §4.4 grace window).
const DefaultGraceBlocks = 4

type NewGroupFeedMessageHandler struct {
	GraceBlocks uint64
}

func (NewGroupFeedMessageHandler) Kind() txpipeline.PayloadKind {
	return txpipeline.KindNewGroupFeedMessage
}

func (h NewGroupFeedMessageHandler) ValidateAndSign(ctx context.Context, ro *storage.UnitOfWork, now types.BlockIndex, tx txpipeline.Transaction) (*txpipeline.ValidatedTransaction, error) {
	p, ok := tx.Payload.(txpipeline.NewGroupFeedMessagePayload)
	if !ok {
		return nil, errs.New(errs.InvalidArgument, "malformed NewGroupFeedMessage payload")
	}
	if tx.Signer != p.SenderAddr {
		return nil, errs.New(errs.PermissionDenied, "signatory does not match sender")
	}
	if len(p.Ciphertext) == 0 {
		return nil, errs.New(errs.InvalidArgument, "ciphertext is empty")
	}
	if p.AuthorCommitment != nil && len(p.AuthorCommitment) != 32 {
		return nil, errs.New(errs.InvalidArgument, "author commitment must be exactly 32 bytes")
	}
	gf, err := requireGroupExists(ctx, ro, p.FeedId)
	if err != nil {
		return nil, err
	}
	if err := requireNotDeleted(gf); err != nil {
		return nil, err
	}
	sender, err := ro.Reader.GetParticipantWithHistory(ctx, p.FeedId, p.SenderAddr)
	if err != nil {
		return nil, errs.Wrap(errs.Transient, err, "read sender participant")
	}
	if sender == nil || !sender.IsActive() {
		return nil, errs.New(errs.FailedPrecondition, "sender is not an active participant")
	}
	if sender.Role == types.RoleBlocked {
		return nil, errs.New(errs.PermissionDenied, "sender is blocked from posting")
	}
	generations, err := ro.Reader.GetAllKeyGenerations(ctx, p.FeedId)
	if err != nil {
		return nil, errs.Wrap(errs.Transient, err, "read key generations")
	}
	var validFrom types.BlockIndex
	found := false
	for _, g := range generations {
		if g.Version == p.KeyGeneration {
			validFrom = g.ValidFromBlock
			found = true
			break
		}
	}
	if !found {
		return nil, errs.New(errs.InvalidArgument, "unknown key generation")
	}
	grace := h.GraceBlocks
	if grace == 0 {
		grace = DefaultGraceBlocks
	}
	if !keyrotation.InGraceWindow(p.KeyGeneration, gf.CurrentKeyGeneration, validFrom, now, grace) {
		return nil, errs.New(errs.FailedPrecondition, "message encrypted under a key generation outside the grace window")
	}
	if p.ReplyTo != nil {
		replied, err := ro.Reader.GetMessageById(ctx, p.FeedId, *p.ReplyTo)
		if err != nil {
			return nil, errs.Wrap(errs.Transient, err, "read replied-to message")
		}
		if replied == nil {
			return nil, errs.New(errs.NotFound, "replied-to message does not exist")
		}
	}
	return stamp(tx), nil
}
