package content

import (
	"context"

	"github.com/ground-x/feedscore/errs"
	"github.com/ground-x/feedscore/storage"
	"github.com/ground-x/feedscore/txpipeline"
	"github.com/ground-x/feedscore/types"
)

// GroupFeedKeyRotationHandler validates a pre-computed manual rotation: the
// caller has already run the wrapping step out of band and submits the
// resulting key generation for the pipeline to persist atomically. Unlike
// the membership-triggered kinds, the transaction handler for this kind
// does not call keyrotation.Engine itself (spec §4.4 manual trigger).
type GroupFeedKeyRotationHandler struct{}

func (GroupFeedKeyRotationHandler) Kind() txpipeline.PayloadKind {
	return txpipeline.KindGroupFeedKeyRotation
}

func (GroupFeedKeyRotationHandler) ValidateAndSign(ctx context.Context, ro *storage.UnitOfWork, now types.BlockIndex, tx txpipeline.Transaction) (*txpipeline.ValidatedTransaction, error) {
	p, ok := tx.Payload.(txpipeline.GroupFeedKeyRotationPayload)
	if !ok {
		return nil, errs.New(errs.InvalidArgument, "malformed GroupFeedKeyRotation payload")
	}
	if err := requireAdmin(ctx, ro, p.FeedId, tx.Signer); err != nil {
		return nil, err
	}
	if p.Trigger != types.TriggerManual {
		return nil, errs.New(errs.InvalidArgument, "only the manual trigger may be submitted directly")
	}
	current, exists, err := ro.Reader.GetMaxKeyGeneration(ctx, p.FeedId)
	if err != nil {
		return nil, errs.Wrap(errs.Transient, err, "read current key generation")
	}
	if !exists {
		return nil, errs.New(errs.NotFound, "group does not exist")
	}
	if p.PreviousVersion != current {
		return nil, errs.New(errs.Conflict, "stale key generation, rotation already advanced")
	}
	if p.NewVersion != current+1 {
		return nil, errs.New(errs.InvalidArgument, "new version must immediately follow the current generation")
	}
	if p.ValidFromBlock < now {
		return nil, errs.New(errs.InvalidArgument, "validFromBlock cannot precede the current block")
	}
	members, err := ro.Reader.GetActiveGroupMemberAddresses(ctx, p.FeedId, now)
	if err != nil {
		return nil, errs.Wrap(errs.Transient, err, "read active members")
	}
	if len(p.EncryptedKeys) != len(members) {
		return nil, errs.New(errs.InvalidArgument, "wrapped key set does not cover every active member")
	}
	covered := make(map[types.Address]struct{}, len(p.EncryptedKeys))
	for _, wk := range p.EncryptedKeys {
		covered[wk.MemberAddress] = struct{}{}
	}
	for _, m := range members {
		if _, ok := covered[m]; !ok {
			return nil, errs.New(errs.InvalidArgument, "wrapped key set missing an active member")
		}
	}
	return stamp(tx), nil
}
