package apply

import (
	"context"

	"github.com/ground-x/feedscore/errs"
	"github.com/ground-x/feedscore/storage"
	"github.com/ground-x/feedscore/storage/repo"
	"github.com/ground-x/feedscore/txpipeline"
	"github.com/ground-x/feedscore/types"
)

// GroupFeedKeyRotationHandler persists an operator-supplied rotation
// without recomputing anything: the wrapping already happened out of band
// and was checked against the live member set during validation.
type GroupFeedKeyRotationHandler struct{}

func (GroupFeedKeyRotationHandler) Kind() txpipeline.PayloadKind {
	return txpipeline.KindGroupFeedKeyRotation
}

func (GroupFeedKeyRotationHandler) Handle(ctx context.Context, storageSvc *storage.Service, now types.BlockIndex, vtx txpipeline.ValidatedTransaction) error {
	p := vtx.Payload.(txpipeline.GroupFeedKeyRotationPayload)

	return storageSvc.CreateWritable(ctx, func(rw repo.ReaderWriter) error {
		gen := types.KeyGeneration{
			FeedId:         p.FeedId,
			Version:        p.NewVersion,
			ValidFromBlock: p.ValidFromBlock,
			Trigger:        p.Trigger,
			EncryptedKeys:  p.EncryptedKeys,
		}
		if err := rw.CreateKeyRotation(ctx, gen); err != nil {
			return errs.Wrap(errs.Transient, err, "persist key rotation")
		}
		if err := rw.UpdateCurrentKeyGeneration(ctx, p.FeedId, p.NewVersion); err != nil {
			return errs.Wrap(errs.Transient, err, "advance current key generation")
		}
		return nil
	})
}
