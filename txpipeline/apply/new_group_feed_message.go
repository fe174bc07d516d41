package apply

import (
	"context"
	"time"

	"github.com/ground-x/feedscore/errs"
	"github.com/ground-x/feedscore/events"
	"github.com/ground-x/feedscore/storage"
	"github.com/ground-x/feedscore/storage/repo"
	"github.com/ground-x/feedscore/txpipeline"
	"github.com/ground-x/feedscore/types"
)

type NewGroupFeedMessageHandler struct {
	Publisher events.Publisher
}

func (NewGroupFeedMessageHandler) Kind() txpipeline.PayloadKind {
	return txpipeline.KindNewGroupFeedMessage
}

func (h NewGroupFeedMessageHandler) Handle(ctx context.Context, storageSvc *storage.Service, now types.BlockIndex, vtx txpipeline.ValidatedTransaction) error {
	p := vtx.Payload.(txpipeline.NewGroupFeedMessagePayload)

	err := storageSvc.CreateWritable(ctx, func(rw repo.ReaderWriter) error {
		msg := types.EncryptedMessage{
			Id:               p.MessageId,
			FeedId:           p.FeedId,
			SenderAddress:    p.SenderAddr,
			Ciphertext:       p.Ciphertext,
			BlockIndex:       now,
			Timestamp:        time.Now(),
			KeyGeneration:    p.KeyGeneration,
			ReplyTo:          p.ReplyTo,
			AuthorCommitment: p.AuthorCommitment,
		}
		if err := rw.CreateFeedMessage(ctx, msg); err != nil {
			return errs.Wrap(errs.Transient, err, "create message")
		}
		return rw.UpdateFeedBlockIndex(ctx, p.FeedId, now)
	})
	if err != nil {
		return err
	}

	if h.Publisher != nil {
		if pubErr := h.Publisher.PublishMessageCreated(events.MessageCreated{
			FeedId: p.FeedId, MessageId: p.MessageId, Sender: p.SenderAddr, AtBlock: now,
		}); pubErr != nil {
			logger.Warn("message created event publish failed", "feedId", p.FeedId.String(), "messageId", p.MessageId.String(), "err", pubErr)
		}
	}
	return nil
}
