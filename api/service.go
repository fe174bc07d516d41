// Package api implements the bounded FeedsApi surface (spec §4.6, §6): a
// handful of unary operations plus one server-streaming attachment
// download, backed by the storage service, the transaction pipeline and
// the attachment store.
package api

import (
	"context"
	"io"

	flog "github.com/ground-x/feedscore/log"
	"github.com/ground-x/feedscore/attachments"
	"github.com/ground-x/feedscore/errs"
	"github.com/ground-x/feedscore/storage"
	"github.com/ground-x/feedscore/txpipeline"
	"github.com/ground-x/feedscore/types"
)

var logger = flog.NewModuleLogger(flog.API)

const attachmentChunkSize = 64 * 1024

// FeedsApiServer is the interface grpc dispatches onto; FeedsApi is its
// only production implementation.
type FeedsApiServer interface {
	GetFeedForAddress(ctx context.Context, req *GetFeedForAddressRequest) (*GetFeedForAddressResponse, error)
	GetMessageById(ctx context.Context, req *GetMessageByIdRequest) (*GetMessageByIdResponse, error)
	GetFeedMessagesById(ctx context.Context, req *GetFeedMessagesByIdRequest) (*GetFeedMessagesByIdResponse, error)
	GetKeyGenerations(ctx context.Context, req *GetKeyGenerationsRequest) (*GetKeyGenerationsResponse, error)
	AddMemberToGroupFeed(ctx context.Context, req *AddMemberToGroupFeedRequest) (*MutationResponse, error)
	DownloadAttachment(req *DownloadAttachmentRequest, stream AttachmentStream) error
}

// AttachmentStream is the narrow server-streaming surface DownloadAttachment
// writes chunks to; grpc.ServerStream satisfies it via Send.
type AttachmentStream interface {
	Send(*AttachmentChunk) error
}

type FeedsApi struct {
	storage     *storage.Service
	pipeline    *txpipeline.Pipeline
	attachments *attachments.Store
	maxMessages int
	now         func() types.BlockIndex
}

func NewFeedsApi(storageSvc *storage.Service, pipeline *txpipeline.Pipeline, attachmentStore *attachments.Store, maxMessages int, now func() types.BlockIndex) *FeedsApi {
	return &FeedsApi{storage: storageSvc, pipeline: pipeline, attachments: attachmentStore, maxMessages: maxMessages, now: now}
}

func (a *FeedsApi) GetFeedForAddress(ctx context.Context, req *GetFeedForAddressRequest) (*GetFeedForAddressResponse, error) {
	addr := types.Address(req.ProfilePublicKey)
	ro := a.storage.CreateReadOnly(ctx)

	feeds, err := ro.Reader.GetFeedsForAddress(ctx, addr)
	if err != nil {
		return nil, errs.Wrap(errs.Transient, err, "read feeds for address")
	}
	groupTitles, err := a.groupTitlesFor(ctx, ro, addr, feeds)
	if err != nil {
		return nil, err
	}
	positions, err := ro.Reader.GetReadPositionsForUser(ctx, addr)
	if err != nil {
		return nil, errs.Wrap(errs.Transient, err, "read positions for address")
	}
	lastRead := make(map[types.FeedId]types.BlockIndex, len(positions))
	for _, p := range positions {
		lastRead[p.FeedId] = p.LastReadBlockIndex
	}

	out := make([]FeedSummary, 0, len(feeds))
	for _, f := range feeds {
		title := displayTitle(f, addr, groupTitles[f.Id])
		out = append(out, FeedSummary{
			FeedId:             f.Id.String(),
			FeedType:           feedKindWireType(f.Kind),
			FeedTitle:          title,
			BlockIndex:         uint64(f.LastBlockIndex),
			LastReadBlockIndex: uint64(lastRead[f.Id]),
		})
	}
	return &GetFeedForAddressResponse{Feeds: out}, nil
}

// groupTitlesFor fetches the GroupFeed rows backing feeds' FeedKindGroup
// entries (spec §4.6: a group's display title is its own title, not the
// raw feed id) only when addr actually has group feeds to look up.
func (a *FeedsApi) groupTitlesFor(ctx context.Context, ro *storage.UnitOfWork, addr types.Address, feeds []types.Feed) (map[types.FeedId]string, error) {
	hasGroup := false
	for _, f := range feeds {
		if f.Kind == types.FeedKindGroup {
			hasGroup = true
			break
		}
	}
	if !hasGroup {
		return nil, nil
	}
	groups, err := ro.Reader.GetGroupFeedsForAddress(ctx, addr)
	if err != nil {
		return nil, errs.Wrap(errs.Transient, err, "read group feeds for address")
	}
	titles := make(map[types.FeedId]string, len(groups))
	for _, g := range groups {
		titles[g.Id] = g.Title
	}
	return titles, nil
}

// displayTitle never throws on an unrecognized kind (spec §4.6): it falls
// back to the raw feed id. Chat titles resolve to the other participant's
// alias once the API layer carries a participant directory; until then the
// feed id stands in, same as the unrecognized-kind fallback.
func displayTitle(f types.Feed, self types.Address, groupTitle string) string {
	switch f.Kind {
	case types.FeedKindPersonal:
		return string(self) + " (YOU)"
	case types.FeedKindGroup:
		if groupTitle != "" {
			return groupTitle
		}
		return f.Id.String()
	case types.FeedKindChat:
		return f.Id.String()
	default:
		return f.Id.String()
	}
}

func (a *FeedsApi) GetMessageById(ctx context.Context, req *GetMessageByIdRequest) (*GetMessageByIdResponse, error) {
	feedId, err := types.ParseFeedId(req.FeedId)
	if err != nil {
		return &GetMessageByIdResponse{Success: false, Error: "malformed feedId"}, nil
	}
	msgId, err := types.ParseMessageId(req.MessageId)
	if err != nil {
		return &GetMessageByIdResponse{Success: false, Error: "malformed messageId"}, nil
	}
	ro := a.storage.CreateReadOnly(ctx)
	msg, err := ro.Reader.GetMessageById(ctx, feedId, msgId)
	if err != nil {
		return nil, errs.Wrap(errs.Transient, err, "read message")
	}
	if msg == nil || msg.FeedId != feedId {
		return &GetMessageByIdResponse{Success: false, Error: "not found"}, nil
	}
	return &GetMessageByIdResponse{Success: true, Message: toMessageView(*msg)}, nil
}

func toMessageView(m types.EncryptedMessage) *MessageView {
	v := &MessageView{
		FeedMessageId:  m.Id.String(),
		FeedId:         m.FeedId.String(),
		MessageContent: m.Ciphertext,
		IssuerName:     string(m.SenderAddress),
		Timestamp:      m.Timestamp.Unix(),
		BlockIndex:     uint64(m.BlockIndex),
	}
	if m.ReplyTo != nil {
		s := m.ReplyTo.String()
		v.ReplyToMessageId = &s
	}
	return v
}

func (a *FeedsApi) GetFeedMessagesById(ctx context.Context, req *GetFeedMessagesByIdRequest) (*GetFeedMessagesByIdResponse, error) {
	feedId, err := types.ParseFeedId(req.FeedId)
	if err != nil {
		return &GetFeedMessagesByIdResponse{}, nil
	}
	addr := types.Address(req.UserAddress)
	ro := a.storage.CreateReadOnly(ctx)

	isParticipant, err := ro.Reader.IsUserParticipantOfFeed(ctx, feedId, addr)
	if err != nil {
		return nil, errs.Wrap(errs.Transient, err, "check participation")
	}
	if !isParticipant {
		return &GetFeedMessagesByIdResponse{}, nil
	}

	limit := req.Limit
	if limit <= 0 {
		limit = a.maxMessages
	}
	fetchLatest := req.BeforeBlockIdx == nil
	var beforeBlock *types.BlockIndex
	if req.BeforeBlockIdx != nil {
		b := types.BlockIndex(*req.BeforeBlockIdx)
		beforeBlock = &b
	}
	msgs, err := ro.Reader.GetPaginatedMessages(ctx, feedId, 0, limit+1, fetchLatest, beforeBlock)
	if err != nil {
		return nil, errs.Wrap(errs.Transient, err, "read paginated messages")
	}
	hasMore := len(msgs) > limit
	if hasMore {
		msgs = msgs[:limit]
	}
	views := make([]MessageView, 0, len(msgs))
	var oldest, newest types.BlockIndex
	for i, m := range msgs {
		views = append(views, *toMessageView(m))
		if i == 0 || m.BlockIndex < oldest {
			oldest = m.BlockIndex
		}
		if i == 0 || m.BlockIndex > newest {
			newest = m.BlockIndex
		}
	}
	return &GetFeedMessagesByIdResponse{
		Messages:         views,
		HasMoreMessages:  hasMore,
		OldestBlockIndex: uint64(oldest),
		NewestBlockIndex: uint64(newest),
	}, nil
}

func (a *FeedsApi) GetKeyGenerations(ctx context.Context, req *GetKeyGenerationsRequest) (*GetKeyGenerationsResponse, error) {
	feedId, err := types.ParseFeedId(req.FeedId)
	if err != nil {
		return &GetKeyGenerationsResponse{}, nil
	}
	addr := types.Address(req.UserPublicAddress)
	ro := a.storage.CreateReadOnly(ctx)

	wrapped, err := ro.Reader.GetWrappedKeysForUser(ctx, feedId, addr)
	if err != nil {
		return nil, errs.Wrap(errs.Transient, err, "read key generations")
	}
	out := make([]KeyGenerationView, 0, len(wrapped))
	for _, wk := range wrapped {
		out = append(out, KeyGenerationView{KeyGeneration: wk.Version, EncryptedKey: wk.Ciphertext})
	}
	return &GetKeyGenerationsResponse{KeyGenerations: out}, nil
}

func (a *FeedsApi) AddMemberToGroupFeed(ctx context.Context, req *AddMemberToGroupFeedRequest) (*MutationResponse, error) {
	feedId, err := types.ParseFeedId(req.FeedId)
	if err != nil {
		return &MutationResponse{Success: false, Message: "malformed feedId"}, nil
	}
	txId, err := newTransactionId()
	if err != nil {
		return nil, errs.Wrap(errs.Transient, err, "generate transaction id")
	}
	tx := txpipeline.Transaction{
		Id:     txId,
		Kind:   txpipeline.KindAddMemberToGroupFeed,
		Signer: types.Address(req.AdminPublicAddress),
		Payload: txpipeline.AddMemberToGroupFeedPayload{
			FeedId:        feedId,
			RequesterAddr: types.Address(req.AdminPublicAddress),
			NewMemberAddr: types.Address(req.NewMemberPublicAddress),
		},
	}
	if err := a.pipeline.Submit(ctx, a.now(), tx); err != nil {
		return &MutationResponse{Success: false, Message: err.Error()}, nil
	}
	return &MutationResponse{Success: true, Message: "ok"}, nil
}

func (a *FeedsApi) DownloadAttachment(req *DownloadAttachmentRequest, stream AttachmentStream) error {
	feedId, err := types.ParseFeedId(req.FeedId)
	if err != nil {
		return errs.New(errs.InvalidArgument, "malformed feedId")
	}
	attachmentId, err := types.ParseAttachmentId(req.AttachmentId)
	if err != nil {
		return errs.New(errs.InvalidArgument, "malformed attachmentId")
	}
	ctx := context.Background()
	ro := a.storage.CreateReadOnly(ctx)

	isParticipant, err := ro.Reader.IsUserParticipantOfFeed(ctx, feedId, types.Address(req.RequesterUserAddress))
	if err != nil {
		return errs.Wrap(errs.Transient, err, "check participation")
	}
	if !isParticipant {
		return errs.New(errs.PermissionDenied, "requester is not an active participant of this feed")
	}

	original, thumbnail, found, err := a.attachments.Retrieve(attachmentId)
	if err != nil {
		return errs.Wrap(errs.Transient, err, "retrieve attachment")
	}
	if !found {
		return errs.New(errs.NotFound, "attachment not found")
	}
	data := original
	if req.ThumbnailOnly {
		data = thumbnail
	}
	return streamChunks(data, stream)
}

func streamChunks(data []byte, stream AttachmentStream) error {
	total := int64(len(data))
	totalChunks := int32((len(data) + attachmentChunkSize - 1) / attachmentChunkSize)
	if totalChunks == 0 {
		totalChunks = 1
	}
	for i := 0; i < len(data) || i == 0; i += attachmentChunkSize {
		end := i + attachmentChunkSize
		if end > len(data) {
			end = len(data)
		}
		chunk := &AttachmentChunk{ChunkIndex: int32(i / attachmentChunkSize), Data: data[i:end]}
		if chunk.ChunkIndex == 0 {
			chunk.TotalChunks = totalChunks
			chunk.TotalSize = total
		}
		if err := stream.Send(chunk); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if len(data) == 0 {
			break
		}
	}
	return nil
}
