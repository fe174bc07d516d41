package repo

import (
	"context"

	"github.com/ground-x/feedscore/types"
)

// Reader is the read-query surface (spec §4.5). Both the durable
// implementation and the cache-fronted overlay implement it, so content
// handlers and the API layer can depend on the interface without knowing
// which one they were handed.
type Reader interface {
	GetMaxKeyGeneration(ctx context.Context, feedId types.FeedId) (uint32, bool, error)
	GetActiveGroupMemberAddresses(ctx context.Context, feedId types.FeedId, at types.BlockIndex) ([]types.Address, error)
	GetFeedsForAddress(ctx context.Context, addr types.Address) ([]types.Feed, error)
	GetGroupFeedsForAddress(ctx context.Context, addr types.Address) ([]types.GroupFeed, error)
	GetGroupFeed(ctx context.Context, feedId types.FeedId) (*types.GroupFeed, error)
	GetParticipantWithHistory(ctx context.Context, feedId types.FeedId, addr types.Address) (*types.Participant, error)
	GetPaginatedMessages(ctx context.Context, feedId types.FeedId, sinceBlock types.BlockIndex, limit int, fetchLatest bool, beforeBlock *types.BlockIndex) ([]types.EncryptedMessage, error)
	GetMessageById(ctx context.Context, feedId types.FeedId, messageId types.MessageId) (*types.EncryptedMessage, error)
	IsAdmin(ctx context.Context, feedId types.FeedId, addr types.Address) (bool, error)
	IsUserParticipantOfFeed(ctx context.Context, feedId types.FeedId, addr types.Address) (bool, error)
	GetAllKeyGenerations(ctx context.Context, feedId types.FeedId) ([]types.KeyGeneration, error)
	GetWrappedKeysForUser(ctx context.Context, feedId types.FeedId, addr types.Address) ([]types.WrappedKey, error)
	GetReadPositionsForUser(ctx context.Context, addr types.Address) ([]types.ReadPosition, error)
	GetAllLastBlockIndexes(ctx context.Context) (map[types.FeedId]types.BlockIndex, error)
	GetAttachmentById(ctx context.Context, id types.AttachmentId) (*types.Attachment, error)
}

// Writer is the mutation surface. Every method is expected to be called
// from within exactly one writable unit of work (spec §4.5).
type Writer interface {
	CreateGroupFeed(ctx context.Context, group types.GroupFeed, participants []types.Participant) error
	AddParticipant(ctx context.Context, p types.Participant) error
	UpdateParticipantRejoin(ctx context.Context, feedId types.FeedId, addr types.Address, joinedAtBlock types.BlockIndex) error
	UpdateParticipantType(ctx context.Context, feedId types.FeedId, addr types.Address, role types.ParticipantRole) error
	UpdateParticipantLeft(ctx context.Context, feedId types.FeedId, addr types.Address, leftAtBlock types.BlockIndex) error
	CreateKeyRotation(ctx context.Context, gen types.KeyGeneration) error
	UpdateCurrentKeyGeneration(ctx context.Context, feedId types.FeedId, version uint32) error
	UpdateFeedBlockIndex(ctx context.Context, feedId types.FeedId, at types.BlockIndex) error
	CreateFeedMessage(ctx context.Context, msg types.EncryptedMessage) error
	UpdateGroupFeedTitle(ctx context.Context, feedId types.FeedId, title string) error
	UpdateGroupFeedDescription(ctx context.Context, feedId types.FeedId, description string) error
	DeleteGroupFeed(ctx context.Context, feedId types.FeedId) error
	UpsertReadPosition(ctx context.Context, pos types.ReadPosition) error
}

// ReaderWriter is the combined interface a writable unit of work exposes.
type ReaderWriter interface {
	Reader
	Writer
}
