package api

import "github.com/ground-x/feedscore/types"

// Request/response shapes, field names and semantics normative per spec
// §6. Messages are plain structs exchanged via the json grpc codec
// (codec.go) rather than generated protobuf types.

type FeedSummary struct {
	FeedId             string `json:"feedId"`
	FeedType           int    `json:"feedType"` // 1=Personal, 2=Chat, 3=Group
	FeedTitle          string `json:"feedTitle"`
	BlockIndex         uint64 `json:"blockIndex"`
	LastReadBlockIndex uint64 `json:"lastReadBlockIndex"`
}

type GetFeedForAddressRequest struct {
	ProfilePublicKey string `json:"profilePublicKey"`
	BlockIndex       uint64 `json:"blockIndex"`
}

type GetFeedForAddressResponse struct {
	Feeds []FeedSummary `json:"feeds"`
}

type MessageView struct {
	FeedMessageId    string  `json:"feedMessageId"`
	FeedId           string  `json:"feedId"`
	MessageContent   []byte  `json:"messageContent"`
	IssuerName       string  `json:"issuerName"`
	Timestamp        int64   `json:"timestamp"`
	BlockIndex       uint64  `json:"blockIndex"`
	ReplyToMessageId *string `json:"replyToMessageId,omitempty"`
}

type GetMessageByIdRequest struct {
	FeedId    string `json:"feedId"`
	MessageId string `json:"messageId"`
}

type GetMessageByIdResponse struct {
	Success bool          `json:"success"`
	Message *MessageView  `json:"message,omitempty"`
	Error   string        `json:"error,omitempty"`
}

type GetFeedMessagesByIdRequest struct {
	FeedId         string  `json:"feedId"`
	UserAddress    string  `json:"userAddress"`
	BeforeBlockIdx *uint64 `json:"beforeBlockIndex,omitempty"`
	Limit          int     `json:"limit,omitempty"`
}

type GetFeedMessagesByIdResponse struct {
	Messages         []MessageView `json:"messages"`
	HasMoreMessages  bool          `json:"hasMoreMessages"`
	OldestBlockIndex uint64        `json:"oldestBlockIndex"`
	NewestBlockIndex uint64        `json:"newestBlockIndex"`
}

type AddMemberToGroupFeedRequest struct {
	FeedId                  string `json:"feedId"`
	AdminPublicAddress      string `json:"adminPublicAddress"`
	NewMemberPublicAddress  string `json:"newMemberPublicAddress"`
	NewMemberPublicEncryptKey string `json:"newMemberPublicEncryptKey"`
}

type MutationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type KeyGenerationView struct {
	KeyGeneration uint32 `json:"keyGeneration"`
	EncryptedKey  []byte `json:"encryptedKey"`
}

type GetKeyGenerationsRequest struct {
	FeedId          string `json:"feedId"`
	UserPublicAddress string `json:"userPublicAddress"`
}

type GetKeyGenerationsResponse struct {
	KeyGenerations []KeyGenerationView `json:"keyGenerations"`
}

type DownloadAttachmentRequest struct {
	AttachmentId         string `json:"attachmentId"`
	FeedId               string `json:"feedId"`
	RequesterUserAddress string `json:"requesterUserAddress"`
	ThumbnailOnly        bool   `json:"thumbnailOnly"`
}

type AttachmentChunk struct {
	ChunkIndex  int32  `json:"chunkIndex"`
	TotalChunks int32  `json:"totalChunks"`
	TotalSize   int64  `json:"totalSize"`
	Data        []byte `json:"data"`
}

func feedKindWireType(k types.FeedKind) int {
	switch k {
	case types.FeedKindPersonal:
		return 1
	case types.FeedKindChat:
		return 2
	case types.FeedKindGroup:
		return 3
	default:
		return 0
	}
}
