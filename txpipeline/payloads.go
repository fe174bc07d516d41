package txpipeline

import "github.com/ground-x/feedscore/types"

// Payload structs, one per PayloadKind (spec §4.1.1). Transaction.Payload
// is asserted to the matching type inside each kind's content handler.

type NewGroupFeedPayload struct {
	FeedId       types.FeedId
	Title        string
	Description  string
	IsPublic     bool
	Creator      types.Address
	Participants []types.Address // excludes Creator
}

type AddMemberToGroupFeedPayload struct {
	FeedId          types.FeedId
	RequesterAddr   types.Address
	NewMemberAddr   types.Address
}

type JoinGroupFeedPayload struct {
	FeedId  types.FeedId
	Address types.Address
}

type LeaveGroupFeedPayload struct {
	FeedId  types.FeedId
	Address types.Address
}

type BanFromGroupFeedPayload struct {
	FeedId        types.FeedId
	RequesterAddr types.Address
	TargetAddr    types.Address
}

type UnbanFromGroupFeedPayload struct {
	FeedId        types.FeedId
	RequesterAddr types.Address
	TargetAddr    types.Address
}

type PromoteToAdminPayload struct {
	FeedId        types.FeedId
	RequesterAddr types.Address
	TargetAddr    types.Address
}

type BlockMemberPayload struct {
	FeedId        types.FeedId
	RequesterAddr types.Address
	TargetAddr    types.Address
}

type UnblockMemberPayload struct {
	FeedId        types.FeedId
	RequesterAddr types.Address
	TargetAddr    types.Address
}

type UpdateGroupFeedTitlePayload struct {
	FeedId        types.FeedId
	RequesterAddr types.Address
	Title         string
}

type UpdateGroupFeedDescriptionPayload struct {
	FeedId        types.FeedId
	RequesterAddr types.Address
	Description   string
}

type DeleteGroupFeedPayload struct {
	FeedId        types.FeedId
	RequesterAddr types.Address
}

type GroupFeedKeyRotationPayload struct {
	FeedId          types.FeedId
	NewVersion      uint32
	PreviousVersion uint32
	ValidFromBlock  types.BlockIndex
	Trigger         types.RotationTrigger
	EncryptedKeys   []types.WrappedKey
}

type NewGroupFeedMessagePayload struct {
	FeedId           types.FeedId
	MessageId        types.MessageId
	SenderAddr       types.Address
	Ciphertext       []byte
	KeyGeneration    uint32
	ReplyTo          *types.MessageId
	AuthorCommitment []byte
}
