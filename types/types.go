// Package types defines the shared replicated-state data model (spec §3):
// feeds, group governance, key generations, messages, attachments and read
// positions. Entities are immutable value objects keyed by id, in the style
// the teacher uses for its chain-state records — no back-references, so a
// unit of work can hand them out freely without aliasing hazards.
package types

import (
	"encoding/hex"
	"fmt"
	"time"
)

// FeedId, MessageId, TransactionId are opaque 128-bit identifiers, carried
// as fixed-size byte arrays the way the teacher carries common.Hash.
type FeedId [16]byte
type MessageId [16]byte
type TransactionId [16]byte
type AttachmentId [16]byte

func (id FeedId) IsZero() bool        { return id == FeedId{} }
func (id MessageId) IsZero() bool     { return id == MessageId{} }
func (id TransactionId) IsZero() bool { return id == TransactionId{} }
func (id AttachmentId) IsZero() bool  { return id == AttachmentId{} }

func (id FeedId) String() string        { return hex.EncodeToString(id[:]) }
func (id MessageId) String() string     { return hex.EncodeToString(id[:]) }
func (id TransactionId) String() string { return hex.EncodeToString(id[:]) }
func (id AttachmentId) String() string  { return hex.EncodeToString(id[:]) }

func ParseFeedId(s string) (FeedId, error) {
	var id FeedId
	if err := parseFixed(s, id[:]); err != nil {
		return id, err
	}
	return id, nil
}

func ParseMessageId(s string) (MessageId, error) {
	var id MessageId
	if err := parseFixed(s, id[:]); err != nil {
		return id, err
	}
	return id, nil
}

func ParseAttachmentId(s string) (AttachmentId, error) {
	var id AttachmentId
	if err := parseFixed(s, id[:]); err != nil {
		return id, err
	}
	return id, nil
}

func parseFixed(s string, dst []byte) error {
	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("malformed id %q: %w", s, err)
	}
	if len(b) != len(dst) {
		return fmt.Errorf("malformed id %q: expected %d bytes, got %d", s, len(dst), len(b))
	}
	copy(dst, b)
	return nil
}

// Address denotes a public signing key (an identity). EncryptKey is the
// associated public encryption key used to wrap group keys.
type Address string
type EncryptKey string

// BlockIndex is a non-negative, strictly increasing block height.
type BlockIndex uint64

// FeedKind tags the conversation surface, a closed set of three kinds.
// Valid reports whether a value is one of them; building a Feed from a
// stored row does not check it, and the API renders an unrecognized kind
// with the raw feed id as its title and wire type 0.
type FeedKind int

const (
	FeedKindPersonal FeedKind = iota + 1
	FeedKindChat
	FeedKindGroup
)

func (k FeedKind) Valid() bool {
	return k == FeedKindPersonal || k == FeedKindChat || k == FeedKindGroup
}

func (k FeedKind) String() string {
	switch k {
	case FeedKindPersonal:
		return "personal"
	case FeedKindChat:
		return "chat"
	case FeedKindGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Feed is the shared envelope for all three conversation surfaces.
type Feed struct {
	Id              FeedId
	Kind            FeedKind
	CreatedAtBlock  BlockIndex
	LastBlockIndex  BlockIndex
}

// GroupFeed extends Feed with group governance state.
type GroupFeed struct {
	Feed
	Title                 string
	Description           string
	IsPublic              bool
	CurrentKeyGeneration  uint32
	IsDeleted             bool
}

// ParticipantRole is a group member's standing.
type ParticipantRole int

const (
	RoleAdmin ParticipantRole = iota + 1
	RoleMember
	RoleBlocked
	RoleBanned
)

// Participant is one (feedId, address) row; re-used on rejoin, never
// duplicated.
type Participant struct {
	FeedId        FeedId
	Address       Address
	Role          ParticipantRole
	JoinedAtBlock BlockIndex
	LeftAtBlock   *BlockIndex
	LastLeaveBlock *BlockIndex
}

func (p Participant) IsActive() bool {
	return p.LeftAtBlock == nil && p.Role != RoleBanned
}

// RotationTrigger is the causal reason a new key generation was minted.
type RotationTrigger int

const (
	TriggerJoin RotationTrigger = iota + 1
	TriggerLeave
	TriggerBan
	TriggerUnban
	TriggerManual
)

// WrappedKey is the current group symmetric key, ECIES-encrypted under one
// member's public encryption key.
type WrappedKey struct {
	FeedId        FeedId
	Version       uint32
	MemberAddress Address
	Ciphertext    []byte
}

// KeyGeneration is one version of a group's symmetric key.
type KeyGeneration struct {
	FeedId         FeedId
	Version        uint32
	ValidFromBlock BlockIndex
	Trigger        RotationTrigger
	EncryptedKeys  []WrappedKey
}

// EncryptedMessage carries an opaque ciphertext; the core never decrypts it.
type EncryptedMessage struct {
	Id               MessageId
	FeedId           FeedId
	Ciphertext       []byte
	SenderAddress    Address
	BlockIndex       BlockIndex
	Timestamp        time.Time
	KeyGeneration    uint32
	ReplyTo          *MessageId
	AuthorCommitment []byte // nil, or exactly 32 bytes
}

// Attachment is encrypted binary content associated with a message.
type Attachment struct {
	Id                AttachmentId
	FeedMessageId     MessageId
	EncryptedOriginal []byte
	EncryptedThumbnail []byte
	MimeType          string
	FileName          string
	ContentHash       string
	OriginalSize      int64
	ThumbnailSize     int64
	CreatedAt         time.Time
}

// ReadPosition is a per-user bookmark into a feed.
type ReadPosition struct {
	UserAddress       Address
	FeedId            FeedId
	LastReadBlockIndex BlockIndex
}
