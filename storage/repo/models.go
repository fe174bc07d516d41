// Package repo is the durable relational store (spec §4.5, §6): gorm models
// over MySQL, one per table named in spec §6, plus the read/write
// repository interface the rest of the core depends on. This is the source
// of truth the overlay cache (storage/cache) fronts.
package repo

import "time"

// FeedRow backs the Feeds table.
type FeedRow struct {
	Id             string `gorm:"primary_key;column:id;size:32"`
	Kind           int    `gorm:"column:kind"`
	CreatedAtBlock uint64 `gorm:"column:created_at_block"`
	LastBlockIndex uint64 `gorm:"column:last_block_index"`
}

func (FeedRow) TableName() string { return "feeds" }

// GroupFeedRow backs the GroupFeeds table, one row per FeedRow of kind Group.
type GroupFeedRow struct {
	FeedId               string `gorm:"primary_key;column:feed_id;size:32"`
	Title                string `gorm:"column:title;size:100"`
	Description          string `gorm:"column:description;type:text"`
	IsPublic             bool   `gorm:"column:is_public"`
	CurrentKeyGeneration uint32 `gorm:"column:current_key_generation"`
	IsDeleted            bool   `gorm:"column:is_deleted"`
}

func (GroupFeedRow) TableName() string { return "group_feeds" }

// ParticipantRow backs GroupFeedParticipants, PK (feed_id, address).
type ParticipantRow struct {
	FeedId         string     `gorm:"primary_key;column:feed_id;size:32"`
	Address        string     `gorm:"primary_key;column:address;size:128"`
	Role           int        `gorm:"column:role"`
	JoinedAtBlock  uint64     `gorm:"column:joined_at_block"`
	LeftAtBlock    *uint64    `gorm:"column:left_at_block"`
	LastLeaveBlock *uint64    `gorm:"column:last_leave_block"`
}

func (ParticipantRow) TableName() string { return "group_feed_participants" }

// KeyGenerationRow backs GroupFeedKeyGenerations, PK (feed_id, version).
type KeyGenerationRow struct {
	FeedId         string `gorm:"primary_key;column:feed_id;size:32"`
	Version        uint32 `gorm:"primary_key;column:version"`
	ValidFromBlock uint64 `gorm:"column:valid_from_block"`
	Trigger        int    `gorm:"column:trigger"`
}

func (KeyGenerationRow) TableName() string { return "group_feed_key_generations" }

// EncryptedKeyRow backs GroupFeedEncryptedKeys, PK (feed_id, version, member_address).
type EncryptedKeyRow struct {
	FeedId        string `gorm:"primary_key;column:feed_id;size:32"`
	Version       uint32 `gorm:"primary_key;column:version"`
	MemberAddress string `gorm:"primary_key;column:member_address;size:128"`
	Ciphertext    []byte `gorm:"column:ciphertext;type:blob"`
}

func (EncryptedKeyRow) TableName() string { return "group_feed_encrypted_keys" }

// MessageRow backs FeedMessages.
type MessageRow struct {
	Id               string    `gorm:"primary_key;column:id;size:32"`
	FeedId           string    `gorm:"column:feed_id;size:32;index"`
	Ciphertext       []byte    `gorm:"column:ciphertext;type:blob"`
	SenderAddress    string    `gorm:"column:sender_address;size:128"`
	BlockIndex       uint64    `gorm:"column:block_index;index"`
	Timestamp        time.Time `gorm:"column:timestamp"`
	KeyGeneration    uint32    `gorm:"column:key_generation"`
	ReplyTo          *string   `gorm:"column:reply_to;size:32"`
	AuthorCommitment []byte    `gorm:"column:author_commitment"`
}

func (MessageRow) TableName() string { return "feed_messages" }

// AttachmentRow backs Attachments.
type AttachmentRow struct {
	Id                 string    `gorm:"primary_key;column:id;size:32"`
	FeedMessageId      string    `gorm:"column:feed_message_id;size:32;index"`
	MimeType           string    `gorm:"column:mime_type"`
	FileName           string    `gorm:"column:file_name"`
	ContentHash        string    `gorm:"column:content_hash"`
	OriginalSize       int64     `gorm:"column:original_size"`
	ThumbnailSize      int64     `gorm:"column:thumbnail_size"`
	HasThumbnail       bool      `gorm:"column:has_thumbnail"`
	CreatedAt          time.Time `gorm:"column:created_at"`
}

func (AttachmentRow) TableName() string { return "attachments" }

// ReadPositionRow backs FeedReadPositions, PK (user_address, feed_id).
type ReadPositionRow struct {
	UserAddress        string `gorm:"primary_key;column:user_address;size:128"`
	FeedId             string `gorm:"primary_key;column:feed_id;size:32"`
	LastReadBlockIndex uint64 `gorm:"column:last_read_block_index"`
}

func (ReadPositionRow) TableName() string { return "feed_read_positions" }
