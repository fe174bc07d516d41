package repo

import (
	"context"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"

	flog "github.com/ground-x/feedscore/log"
	"github.com/ground-x/feedscore/types"
)

var logger = flog.NewModuleLogger(flog.Storage)

// GormRepo is the durable store: the source of truth the overlay cache
// fronts (spec §4.5). It is safe to share across goroutines; gorm.DB pools
// its own connections the way the teacher shares a single *sql.DB handle.
type GormRepo struct {
	db *gorm.DB
}

// Open connects to the durable MySQL store and migrates the tables named in
// spec §6.
func Open(dsn string) (*GormRepo, error) {
	db, err := gorm.Open("mysql", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open durable store")
	}
	db.AutoMigrate(
		&FeedRow{}, &GroupFeedRow{}, &ParticipantRow{}, &KeyGenerationRow{},
		&EncryptedKeyRow{}, &MessageRow{}, &AttachmentRow{}, &ReadPositionRow{},
	)
	return &GormRepo{db: db}, nil
}

// WithTx returns a repo bound to an open gorm transaction, used by the
// writable unit of work.
func (r *GormRepo) WithTx(tx *gorm.DB) *GormRepo { return &GormRepo{db: tx} }

func (r *GormRepo) Close() error { return r.db.Close() }

// DB exposes the underlying connection so the storage service can begin
// its own transactions for writable units of work.
func (r *GormRepo) DB() *gorm.DB { return r.db }

func (r *GormRepo) GetMaxKeyGeneration(ctx context.Context, feedId types.FeedId) (uint32, bool, error) {
	var row GroupFeedRow
	if err := r.db.Where("feed_id = ?", feedId.String()).First(&row).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return row.CurrentKeyGeneration, true, nil
}

func (r *GormRepo) GetActiveGroupMemberAddresses(ctx context.Context, feedId types.FeedId, at types.BlockIndex) ([]types.Address, error) {
	var rows []ParticipantRow
	if err := r.db.Where("feed_id = ? AND left_at_block IS NULL AND role <> ?", feedId.String(), int(types.RoleBanned)).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]types.Address, 0, len(rows))
	for _, row := range rows {
		out = append(out, types.Address(row.Address))
	}
	return out, nil
}

func (r *GormRepo) GetFeedsForAddress(ctx context.Context, addr types.Address) ([]types.Feed, error) {
	var participantRows []ParticipantRow
	if err := r.db.Where("address = ? AND left_at_block IS NULL AND role <> ?", string(addr), int(types.RoleBanned)).Find(&participantRows).Error; err != nil {
		return nil, err
	}
	feeds := make([]types.Feed, 0, len(participantRows))
	for _, p := range participantRows {
		var row FeedRow
		if err := r.db.Where("id = ?", p.FeedId).First(&row).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				continue
			}
			return nil, err
		}
		feeds = append(feeds, feedFromRow(row))
	}
	return feeds, nil
}

func (r *GormRepo) GetGroupFeedsForAddress(ctx context.Context, addr types.Address) ([]types.GroupFeed, error) {
	var participantRows []ParticipantRow
	if err := r.db.Where("address = ? AND left_at_block IS NULL AND role <> ?", string(addr), int(types.RoleBanned)).Find(&participantRows).Error; err != nil {
		return nil, err
	}
	out := make([]types.GroupFeed, 0, len(participantRows))
	for _, p := range participantRows {
		gf, err := r.GetGroupFeed(ctx, mustParseFeedId(p.FeedId))
		if err != nil {
			return nil, err
		}
		if gf != nil {
			out = append(out, *gf)
		}
	}
	return out, nil
}

func (r *GormRepo) GetGroupFeed(ctx context.Context, feedId types.FeedId) (*types.GroupFeed, error) {
	var feedRow FeedRow
	if err := r.db.Where("id = ?", feedId.String()).First(&feedRow).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	var groupRow GroupFeedRow
	if err := r.db.Where("feed_id = ?", feedId.String()).First(&groupRow).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return &types.GroupFeed{
		Feed:                 feedFromRow(feedRow),
		Title:                groupRow.Title,
		Description:          groupRow.Description,
		IsPublic:             groupRow.IsPublic,
		CurrentKeyGeneration: groupRow.CurrentKeyGeneration,
		IsDeleted:            groupRow.IsDeleted,
	}, nil
}

func (r *GormRepo) GetParticipantWithHistory(ctx context.Context, feedId types.FeedId, addr types.Address) (*types.Participant, error) {
	var row ParticipantRow
	err := r.db.Where("feed_id = ? AND address = ?", feedId.String(), string(addr)).First(&row).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return participantFromRow(row), nil
}

func (r *GormRepo) GetPaginatedMessages(ctx context.Context, feedId types.FeedId, sinceBlock types.BlockIndex, limit int, fetchLatest bool, beforeBlock *types.BlockIndex) ([]types.EncryptedMessage, error) {
	q := r.db.Where("feed_id = ?", feedId.String())
	if beforeBlock != nil {
		q = q.Where("block_index < ?", uint64(*beforeBlock)).Order("block_index desc")
	} else if fetchLatest {
		q = q.Where("block_index >= ?", uint64(sinceBlock)).Order("block_index desc")
	} else {
		q = q.Where("block_index >= ?", uint64(sinceBlock)).Order("block_index asc")
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []MessageRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]types.EncryptedMessage, 0, len(rows))
	for _, row := range rows {
		out = append(out, messageFromRow(row))
	}
	return out, nil
}

func (r *GormRepo) GetMessageById(ctx context.Context, feedId types.FeedId, messageId types.MessageId) (*types.EncryptedMessage, error) {
	var row MessageRow
	err := r.db.Where("id = ?", messageId.String()).First(&row).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	if row.FeedId != feedId.String() {
		return nil, nil
	}
	m := messageFromRow(row)
	return &m, nil
}

func (r *GormRepo) IsAdmin(ctx context.Context, feedId types.FeedId, addr types.Address) (bool, error) {
	p, err := r.GetParticipantWithHistory(ctx, feedId, addr)
	if err != nil {
		return false, err
	}
	return p != nil && p.IsActive() && p.Role == types.RoleAdmin, nil
}

func (r *GormRepo) IsUserParticipantOfFeed(ctx context.Context, feedId types.FeedId, addr types.Address) (bool, error) {
	p, err := r.GetParticipantWithHistory(ctx, feedId, addr)
	if err != nil {
		return false, err
	}
	return p != nil && p.IsActive(), nil
}

func (r *GormRepo) GetAllKeyGenerations(ctx context.Context, feedId types.FeedId) ([]types.KeyGeneration, error) {
	var genRows []KeyGenerationRow
	if err := r.db.Where("feed_id = ?", feedId.String()).Order("version asc").Find(&genRows).Error; err != nil {
		return nil, err
	}
	out := make([]types.KeyGeneration, 0, len(genRows))
	for _, g := range genRows {
		var keyRows []EncryptedKeyRow
		if err := r.db.Where("feed_id = ? AND version = ?", feedId.String(), g.Version).Find(&keyRows).Error; err != nil {
			return nil, err
		}
		wrapped := make([]types.WrappedKey, 0, len(keyRows))
		for _, k := range keyRows {
			wrapped = append(wrapped, types.WrappedKey{
				FeedId:        feedId,
				Version:       k.Version,
				MemberAddress: types.Address(k.MemberAddress),
				Ciphertext:    k.Ciphertext,
			})
		}
		out = append(out, types.KeyGeneration{
			FeedId:         feedId,
			Version:        g.Version,
			ValidFromBlock: types.BlockIndex(g.ValidFromBlock),
			Trigger:        types.RotationTrigger(g.Trigger),
			EncryptedKeys:  wrapped,
		})
	}
	return out, nil
}

// GetWrappedKeysForUser is the durable fallback CachedReader populates its
// per-(version,address) cache entries from (spec §4.6).
func (r *GormRepo) GetWrappedKeysForUser(ctx context.Context, feedId types.FeedId, addr types.Address) ([]types.WrappedKey, error) {
	var rows []EncryptedKeyRow
	if err := r.db.Where("feed_id = ? AND member_address = ?", feedId.String(), string(addr)).Order("version asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]types.WrappedKey, 0, len(rows))
	for _, k := range rows {
		out = append(out, types.WrappedKey{
			FeedId:        feedId,
			Version:       k.Version,
			MemberAddress: addr,
			Ciphertext:    k.Ciphertext,
		})
	}
	return out, nil
}

func (r *GormRepo) GetReadPositionsForUser(ctx context.Context, addr types.Address) ([]types.ReadPosition, error) {
	var rows []ReadPositionRow
	if err := r.db.Where("user_address = ?", string(addr)).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]types.ReadPosition, 0, len(rows))
	for _, row := range rows {
		out = append(out, types.ReadPosition{
			UserAddress:        types.Address(row.UserAddress),
			FeedId:             mustParseFeedId(row.FeedId),
			LastReadBlockIndex: types.BlockIndex(row.LastReadBlockIndex),
		})
	}
	return out, nil
}

func (r *GormRepo) GetAllLastBlockIndexes(ctx context.Context) (map[types.FeedId]types.BlockIndex, error) {
	var rows []FeedRow
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[types.FeedId]types.BlockIndex, len(rows))
	for _, row := range rows {
		out[mustParseFeedId(row.Id)] = types.BlockIndex(row.LastBlockIndex)
	}
	return out, nil
}

func (r *GormRepo) GetAttachmentById(ctx context.Context, id types.AttachmentId) (*types.Attachment, error) {
	var row AttachmentRow
	if err := r.db.Where("id = ?", id.String()).First(&row).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return &types.Attachment{
		Id:            id,
		FeedMessageId: mustParseMessageId(row.FeedMessageId),
		MimeType:      row.MimeType,
		FileName:      row.FileName,
		ContentHash:   row.ContentHash,
		OriginalSize:  row.OriginalSize,
		ThumbnailSize: row.ThumbnailSize,
		CreatedAt:     row.CreatedAt,
	}, nil
}

func (r *GormRepo) CreateGroupFeed(ctx context.Context, group types.GroupFeed, participants []types.Participant) error {
	if err := r.db.Create(&FeedRow{
		Id:             group.Id.String(),
		Kind:           int(types.FeedKindGroup),
		CreatedAtBlock: uint64(group.CreatedAtBlock),
		LastBlockIndex: uint64(group.LastBlockIndex),
	}).Error; err != nil {
		return err
	}
	if err := r.db.Create(&GroupFeedRow{
		FeedId:               group.Id.String(),
		Title:                group.Title,
		Description:          group.Description,
		IsPublic:             group.IsPublic,
		CurrentKeyGeneration: group.CurrentKeyGeneration,
		IsDeleted:            group.IsDeleted,
	}).Error; err != nil {
		return err
	}
	for _, p := range participants {
		if err := r.AddParticipant(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *GormRepo) AddParticipant(ctx context.Context, p types.Participant) error {
	row := participantToRow(p)
	return r.db.Create(&row).Error
}

func (r *GormRepo) UpdateParticipantRejoin(ctx context.Context, feedId types.FeedId, addr types.Address, joinedAtBlock types.BlockIndex) error {
	return r.db.Model(&ParticipantRow{}).
		Where("feed_id = ? AND address = ?", feedId.String(), string(addr)).
		Updates(map[string]interface{}{
			"left_at_block": nil,
			"joined_at_block": uint64(joinedAtBlock),
			"role":            int(types.RoleMember),
		}).Error
}

func (r *GormRepo) UpdateParticipantType(ctx context.Context, feedId types.FeedId, addr types.Address, role types.ParticipantRole) error {
	return r.db.Model(&ParticipantRow{}).
		Where("feed_id = ? AND address = ?", feedId.String(), string(addr)).
		Update("role", int(role)).Error
}

func (r *GormRepo) UpdateParticipantLeft(ctx context.Context, feedId types.FeedId, addr types.Address, leftAtBlock types.BlockIndex) error {
	block := uint64(leftAtBlock)
	return r.db.Model(&ParticipantRow{}).
		Where("feed_id = ? AND address = ?", feedId.String(), string(addr)).
		Updates(map[string]interface{}{
			"left_at_block":    block,
			"last_leave_block": block,
		}).Error
}

func (r *GormRepo) CreateKeyRotation(ctx context.Context, gen types.KeyGeneration) error {
	if err := r.db.Create(&KeyGenerationRow{
		FeedId:         gen.FeedId.String(),
		Version:        gen.Version,
		ValidFromBlock: uint64(gen.ValidFromBlock),
		Trigger:        int(gen.Trigger),
	}).Error; err != nil {
		return err
	}
	for _, wk := range gen.EncryptedKeys {
		if err := r.db.Create(&EncryptedKeyRow{
			FeedId:        gen.FeedId.String(),
			Version:       gen.Version,
			MemberAddress: string(wk.MemberAddress),
			Ciphertext:    wk.Ciphertext,
		}).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *GormRepo) UpdateCurrentKeyGeneration(ctx context.Context, feedId types.FeedId, version uint32) error {
	return r.db.Model(&GroupFeedRow{}).
		Where("feed_id = ?", feedId.String()).
		Update("current_key_generation", version).Error
}

func (r *GormRepo) UpdateFeedBlockIndex(ctx context.Context, feedId types.FeedId, at types.BlockIndex) error {
	return r.db.Model(&FeedRow{}).
		Where("id = ? AND last_block_index < ?", feedId.String(), uint64(at)).
		Update("last_block_index", uint64(at)).Error
}

func (r *GormRepo) CreateFeedMessage(ctx context.Context, msg types.EncryptedMessage) error {
	var replyTo *string
	if msg.ReplyTo != nil {
		s := msg.ReplyTo.String()
		replyTo = &s
	}
	return r.db.Create(&MessageRow{
		Id:               msg.Id.String(),
		FeedId:           msg.FeedId.String(),
		Ciphertext:       msg.Ciphertext,
		SenderAddress:    string(msg.SenderAddress),
		BlockIndex:       uint64(msg.BlockIndex),
		Timestamp:        msg.Timestamp,
		KeyGeneration:    msg.KeyGeneration,
		ReplyTo:          replyTo,
		AuthorCommitment: msg.AuthorCommitment,
	}).Error
}

func (r *GormRepo) UpdateGroupFeedTitle(ctx context.Context, feedId types.FeedId, title string) error {
	return r.db.Model(&GroupFeedRow{}).Where("feed_id = ?", feedId.String()).Update("title", title).Error
}

func (r *GormRepo) UpdateGroupFeedDescription(ctx context.Context, feedId types.FeedId, description string) error {
	return r.db.Model(&GroupFeedRow{}).Where("feed_id = ?", feedId.String()).Update("description", description).Error
}

func (r *GormRepo) DeleteGroupFeed(ctx context.Context, feedId types.FeedId) error {
	return r.db.Model(&GroupFeedRow{}).Where("feed_id = ?", feedId.String()).Update("is_deleted", true).Error
}

func (r *GormRepo) UpsertReadPosition(ctx context.Context, pos types.ReadPosition) error {
	row := ReadPositionRow{
		UserAddress:        string(pos.UserAddress),
		FeedId:             pos.FeedId.String(),
		LastReadBlockIndex: uint64(pos.LastReadBlockIndex),
	}
	return r.db.Save(&row).Error
}

func feedFromRow(row FeedRow) types.Feed {
	return types.Feed{
		Id:             mustParseFeedId(row.Id),
		Kind:           types.FeedKind(row.Kind),
		CreatedAtBlock: types.BlockIndex(row.CreatedAtBlock),
		LastBlockIndex: types.BlockIndex(row.LastBlockIndex),
	}
}

func participantFromRow(row ParticipantRow) *types.Participant {
	p := &types.Participant{
		FeedId:        mustParseFeedId(row.FeedId),
		Address:       types.Address(row.Address),
		Role:          types.ParticipantRole(row.Role),
		JoinedAtBlock: types.BlockIndex(row.JoinedAtBlock),
	}
	if row.LeftAtBlock != nil {
		b := types.BlockIndex(*row.LeftAtBlock)
		p.LeftAtBlock = &b
	}
	if row.LastLeaveBlock != nil {
		b := types.BlockIndex(*row.LastLeaveBlock)
		p.LastLeaveBlock = &b
	}
	return p
}

func participantToRow(p types.Participant) ParticipantRow {
	row := ParticipantRow{
		FeedId:        p.FeedId.String(),
		Address:       string(p.Address),
		Role:          int(p.Role),
		JoinedAtBlock: uint64(p.JoinedAtBlock),
	}
	if p.LeftAtBlock != nil {
		b := uint64(*p.LeftAtBlock)
		row.LeftAtBlock = &b
	}
	if p.LastLeaveBlock != nil {
		b := uint64(*p.LastLeaveBlock)
		row.LastLeaveBlock = &b
	}
	return row
}

func messageFromRow(row MessageRow) types.EncryptedMessage {
	m := types.EncryptedMessage{
		Id:               mustParseMessageId(row.Id),
		FeedId:           mustParseFeedId(row.FeedId),
		Ciphertext:       row.Ciphertext,
		SenderAddress:    types.Address(row.SenderAddress),
		BlockIndex:       types.BlockIndex(row.BlockIndex),
		Timestamp:        row.Timestamp,
		KeyGeneration:    row.KeyGeneration,
		AuthorCommitment: row.AuthorCommitment,
	}
	if row.ReplyTo != nil {
		id := mustParseMessageId(*row.ReplyTo)
		m.ReplyTo = &id
	}
	return m
}

func mustParseFeedId(s string) types.FeedId {
	id, err := types.ParseFeedId(s)
	if err != nil {
		logger.Error("corrupt feed id in durable store", "raw", s, "err", err)
	}
	return id
}

func mustParseMessageId(s string) types.MessageId {
	id, err := types.ParseMessageId(s)
	if err != nil {
		logger.Error("corrupt message id in durable store", "raw", s, "err", err)
	}
	return id
}
