// Package txpipeline is the two-phase validate→apply engine (spec §4.1):
// a transaction carries a typed payload tagged by PayloadKind; exactly one
// ContentHandler validates and signs it, then exactly one TransactionHandler
// applies its effects inside a single writable unit of work.
package txpipeline

import (
	"context"
	"time"

	"github.com/ground-x/feedscore/errs"
	flog "github.com/ground-x/feedscore/log"
	"github.com/ground-x/feedscore/metrics"
	"github.com/ground-x/feedscore/storage"
	"github.com/ground-x/feedscore/types"
)

var logger = flog.NewModuleLogger(flog.TxPipeline)

// PayloadKind is the stable tag dispatch is keyed on (spec §4.1.1).
type PayloadKind int

const (
	KindNewGroupFeed PayloadKind = iota + 1
	KindAddMemberToGroupFeed
	KindJoinGroupFeed
	KindLeaveGroupFeed
	KindBanFromGroupFeed
	KindUnbanFromGroupFeed
	KindPromoteToAdmin
	KindBlockMember
	KindUnblockMember
	KindUpdateGroupFeedTitle
	KindUpdateGroupFeedDescription
	KindDeleteGroupFeed
	KindGroupFeedKeyRotation
	KindNewGroupFeedMessage
)

// Transaction is the signed envelope entering the pipeline.
type Transaction struct {
	Id        types.TransactionId
	Kind      PayloadKind
	Signer    types.Address
	Signature []byte
	Payload   interface{}
}

// ValidatedTransaction is the output of a successful ContentHandler: the
// same transaction, stamped as having passed validation. It is threaded as
// an explicit value (spec §9): no ambient/thread-local state.
type ValidatedTransaction struct {
	Transaction
	ValidatedAt time.Time
}

// ContentHandler is a pure validator: no state writes, reads allowed,
// deterministic given its inputs (spec §4.1, §4.2).
type ContentHandler interface {
	Kind() PayloadKind
	ValidateAndSign(ctx context.Context, ro *storage.UnitOfWork, now types.BlockIndex, tx Transaction) (*ValidatedTransaction, error)
}

// TransactionHandler applies a validated transaction's effects within a
// writable unit of work and publishes events (spec §4.1, §4.3).
type TransactionHandler interface {
	Kind() PayloadKind
	Handle(ctx context.Context, storageSvc *storage.Service, now types.BlockIndex, vtx ValidatedTransaction) error
}

// Pipeline is the kind→handler dispatch table. Registration is strict:
// exactly one content handler and one transaction handler per kind.
type Pipeline struct {
	storage  *storage.Service
	content  map[PayloadKind]ContentHandler
	handlers map[PayloadKind]TransactionHandler
}

func New(storageSvc *storage.Service) *Pipeline {
	return &Pipeline{
		storage:  storageSvc,
		content:  make(map[PayloadKind]ContentHandler),
		handlers: make(map[PayloadKind]TransactionHandler),
	}
}

func (p *Pipeline) RegisterContentHandler(h ContentHandler) {
	if _, exists := p.content[h.Kind()]; exists {
		panic("txpipeline: duplicate content handler registration")
	}
	p.content[h.Kind()] = h
}

func (p *Pipeline) RegisterTransactionHandler(h TransactionHandler) {
	if _, exists := p.handlers[h.Kind()]; exists {
		panic("txpipeline: duplicate transaction handler registration")
	}
	p.handlers[h.Kind()] = h
}

// CanValidate reports whether kind has a registered content handler (spec
// §4.1 canValidate contract).
func (p *Pipeline) CanValidate(kind PayloadKind) bool {
	_, ok := p.content[kind]
	return ok
}

// Submit runs the full validate→apply cycle for tx. Replays of an
// already-applied transaction id are expected to be idempotent at the
// transaction-handler level; the pipeline itself does not deduplicate —
// that is the node's block-inclusion bookkeeping, outside this module
// (spec §1 non-goals).
func (p *Pipeline) Submit(ctx context.Context, now types.BlockIndex, tx Transaction) error {
	contentHandler, ok := p.content[tx.Kind]
	if !ok {
		return errs.New(errs.InvalidArgument, "unrecognized payload kind")
	}
	txHandler, ok := p.handlers[tx.Kind]
	if !ok {
		return errs.New(errs.InvalidArgument, "unrecognized payload kind")
	}

	validateStart := time.Now()
	ro := p.storage.CreateReadOnly(ctx)
	vtx, err := contentHandler.ValidateAndSign(ctx, ro, now, tx)
	metrics.PipelineDuration.WithLabelValues(kindLabel(tx.Kind), "validate").Observe(time.Since(validateStart).Seconds())
	if err != nil {
		logger.Info("transaction rejected", "kind", kindLabel(tx.Kind), "txId", tx.Id.String(), "err", err)
		return err
	}

	applyStart := time.Now()
	err = txHandler.Handle(ctx, p.storage, now, *vtx)
	metrics.PipelineDuration.WithLabelValues(kindLabel(tx.Kind), "apply").Observe(time.Since(applyStart).Seconds())
	if err != nil {
		logger.Warn("transaction apply failed", "kind", kindLabel(tx.Kind), "txId", tx.Id.String(), "err", err)
		return err
	}
	return nil
}

func kindLabel(k PayloadKind) string {
	switch k {
	case KindNewGroupFeed:
		return "NewGroupFeed"
	case KindAddMemberToGroupFeed:
		return "AddMemberToGroupFeed"
	case KindJoinGroupFeed:
		return "JoinGroupFeed"
	case KindLeaveGroupFeed:
		return "LeaveGroupFeed"
	case KindBanFromGroupFeed:
		return "BanFromGroupFeed"
	case KindUnbanFromGroupFeed:
		return "UnbanFromGroupFeed"
	case KindPromoteToAdmin:
		return "PromoteToAdmin"
	case KindBlockMember:
		return "BlockMember"
	case KindUnblockMember:
		return "UnblockMember"
	case KindUpdateGroupFeedTitle:
		return "UpdateGroupFeedTitle"
	case KindUpdateGroupFeedDescription:
		return "UpdateGroupFeedDescription"
	case KindDeleteGroupFeed:
		return "DeleteGroupFeed"
	case KindGroupFeedKeyRotation:
		return "GroupFeedKeyRotation"
	case KindNewGroupFeedMessage:
		return "NewGroupFeedMessage"
	default:
		return "Unknown"
	}
}
