package txpipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ground-x/feedscore/errs"
	"github.com/ground-x/feedscore/storage"
	"github.com/ground-x/feedscore/types"
)

type stubContentHandler struct {
	kind    PayloadKind
	err     error
	called  int
}

func (h *stubContentHandler) Kind() PayloadKind { return h.kind }
func (h *stubContentHandler) ValidateAndSign(ctx context.Context, ro *storage.UnitOfWork, now types.BlockIndex, tx Transaction) (*ValidatedTransaction, error) {
	h.called++
	if h.err != nil {
		return nil, h.err
	}
	return &ValidatedTransaction{Transaction: tx, ValidatedAt: time.Now()}, nil
}

type stubTransactionHandler struct {
	kind   PayloadKind
	err    error
	called int
}

func (h *stubTransactionHandler) Kind() PayloadKind { return h.kind }
func (h *stubTransactionHandler) Handle(ctx context.Context, storageSvc *storage.Service, now types.BlockIndex, vtx ValidatedTransaction) error {
	h.called++
	return h.err
}

func TestCanValidateReflectsRegistration(t *testing.T) {
	p := New(nil)
	assert.False(t, p.CanValidate(KindNewGroupFeed))
	p.RegisterContentHandler(&stubContentHandler{kind: KindNewGroupFeed})
	assert.True(t, p.CanValidate(KindNewGroupFeed))
}

func TestRegisterDuplicateContentHandlerPanics(t *testing.T) {
	p := New(nil)
	p.RegisterContentHandler(&stubContentHandler{kind: KindNewGroupFeed})
	assert.Panics(t, func() {
		p.RegisterContentHandler(&stubContentHandler{kind: KindNewGroupFeed})
	})
}

func TestRegisterDuplicateTransactionHandlerPanics(t *testing.T) {
	p := New(nil)
	p.RegisterTransactionHandler(&stubTransactionHandler{kind: KindNewGroupFeed})
	assert.Panics(t, func() {
		p.RegisterTransactionHandler(&stubTransactionHandler{kind: KindNewGroupFeed})
	})
}

func TestSubmitRejectsUnrecognizedKind(t *testing.T) {
	p := New(&storage.Service{})
	err := p.Submit(context.Background(), 1, Transaction{Kind: KindNewGroupFeed})
	require.Error(t, err)
	assert.Equal(t, errs.InvalidArgument, errs.KindOf(err))
}

func TestSubmitShortCircuitsOnValidationFailure(t *testing.T) {
	p := New(&storage.Service{})
	content := &stubContentHandler{kind: KindNewGroupFeed, err: errs.New(errs.PermissionDenied, "nope")}
	apply := &stubTransactionHandler{kind: KindNewGroupFeed}
	p.RegisterContentHandler(content)
	p.RegisterTransactionHandler(apply)

	err := p.Submit(context.Background(), 1, Transaction{Kind: KindNewGroupFeed})
	require.Error(t, err)
	assert.Equal(t, 1, content.called)
	assert.Equal(t, 0, apply.called)
}

func TestSubmitAppliesAfterSuccessfulValidation(t *testing.T) {
	p := New(&storage.Service{})
	content := &stubContentHandler{kind: KindNewGroupFeed}
	apply := &stubTransactionHandler{kind: KindNewGroupFeed}
	p.RegisterContentHandler(content)
	p.RegisterTransactionHandler(apply)

	err := p.Submit(context.Background(), 1, Transaction{Kind: KindNewGroupFeed})
	require.NoError(t, err)
	assert.Equal(t, 1, content.called)
	assert.Equal(t, 1, apply.called)
}
