package service

import (
	"context"
	"testing"
	"time"

	"ai-studyassistant-be/internal/entity"
	"ai-studyassistant-be/pkg/payments"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newTransactionFixture(t *testing.T) (*memStore, *stubProvider, ITransactionService) {
	t.Helper()
	store := newMemStore()
	stripe := &stubProvider{
		name:  entity.ProviderStripe,
		links: &payments.InvoiceLinks{InvoiceURL: "https://invoice.stripe.com/i/inv_1", ReceiptURL: "https://pay.stripe.com/receipts/r_1"},
	}
	svc := NewTransactionService(&memFactory{store}, payments.NewRegistry(stripe))
	return store, stripe, svc
}

func TestListOrdersBySettlementTime(t *testing.T) {
	store, _, svc := newTransactionFixture(t)
	now := time.Now().UTC()
	user := store.addUser(&entity.User{Email: "a@example.com"})

	// Created first but settled last: should surface on top.
	paidAt := now.Add(-time.Minute)
	early := store.addTransaction(&entity.Transaction{
		Reference: "ref_early",
		UserId:    user.Id,
		Provider:  entity.ProviderStripe,
		Status:    entity.TransactionStatusSuccess,
		PaidAt:    &paidAt,
		CreatedAt: now.Add(-2 * time.Hour),
		UpdatedAt: now.Add(-time.Minute),
	})
	late := store.addTransaction(&entity.Transaction{
		Reference: "ref_late",
		UserId:    user.Id,
		Provider:  entity.ProviderStripe,
		Status:    entity.TransactionStatusPending,
		CreatedAt: now.Add(-time.Hour),
		UpdatedAt: now.Add(-time.Hour),
	})

	res, err := svc.List(context.Background(), user.Id, false, 50, 0)
	assert.NoError(t, err)
	assert.Len(t, res.Transactions, 2)
	assert.Equal(t, early.Id, res.Transactions[0].Id)
	assert.Equal(t, late.Id, res.Transactions[1].Id)
	assert.True(t, res.Transactions[0].DisplayAt.Equal(early.UpdatedAt))
	assert.True(t, res.Transactions[1].DisplayAt.Equal(late.CreatedAt))
}

func TestListHidesInactiveRowsByDefault(t *testing.T) {
	store, _, svc := newTransactionFixture(t)
	now := time.Now().UTC()
	user := store.addUser(&entity.User{Email: "a@example.com"})

	store.addTransaction(&entity.Transaction{
		Reference: "ref_expired",
		UserId:    user.Id,
		Provider:  entity.ProviderStripe,
		Status:    entity.TransactionStatusExpired,
		CreatedAt: now.Add(-time.Hour),
	})
	store.addTransaction(&entity.Transaction{
		Reference: "ref_canceled",
		UserId:    user.Id,
		Provider:  entity.ProviderStripe,
		Status:    entity.TransactionStatusCanceled,
		CreatedAt: now.Add(-2 * time.Hour),
	})
	kept := store.addTransaction(&entity.Transaction{
		Reference: "ref_pending",
		UserId:    user.Id,
		Provider:  entity.ProviderStripe,
		Status:    entity.TransactionStatusPending,
		CreatedAt: now,
	})

	res, err := svc.List(context.Background(), user.Id, false, 50, 0)
	assert.NoError(t, err)
	assert.Len(t, res.Transactions, 1)
	assert.Equal(t, kept.Id, res.Transactions[0].Id)

	all, err := svc.List(context.Background(), user.Id, true, 50, 0)
	assert.NoError(t, err)
	assert.Len(t, all.Transactions, 3)
}

func TestListClampsLimit(t *testing.T) {
	store, _, svc := newTransactionFixture(t)
	now := time.Now().UTC()
	user := store.addUser(&entity.User{Email: "a@example.com"})
	for i := 0; i < 60; i++ {
		store.addTransaction(&entity.Transaction{
			Reference: uuid.NewString(),
			UserId:    user.Id,
			Provider:  entity.ProviderStripe,
			Status:    entity.TransactionStatusPending,
			CreatedAt: now.Add(-time.Duration(i) * time.Minute),
		})
	}

	res, err := svc.List(context.Background(), user.Id, false, 0, 0)
	assert.NoError(t, err)
	assert.Len(t, res.Transactions, 50)

	res, err = svc.List(context.Background(), user.Id, false, 500, 0)
	assert.NoError(t, err)
	assert.Len(t, res.Transactions, 50)
}

func TestInvoiceLinksReturnsProviderDocuments(t *testing.T) {
	store, _, svc := newTransactionFixture(t)
	user := store.addUser(&entity.User{Email: "a@example.com"})
	txn := store.addTransaction(&entity.Transaction{
		Reference: "ref_1",
		UserId:    user.Id,
		Provider:  entity.ProviderStripe,
		Status:    entity.TransactionStatusSuccess,
	})

	res, err := svc.InvoiceLinks(context.Background(), user.Id, txn.Id)
	assert.NoError(t, err)
	assert.Equal(t, "https://invoice.stripe.com/i/inv_1", res.InvoiceURL)
	assert.Equal(t, "https://pay.stripe.com/receipts/r_1", res.ReceiptURL)
	assert.Equal(t, "ref_1", res.Reference)
}

func TestInvoiceLinksRejectsForeignTransaction(t *testing.T) {
	store, _, svc := newTransactionFixture(t)
	owner := store.addUser(&entity.User{Email: "a@example.com"})
	other := store.addUser(&entity.User{Email: "b@example.com"})
	txn := store.addTransaction(&entity.Transaction{
		Reference: "ref_1",
		UserId:    owner.Id,
		Provider:  entity.ProviderStripe,
		Status:    entity.TransactionStatusSuccess,
	})

	_, err := svc.InvoiceLinks(context.Background(), other.Id, txn.Id)
	assert.ErrorIs(t, err, ErrTransactionNotFound)

	_, err = svc.InvoiceLinks(context.Background(), owner.Id, uuid.New())
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}
