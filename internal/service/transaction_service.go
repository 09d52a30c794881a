// FILE: internal/service/transaction_service.go
package service

import (
	"context"
	"sort"
	"time"

	"ai-studyassistant-be/internal/dto"
	"ai-studyassistant-be/internal/entity"
	"ai-studyassistant-be/internal/repository/specification"
	"ai-studyassistant-be/internal/repository/unitofwork"
	"ai-studyassistant-be/pkg/payments"

	"github.com/google/uuid"
)

type ITransactionService interface {
	// List returns the user's billing history, newest first by display
	// time. Expired and canceled rows are hidden unless includeInactive.
	List(ctx context.Context, userId uuid.UUID, includeInactive bool, limit, offset int) (*dto.TransactionListResponse, error)
	InvoiceLinks(ctx context.Context, userId uuid.UUID, txnId uuid.UUID) (*dto.InvoiceLinkResponse, error)
}

type transactionService struct {
	uowFactory unitofwork.RepositoryFactory
	registry   *payments.Registry
}

func NewTransactionService(uowFactory unitofwork.RepositoryFactory, registry *payments.Registry) ITransactionService {
	return &transactionService{
		uowFactory: uowFactory,
		registry:   registry,
	}
}

// displayAt is when the transaction becomes interesting to the user:
// settlement time once paid, creation time otherwise.
func displayAt(txn *entity.Transaction) time.Time {
	if txn.Status == entity.TransactionStatusSuccess {
		return txn.UpdatedAt
	}
	return txn.CreatedAt
}

func (s *transactionService) List(ctx context.Context, userId uuid.UUID, includeInactive bool, limit, offset int) (*dto.TransactionListResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	txns, err := uow.TransactionRepository().ListByUser(ctx, userId, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]dto.TransactionDTO, 0, len(txns))
	for _, txn := range txns {
		if !includeInactive &&
			(txn.Status == entity.TransactionStatusExpired || txn.Status == entity.TransactionStatusCanceled) {
			continue
		}
		items = append(items, dto.TransactionDTO{
			Id:              txn.Id,
			Reference:       txn.Reference,
			Provider:        string(txn.Provider),
			AmountMinor:     txn.AmountMinor,
			Currency:        txn.Currency,
			Status:          string(txn.Status),
			StatusReason:    string(txn.StatusReason),
			TransactionType: string(txn.TransactionType),
			PaidAt:          txn.PaidAt,
			CreatedAt:       txn.CreatedAt,
			DisplayAt:       displayAt(txn),
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].DisplayAt.After(items[j].DisplayAt)
	})
	return &dto.TransactionListResponse{Transactions: items}, nil
}

func (s *transactionService) InvoiceLinks(ctx context.Context, userId uuid.UUID, txnId uuid.UUID) (*dto.InvoiceLinkResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	txn, err := uow.TransactionRepository().FindOne(ctx, specification.ByID{ID: txnId})
	if err != nil {
		return nil, err
	}
	if txn == nil || txn.UserId != userId {
		return nil, ErrTransactionNotFound
	}

	provider, err := s.registry.Get(txn.Provider)
	if err != nil {
		return nil, err
	}
	links, err := provider.InvoiceLinks(ctx, txn.Reference)
	if err != nil {
		return nil, err
	}
	return &dto.InvoiceLinkResponse{
		Provider:   string(txn.Provider),
		InvoiceURL: links.InvoiceURL,
		ReceiptURL: links.ReceiptURL,
		Reference:  txn.Reference,
	}, nil
}
