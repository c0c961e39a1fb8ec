package out

import (
	"context"

	"chaski/internal/delivery/domain"
)

// SubmitResult — результат регистрации ставки в реестре
type SubmitResult struct {
	Bid        *domain.Bid
	Superseded bool // предыдущая активная ставка курьера заменена
	BidCount   int  // актуальное число активных ставок по посылке
}

// SelectResult — результат выбора ставки
type SelectResult struct {
	Package  *domain.Package
	Bid      *domain.Bid
	Rejected int // число отклоненных конкурирующих ставок
}

// BidLedger — интерфейс реестра ставок. Реализация обязана выполнять
// Submit и Select в одной транзакции с проверкой статуса посылки.
type BidLedger interface {
	// Submit регистрирует ставку, заменяя предыдущую активную ставку
	// того же курьера по той же посылке
	Submit(ctx context.Context, bid *domain.Bid) (*SubmitResult, error)

	// Select выбирает ставку: посылка open_for_bids -> bid_selected,
	// ставка active -> selected, конкуренты active -> rejected.
	// Возвращает domain.ErrStatusConflict при повторном выборе.
	Select(ctx context.Context, packageID, bidID, senderID string) (*SelectResult, error)

	// FindByID возвращает ставку по ID
	FindByID(ctx context.Context, bidID string) (*domain.Bid, error)

	// ListByPackage возвращает все ставки по посылке (активные первыми)
	ListByPackage(ctx context.Context, packageID string) ([]*domain.Bid, error)

	// CountActive возвращает число активных ставок по посылке
	CountActive(ctx context.Context, packageID string) (int, error)
}
