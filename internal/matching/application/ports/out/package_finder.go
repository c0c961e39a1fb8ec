package out

import (
	"context"
	"time"

	"chaski/internal/matching/domain"
)

// PackageFinder читает посылки, доступные для матчинга
type PackageFinder interface {
	// FindOpenForBids возвращает все активные посылки в статусе open_for_bids
	FindOpenForBids(ctx context.Context) ([]*domain.CandidatePackage, error)
}

// ExpiredPackage — посылка с истекшим дедлайном ставок
type ExpiredPackage struct {
	ID                 string
	TrackingID         string
	SenderID           string
	BidCount           int
	DeadlineExtensions int
}

// DeadlineStore — операции deadline sweeper'а над посылками
type DeadlineStore interface {
	// FindExpired возвращает посылки open_for_bids с bid_deadline < now
	FindExpired(ctx context.Context, now time.Time) ([]*ExpiredPackage, error)

	// ExtendDeadline продлевает дедлайн; CAS по числу продлений
	ExtendDeadline(ctx context.Context, packageID string, newDeadline time.Time, prevExtensions int) (bool, error)

	// FailNoBids помечает посылку failed если ставок так и не появилось
	FailNoBids(ctx context.Context, packageID, reason string) (bool, error)
}
