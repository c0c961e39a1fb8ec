package usecase

import (
	"context"
	"fmt"
	"time"

	"chaski/internal/delivery/application/ports/out"
	"chaski/internal/delivery/domain"
	"chaski/internal/model"
	"chaski/internal/shared/user"
)

// fakePackageRepo — in-memory реализация PackageRepository для тестов
type fakePackageRepo struct {
	packages map[string]*domain.Package
}

func newFakePackageRepo() *fakePackageRepo {
	return &fakePackageRepo{packages: make(map[string]*domain.Package)}
}

func (r *fakePackageRepo) Create(_ context.Context, pkg *domain.Package) error {
	cp := *pkg
	r.packages[pkg.ID] = &cp
	return nil
}

func (r *fakePackageRepo) FindByID(_ context.Context, id string) (*domain.Package, error) {
	pkg, ok := r.packages[id]
	if !ok {
		return nil, domain.ErrPackageNotFound
	}
	cp := *pkg
	return &cp, nil
}

func (r *fakePackageRepo) Update(_ context.Context, pkg *domain.Package) (bool, error) {
	stored, ok := r.packages[pkg.ID]
	if !ok || stored.Status != model.PackageStatusNew {
		return false, nil
	}
	stored.Size = pkg.Size
	stored.WeightKg = pkg.WeightKg
	stored.PickupAddress = pkg.PickupAddress
	stored.PickupLat = pkg.PickupLat
	stored.PickupLng = pkg.PickupLng
	stored.PickupContact = pkg.PickupContact
	stored.DropoffAddress = pkg.DropoffAddress
	stored.DropoffLat = pkg.DropoffLat
	stored.DropoffLng = pkg.DropoffLng
	stored.DropoffContact = pkg.DropoffContact
	stored.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *fakePackageRepo) FindByTrackingID(_ context.Context, trackingID string) (*domain.Package, error) {
	for _, pkg := range r.packages {
		if pkg.TrackingID == trackingID {
			cp := *pkg
			return &cp, nil
		}
	}
	return nil, domain.ErrPackageNotFound
}

func (r *fakePackageRepo) List(_ context.Context, filter out.PackageFilter) ([]*domain.Package, error) {
	var res []*domain.Package
	for _, pkg := range r.packages {
		if filter.SenderID != "" && pkg.SenderID != filter.SenderID {
			continue
		}
		if filter.CourierID != "" && (pkg.CourierID == nil || *pkg.CourierID != filter.CourierID) {
			continue
		}
		if filter.Status != "" && pkg.Status != filter.Status {
			continue
		}
		cp := *pkg
		res = append(res, &cp)
	}
	return res, nil
}

func (r *fakePackageRepo) UpdateStatusCAS(_ context.Context, id, expected, next string, at time.Time) (bool, error) {
	pkg, ok := r.packages[id]
	if !ok || pkg.Status != expected {
		return false, nil
	}
	pkg.Status = next
	pkg.UpdatedAt = at
	switch next {
	case model.PackageStatusPendingPickup:
		pkg.ConfirmedAt = &at
	case model.PackageStatusInTransit:
		pkg.PickedUpAt = &at
	case model.PackageStatusDelivered:
		pkg.DeliveredAt = &at
		pkg.IsActive = false
	}
	return true, nil
}

func (r *fakePackageRepo) Publish(_ context.Context, id string, deadline time.Time) (bool, error) {
	pkg, ok := r.packages[id]
	if !ok || pkg.Status != model.PackageStatusNew {
		return false, nil
	}
	now := time.Now().UTC()
	pkg.Status = model.PackageStatusOpenForBids
	pkg.BidDeadline = &deadline
	pkg.PublishedAt = &now
	return true, nil
}

func (r *fakePackageRepo) Cancel(_ context.Context, id, reason string, failed bool, allowedFrom []string) (bool, error) {
	pkg, ok := r.packages[id]
	if !ok {
		return false, nil
	}
	allowed := false
	for _, st := range allowedFrom {
		if pkg.Status == st {
			allowed = true
			break
		}
	}
	if !allowed {
		return false, nil
	}
	now := time.Now().UTC()
	if failed {
		pkg.Status = model.PackageStatusFailed
	} else {
		pkg.Status = model.PackageStatusCanceled
	}
	pkg.IsActive = false
	pkg.CancelledAt = &now
	pkg.CancellationReason = &reason
	return true, nil
}

func (r *fakePackageRepo) AssignCourier(_ context.Context, id, courierID string) (bool, error) {
	pkg, ok := r.packages[id]
	if !ok || pkg.Status != model.PackageStatusOpenForBids {
		return false, nil
	}
	now := time.Now().UTC()
	pkg.Status = model.PackageStatusBidSelected
	pkg.CourierID = &courierID
	pkg.MatchedAt = &now
	return true, nil
}

// fakeBidLedger — in-memory реализация BidLedger с семантикой замены и выбора
type fakeBidLedger struct {
	pkgRepo *fakePackageRepo
	bids    map[string]*domain.Bid
	order   []string
}

func newFakeBidLedger(pkgRepo *fakePackageRepo) *fakeBidLedger {
	return &fakeBidLedger{pkgRepo: pkgRepo, bids: make(map[string]*domain.Bid)}
}

func (l *fakeBidLedger) Submit(_ context.Context, bid *domain.Bid) (*out.SubmitResult, error) {
	pkg, ok := l.pkgRepo.packages[bid.PackageID]
	if !ok {
		return nil, domain.ErrPackageNotFound
	}
	if pkg.Status != model.PackageStatusOpenForBids {
		return nil, domain.ErrStatusConflict
	}
	superseded := false
	for _, b := range l.bids {
		if b.PackageID == bid.PackageID && b.CourierID == bid.CourierID && b.Status == model.BidStatusActive {
			b.Status = model.BidStatusSuperseded
			superseded = true
		}
	}
	cp := *bid
	l.bids[bid.ID] = &cp
	l.order = append(l.order, bid.ID)
	count := l.countActive(bid.PackageID)
	pkg.BidCount = count
	res := *bid
	return &out.SubmitResult{Bid: &res, Superseded: superseded, BidCount: count}, nil
}

func (l *fakeBidLedger) Select(_ context.Context, packageID, bidID, senderID string) (*out.SelectResult, error) {
	pkg, ok := l.pkgRepo.packages[packageID]
	if !ok {
		return nil, domain.ErrPackageNotFound
	}
	bid, ok := l.bids[bidID]
	if !ok || bid.PackageID != packageID || bid.Status != model.BidStatusActive {
		return nil, domain.ErrBidNotFound
	}
	if pkg.Status != model.PackageStatusOpenForBids {
		return nil, domain.ErrStatusConflict
	}
	rejected := 0
	for _, b := range l.bids {
		if b.PackageID == packageID && b.ID != bidID && b.Status == model.BidStatusActive {
			b.Status = model.BidStatusRejected
			rejected++
		}
	}
	bid.Status = model.BidStatusSelected
	now := time.Now().UTC()
	pkg.Status = model.PackageStatusBidSelected
	pkg.CourierID = &bid.CourierID
	pkg.Price = &bid.ProposedPrice
	pkg.SelectedBidID = &bid.ID
	pkg.MatchedAt = &now
	pkgCp := *pkg
	bidCp := *bid
	return &out.SelectResult{Package: &pkgCp, Bid: &bidCp, Rejected: rejected}, nil
}

func (l *fakeBidLedger) FindByID(_ context.Context, bidID string) (*domain.Bid, error) {
	bid, ok := l.bids[bidID]
	if !ok {
		return nil, domain.ErrBidNotFound
	}
	cp := *bid
	return &cp, nil
}

func (l *fakeBidLedger) ListByPackage(_ context.Context, packageID string) ([]*domain.Bid, error) {
	var res []*domain.Bid
	for _, id := range l.order {
		b := l.bids[id]
		if b.PackageID == packageID {
			cp := *b
			res = append(res, &cp)
		}
	}
	return res, nil
}

func (l *fakeBidLedger) CountActive(_ context.Context, packageID string) (int, error) {
	return l.countActive(packageID), nil
}

func (l *fakeBidLedger) countActive(packageID string) int {
	count := 0
	for _, b := range l.bids {
		if b.PackageID == packageID && b.Status == model.BidStatusActive {
			count++
		}
	}
	return count
}

// fakeUserRepo — in-memory реализация user.Repository
type fakeUserRepo struct {
	users map[string]*user.User
}

func newFakeUserRepo(users ...*user.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*user.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := r.users[id]
	return ok, nil
}

// fakePublisher записывает опубликованные события
type fakePublisher struct {
	events []string
}

func (p *fakePublisher) PublishPackageEvent(_ context.Context, eventType string, _ out.PackageEventData) error {
	p.events = append(p.events, eventType)
	return nil
}

// fakeChatNotifier записывает доставленные сообщения по получателям
type fakeChatNotifier struct {
	delivered map[string][]out.ChatMessage
}

func newFakeChatNotifier() *fakeChatNotifier {
	return &fakeChatNotifier{delivered: make(map[string][]out.ChatMessage)}
}

func (n *fakeChatNotifier) NotifyParticipant(_ context.Context, userID string, msg out.ChatMessage) error {
	n.delivered[userID] = append(n.delivered[userID], msg)
	return nil
}

// fakeMessageRepo — in-memory реализация MessageRepository
type fakeMessageRepo struct {
	messages []*domain.Message
}

func (r *fakeMessageRepo) Create(_ context.Context, msg *domain.Message) error {
	cp := *msg
	r.messages = append(r.messages, &cp)
	return nil
}

func (r *fakeMessageRepo) ListByPackage(_ context.Context, packageID string, limit, offset int) ([]*domain.Message, error) {
	var res []*domain.Message
	for _, m := range r.messages {
		if m.PackageID == packageID {
			cp := *m
			res = append(res, &cp)
		}
	}
	return res, nil
}

func (r *fakeMessageRepo) MarkRead(_ context.Context, packageID, recipientID string) error {
	for _, m := range r.messages {
		if m.PackageID == packageID && m.RecipientID == recipientID {
			m.Read = true
		}
	}
	return nil
}

var testSeq int

func testPackage(senderID, status string) *domain.Package {
	testSeq++
	now := time.Now().UTC()
	pkg := &domain.Package{
		ID:         fmt.Sprintf("pkg-%d", testSeq),
		TrackingID: fmt.Sprintf("PKG-TEST-%06d", testSeq),
		SenderID:   senderID,
		Status:     status,
		Size:       model.SizeSmall,
		WeightKg:   1.5,
		PickupLat:  -12.0464,
		PickupLng:  -77.0428,
		DropoffLat: -12.1219,
		DropoffLng: -77.0297,
		IsActive:   !domain.IsTerminalStatus(status),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if status == model.PackageStatusOpenForBids {
		deadline := now.Add(24 * time.Hour)
		pkg.BidDeadline = &deadline
		pkg.PublishedAt = &now
	}
	return pkg
}

func verifiedCourier(id string) *user.User {
	return &user.User{ID: id, Role: "courier", IsActive: true, IDVerified: true, MaxDeviationKm: 10}
}
