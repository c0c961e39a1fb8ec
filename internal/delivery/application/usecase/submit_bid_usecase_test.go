package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"chaski/internal/delivery/application/ports/in"
	"chaski/internal/delivery/domain"
	"chaski/internal/model"
	"chaski/internal/shared/logger"
	"chaski/internal/shared/user"
)

func newSubmitService(pkgRepo *fakePackageRepo, ledger *fakeBidLedger, users *fakeUserRepo) (*SubmitBidService, *fakePublisher) {
	pub := &fakePublisher{}
	log := logger.NewLogger("test")
	return NewSubmitBidService(pkgRepo, ledger, users, pub, log), pub
}

func TestSubmitBid(t *testing.T) {
	ctx := context.Background()

	pkgRepo := newFakePackageRepo()
	pkg := testPackage("sender-1", model.PackageStatusOpenForBids)
	pkgRepo.packages[pkg.ID] = pkg
	ledger := newFakeBidLedger(pkgRepo)
	users := newFakeUserRepo(verifiedCourier("courier-1"))
	svc, pub := newSubmitService(pkgRepo, ledger, users)

	out, err := svc.Execute(ctx, in.SubmitBidInput{
		PackageID:     pkg.ID,
		CourierID:     "courier-1",
		ProposedPrice: 25.0,
	})
	if err != nil {
		t.Fatalf("submit bid: %v", err)
	}
	if out.Bid.Status != model.BidStatusActive {
		t.Fatalf("expected active bid, got %s", out.Bid.Status)
	}
	if out.Superseded {
		t.Fatalf("first bid must not supersede anything")
	}
	if out.BidCount != 1 {
		t.Fatalf("expected bid_count 1, got %d", out.BidCount)
	}
	if len(pub.events) != 1 || pub.events[0] != model.EventBidSubmitted {
		t.Fatalf("expected BID_SUBMITTED event, got %v", pub.events)
	}
}

func TestSubmitBidSupersedesPrevious(t *testing.T) {
	ctx := context.Background()

	pkgRepo := newFakePackageRepo()
	pkg := testPackage("sender-1", model.PackageStatusOpenForBids)
	pkgRepo.packages[pkg.ID] = pkg
	ledger := newFakeBidLedger(pkgRepo)
	users := newFakeUserRepo(verifiedCourier("courier-1"))
	svc, _ := newSubmitService(pkgRepo, ledger, users)

	first, err := svc.Execute(ctx, in.SubmitBidInput{PackageID: pkg.ID, CourierID: "courier-1", ProposedPrice: 30.0})
	if err != nil {
		t.Fatalf("first bid: %v", err)
	}
	second, err := svc.Execute(ctx, in.SubmitBidInput{PackageID: pkg.ID, CourierID: "courier-1", ProposedPrice: 20.0})
	if err != nil {
		t.Fatalf("second bid: %v", err)
	}

	if !second.Superseded {
		t.Fatalf("second bid must supersede the first")
	}
	if second.BidCount != 1 {
		t.Fatalf("replacement must keep one active bid per courier, got %d", second.BidCount)
	}
	old, err := ledger.FindByID(ctx, first.Bid.ID)
	if err != nil {
		t.Fatalf("find first bid: %v", err)
	}
	if old.Status != model.BidStatusSuperseded {
		t.Fatalf("expected first bid superseded, got %s", old.Status)
	}
}

func TestSubmitBidGates(t *testing.T) {
	ctx := context.Background()

	unverified := &user.User{ID: "courier-2", Role: "courier", IsActive: true, IDVerified: false}
	inactive := &user.User{ID: "courier-3", Role: "courier", IsActive: false, IDVerified: true}
	senderOnly := &user.User{ID: "sender-1", Role: "sender", IsActive: true, IDVerified: true}

	pkgRepo := newFakePackageRepo()
	openPkg := testPackage("sender-1", model.PackageStatusOpenForBids)
	newPkg := testPackage("sender-1", model.PackageStatusNew)
	expiredPkg := testPackage("sender-1", model.PackageStatusOpenForBids)
	past := time.Now().UTC().Add(-time.Hour)
	expiredPkg.BidDeadline = &past
	for _, p := range []*domain.Package{openPkg, newPkg, expiredPkg} {
		pkgRepo.packages[p.ID] = p
	}
	ledger := newFakeBidLedger(pkgRepo)
	users := newFakeUserRepo(verifiedCourier("courier-1"), unverified, inactive, senderOnly)
	svc, _ := newSubmitService(pkgRepo, ledger, users)

	tests := []struct {
		name    string
		input   in.SubmitBidInput
		wantErr error
	}{
		{
			name:    "unverified courier",
			input:   in.SubmitBidInput{PackageID: openPkg.ID, CourierID: "courier-2", ProposedPrice: 10},
			wantErr: domain.ErrCourierNotVerified,
		},
		{
			name:    "inactive courier",
			input:   in.SubmitBidInput{PackageID: openPkg.ID, CourierID: "courier-3", ProposedPrice: 10},
			wantErr: domain.ErrCourierNotVerified,
		},
		{
			name:    "sender role cannot bid",
			input:   in.SubmitBidInput{PackageID: openPkg.ID, CourierID: "sender-1", ProposedPrice: 10},
			wantErr: domain.ErrCourierNotVerified,
		},
		{
			name:    "package not open for bids",
			input:   in.SubmitBidInput{PackageID: newPkg.ID, CourierID: "courier-1", ProposedPrice: 10},
			wantErr: domain.ErrInvalidBid,
		},
		{
			name:    "deadline passed",
			input:   in.SubmitBidInput{PackageID: expiredPkg.ID, CourierID: "courier-1", ProposedPrice: 10},
			wantErr: domain.ErrInvalidBid,
		},
		{
			name:    "non-positive price",
			input:   in.SubmitBidInput{PackageID: openPkg.ID, CourierID: "courier-1", ProposedPrice: 0},
			wantErr: domain.ErrInvalidBid,
		},
		{
			name:    "unknown package",
			input:   in.SubmitBidInput{PackageID: "missing", CourierID: "courier-1", ProposedPrice: 10},
			wantErr: domain.ErrPackageNotFound,
		},
	}

	for _, tc := range tests {
		if _, err := svc.Execute(ctx, tc.input); !errors.Is(err, tc.wantErr) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.wantErr, err)
		}
	}
}

func TestSubmitBidOnOwnPackage(t *testing.T) {
	ctx := context.Background()

	pkgRepo := newFakePackageRepo()
	pkg := testPackage("both-1", model.PackageStatusOpenForBids)
	pkgRepo.packages[pkg.ID] = pkg
	ledger := newFakeBidLedger(pkgRepo)
	both := &user.User{ID: "both-1", Role: "both", IsActive: true, IDVerified: true}
	svc, _ := newSubmitService(pkgRepo, ledger, newFakeUserRepo(both))

	_, err := svc.Execute(ctx, in.SubmitBidInput{PackageID: pkg.ID, CourierID: "both-1", ProposedPrice: 10})
	if !errors.Is(err, domain.ErrInvalidBid) {
		t.Fatalf("expected ErrInvalidBid for own package, got %v", err)
	}
}

func TestSelectBid(t *testing.T) {
	ctx := context.Background()

	pkgRepo := newFakePackageRepo()
	pkg := testPackage("sender-1", model.PackageStatusOpenForBids)
	pkgRepo.packages[pkg.ID] = pkg
	ledger := newFakeBidLedger(pkgRepo)
	users := newFakeUserRepo(verifiedCourier("courier-1"), verifiedCourier("courier-2"))
	submitSvc, _ := newSubmitService(pkgRepo, ledger, users)

	bid1, err := submitSvc.Execute(ctx, in.SubmitBidInput{PackageID: pkg.ID, CourierID: "courier-1", ProposedPrice: 30})
	if err != nil {
		t.Fatalf("bid1: %v", err)
	}
	bid2, err := submitSvc.Execute(ctx, in.SubmitBidInput{PackageID: pkg.ID, CourierID: "courier-2", ProposedPrice: 25})
	if err != nil {
		t.Fatalf("bid2: %v", err)
	}

	pub := &fakePublisher{}
	selectSvc := NewSelectBidService(pkgRepo, ledger, pub, logger.NewLogger("test"))

	// Не отправитель выбрать не может
	if _, err := selectSvc.Execute(ctx, in.SelectBidInput{PackageID: pkg.ID, BidID: bid2.Bid.ID, ActorID: "courier-1"}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-sender, got %v", err)
	}

	out, err := selectSvc.Execute(ctx, in.SelectBidInput{PackageID: pkg.ID, BidID: bid2.Bid.ID, ActorID: "sender-1"})
	if err != nil {
		t.Fatalf("select bid: %v", err)
	}
	if out.Package.Status != model.PackageStatusBidSelected {
		t.Fatalf("expected bid_selected, got %s", out.Package.Status)
	}
	if out.Package.CourierID == nil || *out.Package.CourierID != "courier-2" {
		t.Fatalf("courier must be assigned from the selected bid")
	}
	if out.Package.Price == nil || *out.Package.Price != 25 {
		t.Fatalf("agreed price must come from the selected bid")
	}
	if out.Bid.Status != model.BidStatusSelected {
		t.Fatalf("expected selected bid status, got %s", out.Bid.Status)
	}

	// Конкурирующая ставка отклонена
	losing, err := ledger.FindByID(ctx, bid1.Bid.ID)
	if err != nil {
		t.Fatalf("find losing bid: %v", err)
	}
	if losing.Status != model.BidStatusRejected {
		t.Fatalf("expected losing bid rejected, got %s", losing.Status)
	}

	// Повторный выбор — конфликт
	if _, err := selectSvc.Execute(ctx, in.SelectBidInput{PackageID: pkg.ID, BidID: bid1.Bid.ID, ActorID: "sender-1"}); !errors.Is(err, domain.ErrStatusConflict) && !errors.Is(err, domain.ErrBidNotFound) {
		t.Fatalf("expected conflict on double select, got %v", err)
	}
}

func TestListBidsVisibility(t *testing.T) {
	ctx := context.Background()

	pkgRepo := newFakePackageRepo()
	pkg := testPackage("sender-1", model.PackageStatusOpenForBids)
	pkgRepo.packages[pkg.ID] = pkg
	ledger := newFakeBidLedger(pkgRepo)
	users := newFakeUserRepo(verifiedCourier("courier-1"), verifiedCourier("courier-2"))
	submitSvc, _ := newSubmitService(pkgRepo, ledger, users)

	for _, c := range []string{"courier-1", "courier-2"} {
		if _, err := submitSvc.Execute(ctx, in.SubmitBidInput{PackageID: pkg.ID, CourierID: c, ProposedPrice: 10}); err != nil {
			t.Fatalf("bid %s: %v", c, err)
		}
	}

	listSvc := NewListBidsService(pkgRepo, ledger)

	all, err := listSvc.Execute(ctx, pkg.ID, "sender-1")
	if err != nil {
		t.Fatalf("sender list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("sender must see all bids, got %d", len(all))
	}
	// Ставки возвращаются строго в порядке подачи
	if all[0].CourierID != "courier-1" || all[1].CourierID != "courier-2" {
		t.Fatalf("bids must preserve submission order, got %s, %s", all[0].CourierID, all[1].CourierID)
	}

	own, err := listSvc.Execute(ctx, pkg.ID, "courier-1")
	if err != nil {
		t.Fatalf("courier list: %v", err)
	}
	if len(own) != 1 || own[0].CourierID != "courier-1" {
		t.Fatalf("courier must see only own bids")
	}

	if _, err := listSvc.Execute(ctx, pkg.ID, "stranger"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for stranger, got %v", err)
	}
}
