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
)

func TestCreateAndPublishPackage(t *testing.T) {
	ctx := context.Background()
	pkgRepo := newFakePackageRepo()
	pub := &fakePublisher{}
	log := logger.NewLogger("test")

	createSvc := NewCreatePackageService(pkgRepo, log)
	pkg, err := createSvc.Execute(ctx, in.CreatePackageInput{
		SenderID:       "sender-1",
		Size:           model.SizeMedium,
		WeightKg:       3.2,
		PickupAddress:  "Av. Arequipa 1234, Lima",
		PickupLat:      -12.0464,
		PickupLng:      -77.0428,
		DropoffAddress: "Av. Larco 400, Miraflores",
		DropoffLat:     -12.1219,
		DropoffLng:     -77.0297,
	})
	if err != nil {
		t.Fatalf("create package: %v", err)
	}
	if pkg.Status != model.PackageStatusNew {
		t.Fatalf("expected new status, got %s", pkg.Status)
	}
	if pkg.TrackingID == "" {
		t.Fatalf("tracking id must be assigned")
	}

	publishSvc := NewPublishPackageService(pkgRepo, pub, log)

	// Публиковать может только отправитель
	if _, err := publishSvc.Execute(ctx, in.PublishPackageInput{PackageID: pkg.ID, ActorID: "other"}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	published, err := publishSvc.Execute(ctx, in.PublishPackageInput{PackageID: pkg.ID, ActorID: "sender-1"})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if published.Status != model.PackageStatusOpenForBids {
		t.Fatalf("expected open_for_bids, got %s", published.Status)
	}
	if published.BidDeadline == nil {
		t.Fatalf("bid deadline must be set on publish")
	}
	if len(pub.events) != 1 || pub.events[0] != model.EventPackagePublished {
		t.Fatalf("expected PACKAGE_PUBLISHED event, got %v", pub.events)
	}

	// Повторная публикация — конфликт
	if _, err := publishSvc.Execute(ctx, in.PublishPackageInput{PackageID: pkg.ID, ActorID: "sender-1"}); !errors.Is(err, domain.ErrStatusConflict) {
		t.Fatalf("expected ErrStatusConflict on republish, got %v", err)
	}
}

func TestCreatePackageValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewCreatePackageService(newFakePackageRepo(), logger.NewLogger("test"))

	base := in.CreatePackageInput{
		SenderID:   "sender-1",
		Size:       model.SizeSmall,
		WeightKg:   1,
		PickupLat:  -12.0,
		PickupLng:  -77.0,
		DropoffLat: -12.1,
		DropoffLng: -77.1,
	}

	bad := base
	bad.PickupLat = 91
	if _, err := svc.Execute(ctx, bad); !errors.Is(err, domain.ErrInvalidCoordinates) {
		t.Errorf("expected ErrInvalidCoordinates, got %v", err)
	}

	bad = base
	bad.Size = "gigantic"
	if _, err := svc.Execute(ctx, bad); err == nil {
		t.Errorf("expected size validation error")
	}

	bad = base
	bad.WeightKg = 0
	if _, err := svc.Execute(ctx, bad); err == nil {
		t.Errorf("expected weight validation error")
	}
}

func TestUpdatePackageOnlyWhileNew(t *testing.T) {
	ctx := context.Background()
	pkgRepo := newFakePackageRepo()
	svc := NewUpdatePackageService(pkgRepo, logger.NewLogger("test"))

	pkg := testPackage("sender-1", model.PackageStatusNew)
	pkgRepo.packages[pkg.ID] = pkg

	input := in.UpdatePackageInput{
		PackageID:      pkg.ID,
		ActorID:        "sender-1",
		Size:           model.SizeLarge,
		WeightKg:       8.5,
		PickupAddress:  "Jr. de la Union 500, Lima",
		PickupLat:      -12.0453,
		PickupLng:      -77.0311,
		DropoffAddress: "Av. Benavides 1200, Surco",
		DropoffLat:     -12.1283,
		DropoffLng:     -76.9946,
	}

	// Чужой пользователь править не может
	foreign := input
	foreign.ActorID = "other"
	if _, err := svc.Execute(ctx, foreign); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	updated, err := svc.Execute(ctx, input)
	if err != nil {
		t.Fatalf("update package: %v", err)
	}
	if updated.Size != model.SizeLarge || updated.WeightKg != 8.5 {
		t.Fatalf("fields not applied: size=%s weight=%v", updated.Size, updated.WeightKg)
	}
	stored := pkgRepo.packages[pkg.ID]
	if stored.DropoffAddress != input.DropoffAddress {
		t.Fatalf("update not persisted: %s", stored.DropoffAddress)
	}

	// Невалидные координаты отклоняются
	bad := input
	bad.PickupLat = 91
	if _, err := svc.Execute(ctx, bad); !errors.Is(err, domain.ErrInvalidCoordinates) {
		t.Fatalf("expected ErrInvalidCoordinates, got %v", err)
	}

	// После публикации правка запрещена
	stored.Status = model.PackageStatusOpenForBids
	if _, err := svc.Execute(ctx, input); !errors.Is(err, domain.ErrStatusConflict) {
		t.Fatalf("expected ErrStatusConflict after publish, got %v", err)
	}
}

func TestAdvanceStatusForwardOnly(t *testing.T) {
	ctx := context.Background()
	pkgRepo := newFakePackageRepo()
	pub := &fakePublisher{}
	svc := NewAdvanceStatusService(pkgRepo, pub, logger.NewLogger("test"))

	courierID := "courier-1"
	pkg := testPackage("sender-1", model.PackageStatusBidSelected)
	pkg.CourierID = &courierID
	pkgRepo.packages[pkg.ID] = pkg

	// Чужой пользователь продвигать не может
	if _, err := svc.Execute(ctx, in.AdvanceStatusInput{PackageID: pkg.ID, ActorID: "other", ToStatus: model.PackageStatusPendingPickup}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	// Пропуск шага запрещен
	if _, err := svc.Execute(ctx, in.AdvanceStatusInput{PackageID: pkg.ID, ActorID: courierID, ToStatus: model.PackageStatusInTransit}); !errors.Is(err, domain.ErrStatusConflict) {
		t.Fatalf("expected ErrStatusConflict on skip, got %v", err)
	}

	// Отмена через продвижение статуса запрещена: она идет только через
	// CancelPackageService, иначе посылка осталась бы активной без cancelled_at
	for _, target := range []string{model.PackageStatusCanceled, model.PackageStatusFailed} {
		if _, err := svc.Execute(ctx, in.AdvanceStatusInput{PackageID: pkg.ID, ActorID: courierID, ToStatus: target}); !errors.Is(err, domain.ErrStatusConflict) {
			t.Fatalf("expected ErrStatusConflict advancing to %s, got %v", target, err)
		}
	}
	if stored := pkgRepo.packages[pkg.ID]; stored.Status != model.PackageStatusBidSelected || !stored.IsActive {
		t.Fatalf("package must stay untouched, got status=%s active=%v", stored.Status, stored.IsActive)
	}

	steps := []string{
		model.PackageStatusPendingPickup,
		model.PackageStatusInTransit,
		model.PackageStatusDelivered,
	}
	for _, next := range steps {
		updated, err := svc.Execute(ctx, in.AdvanceStatusInput{PackageID: pkg.ID, ActorID: courierID, ToStatus: next})
		if err != nil {
			t.Fatalf("advance to %s: %v", next, err)
		}
		if updated.Status != next {
			t.Fatalf("expected %s, got %s", next, updated.Status)
		}
	}

	// Движение назад запрещено
	if _, err := svc.Execute(ctx, in.AdvanceStatusInput{PackageID: pkg.ID, ActorID: courierID, ToStatus: model.PackageStatusInTransit}); !errors.Is(err, domain.ErrStatusConflict) {
		t.Fatalf("expected ErrStatusConflict on backward move, got %v", err)
	}

	final, _ := pkgRepo.FindByID(ctx, pkg.ID)
	if final.DeliveredAt == nil || final.PickedUpAt == nil || final.ConfirmedAt == nil {
		t.Fatalf("lifecycle timestamps must be recorded")
	}
	if len(pub.events) != 3 {
		t.Fatalf("expected 3 status events, got %d", len(pub.events))
	}
}

func TestCancelPackage(t *testing.T) {
	ctx := context.Background()
	pkgRepo := newFakePackageRepo()
	pub := &fakePublisher{}
	svc := NewCancelPackageService(pkgRepo, pub, logger.NewLogger("test"))

	open := testPackage("sender-1", model.PackageStatusOpenForBids)
	pkgRepo.packages[open.ID] = open

	cancelled, err := svc.Execute(ctx, in.CancelPackageInput{
		PackageID: open.ID,
		ActorID:   "sender-1",
		ActorRole: model.RoleSender,
		Reason:    "changed my mind",
	})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != model.PackageStatusCanceled {
		t.Fatalf("expected canceled, got %s", cancelled.Status)
	}
	if cancelled.CancellationReason == nil || *cancelled.CancellationReason != "changed my mind" {
		t.Fatalf("cancellation reason must be recorded")
	}

	// После выбора ставки отправитель отменить не может
	courierID := "courier-1"
	matched := testPackage("sender-1", model.PackageStatusBidSelected)
	matched.CourierID = &courierID
	pkgRepo.packages[matched.ID] = matched
	if _, err := svc.Execute(ctx, in.CancelPackageInput{PackageID: matched.ID, ActorID: "sender-1", ActorRole: model.RoleSender}); !errors.Is(err, domain.ErrNotCancellable) {
		t.Fatalf("expected ErrNotCancellable, got %v", err)
	}

	// Админ может пометить посылку как failed на любом нетерминальном шаге
	failed, err := svc.Execute(ctx, in.CancelPackageInput{
		PackageID:    matched.ID,
		ActorID:      "admin-1",
		ActorRole:    model.RoleAdmin,
		Reason:       "courier unreachable",
		MarkAsFailed: true,
	})
	if err != nil {
		t.Fatalf("admin fail: %v", err)
	}
	if failed.Status != model.PackageStatusFailed {
		t.Fatalf("expected failed, got %s", failed.Status)
	}

	// Отмена чужой посылки запрещена
	other := testPackage("sender-2", model.PackageStatusNew)
	pkgRepo.packages[other.ID] = other
	if _, err := svc.Execute(ctx, in.CancelPackageInput{PackageID: other.ID, ActorID: "sender-1", ActorRole: model.RoleSender}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAcceptPackageDirect(t *testing.T) {
	ctx := context.Background()
	pkgRepo := newFakePackageRepo()
	pub := &fakePublisher{}
	users := newFakeUserRepo(verifiedCourier("courier-1"))
	svc := NewAcceptPackageService(pkgRepo, users, pub, logger.NewLogger("test"))

	pkg := testPackage("sender-1", model.PackageStatusOpenForBids)
	pkgRepo.packages[pkg.ID] = pkg

	accepted, err := svc.Execute(ctx, in.AcceptPackageInput{PackageID: pkg.ID, CourierID: "courier-1"})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != model.PackageStatusBidSelected {
		t.Fatalf("expected bid_selected, got %s", accepted.Status)
	}
	if accepted.CourierID == nil || *accepted.CourierID != "courier-1" {
		t.Fatalf("courier must be assigned")
	}
	if accepted.SelectedBidID != nil {
		t.Fatalf("direct accept must not reference a bid")
	}

	// Повторное принятие — конфликт
	if _, err := svc.Execute(ctx, in.AcceptPackageInput{PackageID: pkg.ID, CourierID: "courier-1"}); !errors.Is(err, domain.ErrStatusConflict) {
		t.Fatalf("expected ErrStatusConflict, got %v", err)
	}
}

// Полный сценарий торгов: публикация, две ставки, замена, выбор, доставка.
func TestBiddingEndToEnd(t *testing.T) {
	ctx := context.Background()
	pkgRepo := newFakePackageRepo()
	ledger := newFakeBidLedger(pkgRepo)
	users := newFakeUserRepo(verifiedCourier("courier-1"), verifiedCourier("courier-2"))
	pub := &fakePublisher{}
	log := logger.NewLogger("test")

	createSvc := NewCreatePackageService(pkgRepo, log)
	publishSvc := NewPublishPackageService(pkgRepo, pub, log)
	submitSvc := NewSubmitBidService(pkgRepo, ledger, users, pub, log)
	selectSvc := NewSelectBidService(pkgRepo, ledger, pub, log)
	advanceSvc := NewAdvanceStatusService(pkgRepo, pub, log)

	pkg, err := createSvc.Execute(ctx, in.CreatePackageInput{
		SenderID:   "sender-1",
		Size:       model.SizeSmall,
		WeightKg:   0.8,
		PickupLat:  -12.05,
		PickupLng:  -77.04,
		DropoffLat: -12.12,
		DropoffLng: -77.03,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := publishSvc.Execute(ctx, in.PublishPackageInput{
		PackageID:   pkg.ID,
		ActorID:     "sender-1",
		BidDeadline: time.Now().UTC().Add(48 * time.Hour),
	}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if _, err := submitSvc.Execute(ctx, in.SubmitBidInput{PackageID: pkg.ID, CourierID: "courier-1", ProposedPrice: 40}); err != nil {
		t.Fatalf("bid courier-1: %v", err)
	}
	// courier-1 снижает цену, ставка заменяется
	rebid, err := submitSvc.Execute(ctx, in.SubmitBidInput{PackageID: pkg.ID, CourierID: "courier-1", ProposedPrice: 35})
	if err != nil {
		t.Fatalf("rebid courier-1: %v", err)
	}
	if !rebid.Superseded || rebid.BidCount != 1 {
		t.Fatalf("rebid must supersede, got superseded=%v count=%d", rebid.Superseded, rebid.BidCount)
	}
	winning, err := submitSvc.Execute(ctx, in.SubmitBidInput{PackageID: pkg.ID, CourierID: "courier-2", ProposedPrice: 30})
	if err != nil {
		t.Fatalf("bid courier-2: %v", err)
	}
	if winning.BidCount != 2 {
		t.Fatalf("expected 2 active bids, got %d", winning.BidCount)
	}

	selected, err := selectSvc.Execute(ctx, in.SelectBidInput{PackageID: pkg.ID, BidID: winning.Bid.ID, ActorID: "sender-1"})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if *selected.Package.CourierID != "courier-2" || *selected.Package.Price != 30 {
		t.Fatalf("selected package must carry winning courier and price")
	}

	for _, next := range []string{model.PackageStatusPendingPickup, model.PackageStatusInTransit, model.PackageStatusDelivered} {
		if _, err := advanceSvc.Execute(ctx, in.AdvanceStatusInput{PackageID: pkg.ID, ActorID: "courier-2", ToStatus: next}); err != nil {
			t.Fatalf("advance to %s: %v", next, err)
		}
	}

	final, _ := pkgRepo.FindByID(ctx, pkg.ID)
	if final.Status != model.PackageStatusDelivered {
		t.Fatalf("expected delivered, got %s", final.Status)
	}
}
