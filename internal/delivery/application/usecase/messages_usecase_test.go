package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"chaski/internal/delivery/application/ports/in"
	"chaski/internal/delivery/domain"
	"chaski/internal/model"
	"chaski/internal/shared/logger"
)

func TestSendMessage(t *testing.T) {
	ctx := context.Background()
	pkgRepo := newFakePackageRepo()
	msgRepo := &fakeMessageRepo{}
	notifier := newFakeChatNotifier()
	svc := NewSendMessageService(pkgRepo, msgRepo, notifier, logger.NewLogger("test"))

	courierID := "courier-1"
	pkg := testPackage("sender-1", model.PackageStatusBidSelected)
	pkg.CourierID = &courierID
	pkgRepo.packages[pkg.ID] = pkg

	msg, err := svc.Execute(ctx, in.SendMessageInput{PackageID: pkg.ID, SenderID: "sender-1", Body: "когда заберете?"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.RecipientID != courierID {
		t.Fatalf("recipient must be the courier, got %s", msg.RecipientID)
	}
	if len(notifier.delivered[courierID]) != 1 {
		t.Fatalf("courier must receive a ws notification")
	}
	if got := notifier.delivered[courierID][0].TrackingID; got != pkg.TrackingID {
		t.Fatalf("ws event must carry tracking id, got %q", got)
	}

	// Ответ курьера адресуется отправителю
	reply, err := svc.Execute(ctx, in.SendMessageInput{PackageID: pkg.ID, SenderID: courierID, Body: "завтра утром"})
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if reply.RecipientID != "sender-1" {
		t.Fatalf("reply recipient must be the sender, got %s", reply.RecipientID)
	}
}

func TestSendMessageGates(t *testing.T) {
	ctx := context.Background()
	pkgRepo := newFakePackageRepo()
	svc := NewSendMessageService(pkgRepo, &fakeMessageRepo{}, newFakeChatNotifier(), logger.NewLogger("test"))

	// Чат закрыт пока курьер не назначен
	open := testPackage("sender-1", model.PackageStatusOpenForBids)
	pkgRepo.packages[open.ID] = open
	if _, err := svc.Execute(ctx, in.SendMessageInput{PackageID: open.ID, SenderID: "sender-1", Body: "hi"}); !errors.Is(err, domain.ErrMessageNotAllowed) {
		t.Fatalf("expected ErrMessageNotAllowed, got %v", err)
	}

	courierID := "courier-1"
	matched := testPackage("sender-1", model.PackageStatusBidSelected)
	matched.CourierID = &courierID
	pkgRepo.packages[matched.ID] = matched

	// Посторонний не участник чата
	if _, err := svc.Execute(ctx, in.SendMessageInput{PackageID: matched.ID, SenderID: "stranger", Body: "hi"}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	// Пустое и слишком длинное тело отклоняются
	if _, err := svc.Execute(ctx, in.SendMessageInput{PackageID: matched.ID, SenderID: "sender-1", Body: ""}); !errors.Is(err, domain.ErrMessageNotAllowed) {
		t.Fatalf("expected ErrMessageNotAllowed for empty body, got %v", err)
	}
	long := strings.Repeat("a", domain.MaxMessageBodyLen+1)
	if _, err := svc.Execute(ctx, in.SendMessageInput{PackageID: matched.ID, SenderID: "sender-1", Body: long}); !errors.Is(err, domain.ErrMessageNotAllowed) {
		t.Fatalf("expected ErrMessageNotAllowed for long body, got %v", err)
	}
}

func TestListMessagesMarksRead(t *testing.T) {
	ctx := context.Background()
	pkgRepo := newFakePackageRepo()
	msgRepo := &fakeMessageRepo{}
	sendSvc := NewSendMessageService(pkgRepo, msgRepo, newFakeChatNotifier(), logger.NewLogger("test"))
	listSvc := NewListMessagesService(pkgRepo, msgRepo)

	courierID := "courier-1"
	pkg := testPackage("sender-1", model.PackageStatusInTransit)
	pkg.CourierID = &courierID
	pkgRepo.packages[pkg.ID] = pkg

	if _, err := sendSvc.Execute(ctx, in.SendMessageInput{PackageID: pkg.ID, SenderID: "sender-1", Body: "первое"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := sendSvc.Execute(ctx, in.SendMessageInput{PackageID: pkg.ID, SenderID: "sender-1", Body: "второе"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	msgs, err := listSvc.Execute(ctx, in.ListMessagesInput{PackageID: pkg.ID, ReaderID: courierID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	for _, m := range msgRepo.messages {
		if !m.Read {
			t.Fatalf("incoming messages must be marked read after listing")
		}
	}

	if _, err := listSvc.Execute(ctx, in.ListMessagesInput{PackageID: pkg.ID, ReaderID: "stranger"}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
