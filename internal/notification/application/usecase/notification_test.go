package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"chaski/internal/notification/application/ports/in"
	"chaski/internal/notification/domain"
	"chaski/internal/shared/logger"
)

type fakeNotificationRepo struct {
	items []*domain.Notification
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	cp := *n
	r.items = append(r.items, &cp)
	return nil
}

func (r *fakeNotificationRepo) CreateIfAbsent(ctx context.Context, n *domain.Notification, window time.Duration) (bool, error) {
	for _, it := range r.items {
		if it.UserID != n.UserID || it.PackageID != n.PackageID || it.Type != n.Type {
			continue
		}
		if window <= 0 || !it.CreatedAt.Before(n.CreatedAt.Add(-window)) {
			return false, nil
		}
	}
	return true, r.Create(ctx, n)
}

func (r *fakeNotificationRepo) ListByUser(_ context.Context, userID string, onlyUnread bool, limit, offset int) ([]*domain.Notification, error) {
	var res []*domain.Notification
	for _, it := range r.items {
		if it.UserID != userID {
			continue
		}
		if onlyUnread && it.Read {
			continue
		}
		res = append(res, it)
	}
	if offset > len(res) {
		offset = len(res)
	}
	res = res[offset:]
	if len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, userID string) (int, error) {
	count := 0
	for _, it := range r.items {
		if it.UserID == userID && !it.Read {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id, userID string) error {
	for _, it := range r.items {
		if it.ID == id && it.UserID == userID {
			it.Read = true
			return nil
		}
	}
	return domain.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, userID string) (int, error) {
	count := 0
	for _, it := range r.items {
		if it.UserID == userID && !it.Read {
			it.Read = true
			count++
		}
	}
	return count, nil
}

type fakePush struct {
	pushed  []string
	offline bool
}

func (p *fakePush) Push(_ context.Context, n *domain.Notification) error {
	if p.offline {
		return fmt.Errorf("user %s not connected", n.UserID)
	}
	p.pushed = append(p.pushed, n.UserID+":"+n.Type)
	return nil
}

func TestDispatchStoresAndPushes(t *testing.T) {
	repo := &fakeNotificationRepo{}
	push := &fakePush{}
	svc := NewDispatchService(repo, push, logger.NewLogger("test"))

	n := &domain.Notification{
		UserID:    "user-1",
		Type:      "bid_received",
		PackageID: "pkg-1",
		Title:     "Новая ставка",
	}
	if err := svc.Dispatch(context.Background(), n); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if n.ID == "" {
		t.Error("expected generated notification ID")
	}
	if len(repo.items) != 1 {
		t.Fatalf("expected 1 stored notification, got %d", len(repo.items))
	}
	if len(push.pushed) != 1 {
		t.Fatalf("expected 1 push, got %d", len(push.pushed))
	}
}

func TestDispatchOfflineUserStillStored(t *testing.T) {
	repo := &fakeNotificationRepo{}
	push := &fakePush{offline: true}
	svc := NewDispatchService(repo, push, logger.NewLogger("test"))

	n := &domain.Notification{
		UserID: "user-1",
		Type:   "status_changed",
		Title:  "Статус изменен",
	}
	if err := svc.Dispatch(context.Background(), n); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(repo.items) != 1 {
		t.Fatalf("offline push must not drop the notification, stored %d", len(repo.items))
	}
}

func TestDispatchOnceDeduplicates(t *testing.T) {
	repo := &fakeNotificationRepo{}
	push := &fakePush{}
	svc := NewDispatchService(repo, push, logger.NewLogger("test"))

	newMatch := func() *domain.Notification {
		return &domain.Notification{
			UserID:    "courier-1",
			Type:      "new_match",
			PackageID: "pkg-1",
			Title:     "Посылка по маршруту",
		}
	}

	created, err := svc.DispatchOnce(context.Background(), newMatch(), 24*time.Hour)
	if err != nil || !created {
		t.Fatalf("first DispatchOnce: created=%v err=%v", created, err)
	}
	created, err = svc.DispatchOnce(context.Background(), newMatch(), 24*time.Hour)
	if err != nil {
		t.Fatalf("second DispatchOnce: %v", err)
	}
	if created {
		t.Error("duplicate notification within the window must not be created")
	}
	if len(repo.items) != 1 || len(push.pushed) != 1 {
		t.Errorf("expected single stored/pushed notification, got %d/%d", len(repo.items), len(push.pushed))
	}
}

// Запись старше окна не блокирует новое уведомление
func TestDispatchOnceWindowExpires(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewDispatchService(repo, &fakePush{}, logger.NewLogger("test"))

	old := &domain.Notification{
		UserID:    "courier-1",
		Type:      "new_match",
		PackageID: "pkg-1",
		Title:     "Посылка по маршруту",
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}
	if _, err := svc.DispatchOnce(context.Background(), old, 24*time.Hour); err != nil {
		t.Fatalf("seed DispatchOnce: %v", err)
	}

	fresh := &domain.Notification{
		UserID:    "courier-1",
		Type:      "new_match",
		PackageID: "pkg-1",
		Title:     "Посылка по маршруту",
	}
	created, err := svc.DispatchOnce(context.Background(), fresh, 24*time.Hour)
	if err != nil || !created {
		t.Fatalf("stale record must not dedupe: created=%v err=%v", created, err)
	}
	if len(repo.items) != 2 {
		t.Fatalf("expected 2 stored notifications, got %d", len(repo.items))
	}

	// Нулевое окно дедуплицирует по любой ранее созданной записи
	created, err = svc.DispatchOnce(context.Background(), &domain.Notification{
		UserID:    "courier-1",
		Type:      "new_match",
		PackageID: "pkg-1",
		Title:     "Посылка по маршруту",
	}, 0)
	if err != nil {
		t.Fatalf("zero-window DispatchOnce: %v", err)
	}
	if created {
		t.Error("zero window must dedupe against any prior record")
	}
}

func TestDispatchRejectsInvalid(t *testing.T) {
	svc := NewDispatchService(&fakeNotificationRepo{}, &fakePush{}, logger.NewLogger("test"))

	err := svc.Dispatch(context.Background(), &domain.Notification{UserID: "user-1"})
	if err != domain.ErrInvalidNotification {
		t.Fatalf("expected ErrInvalidNotification, got %v", err)
	}
}

func TestMarkReadAndUnreadCount(t *testing.T) {
	repo := &fakeNotificationRepo{}
	push := &fakePush{}
	dispatch := NewDispatchService(repo, push, logger.NewLogger("test"))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		n := &domain.Notification{
			UserID:    "user-1",
			Type:      "bid_received",
			PackageID: fmt.Sprintf("pkg-%d", i),
			Title:     "Новая ставка",
		}
		if err := dispatch.Dispatch(ctx, n); err != nil {
			t.Fatalf("Dispatch: %v", err)
		}
	}

	unread := NewUnreadCountService(repo)
	count, err := unread.Execute(ctx, "user-1")
	if err != nil || count != 3 {
		t.Fatalf("unread count: got %d err=%v, want 3", count, err)
	}

	markRead := NewMarkReadService(repo)
	if err := markRead.Execute(ctx, repo.items[0].ID, "user-1"); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if err := markRead.Execute(ctx, repo.items[1].ID, "someone-else"); err != domain.ErrNotificationNotFound {
		t.Fatalf("foreign MarkRead: expected ErrNotificationNotFound, got %v", err)
	}

	count, _ = unread.Execute(ctx, "user-1")
	if count != 2 {
		t.Fatalf("unread after mark: got %d, want 2", count)
	}

	markAll := NewMarkAllReadService(repo)
	marked, err := markAll.Execute(ctx, "user-1")
	if err != nil || marked != 2 {
		t.Fatalf("MarkAllRead: marked=%d err=%v, want 2", marked, err)
	}

	list := NewListNotificationsService(repo)
	onlyUnread, err := list.Execute(ctx, in.ListNotificationsInput{UserID: "user-1", OnlyUnread: true})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(onlyUnread) != 0 {
		t.Errorf("expected no unread notifications, got %d", len(onlyUnread))
	}
}
