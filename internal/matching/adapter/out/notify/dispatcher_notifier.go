package notify

import (
	"context"
	"fmt"

	"chaski/internal/matching/application/ports/out"
	"chaski/internal/matching/domain"
	"chaski/internal/model"
	"chaski/internal/notification/application/usecase"
	notifdomain "chaski/internal/notification/domain"
)

// DispatcherNotifier доставляет уведомления матчинга через сервис
// уведомлений. Дедупликация new_match обеспечивается условной вставкой
// по (курьер, посылка, тип) в пределах cooldown-окна прогона.
type DispatcherNotifier struct {
	dispatch *usecase.DispatchService
}

// NewDispatcherNotifier создает notifier поверх сервиса уведомлений
func NewDispatcherNotifier(dispatch *usecase.DispatchService) *DispatcherNotifier {
	return &DispatcherNotifier{dispatch: dispatch}
}

// NotifyMatch уведомляет курьера о посылке в коридоре его маршрута.
// Force отправляет заново даже при свежем дубликате.
func (n *DispatcherNotifier) NotifyMatch(ctx context.Context, match *domain.Match, opts out.NotifyOptions) (bool, error) {
	notification := &notifdomain.Notification{
		UserID:    match.CourierID,
		Type:      model.NotificationNewMatch,
		PackageID: match.Package.ID,
		Title:     "Посылка по вашему маршруту",
		Body:      fmt.Sprintf("Посылка %s подходит под ваш маршрут", match.Package.TrackingID),
		Data: map[string]any{
			"tracking_id": match.Package.TrackingID,
			"route_id":    match.RouteID,
			"size":        match.Package.Size,
		},
	}
	if opts.Force {
		if err := n.dispatch.Dispatch(ctx, notification); err != nil {
			return false, err
		}
		return true, nil
	}
	return n.dispatch.DispatchOnce(ctx, notification, opts.Window)
}

// NotifyBidsWaiting напоминает отправителю выбрать ставку (один раз на посылку)
func (n *DispatcherNotifier) NotifyBidsWaiting(ctx context.Context, senderID, packageID string, bidCount int) (bool, error) {
	return n.dispatch.DispatchOnce(ctx, &notifdomain.Notification{
		UserID:    senderID,
		Type:      model.NotificationBidsWaiting,
		PackageID: packageID,
		Title:     "Ставки ждут вашего решения",
		Body:      fmt.Sprintf("Дедлайн истек, по посылке ожидают %d ставок", bidCount),
		Data: map[string]any{
			"bid_count": bidCount,
		},
	}, 0)
}

// NotifyDeadlineExtended сообщает о продлении дедлайна ставок
func (n *DispatcherNotifier) NotifyDeadlineExtended(ctx context.Context, senderID, packageID string) (bool, error) {
	err := n.dispatch.Dispatch(ctx, &notifdomain.Notification{
		UserID:    senderID,
		Type:      model.NotificationDeadlineExtended,
		PackageID: packageID,
		Title:     "Дедлайн ставок продлен",
		Body:      "Ставок пока нет, прием ставок по посылке продлен",
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// NotifyPackageFailed сообщает о снятии посылки без ставок
func (n *DispatcherNotifier) NotifyPackageFailed(ctx context.Context, senderID, packageID string) (bool, error) {
	return n.dispatch.DispatchOnce(ctx, &notifdomain.Notification{
		UserID:    senderID,
		Type:      model.NotificationPackageFailed,
		PackageID: packageID,
		Title:     "Посылка снята с публикации",
		Body:      "Ставок не поступило, лимит продлений дедлайна исчерпан",
	}, 0)
}
