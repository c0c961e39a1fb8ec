package out

import (
	"context"

	"chaski/internal/admin/domain"
	"chaski/internal/shared/user"
)

// Поля верификации, переключаемые админом
const (
	FieldVerified      = "is_verified"
	FieldPhoneVerified = "phone_verified"
	FieldIDVerified    = "id_verified"
)

// UserAdminRepository — административные операции над пользователями
type UserAdminRepository interface {
	// Create сохраняет пользователя; ErrEmailTaken при дубликате email
	Create(ctx context.Context, u *user.User, passwordHash string) error

	// FindByEmail возвращает пользователя и hash пароля
	FindByEmail(ctx context.Context, email string) (*user.User, string, error)

	FindByID(ctx context.Context, id string) (*user.User, error)
	List(ctx context.Context, limit, offset int) ([]*user.User, error)

	UpdateRole(ctx context.Context, id, role string) error
	SetActive(ctx context.Context, id string, active bool) error

	// ToggleVerification инвертирует одно из полей верификации,
	// возвращает новое значение
	ToggleVerification(ctx context.Context, id, field string) (bool, error)

	// ActivePackages возвращает посылки в незавершенных статусах,
	// где пользователь участвует как отправитель или курьер
	ActivePackages(ctx context.Context, userID string) ([]domain.ActivePackageRef, error)
}

// StatsReader читает агрегаты платформы
type StatsReader interface {
	PlatformStats(ctx context.Context) (*domain.PlatformStats, error)
	ListPackages(ctx context.Context, limit, offset int) ([]domain.PackageSummary, error)
	ListRoutes(ctx context.Context, limit, offset int) ([]domain.RouteSummary, error)
}

// MatchingRouteMatch — совпадение посылки с маршрутом в сводке job
type MatchingRouteMatch struct {
	PackageID  string  `json:"package_id"`
	TrackingID string  `json:"tracking_id"`
	DistanceKm float64 `json:"distance_km"`
	Notified   bool    `json:"notified"`
}

// MatchingRouteDetail — итог прогона по одному маршруту
type MatchingRouteDetail struct {
	RouteID      string               `json:"route_id"`
	CourierID    string               `json:"courier_id"`
	StartAddress string               `json:"start_address"`
	EndAddress   string               `json:"end_address"`
	Matches      []MatchingRouteMatch `json:"matches"`
}

// MatchingRunSummary — результат запуска matching job
type MatchingRunSummary struct {
	StartedAt            string                `json:"started_at"`
	Duration             int64                 `json:"duration"`
	PackagesScanned      int                   `json:"packages_scanned"`
	RoutesScanned        int                   `json:"routes_scanned"`
	MatchesFound         int                   `json:"matches_found"`
	NotificationsSent    int                   `json:"notifications_sent"`
	NotificationsSkipped int                   `json:"notifications_skipped"`
	RouteDetails         []MatchingRouteDetail `json:"route_details"`
}

// MatchingTrigger запускает matching job в matching сервисе.
// lookbackHours=0 оставляет окно дедупликации по умолчанию.
type MatchingTrigger interface {
	RunMatchingJob(ctx context.Context, force bool, lookbackHours int) (*MatchingRunSummary, error)
}
