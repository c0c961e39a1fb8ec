package domain

import (
	"errors"
	"fmt"
	"time"

	"chaski/internal/model"
)

var (
	ErrInvalidRoleChange  = errors.New("invalid role change")
	ErrSelfModification   = errors.New("cannot modify own account")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidUser        = errors.New("invalid user data")
)

// roleTransitions — допустимые смены роли. Переходы строго пошаговые:
// sender/courier сначала становятся both, и только both может стать admin.
var roleTransitions = map[string][]string{
	model.RoleSender:  {model.RoleBoth},
	model.RoleCourier: {model.RoleBoth},
	model.RoleBoth:    {model.RoleSender, model.RoleCourier, model.RoleAdmin},
	model.RoleAdmin:   {model.RoleBoth},
}

// CanChangeRole проверяет допустимость перехода роли.
// Роль всегда может остаться прежней.
func CanChangeRole(from, to string) bool {
	if from == to {
		return true
	}
	for _, allowed := range roleTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidRole проверяет, что роль известна системе
func ValidRole(role string) bool {
	switch role {
	case model.RoleSender, model.RoleCourier, model.RoleBoth, model.RoleAdmin:
		return true
	}
	return false
}

// ActivePackageRef — посылка, блокирующая деактивацию пользователя
type ActivePackageRef struct {
	ID         string `json:"id"`
	TrackingID string `json:"tracking_id"`
	Status     string `json:"status"`
}

// ActivePackagesError возвращается при попытке деактивировать
// пользователя с активными посылками; список попадает в detail ответа.
type ActivePackagesError struct {
	Packages []ActivePackageRef
}

func (e *ActivePackagesError) Error() string {
	return fmt.Sprintf("user has %d active packages", len(e.Packages))
}

// PlatformStats — агрегаты платформы для админ-панели
type PlatformStats struct {
	TotalUsers       int            `json:"total_users"`
	ActiveUsers      int            `json:"active_users"`
	VerifiedCouriers int            `json:"verified_couriers"`
	TotalPackages    int            `json:"total_packages"`
	PackagesByStatus map[string]int `json:"packages_by_status"`
	ActiveRoutes     int            `json:"active_routes"`
	ActiveBids       int            `json:"active_bids"`
}

// PackageSummary — строка списка посылок в админке
type PackageSummary struct {
	ID         string    `json:"id"`
	TrackingID string    `json:"tracking_id"`
	SenderID   string    `json:"sender_id"`
	CourierID  *string   `json:"courier_id,omitempty"`
	Status     string    `json:"status"`
	BidCount   int       `json:"bid_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// RouteSummary — строка списка маршрутов в админке
type RouteSummary struct {
	ID             string    `json:"id"`
	CourierID      string    `json:"courier_id"`
	StartAddress   string    `json:"start_address"`
	EndAddress     string    `json:"end_address"`
	MaxDeviationKm float64   `json:"max_deviation_km"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}
