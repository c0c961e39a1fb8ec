package user

import "time"

// User — модель пользователя, общая для всех сервисов.
// Административные операции над ней живут в internal/admin.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	FullName       string    `json:"full_name"`
	Role           string    `json:"role"` // sender | courier | both | admin
	IsActive       bool      `json:"is_active"`
	IsVerified     bool      `json:"is_verified"`
	PhoneVerified  bool      `json:"phone_verified"`
	IDVerified     bool      `json:"id_verified"`
	MaxDeviationKm float64   `json:"max_deviation_km"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HasRole проверяет наличие роли (роль both покрывает sender и courier)
func (u *User) HasRole(role string) bool {
	if u.Role == role {
		return true
	}
	if u.Role == "both" && (role == "sender" || role == "courier") {
		return true
	}
	return false
}

// CanBid проверяет, допущен ли пользователь к подаче ставок
func (u *User) CanBid() bool {
	return u.IsActive && u.IDVerified && u.HasRole("courier")
}
