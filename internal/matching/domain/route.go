package domain

import (
	"fmt"
	"time"

	"chaski/internal/geo"
	"chaski/internal/model"
)

// Route представляет заявленный маршрут курьера.
type Route struct {
	ID             string     `json:"id" db:"id"`
	CourierID      string     `json:"courier_id" db:"courier_id"`
	StartAddress   string     `json:"start_address" db:"start_address"`
	StartLat       float64    `json:"start_lat" db:"start_lat"`
	StartLng       float64    `json:"start_lng" db:"start_lng"`
	EndAddress     string     `json:"end_address" db:"end_address"`
	EndLat         float64    `json:"end_lat" db:"end_lat"`
	EndLng         float64    `json:"end_lng" db:"end_lng"`
	MaxDeviationKm float64    `json:"max_deviation_km" db:"max_deviation_km"`
	TripDate       *time.Time `json:"trip_date,omitempty" db:"trip_date"`
	DepartureTime  *time.Time `json:"departure_time,omitempty" db:"departure_time"`
	IsActive       bool       `json:"is_active" db:"is_active"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// Validate проверяет инварианты маршрута
func (r *Route) Validate() error {
	if !geo.ValidateCoordinates(r.StartLat, r.StartLng) {
		return fmt.Errorf("%w: start", ErrInvalidCoordinates)
	}
	if !geo.ValidateCoordinates(r.EndLat, r.EndLng) {
		return fmt.Errorf("%w: end", ErrInvalidCoordinates)
	}
	if r.MaxDeviationKm < model.MinDeviationKm || r.MaxDeviationKm > model.MaxDeviationKm {
		return fmt.Errorf("%w: max_deviation_km must be between %.0f and %.0f",
			ErrInvalidRoute, model.MinDeviationKm, model.MaxDeviationKm)
	}
	return nil
}

// Matches проверяет, укладываются ли обе точки посылки в коридор маршрута.
// Отклонение посылки — наибольшее из отклонений точек забора и доставки.
func (r *Route) Matches(pkg *CandidatePackage) bool {
	return r.Deviation(pkg) <= r.MaxDeviationKm
}

// Deviation возвращает отклонение посылки от коридора маршрута в км —
// наибольшее из расстояний точек забора и доставки до отрезка маршрута.
func (r *Route) Deviation(pkg *CandidatePackage) float64 {
	pickup := geo.SegmentDistanceKm(r.StartLat, r.StartLng, r.EndLat, r.EndLng, pkg.PickupLat, pkg.PickupLng)
	dropoff := geo.SegmentDistanceKm(r.StartLat, r.StartLng, r.EndLat, r.EndLng, pkg.DropoffLat, pkg.DropoffLng)
	if dropoff > pickup {
		return dropoff
	}
	return pickup
}

// CandidatePackage — проекция посылки, достаточная для геофильтра
type CandidatePackage struct {
	ID          string     `json:"id"`
	TrackingID  string     `json:"tracking_id"`
	SenderID    string     `json:"sender_id"`
	Size        string     `json:"size"`
	PickupLat   float64    `json:"pickup_lat"`
	PickupLng   float64    `json:"pickup_lng"`
	DropoffLat  float64    `json:"dropoff_lat"`
	DropoffLng  float64    `json:"dropoff_lng"`
	BidDeadline *time.Time `json:"bid_deadline,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// Match — найденная пара маршрут/посылка
type Match struct {
	Package   *CandidatePackage `json:"package"`
	RouteID   string            `json:"route_id"`
	CourierID string            `json:"courier_id"`
}

// RouteMatchDetail — совпадение одной посылки с маршрутом
type RouteMatchDetail struct {
	PackageID  string  `json:"package_id"`
	TrackingID string  `json:"tracking_id"`
	DistanceKm float64 `json:"distance_km"`
	Notified   bool    `json:"notified"`
}

// RouteDetail — итог прогона по одному маршруту с найденными совпадениями
type RouteDetail struct {
	RouteID      string             `json:"route_id"`
	CourierID    string             `json:"courier_id"`
	StartAddress string             `json:"start_address"`
	EndAddress   string             `json:"end_address"`
	Matches      []RouteMatchDetail `json:"matches"`
}

// JobResult — сводка выполнения matching job
type JobResult struct {
	StartedAt            time.Time     `json:"started_at"`
	Duration             time.Duration `json:"duration"`
	PackagesScanned      int           `json:"packages_scanned"`
	RoutesScanned        int           `json:"routes_scanned"`
	MatchesFound         int           `json:"matches_found"`
	NotificationsSent    int           `json:"notifications_sent"`
	NotificationsSkipped int           `json:"notifications_skipped"`
	RouteDetails         []RouteDetail `json:"route_details"`
}
