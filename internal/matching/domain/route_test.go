package domain

import (
	"testing"

	"chaski/internal/model"
)

func equatorialRoute(maxDeviationKm float64) *Route {
	return &Route{
		ID:             "route-1",
		CourierID:      "courier-1",
		StartLat:       0,
		StartLng:       0,
		EndLat:         0,
		EndLng:         1,
		MaxDeviationKm: maxDeviationKm,
		IsActive:       true,
	}
}

func TestRouteValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Route)
		wantErr bool
	}{
		{"valid", func(r *Route) {}, false},
		{"bad start lat", func(r *Route) { r.StartLat = 91 }, true},
		{"bad end lng", func(r *Route) { r.EndLng = -181 }, true},
		{"deviation below minimum", func(r *Route) { r.MaxDeviationKm = model.MinDeviationKm - 0.5 }, true},
		{"deviation above maximum", func(r *Route) { r.MaxDeviationKm = model.MaxDeviationKm + 1 }, true},
	}

	for _, tc := range tests {
		r := equatorialRoute(10)
		tc.mutate(r)
		err := r.Validate()
		if tc.wantErr && err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
	}
}

func TestRouteMatches(t *testing.T) {
	route := equatorialRoute(10)

	// Обе точки близко к маршруту
	near := &CandidatePackage{
		PickupLat:  0.01,
		PickupLng:  0.3,
		DropoffLat: -0.02,
		DropoffLng: 0.7,
	}
	if !route.Matches(near) {
		t.Fatalf("package within corridor must match")
	}
	// 0.02° широты на экваторе ≈ 2.2 км; отклонение меряется от точки
	// посылки до отрезка маршрута, а не наоборот
	if d := route.Deviation(near); d < 2 || d > 3 {
		t.Fatalf("expected deviation ~2.2 km, got %v", d)
	}

	// Забор рядом, доставка далеко: решает наибольшее отклонение
	farDropoff := &CandidatePackage{
		PickupLat:  0.01,
		PickupLng:  0.3,
		DropoffLat: 5,
		DropoffLng: 0.5,
	}
	if route.Matches(farDropoff) {
		t.Fatalf("package with distant dropoff must not match")
	}

	// Точка за конечной точкой маршрута: расстояние до B, не до продолжения
	beyondEnd := &CandidatePackage{
		PickupLat:  0,
		PickupLng:  0.5,
		DropoffLat: 0,
		DropoffLng: 1.05,
	}
	if !route.Matches(beyondEnd) {
		t.Fatalf("dropoff just past the endpoint must still match")
	}
}
