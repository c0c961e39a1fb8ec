package domain

import "errors"

var (
	// ErrRouteNotFound возвращается когда маршрут не найден
	ErrRouteNotFound = errors.New("route not found")

	// ErrInvalidRoute возвращается при невалидном маршруте
	ErrInvalidRoute = errors.New("invalid route")

	// ErrInvalidCoordinates возвращается при невалидных координатах
	ErrInvalidCoordinates = errors.New("invalid coordinates")

	// ErrForbidden возвращается при отсутствии прав на операцию
	ErrForbidden = errors.New("forbidden")

	// ErrJobAlreadyRunning возвращается когда matching job уже выполняется
	ErrJobAlreadyRunning = errors.New("matching job already running")
)
