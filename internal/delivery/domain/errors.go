package domain

import "errors"

var (
	// ErrPackageNotFound возвращается когда посылка не найдена
	ErrPackageNotFound = errors.New("package not found")

	// ErrBidNotFound возвращается когда ставка не найдена или не принадлежит посылке
	ErrBidNotFound = errors.New("bid not found")

	// ErrInvalidBid возвращается при невалидной ставке (цена, сроки, состояние посылки)
	ErrInvalidBid = errors.New("invalid bid")

	// ErrCourierNotVerified возвращается когда курьер без id_verified пытается ставить
	ErrCourierNotVerified = errors.New("courier identity not verified")

	// ErrStatusConflict возвращается при нарушении порядка переходов статусов
	ErrStatusConflict = errors.New("package status conflict")

	// ErrForbidden возвращается при отсутствии прав на операцию
	ErrForbidden = errors.New("forbidden")

	// ErrNotCancellable возвращается когда посылку уже нельзя отменить
	ErrNotCancellable = errors.New("package is not cancellable")

	// ErrInvalidCoordinates возвращается при невалидных координатах
	ErrInvalidCoordinates = errors.New("invalid coordinates")

	// ErrMessageNotAllowed возвращается когда чат по посылке недоступен пользователю
	ErrMessageNotAllowed = errors.New("messaging not allowed for this package")
)
