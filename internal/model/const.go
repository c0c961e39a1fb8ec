package model

import "time"

// ==== Roles ====
const (
	RoleSender  = "sender"
	RoleCourier = "courier"
	RoleBoth    = "both"
	RoleAdmin   = "admin"
)

// ==== Package Status ====
const (
	PackageStatusNew           = "new"
	PackageStatusOpenForBids   = "open_for_bids"
	PackageStatusBidSelected   = "bid_selected"
	PackageStatusPendingPickup = "pending_pickup"
	PackageStatusInTransit     = "in_transit"
	PackageStatusDelivered     = "delivered"
	PackageStatusCanceled      = "canceled"
	PackageStatusFailed        = "failed"
)

// ==== Bid Status ====
const (
	BidStatusActive     = "active"
	BidStatusSuperseded = "superseded"
	BidStatusRejected   = "rejected"
	BidStatusSelected   = "selected"
)

// ==== Package Size ====
const (
	SizeSmall  = "small"
	SizeMedium = "medium"
	SizeLarge  = "large"
)

// ==== Package Event Type ====
const (
	EventPackagePublished     = "PACKAGE_PUBLISHED"
	EventBidSubmitted         = "BID_SUBMITTED"
	EventBidSelected          = "BID_SELECTED"
	EventPackageStatusChanged = "PACKAGE_STATUS_CHANGED"
	EventPackageCancelled     = "PACKAGE_CANCELLED"
	EventMatchFound           = "MATCH_FOUND"
	EventMatchingJobDone      = "MATCHING_JOB_COMPLETED"
)

// ==== Notification Type ====
const (
	NotificationNewMatch         = "new_match"
	NotificationBidReceived      = "bid_received"
	NotificationBidSelected      = "bid_selected"
	NotificationStatusChanged    = "status_changed"
	NotificationPackageCancelled = "package_cancelled"
	NotificationNewMessage       = "new_message"
	NotificationBidsWaiting      = "bids_waiting"
	NotificationDeadlineExtended = "deadline_extended"
	NotificationPackageFailed    = "package_failed"
)

// ==== Route / Deviation limits ====
const (
	MinDeviationKm = 1.0
	MaxDeviationKm = 500.0
)

// ==== Matching ====
const (
	// DefaultMatchLookback — cooldown-окно уведомлений о совпадениях,
	// если lookback не задан явно
	DefaultMatchLookback = 24 * time.Hour
)
