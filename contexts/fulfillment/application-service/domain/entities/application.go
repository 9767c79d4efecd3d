package entities

import (
	"strings"
	"time"
)

type ApplicationStatus string
type ShippingStatus string

const (
	ApplicationStatusApplied     ApplicationStatus = "applied"
	ApplicationStatusShortlisted ApplicationStatus = "shortlisted"
	ApplicationStatusHired       ApplicationStatus = "hired"
	ApplicationStatusRejected    ApplicationStatus = "rejected"
	ApplicationStatusCompleted   ApplicationStatus = "completed"

	ShippingStatusNeedsAddress ShippingStatus = "needs_address"
	ShippingStatusProcessing   ShippingStatus = "processing"
	ShippingStatusShipped      ShippingStatus = "shipped"
	ShippingStatusDelivered    ShippingStatus = "delivered"
	ShippingStatusIssue        ShippingStatus = "issue"
)

// Application is one (campaign, creator) hire. ShippingStatus is nil for
// digital campaigns; for physical campaigns it starts at needs_address on
// hire and must reach delivered before content submission unlocks.
type Application struct {
	ApplicationID  string
	CampaignID     string
	CreatorID      string
	Status         ApplicationStatus
	ShippingStatus *ShippingStatus
	CourierName    string
	TrackingNumber string
	IssueNote      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	HiredAt        *time.Time
	DeliveredAt    *time.Time
	CompletedAt    *time.Time
}

func (a Application) ValidateCreate() bool {
	return strings.TrimSpace(a.CampaignID) != "" &&
		strings.TrimSpace(a.CreatorID) != ""
}

// CanTransitionStatus is the hire-lifecycle transition table.
func CanTransitionStatus(from ApplicationStatus, to ApplicationStatus) bool {
	switch to {
	case ApplicationStatusShortlisted:
		return from == ApplicationStatusApplied
	case ApplicationStatusHired:
		return from == ApplicationStatusApplied || from == ApplicationStatusShortlisted
	case ApplicationStatusRejected:
		return from == ApplicationStatusApplied || from == ApplicationStatusShortlisted
	case ApplicationStatusCompleted:
		return from == ApplicationStatusHired
	default:
		return false
	}
}

// CanTransitionShipping is the shipping-gate transition table. The issue
// branch is reachable from processing or shipped and must be resolved back
// onto the forward path before continuing; delivered is terminal.
func CanTransitionShipping(from ShippingStatus, to ShippingStatus) bool {
	switch from {
	case ShippingStatusNeedsAddress:
		return to == ShippingStatusProcessing
	case ShippingStatusProcessing:
		return to == ShippingStatusShipped || to == ShippingStatusIssue
	case ShippingStatusShipped:
		return to == ShippingStatusDelivered || to == ShippingStatusIssue
	case ShippingStatusIssue:
		return to == ShippingStatusProcessing || to == ShippingStatusShipped
	default:
		return false
	}
}

func IsSupportedShippingStatus(value ShippingStatus) bool {
	switch value {
	case ShippingStatusNeedsAddress,
		ShippingStatusProcessing,
		ShippingStatusShipped,
		ShippingStatusDelivered,
		ShippingStatusIssue:
		return true
	default:
		return false
	}
}
