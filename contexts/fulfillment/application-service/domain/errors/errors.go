package errors

import (
	"errors"
	"fmt"
)

var (
	ErrApplicationNotFound        = errors.New("application not found")
	ErrCampaignNotFound           = errors.New("campaign not found")
	ErrInvalidApplicationInput    = errors.New("invalid application input")
	ErrDuplicateApplication       = errors.New("creator already applied to this campaign")
	ErrInvalidStatusTransition    = errors.New("invalid application status transition")
	ErrInvalidShippingTransition  = errors.New("invalid shipping status transition")
	ErrShippingNotApplicable      = errors.New("campaign has no physical product to ship")
	ErrCourierTrackingRequired    = errors.New("courier name and tracking number are required to mark shipped")
	ErrIssueNoteRequired          = errors.New("an issue note is required to flag a shipping issue")
	ErrUnauthorizedActor          = errors.New("actor is not authorized")
	ErrConcurrentModification     = errors.New("application was modified concurrently")
	ErrShippingGateLocked         = errors.New("content submission is locked until the product is delivered")
	ErrApplicationNotHired        = errors.New("application is not in hired status")
)

// ShippingGateLockedError carries the current shipping state so callers can
// tell the creator exactly why submission is blocked.
// errors.Is(err, ErrShippingGateLocked) matches.
type ShippingGateLockedError struct {
	ShippingStatus string
}

func (e ShippingGateLockedError) Error() string {
	return fmt.Sprintf("content submission is locked: shipping status is %q, needs delivered", e.ShippingStatus)
}

func (e ShippingGateLockedError) Is(target error) bool {
	return target == ErrShippingGateLocked
}
