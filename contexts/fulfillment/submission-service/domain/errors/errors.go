package errors

import (
	"errors"
	"fmt"
)

var (
	ErrSubmissionNotFound     = errors.New("submission not found")
	ErrCampaignNotFound       = errors.New("campaign not found")
	ErrInvalidSubmissionInput = errors.New("invalid submission input")
	ErrCampaignNotActive      = errors.New("campaign is not accepting submissions")
	ErrDuplicateSubmission    = errors.New("creator already has an active submission for this campaign")
	ErrInvalidReviewAction    = errors.New("unsupported review action")
	ErrInvalidReviewState     = errors.New("submission is not in a reviewable state")
	ErrFeedbackRequired       = errors.New("brand feedback is required to request a redo")
	ErrDeclineReasonRequired  = errors.New("a decline reason is required")
	ErrMaxRedoExceeded        = errors.New("redo request limit reached")
	ErrNotRedoRequested       = errors.New("submission is not awaiting a redo")
	ErrWinnerRequiresApproval = errors.New("only an approved submission can be designated winner")
	ErrWinnerContestOnly      = errors.New("winners exist only on contest campaigns")
	ErrCampaignStillRunning   = errors.New("campaign has not ended yet")
	ErrUnauthorizedActor      = errors.New("actor is not authorized")
	ErrConcurrentModification = errors.New("submission was modified concurrently")
)

// MaxRedoExceededError carries the exhausted count and the limit so the
// brand sees why a further redo request is refused. The submission itself is
// left unchanged. errors.Is(err, ErrMaxRedoExceeded) matches.
type MaxRedoExceededError struct {
	RedoCount int
	Limit     int
}

func (e MaxRedoExceededError) Error() string {
	return fmt.Sprintf("redo request limit reached: %d of %d redos already used", e.RedoCount, e.Limit)
}

func (e MaxRedoExceededError) Is(target error) bool {
	return target == ErrMaxRedoExceeded
}
