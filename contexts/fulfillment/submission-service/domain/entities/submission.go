package entities

import "time"

type SubmissionStatus string

const (
	SubmissionStatusSubmitted     SubmissionStatus = "submitted"
	SubmissionStatusRedoRequested SubmissionStatus = "redo_requested"
	SubmissionStatusApproved      SubmissionStatus = "approved"
	SubmissionStatusDeclined      SubmissionStatus = "declined"
)

// MaxRedoCount bounds how many redo rounds a brand can request for a single
// submission. The fourth request fails and leaves the submission untouched.
const MaxRedoCount = 3

type Submission struct {
	SubmissionID string
	CampaignID   string
	CreatorID    string
	ContentURL   string
	Caption      string
	Status       SubmissionStatus

	RedoCount     int
	BrandFeedback string
	FeedbackAt    *time.Time
	DeclineReason string
	ReviewedAt    *time.Time

	Winner             bool
	WinnerDesignatedAt *time.Time

	SubmittedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CanTransition is the review-machine transition table. Approved and
// declined are terminal; the winner flag never changes machine state.
func CanTransition(from SubmissionStatus, to SubmissionStatus) bool {
	switch to {
	case SubmissionStatusApproved, SubmissionStatusDeclined:
		return from == SubmissionStatusSubmitted || from == SubmissionStatusRedoRequested
	case SubmissionStatusRedoRequested:
		return from == SubmissionStatusSubmitted
	case SubmissionStatusSubmitted:
		return from == SubmissionStatusRedoRequested
	default:
		return false
	}
}

// Active reports whether the submission still occupies the creator's slot
// for the campaign. Only a declined submission frees the slot.
func (s Submission) Active() bool {
	return s.Status != SubmissionStatusDeclined
}

func (s Submission) CanRequestRedo() bool {
	return s.RedoCount < MaxRedoCount
}
