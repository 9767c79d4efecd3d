package errors

import "errors"

var (
	ErrInvalidSettlementInput = errors.New("invalid settlement input")
	ErrCampaignNotFound       = errors.New("campaign not found")
	ErrSubmissionNotFound     = errors.New("submission not found")
	ErrCampaignStillRunning   = errors.New("campaign has not ended yet")
	ErrSubmissionNotApproved  = errors.New("submission is not approved")
	ErrWinnerRequired         = errors.New("contest payouts release to the designated winner only")
	ErrUnauthorizedActor      = errors.New("actor is not authorized")
)
