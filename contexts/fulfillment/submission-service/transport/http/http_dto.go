package httptransport

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  any    `json:"detail,omitempty"`
}

type SubmissionDTO struct {
	SubmissionID  string `json:"submission_id"`
	CampaignID    string `json:"campaign_id"`
	CreatorID     string `json:"creator_id"`
	ContentURL    string `json:"content_url"`
	Caption       string `json:"caption,omitempty"`
	Status        string `json:"status"`
	RedoCount     int    `json:"redo_count"`
	BrandFeedback string `json:"brand_feedback,omitempty"`
	FeedbackAt    string `json:"feedback_at,omitempty"`
	DeclineReason string `json:"decline_reason,omitempty"`
	ReviewedAt    string `json:"reviewed_at,omitempty"`
	Winner        bool   `json:"winner"`
	WinnerAt      string `json:"winner_designated_at,omitempty"`
	SubmittedAt   string `json:"submitted_at"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

type CreateSubmissionRequest struct {
	CampaignID string `json:"campaign_id"`
	ContentURL string `json:"content_url"`
	Caption    string `json:"caption,omitempty"`
}

type ReviewSubmissionRequest struct {
	Action        string `json:"action"`
	Feedback      string `json:"feedback,omitempty"`
	DeclineReason string `json:"decline_reason,omitempty"`
}

type ResubmitRequest struct {
	ContentURL string `json:"content_url"`
	Caption    string `json:"caption,omitempty"`
}

type SubmissionResponse struct {
	Submission SubmissionDTO `json:"submission"`
}

type ListSubmissionsResponse struct {
	Items []SubmissionDTO `json:"items"`
}

type BrandQueueResponse struct {
	CampaignID   string          `json:"campaign_id"`
	Pending      []SubmissionDTO `json:"pending"`
	AwaitingRedo []SubmissionDTO `json:"awaiting_redo"`
	Approved     []SubmissionDTO `json:"approved"`
	Declined     []SubmissionDTO `json:"declined"`
}

type MaxRedoExceededDetail struct {
	RedoCount int `json:"redo_count"`
	Limit     int `json:"limit"`
}
