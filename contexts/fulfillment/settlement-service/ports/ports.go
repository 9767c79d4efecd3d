package ports

import "context"

const (
	CampaignTypeContest = "contest"
	CampaignTypeDeal    = "deal"
)

// Campaign is the slice of the campaign projection settlement needs: who
// funded it, how much each release pays, and the payout eligibility policy
// (campaign_type).
type Campaign struct {
	CampaignID   string
	BrandID      string
	Title        string
	CampaignType string
	Status       string
	PayoutAmount int64
}

func (c Campaign) Ended() bool {
	return c.Status == "judging" || c.Status == "completed"
}

// Submission is the settlement view of a reviewed piece of content.
type Submission struct {
	SubmissionID string
	CampaignID   string
	CreatorID    string
	Approved     bool
	Winner       bool
}

type ReleaseRequest struct {
	CampaignID    string
	BrandUserID   string
	CreatorUserID string
	Amount        int64
	Description   string
}

type CampaignDirectory interface {
	GetCampaign(ctx context.Context, campaignID string) (Campaign, error)
}

type Submissions interface {
	GetSubmission(ctx context.Context, submissionID string) (Submission, error)
	ListApproved(ctx context.Context, campaignID string) ([]Submission, error)
}

// Applications marks the creator's hire as completed once their payout is
// released. Implementations return nil when the creator was never hired,
// which is normal for open contest submissions.
type Applications interface {
	CompleteApplication(ctx context.Context, campaignID string, creatorID string) error
}

// Escrow releases the held amount to the creator. Implementations are
// idempotent per (campaign, creator): a replayed release returns the
// original transaction id and moves no money twice.
type Escrow interface {
	ReleaseEscrow(ctx context.Context, req ReleaseRequest) (transactionID string, err error)
}
