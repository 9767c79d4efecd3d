package entities

type ProductType string
type CampaignType string
type CampaignStatus string

const (
	ProductTypePhysical ProductType = "physical"
	ProductTypeDigital  ProductType = "digital"

	CampaignTypeContest CampaignType = "contest"
	CampaignTypeDeal    CampaignType = "deal"

	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusJudging   CampaignStatus = "judging"
	CampaignStatusCompleted CampaignStatus = "completed"
)

// Campaign is the read-only projection this context keeps of the campaign
// system of record. Submissions are only accepted while the campaign is
// active; winner designation requires a contest campaign past its deadline.
type Campaign struct {
	CampaignID   string
	BrandID      string
	Title        string
	ProductType  ProductType
	CampaignType CampaignType
	Status       CampaignStatus
	PayoutAmount int64
	Budget       int64
}

func (c Campaign) Ended() bool {
	return c.Status == CampaignStatusJudging || c.Status == CampaignStatusCompleted
}
