package httptransport

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  any    `json:"detail,omitempty"`
}

type ApplicationDTO struct {
	ApplicationID  string `json:"application_id"`
	CampaignID     string `json:"campaign_id"`
	CreatorID      string `json:"creator_id"`
	Status         string `json:"status"`
	ShippingStatus string `json:"shipping_status,omitempty"`
	CourierName    string `json:"courier_name,omitempty"`
	TrackingNumber string `json:"tracking_number,omitempty"`
	IssueNote      string `json:"issue_note,omitempty"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
	HiredAt        string `json:"hired_at,omitempty"`
	DeliveredAt    string `json:"delivered_at,omitempty"`
	CompletedAt    string `json:"completed_at,omitempty"`
}

type CreateApplicationRequest struct {
	CampaignID string `json:"campaign_id"`
}

type ApplicationResponse struct {
	Application ApplicationDTO `json:"application"`
}

type ListApplicationsResponse struct {
	Items []ApplicationDTO `json:"items"`
}

type UpdateShippingRequest struct {
	Status         string `json:"status"`
	CourierName    string `json:"courier_name,omitempty"`
	TrackingNumber string `json:"tracking_number,omitempty"`
	IssueNote      string `json:"issue_note,omitempty"`
}

type ShippingGateLockedDetail struct {
	ShippingStatus string `json:"shipping_status"`
}
