package transfer

type CreateWebsiteRequest struct {
	OrgID      string `json:"org_id"`
	Name       string `json:"name"`
	WebhookURL string `json:"webhook_url"`
	AuthKey    string `json:"auth_key"`
}

// UpdateWebsiteRequest uses pointers so absent fields are left untouched.
type UpdateWebsiteRequest struct {
	Name       *string `json:"name"`
	WebhookURL *string `json:"webhook_url"`
	AuthKey    *string `json:"auth_key"`
	IsActive   *bool   `json:"is_active"`
}
