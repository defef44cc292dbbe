package transfer

// PostMetadata travels inside the webhook payload and is also persisted on
// the Post row as jsonb.
type PostMetadata struct {
	PermalinkURL string       `json:"permalinkUrl,omitempty"`
	Link         string       `json:"link,omitempty"`
	Story        string       `json:"story,omitempty"`
	Attachments  []Attachment `json:"attachments,omitempty"`
}

type WebhookPost struct {
	ID             string        `json:"id"`
	FacebookPostID string        `json:"facebookPostId"`
	Content        string        `json:"content"`
	PostType       string        `json:"postType"`
	Metadata       *PostMetadata `json:"metadata"`
	Attachments    []Attachment  `json:"attachments"`
	PostedAt       string        `json:"postedAt"`
}

// WebhookPayload is the body POSTed to subscriber endpoints. The signature is
// an HMAC-SHA256 over the payload serialized without the signature field, so
// it is omitted from the signing pass and filled in afterwards.
type WebhookPayload struct {
	Event     string      `json:"event"`
	Timestamp string      `json:"timestamp"`
	Post      WebhookPost `json:"post"`
	Signature string      `json:"signature,omitempty"`
}

type TestWebhookPayload struct {
	Event     string `json:"event"`
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
	Signature string `json:"signature,omitempty"`
}

type TestWebhookResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
