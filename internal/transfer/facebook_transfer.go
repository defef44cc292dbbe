package transfer

// Response schemas for the Graph endpoints this service calls. Every endpoint
// gets an explicit shape; only the post id is required, everything else is
// best-effort.

type Paging struct {
	Next string `json:"next"`
}

type FeedPost struct {
	ID           string `json:"id"`
	Message      string `json:"message"`
	Story        string `json:"story"`
	Type         string `json:"type"`
	Link         string `json:"link"`
	PermalinkURL string `json:"permalink_url"`
	CreatedTime  string `json:"created_time"`
}

type FeedResponse struct {
	Data   []FeedPost `json:"data"`
	Paging *Paging    `json:"paging"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type PageTokenResponse struct {
	ID          string `json:"id"`
	AccessToken string `json:"access_token"`
}

type GraphUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Page struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type PagesResponse struct {
	Data []Page `json:"data"`
}

type AttachmentMedia struct {
	Image struct {
		Src string `json:"src"`
	} `json:"image"`
	Source string `json:"source"`
}

type RawAttachment struct {
	Type           string          `json:"type"`
	MediaType      string          `json:"media_type"`
	URL            string          `json:"url"`
	Target         struct {
		ID string `json:"id"`
	} `json:"target"`
	Media          AttachmentMedia `json:"media"`
	SubAttachments *struct {
		Data []RawAttachment `json:"data"`
	} `json:"subattachments"`
}

type AttachmentsResponse struct {
	Data   []RawAttachment `json:"data"`
	Paging *Paging         `json:"paging"`
}

// Attachment is the flattened shape embedded in webhook payloads. One level
// of subattachments is folded into the top-level list.
type Attachment struct {
	ID       string `json:"id,omitempty"`
	Kind     string `json:"kind"`
	MediaURL string `json:"media_url,omitempty"`
	URL      string `json:"url,omitempty"`
}

type GraphErrorResponse struct {
	Error struct {
		Message      string `json:"message"`
		Type         string `json:"type"`
		Code         int    `json:"code"`
		ErrorSubcode int    `json:"error_subcode"`
		FbtraceID    string `json:"fbtrace_id"`
	} `json:"error"`
}
