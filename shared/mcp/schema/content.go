package schema

// Annotations contain optional metadata about objects used by the client.
type Annotations struct {
	// Describes who the intended customer of this object is ("user", "assistant").
	Audience []string `json:"audience,omitempty"`
	// Describes how important this data is (0 to 1).
	Priority *float64 `json:"priority,omitempty"`
}

// Content represents various types of message content.
type Content struct {
	// The type discriminator ('text', 'image', 'audio').
	Type string `json:"type"`
	// Optional annotations for the client.
	Annotations *Annotations `json:"annotations,omitempty"`
	// Text content (only for type: "text").
	Text *string `json:"text,omitempty"`
	// Base64-encoded data (only for type: "image", "audio").
	Data *string `json:"data,omitempty"`
	// MIME type of the data (only for type: "image", "audio").
	MimeType *string `json:"mimeType,omitempty"`
}

// NewTextContent creates a new text content slice.
func NewTextContent(text string) []Content {
	t := "text"
	return []Content{
		{
			Type: t,
			Text: &text,
		},
	}
}

// NewImageContent creates a new image content slice.
func NewImageContent(data string, mimeType string) []Content {
	t := "image"
	return []Content{
		{
			Type:     t,
			Data:     &data,
			MimeType: &mimeType,
		},
	}
}
