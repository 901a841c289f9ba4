// Package models defines the client-side data types of the InboxMemory
// knowledge base. JSON tags follow the backend's wire format.
package models

// EmailSummary is a single row in the knowledge-base listing. The backend
// returns summaries in reverse-chronological order.
type EmailSummary struct {
	ID        string `json:"id"`
	Subject   string `json:"subject"`
	CreatedAt string `json:"created_at"`
}

// EmailDetail is the full stored email, fetched lazily per id.
//
// ContentHTML and ContentText are alternative renditions of the body;
// normally exactly one of them is populated.
type EmailDetail struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Subject     string `json:"subject"`
	ContentHTML string `json:"content_html"`
	ContentText string `json:"content_text"`
	CreatedAt   string `json:"created_at"`
}

// HasContent reports whether the email carries any renderable body at all.
func (d *EmailDetail) HasContent() bool {
	return d.ContentHTML != "" || d.ContentText != ""
}
