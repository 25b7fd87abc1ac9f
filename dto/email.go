package dto

// EmailRecord is one message from today's inbox, as returned by the mailbox.
type EmailRecord struct {
	From    string `json:"from"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Date    string `json:"date"`
}

// SearchResult projects an EmailRecord for keyword search. Summary is the body,
// truncated only when a maximum length is configured.
type SearchResult struct {
	From    string `json:"from"`
	Subject string `json:"subject"`
	Summary string `json:"summary"`
}

type ComposedEmail struct {
	Subject   string `json:"subject"`
	EmailBody string `json:"emailBody"`
}

type SendEmailRequest struct {
	To        string `json:"to"`
	Subject   string `json:"subject"`
	EmailBody string `json:"emailBody"`
}

type SendResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
