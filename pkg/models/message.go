package models

// Message is a full board entry as stored in a record shard. IDs are unique
// among live messages and reusable once the message is deleted.
type Message struct {
	ID      int    `json:"id"`
	Author  string `json:"author"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Summary is the condensed view kept in the summary shard: author and
// subject only, no body.
type Summary struct {
	ID      int    `json:"id"`
	Author  string `json:"author"`
	Subject string `json:"subject"`
}
