package models

// QAExchange is one question/answer pair against the knowledge base.
// Only the most recent exchange is ever kept; a new question replaces it.
type QAExchange struct {
	Question string
	Answer   string
}
