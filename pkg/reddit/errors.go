package reddit

import (
	"fmt"
	"strings"
)

// APIError is an error reported by the Reddit API, either as an HTTP status
// or as entries in the "json.errors" array.
type APIError struct {
	Op         string
	StatusCode int
	Errors     [][]string
	Message    string
}

func (e *APIError) Error() string {
	var sb strings.Builder
	sb.WriteString("reddit ")
	sb.WriteString(e.Op)
	if e.StatusCode != 0 {
		sb.WriteString(fmt.Sprintf(": status %d", e.StatusCode))
	}
	for _, item := range e.Errors {
		sb.WriteString(": ")
		sb.WriteString(strings.Join(item, " "))
	}
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	return sb.String()
}
