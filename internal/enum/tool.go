package enum

import "strings"

type ToolID string

const (
	ToolFetchEmails  ToolID = "fetchEmails"
	ToolSearchEmails ToolID = "searchEmails"
	ToolComposeEmail ToolID = "composeEmail"
	ToolSendEmail    ToolID = "sendEmail"
)

var ToolIDs = []ToolID{ToolFetchEmails, ToolSearchEmails, ToolComposeEmail, ToolSendEmail}

func (t ToolID) String() string {
	return string(t)
}

// ParseToolID matches s case-insensitively against the closed tool set.
func ParseToolID(s string) (ToolID, bool) {
	s = strings.TrimSpace(s)
	for _, id := range ToolIDs {
		if strings.EqualFold(s, string(id)) {
			return id, true
		}
	}
	return "", false
}

func ToolIDNames() []string {
	names := make([]string, 0, len(ToolIDs))
	for _, id := range ToolIDs {
		names = append(names, string(id))
	}
	return names
}
