package enum

import "strings"

type Intent string

const (
	IntentSummary Intent = "summary"
	IntentReply   Intent = "reply"
	IntentSend    Intent = "send"
	IntentSearch  Intent = "search"
)

var Intents = []Intent{IntentSummary, IntentReply, IntentSend, IntentSearch}

func (i Intent) String() string {
	return string(i)
}

// ParseIntent matches s against the closed intent set, ignoring case and surrounding space.
func ParseIntent(s string) (Intent, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, intent := range Intents {
		if s == string(intent) {
			return intent, true
		}
	}
	return "", false
}
