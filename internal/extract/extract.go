package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dshills/genesisqa/internal/schema"
)

// minLength is the exclusive lower bound on a kept fragment's rune count.
const minLength = 20

// keywords mark a fragment as a candidate requirement.
var keywords = []string{"shall", "must", "should", "required", "system", "user"}

// Requirements splits text on every '.' and keeps the fragments that look
// like obligations. IDs use the pre-filter fragment index, so dropped
// fragments leave gaps in the numbering. Periods inside abbreviations or
// decimal numbers end a fragment too.
func Requirements(text string) []schema.Requirement {
	fragments := strings.Split(text, ".")
	reqs := make([]schema.Requirement, 0, len(fragments))
	for i, fragment := range fragments {
		sentence := strings.TrimSpace(fragment)
		if utf8.RuneCountInString(sentence) <= minLength {
			continue
		}
		lower := strings.ToLower(sentence)
		if !containsAny(lower, keywords) {
			continue
		}
		reqs = append(reqs, schema.Requirement{
			ID:       fmt.Sprintf("REQ-%03d", i+1),
			Text:     sentence,
			Priority: priorityOf(lower),
		})
	}
	return reqs
}

func priorityOf(lower string) schema.Priority {
	if strings.Contains(lower, "must") {
		return schema.PriorityHigh
	}
	return schema.PriorityMedium
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
