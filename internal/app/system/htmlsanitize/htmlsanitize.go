// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize cleans user-authored markup before it is stored.
// Event titles and descriptions arrive from the chat layer as free text and
// are echoed back to presentation layers, so anything scripty has to die
// here, not at render time.
package htmlsanitize

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	once   sync.Once
	policy *bluemonday.Policy
)

// ugcPolicy is bluemonday's user-generated-content policy plus the table
// markup and class attributes our rich descriptions use.
func ugcPolicy() *bluemonday.Policy {
	once.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowElements("table", "thead", "tbody", "tfoot", "tr", "th", "td")
		p.AllowAttrs("colspan", "rowspan").OnElements("th", "td")
		p.AllowAttrs("class").OnElements("table", "tr", "th", "td")
		policy = p
	})
	return policy
}

// Sanitize returns s with unsafe HTML removed. Plain text passes through
// unchanged.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(ugcPolicy().Sanitize(s))
}

// IsPlainText reports whether s contains no HTML tags at all. A lone < or >
// (e.g. "5 < 10") does not count as markup.
func IsPlainText(s string) bool {
	lt := strings.IndexByte(s, '<')
	if lt < 0 {
		return true
	}
	return !strings.Contains(s[lt:], ">")
}
