package director

import "strings"

// PhaseGuard decides from the recent context whether the current phase is over.
type PhaseGuard func(recentContext string) bool

// KeywordGuard fires when any of words occurs in the recent context.
func KeywordGuard(words ...string) PhaseGuard {
	return func(recentContext string) bool {
		for _, w := range words {
			if w != "" && strings.Contains(recentContext, w) {
				return true
			}
		}
		return false
	}
}

func Always(string) bool { return true }
