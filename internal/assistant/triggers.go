package assistant

import (
	"strings"

	"autosales-assistant-backend/internal/session"
)

type modeTrigger struct {
	mode     session.Mode
	keywords []string
}

// modeTriggers is checked in order, so a message naming several modes
// switches to the earliest entry.
var modeTriggers = []modeTrigger{
	{mode: session.ModeAnalysis, keywords: []string{"анализ звонка", "call analysis"}},
	{mode: session.ModeScriptGen, keywords: []string{"генерация скрипта", "script generation"}},
	{mode: session.ModeSales, keywords: []string{"продажи", "sales"}},
}

// DetectModeSwitch reports the mode a message asks for, if any.
func DetectModeSwitch(text string) (session.Mode, bool) {
	m := strings.ToLower(text)
	for _, t := range modeTriggers {
		if containsAny(m, t.keywords) {
			return t.mode, true
		}
	}
	return session.DefaultMode, false
}

// IsStartCommand matches "/start", optionally addressed ("/start@bot") or
// followed by a payload.
func IsStartCommand(text string) bool {
	m := strings.ToLower(strings.TrimSpace(text))
	if !strings.HasPrefix(m, "/start") {
		return false
	}
	rest := m[len("/start"):]
	return rest == "" || rest[0] == ' ' || rest[0] == '@'
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
