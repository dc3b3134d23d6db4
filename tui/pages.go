package tui

import "go-rhythm/rhythm"

// Page is one of the credential flows
type Page string

const (
	PageLogin  Page = "login"
	PageSignup Page = "signup"
	PageChange Page = "change"
)

// Pages in F-key order
var Pages = []Page{PageLogin, PageSignup, PageChange}

// ParsePage accepts a page name, defaulting to login
func ParsePage(s string) Page {
	for _, p := range Pages {
		if string(p) == s {
			return p
		}
	}
	return PageLogin
}

func (p Page) Title() string {
	switch p {
	case PageSignup:
		return "Sign up"
	case PageChange:
		return "Change rhythm"
	}
	return "Log in"
}

// Slots returns the pattern slots on the page. minBeats goes into the
// too-short wording.
func (p Page) Slots(minBeats int) []rhythm.SlotConfig {
	switch p {
	case PageSignup:
		return []rhythm.SlotConfig{
			{ID: "rhythm", Label: "rhythm", Prompt: "Pattern:", StatusText: map[rhythm.Status]string{
				rhythm.StatusReady:     "Press record to begin creating your rhythm.",
				rhythm.StatusRecording: "Recording... Play your rhythm!",
				rhythm.StatusComplete:  "Great! Your rhythm has been recorded.",
			}},
		}
	case PageChange:
		return []rhythm.SlotConfig{
			{ID: "old", Label: "old rhythm", Prompt: "Old pattern:"},
			{ID: "new", Label: "new rhythm", Prompt: "New pattern:"},
		}
	}
	return []rhythm.SlotConfig{
		{ID: "attempt", Label: "rhythm", Prompt: "Your attempt:", Placeholder: "Reproduce your rhythm to log in...",
			StatusText: map[rhythm.Status]string{
				rhythm.StatusReady:     "Press record and reproduce your rhythm.",
				rhythm.StatusRecording: "Reproduce your rhythm now...",
				rhythm.StatusComplete:  "Attempt recorded! Submit to verify.",
				rhythm.StatusTooShort:  "Too short, try at least " + rhythm.Beats(minBeats) + ".",
			}},
	}
}

// Fields returns the text fields shown above the slots
func (p Page) Fields() []string {
	switch p {
	case PageSignup:
		return []string{"username", "email"}
	case PageChange:
		return nil
	}
	return []string{"username"}
}
