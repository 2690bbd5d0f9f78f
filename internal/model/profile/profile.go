package profile

import "github.com/hirex-ai/hirex/backend/internal/analysis/topic"

// Profile describes how a chat client should present the assistant.
type Profile struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	PageTitle        string   `json:"pageTitle"`
	PageIcon         string   `json:"pageIcon"`
	Layout           string   `json:"layout"`
	Heading          string   `json:"heading"`
	InputPlaceholder string   `json:"inputPlaceholder"`
	ClearButtonLabel string   `json:"clearButtonLabel"`
	Keywords         []string `json:"keywords"`
	SystemPrompt     string   `json:"-"`
}

// DefaultID is the identifier of the built-in HirEx profile.
const DefaultID = "hirex"

// Default returns the HirEx interview and resume assistant.
func Default() Profile {
	return Profile{
		ID:               DefaultID,
		Name:             "HirEx",
		PageTitle:        "Chat with HirEx!",
		PageIcon:         ":brain:",
		Layout:           "centered",
		Heading:          " 🤖  HirEx - ChatBot",
		InputPlaceholder: "Ask HirEx...",
		ClearButtonLabel: "Clear Chat Window",
		Keywords:         append([]string(nil), topic.DefaultKeywords...),
	}
}
