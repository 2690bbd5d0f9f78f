package ai

import (
	"strings"

	"github.com/hirex-ai/hirex/backend/internal/model/profile"
)

// BuildSystemPrompt returns the system instruction configured on the profile,
// or "" when none is set. Without one the model receives only the
// conversation, and no system_instruction is sent to Gemini.
func BuildSystemPrompt(p profile.Profile) string {
	return strings.TrimSpace(p.SystemPrompt)
}
