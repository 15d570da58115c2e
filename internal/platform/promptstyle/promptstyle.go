package promptstyle

import "strings"

const marker = "LEARNSPHERE_PROMPT_STYLE_V1"

var common = []string{
	"You are a careful study assistant for LearnSphere.",
	"Follow the system and user instructions precisely.",
	"Use the provided document as grounding; do not invent facts or citations.",
}

var byMode = map[string][]string{
	"json": {
		"Return a single JSON object with the requested keys and nothing else.",
		"Do not wrap the JSON in markdown fences.",
	},
	"text": {
		"Be concise and structured.",
	},
}

// ApplySystem prefixes system with the shared guidance block for mode.
// Already styled prompts are returned unchanged; unknown modes get the text guidance.
func ApplySystem(system string, mode string) string {
	base := strings.TrimSpace(system)
	if base == "" || strings.Contains(base, marker) {
		return base
	}
	extra, ok := byMode[strings.ToLower(strings.TrimSpace(mode))]
	if !ok {
		extra = byMode["text"]
	}

	lines := make([]string, 0, len(common)+len(extra)+3)
	lines = append(lines, marker)
	lines = append(lines, common...)
	lines = append(lines, extra...)
	lines = append(lines, "---", base)
	return strings.Join(lines, "\n")
}
