package prompts

type PromptName string

const (
	// Document artifacts
	PromptSummary PromptName = "summary"
	PromptQuiz    PromptName = "quiz"
	PromptRoadmap PromptName = "roadmap"

	// Assessments
	PromptPhaseQuiz PromptName = "phase_quiz"
	PromptFinalQuiz PromptName = "final_quiz"

	// Map phase for long documents
	PromptCondense PromptName = "condense"
)
