package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations return the built-in default
	// or an error when no default exists.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptQASystem is the system instruction for answering questions.
	// The template expects a %d placeholder for the page count.
	PromptQASystem = "qa_system"

	// PromptExtractSkills asks for a candidate's skills as JSON.
	// This prompt has no format placeholders.
	PromptExtractSkills = "extract_skills"

	// PromptExtractJobRequirements asks for a job's requirements as JSON.
	// This prompt has no format placeholders.
	PromptExtractJobRequirements = "extract_job_requirements"
)
