package prompts

type PromptName string

const (
	PromptLearningMap PromptName = "learning_map"
	PromptFollowUp    PromptName = "follow_up_chat"
)
