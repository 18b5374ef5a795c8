package prompts

// Input carries every field a prompt may render. Unused fields are ignored.
type Input struct {
	Topic string
	Level string

	// Follow-up chat
	MapContext string
}
