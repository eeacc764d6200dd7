package loam

// StepMetadata is the frontmatter of a step document.
// The markdown body is the step description.
type StepMetadata struct {
	ID          string `json:"id" mapstructure:"id"`
	View        string `json:"view" mapstructure:"view"`
	Target      string `json:"target" mapstructure:"target"`
	Action      string `json:"action" mapstructure:"action"`
	ActionDelay string `json:"action_delay" mapstructure:"action_delay"`
	Title       string `json:"title" mapstructure:"title"`
	Category    string `json:"category" mapstructure:"category"`
	Terminal    bool   `json:"terminal" mapstructure:"terminal"`

	// Skip keeps a draft step out of the script.
	Skip bool `json:"skip" mapstructure:"skip"`
}
