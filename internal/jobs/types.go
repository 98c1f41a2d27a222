package jobs

const TaskGeneratePlan = "coach:generate_plan"

// GeneratePlanPayload carries everything the worker needs to rebuild the
// prompt and record the result for the user.
type GeneratePlanPayload struct {
	Username    string  `json:"username"`
	Sport       string  `json:"sport"`
	Position    string  `json:"position"`
	Injury      string  `json:"injury,omitempty"`
	Goal        string  `json:"goal"`
	Diet        string  `json:"diet,omitempty"`
	Intensity   string  `json:"intensity,omitempty"`
	Difficulty  string  `json:"difficulty,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}
