package domain

// ValidationResponse is the outcome of validating a single form field.
type ValidationResponse struct {
	Valid   bool   `json:"valid"`
	Field   string `json:"field"`
	Value   string `json:"value,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// DatasetStatusResponse describes the dataset a validator currently uses.
type DatasetStatusResponse struct {
	State             string `json:"state"`
	TakenUsernames    int    `json:"takenUsernames"`
	TakenPasswords    int    `json:"takenPasswords"`
	InsecurePasswords int    `json:"insecurePasswords"`
	Error             string `json:"error,omitempty"`
}
