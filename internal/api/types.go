package api

// StatusResponse reports whether each trigger is registered.
type StatusResponse struct {
	Triggers map[string]bool `json:"triggers"`
}

type RunResponse struct {
	Trigger string `json:"trigger"`
	Status  string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}
