package handler

// errorResponse is the standard error envelope returned on all 4xx/5xx
// responses. The actual rendering happens in the API error handler; this
// type exists for the swagger annotations.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}
