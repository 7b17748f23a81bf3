package serverutils

// ErrorResponse is the uniform failure envelope every proxy route returns.
type ErrorResponse struct {
	Error string `json:"error"`
}

func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Error: message}
}
