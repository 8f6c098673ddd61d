package handler

// Response is the envelope of every successful answer. Failures are rendered
// by middleware.ErrorHandler as middleware.ErrorResponse.
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{Status: "success", Data: data}
}

// NewMessageResponse carries a message the page shows inline, next to data.
func NewMessageResponse(message string, data interface{}) *Response {
	return &Response{Status: "success", Message: message, Data: data}
}
