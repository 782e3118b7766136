package serverutils

// Response is the envelope every JSON endpoint returns, except the raw
// passthrough of the workflow generator and the Stripe acknowledgement.
type Response struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Details interface{} `json:"details,omitempty"`
}

func SuccessResponse(message string, data interface{}) Response {
	return Response{Success: true, Code: 200, Message: message, Data: data}
}

func ErrorResponse(code int, message string) Response {
	return Response{Success: false, Code: code, Message: message}
}

func ErrorResponseWithDetails(code int, message string, details interface{}) Response {
	return Response{Success: false, Code: code, Message: message, Details: details}
}
