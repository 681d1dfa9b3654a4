package types

// API error codes
const (
	CodeBadRequest      = "ACTOR_400"
	CodeUnknownActor    = "ACTOR_404"
	CodeInvalidResult   = "ACTOR_500"
	CodeRemoteState     = "ACTOR_501"
	CodeDispatchFailed  = "DISPATCH_502"
	CodeTopicBadRequest = "TOPIC_400"
	CodeTopicNotFound   = "TOPIC_404"
	CodeTopicFailed     = "TOPIC_500"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse is the error document of the HTTP API.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func NewErrorResponse(code, message string, details any) ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// NewErrorResponseFromError uses err's text as details. A nil err leaves
// details empty.
func NewErrorResponseFromError(code, message string, err error) ErrorResponse {
	if err == nil {
		return NewErrorResponse(code, message, nil)
	}
	return NewErrorResponse(code, message, err.Error())
}
