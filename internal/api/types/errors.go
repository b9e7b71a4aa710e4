package types

import appErr "github.com/gigboard/engine/pkg/errors"

// ErrorResponse is the body of every failed request. Clients read Error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func FromAppError(err error) ErrorResponse {
	return ErrorResponse{Error: appErr.Message(err), Code: string(appErr.CodeOf(err))}
}
