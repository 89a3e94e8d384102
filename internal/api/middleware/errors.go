package middleware

import (
	"errors"
	"net/http"

	"github.com/emicklei/go-restful/v3"
)

var ErrEmptyBody = errors.New("request body is empty")

// RejectionMessage is shown to users when their text fails moderation.
const RejectionMessage = "留言不符合规范"

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Details string `json:"details,omitempty"`
}

// RejectionResponse is returned with 400 when text fails moderation. Code is
// the rejection reason.
type RejectionResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func HandleError(resp *restful.Response, err error, status int) {
	body := ErrorResponse{
		Error: http.StatusText(status),
		Code:  status,
	}
	if err != nil {
		body.Details = err.Error()
	}
	_ = resp.WriteHeaderAndEntity(status, body)
}

func HandleRejection(resp *restful.Response, field string, reason string) {
	_ = resp.WriteHeaderAndEntity(http.StatusBadRequest, RejectionResponse{
		Code:    reason,
		Message: RejectionMessage,
		Field:   field,
	})
}
