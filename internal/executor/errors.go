package executor

import (
	"errors"
	"fmt"

	"github.com/povarna/pet-poison-map/internal/models"
	"github.com/povarna/pet-poison-map/internal/textsafety"
)

var ErrContentRejected = errors.New("content rejected")

// RejectionError reports which field failed moderation and why.
type RejectionError struct {
	Field  models.Field
	Reason textsafety.ReasonCode
	Rule   string
}

func (e *RejectionError) Error() string {
	if e.Rule == "" {
		return fmt.Sprintf("%s rejected: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s rejected: %s (%s)", e.Field, e.Reason, e.Rule)
}

func (e *RejectionError) Unwrap() error {
	return ErrContentRejected
}
