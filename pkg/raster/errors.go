package raster

import (
	"fmt"

	"github.com/activitylens/activitylens/pkg/errors"
)

// MissingStyleError reports a reference to a style name that has not been
// registered. It is recoverable only by registering the style first.
type MissingStyleError struct {
	Style string
}

func (e *MissingStyleError) Error() string {
	return fmt.Sprintf("style %q is not registered", e.Style)
}

// Code returns MISSING_STYLE.
func (e *MissingStyleError) Code() errors.Code { return errors.ErrCodeMissingStyle }
