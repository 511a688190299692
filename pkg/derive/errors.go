package derive

import (
	"fmt"
	"strings"

	"github.com/activitylens/activitylens/pkg/errors"
)

// UnlinkedGraphError reports edges left over after clustering, which signals
// a structurally inconsistent input graph.
type UnlinkedGraphError struct {
	Edges []string
}

func (e *UnlinkedGraphError) Error() string {
	const limit = 8
	ids := e.Edges
	more := ""
	if len(ids) > limit {
		more = fmt.Sprintf(" (and %d more)", len(ids)-limit)
		ids = ids[:limit]
	}
	return fmt.Sprintf("%d unlinked edges after clustering: %s%s", len(e.Edges), strings.Join(ids, ", "), more)
}

// Code returns UNLINKED_GRAPH.
func (e *UnlinkedGraphError) Code() errors.Code { return errors.ErrCodeUnlinkedGraph }
