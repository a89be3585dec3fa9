package automation

import (
	"fmt"

	"github.com/deskbothq/deskbot/internal/types"
)

func automationErrorf(format string, args ...any) *types.AutomationError {
	return &types.AutomationError{Reason: fmt.Sprintf(format, args...)}
}
