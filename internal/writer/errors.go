package writer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPathOutsideRoot is recorded for filenames that would escape the output directory.
var ErrPathOutsideRoot = errors.New("path is outside the output directory")

// WriteFailureError is returned by Evaluate when the write policy is not met.
type WriteFailureError struct {
	Policy Policy
	Failed []string
	Total  int
}

func (e *WriteFailureError) Error() string {
	if e.Total == 0 {
		return fmt.Sprintf("write policy %q not met: no files were written", e.Policy)
	}
	return fmt.Sprintf("write policy %q not met: %d of %d writes failed (%s)",
		e.Policy, len(e.Failed), e.Total, strings.Join(e.Failed, ", "))
}
