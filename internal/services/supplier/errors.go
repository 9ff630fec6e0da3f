package supplier

import (
	"errors"
	"fmt"
)

// ErrAuthExpired marks an expired credential that could not be refreshed.
// Batch callers abort on it rather than retrying the remaining items.
var ErrAuthExpired = errors.New("supplier auth expired")

// Error is a supplier-level rejection carried inside a transport-success
// response. Transport failures are plain errors, never *Error.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("supplier error %s: %s", e.Code, e.Message)
}

// terminalCodes are rejections that apply to every subsequent call in a
// batch identically (bad credentials, broken signing), so the run aborts.
var terminalCodes = map[string]bool{
	"IncompleteSignature": true,
	"InvalidSignature":    true,
	"InvalidAppKey":       true,
	"MissingAppKey":       true,
	"InvalidToken":        true,
}

// Terminal reports whether this rejection would affect all following calls
// the same way. Country-level rejections (product not shippable there) are
// not terminal: they feed the resolver's next probe.
func (e *Error) Terminal() bool {
	return terminalCodes[e.Code]
}

// AsSupplierError unwraps err into *Error when the failure happened at the
// supplier level rather than in transport.
func AsSupplierError(err error) (*Error, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
