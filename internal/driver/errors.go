package driver

import (
	"errors"

	"github.com/Translit-INC/translit/internal/compiler"
	"github.com/Translit-INC/translit/internal/ir"
	"github.com/Translit-INC/translit/internal/lower"
)

// ErrorCode returns the diagnostic code carried by a build error:
// the first E1xx code of a validation failure, the builder code of a
// compile failure, or the lowering code. Returns "" for other errors.
func ErrorCode(err error) string {
	var verrs compiler.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Code
	}
	if code := ir.CodeOf(err); code != "" {
		return string(code)
	}
	var lerr *lower.LowerError
	if errors.As(err, &lerr) {
		return string(lerr.Code)
	}
	return ""
}
