package metrics

import (
	"fmt"

	"github.com/rileyhilliard/hostwatch/internal/errors"
)

func parseErrorf(kind Kind, format string, args ...interface{}) error {
	return errors.New(errors.ErrParse,
		fmt.Sprintf("Malformed %s output: %s", kind.Label(), fmt.Sprintf(format, args...)),
		"The host may not be Linux or may restrict /proc access.")
}
