package errorz

import (
	"strings"
)

// Chain renders err followed by every underlying cause in its unwrap
// chain, one per line. It is meant for internal logs: callers at the
// outermost boundary log the chain and report a generic failure to the
// client.
//
// Errors wrapping multiple causes only follow the first cause, that is
// enough for the wrapping done in this codebase.
func Chain(err error) string {
	if err == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(err.Error())

	for {
		err = unwrapOne(err)
		if err == nil {
			return b.String()
		}

		b.WriteString("\ncaused by: ")
		b.WriteString(err.Error())
	}
}

func unwrapOne(err error) error {
	switch v := err.(type) {
	case interface{ Unwrap() error }:
		return v.Unwrap()
	case interface{ Unwrap() []error }:
		errs := v.Unwrap()
		if len(errs) == 0 {
			return nil
		}
		return errs[0]
	default:
		return nil
	}
}
