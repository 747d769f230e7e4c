package errorz

import "strings"

// InvalidInput collects the reasons a provided input was rejected. It
// signals a fault of the caller, not of the system.
type InvalidInput []error

func (e InvalidInput) Error() string {
	var b strings.Builder
	b.WriteString("invalid input:")
	for _, err := range e {
		b.WriteString("\n")
		b.WriteString(err.Error())
	}
	return b.String()
}

func (e InvalidInput) Unwrap() []error {
	return e
}
