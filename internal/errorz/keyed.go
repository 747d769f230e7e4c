package errorz

// Keyed ties an error to the name of the field or parameter it is
// about, so callers can report which part of their input was wrong.
type Keyed struct {
	Key string
	Err error
}

func (k Keyed) Error() string {
	return k.Key + ": " + k.Err.Error()
}

func (k Keyed) Unwrap() error {
	return k.Err
}
