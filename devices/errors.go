package devices

import "strings"

// ErrorSet collects the failures of an operation applied to every
// device in a Map.
type ErrorSet []error

// Len returns the number of errors in the set.
func (e ErrorSet) Len() int {
	return len(e)
}

// Append adds the given errors to the set. Nil errors are skipped.
func (e *ErrorSet) Append(errs ...error) {
	for _, err := range errs {
		if err != nil {
			*e = append(*e, err)
		}
	}
}

// Err returns the set as an error, or nil if it is empty.
func (e ErrorSet) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e ErrorSet) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (e ErrorSet) Unwrap() []error {
	return e
}
