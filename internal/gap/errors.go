package gap

import "fmt"

// InvalidTypeCodeError indicates a personality type code that is not four valid letters.
type InvalidTypeCodeError struct {
	Code string
}

func (e *InvalidTypeCodeError) Error() string {
	return fmt.Sprintf("invalid personality type code %q: want four letters from E/I, S/N, T/F, J/P", e.Code)
}
