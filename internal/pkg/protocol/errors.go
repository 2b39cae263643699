package protocol

import "fmt"

// MalformedError describes a message rejected by the parser. It carries an
// echo of the offending input so the rejection can be reported back to the
// sender verbatim.
type MalformedError struct {
	Description string
	Echo        string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Description, e.Echo)
}
