package plc

import (
	"fmt"

	"github.com/jmaas/s7plan/internal/plan"
)

// Session is the one capability the step executor needs from a PLC: raw
// byte-span access to its memory areas. A session belongs to exactly one
// run for the run's whole duration.
type Session interface {
	Read(area plan.Area, db, start, size int) ([]byte, error)
	Write(area plan.Area, db, start int, data []byte) error
	Close() error
}

// ConnectionError means no session could be established. It is fatal to a
// run: no steps execute without a session.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect to PLC %s: %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }
