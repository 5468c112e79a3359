package plc

import (
	"fmt"

	"github.com/jmaas/s7plan/internal/plan"
)

// Simulator is an in-memory Session. It backs the selftest command and the
// executor tests: memory areas grow on demand, and read/write faults can be
// injected to exercise the error paths without hardware.
type Simulator struct {
	areas    map[string][]byte
	readErr  error
	writeErr error

	Reads  int
	Writes int
}

// NewSimulator returns a simulator with all areas zeroed.
func NewSimulator() *Simulator {
	return &Simulator{areas: make(map[string][]byte)}
}

// SetReadError makes every subsequent Read fail with err. Pass nil to heal.
func (s *Simulator) SetReadError(err error) { s.readErr = err }

// SetWriteError makes every subsequent Write fail with err. Pass nil to heal.
func (s *Simulator) SetWriteError(err error) { s.writeErr = err }

// Read returns a copy of the requested span, zero-filled where nothing has
// been written yet.
func (s *Simulator) Read(area plan.Area, db, start, size int) ([]byte, error) {
	s.Reads++
	if s.readErr != nil {
		return nil, s.readErr
	}
	if start < 0 || size < 0 {
		return nil, fmt.Errorf("read %s%d: invalid span %d+%d", area, db, start, size)
	}
	mem := s.area(area, db, start+size)
	out := make([]byte, size)
	copy(out, mem[start:start+size])
	return out, nil
}

// Write stores data at the given offset, growing the area as needed.
func (s *Simulator) Write(area plan.Area, db, start int, data []byte) error {
	s.Writes++
	if s.writeErr != nil {
		return s.writeErr
	}
	if start < 0 {
		return fmt.Errorf("write %s%d: invalid offset %d", area, db, start)
	}
	mem := s.area(area, db, start+len(data))
	copy(mem[start:], data)
	return nil
}

// Close satisfies Session. The simulator keeps its memory so tests can
// inspect it after a run.
func (s *Simulator) Close() error { return nil }

// Seed pre-loads bytes into an area, for arranging test preconditions.
func (s *Simulator) Seed(area plan.Area, db, start int, data []byte) {
	mem := s.area(area, db, start+len(data))
	copy(mem[start:], data)
}

// Bytes exposes a span of an area for assertions.
func (s *Simulator) Bytes(area plan.Area, db, start, size int) []byte {
	mem := s.area(area, db, start+size)
	out := make([]byte, size)
	copy(out, mem[start:start+size])
	return out
}

func (s *Simulator) area(area plan.Area, db, minLen int) []byte {
	key := area.String()
	if area == plan.AreaDB {
		key = fmt.Sprintf("DB%d", db)
	}
	mem := s.areas[key]
	if len(mem) < minLen {
		grown := make([]byte, minLen)
		copy(grown, mem)
		mem = grown
		s.areas[key] = mem
	}
	return mem
}
