package plc

import (
	"bytes"
	"errors"
	"testing"

	"github.com/jmaas/s7plan/internal/plan"
)

func TestSimulatorReadBackAfterWrite(t *testing.T) {
	sim := NewSimulator()
	if err := sim.Write(plan.AreaDB, 5, 10, []byte{0xAA, 0xBB}); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := sim.Read(plan.AreaDB, 5, 10, 2)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, []byte{0xAA, 0xBB}) {
		t.Fatalf("read back: % X", got)
	}
	if sim.Reads != 1 || sim.Writes != 1 {
		t.Fatalf("counters: %d reads, %d writes", sim.Reads, sim.Writes)
	}
}

func TestSimulatorAreasAreIndependent(t *testing.T) {
	sim := NewSimulator()
	sim.Seed(plan.AreaDB, 1, 0, []byte{0x11})
	sim.Seed(plan.AreaDB, 2, 0, []byte{0x22})
	sim.Seed(plan.AreaMerker, 0, 0, []byte{0x33})

	for _, tc := range []struct {
		area plan.Area
		db   int
		want byte
	}{
		{plan.AreaDB, 1, 0x11},
		{plan.AreaDB, 2, 0x22},
		{plan.AreaMerker, 0, 0x33},
	} {
		got, err := sim.Read(tc.area, tc.db, 0, 1)
		if err != nil {
			t.Fatalf("read %s%d: %v", tc.area, tc.db, err)
		}
		if got[0] != tc.want {
			t.Fatalf("read %s%d: got %02X, want %02X", tc.area, tc.db, got[0], tc.want)
		}
	}
}

func TestSimulatorUnwrittenMemoryIsZero(t *testing.T) {
	sim := NewSimulator()
	got, err := sim.Read(plan.AreaDB, 9, 100, 4)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, make([]byte, 4)) {
		t.Fatalf("expected zeroed memory, got % X", got)
	}
}

func TestSimulatorFaultInjection(t *testing.T) {
	sim := NewSimulator()
	boom := errors.New("link down")

	sim.SetReadError(boom)
	if _, err := sim.Read(plan.AreaDB, 1, 0, 1); !errors.Is(err, boom) {
		t.Fatalf("expected injected read error, got %v", err)
	}
	sim.SetReadError(nil)
	if _, err := sim.Read(plan.AreaDB, 1, 0, 1); err != nil {
		t.Fatalf("read after heal: %v", err)
	}

	sim.SetWriteError(boom)
	if err := sim.Write(plan.AreaDB, 1, 0, []byte{1}); !errors.Is(err, boom) {
		t.Fatalf("expected injected write error, got %v", err)
	}
}
