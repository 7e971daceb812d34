package sandbox

import "testing"

func TestLimitationRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		lim  Limitation
	}{
		{"default", DefaultLimitation()},
		{"compile", CompileLimitation()},
		{"mixed", Limitation{
			RealTime:      NewDouble(Elapse(1000), Elapse(2000)),
			CPUTime:       NewSingle(Elapse(500)),
			VirtualMemory: NewDouble(Memory(1<<20), Memory(1<<21)),
			RealMemory:    NewSingle(Memory(1 << 20)),
			StackMemory:   NewSingle(Memory(1 << 20)),
			OutputMemory:  NewDouble(Memory(1<<10), Memory(1<<11)),
			Fileno:        NewDouble[uint64](16, 32),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatted := tt.lim.String()
			parsed, err := ParseLimitation(formatted)
			if err != nil {
				t.Fatalf("ParseLimitation(%q) error: %v", formatted, err)
			}
			if parsed != tt.lim {
				t.Fatalf("round trip mismatch:\n  formatted: %s\n  got:  %+v\n  want: %+v", formatted, parsed, tt.lim)
			}
		})
	}
}

func TestParseLimitationRejectsWrongFieldCount(t *testing.T) {
	if _, err := ParseLimitation("1,-:2,-"); err == nil {
		t.Fatal("expected an error for too few fields")
	}
}

func TestLimCheck(t *testing.T) {
	lim := NewSingle(Memory(100))
	if !lim.Check(100) {
		t.Fatal("usage equal to soft limit should pass")
	}
	if lim.Check(101) {
		t.Fatal("usage above soft limit should fail")
	}
}
