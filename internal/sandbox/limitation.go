package sandbox

import (
	"fmt"
	"strconv"
	"strings"
)

// Elapse is a wall-clock or CPU duration stored in whole milliseconds.
type Elapse uint64

func (e Elapse) Add(o Elapse) Elapse { return e + o }

// Scale multiplies the elapse by a floating point factor, truncating.
func (e Elapse) Scale(f float64) Elapse { return Elapse(float64(e) * f) }

// Memory is a byte count.
type Memory uint64

// limValue is the subset of operations a Lim[T] needs from its payload type.
type limValue interface {
	~uint64
}

// Lim is either a single value (soft == hard) or an independent soft/hard pair.
type Lim[T limValue] struct {
	Soft T
	Hard T
}

// NewSingle builds a Lim whose soft and hard bounds are equal.
func NewSingle[T limValue](v T) Lim[T] { return Lim[T]{Soft: v, Hard: v} }

// NewDouble builds a Lim with independent soft and hard bounds.
func NewDouble[T limValue](soft, hard T) Lim[T] { return Lim[T]{Soft: soft, Hard: hard} }

// Check reports whether usage stays within the soft bound.
func (l Lim[T]) Check(usage T) bool { return usage <= l.Soft }

// String formats the Lim as "soft,hard", or "soft,-" when soft == hard.
func (l Lim[T]) String() string {
	if l.Soft == l.Hard {
		return fmt.Sprintf("%d,-", uint64(l.Soft))
	}
	return fmt.Sprintf("%d,%d", uint64(l.Soft), uint64(l.Hard))
}

// ParseLim parses the "soft,hard" / "soft,-" grammar.
func ParseLim[T limValue](s string) (Lim[T], error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return Lim[T]{}, fmt.Errorf("malformed limit %q: expected soft,hard", s)
	}
	soft, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return Lim[T]{}, fmt.Errorf("malformed soft limit %q: %w", parts[0], err)
	}
	if parts[1] == "-" {
		return Lim[T]{Soft: T(soft), Hard: T(soft)}, nil
	}
	hard, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return Lim[T]{}, fmt.Errorf("malformed hard limit %q: %w", parts[1], err)
	}
	return Lim[T]{Soft: T(soft), Hard: T(hard)}, nil
}

// Limitation bounds every resource a Singleton run is allowed to consume.
type Limitation struct {
	RealTime      Lim[Elapse]
	CPUTime       Lim[Elapse]
	VirtualMemory Lim[Memory]
	RealMemory    Lim[Memory]
	StackMemory   Lim[Memory]
	OutputMemory  Lim[Memory]
	Fileno        Lim[uint64]
}

// DefaultLimitation matches the reference judge's defaults: 60s wall/CPU,
// 1 GiB vm/rss/stack/output, 100 open files.
func DefaultLimitation() Limitation {
	const gib = 1 << 30
	return Limitation{
		RealTime:      NewSingle(Elapse(60_000)),
		CPUTime:       NewSingle(Elapse(60_000)),
		VirtualMemory: NewSingle(Memory(gib)),
		RealMemory:    NewSingle(Memory(gib)),
		StackMemory:   NewSingle(Memory(gib)),
		OutputMemory:  NewSingle(Memory(gib)),
		Fileno:        NewSingle[uint64](100),
	}
}

// CompileLimitation bounds every compilation step regardless of language.
func CompileLimitation() Limitation {
	const gib4 = 4 << 30
	const gib1 = 1 << 30
	return Limitation{
		RealTime:      NewSingle(Elapse(20_000)),
		CPUTime:       NewSingle(Elapse(10_000)),
		VirtualMemory: NewSingle(Memory(gib4)),
		RealMemory:    NewSingle(Memory(gib4)),
		StackMemory:   NewSingle(Memory(gib4)),
		OutputMemory:  NewSingle(Memory(gib1)),
		Fileno:        NewSingle[uint64](200),
	}
}

// String formats a Limitation as seven colon-separated Lim fields, in the
// order real_time:cpu_time:virtual_memory:real_memory:stack_memory:output_memory:fileno.
func (l Limitation) String() string {
	return strings.Join([]string{
		l.RealTime.String(),
		l.CPUTime.String(),
		l.VirtualMemory.String(),
		l.RealMemory.String(),
		l.StackMemory.String(),
		l.OutputMemory.String(),
		l.Fileno.String(),
	}, ":")
}

// ParseLimitation parses the seven-colon grammar used by the CLI's --lim flag.
func ParseLimitation(s string) (Limitation, error) {
	fields := strings.Split(s, ":")
	if len(fields) != 7 {
		return Limitation{}, fmt.Errorf("malformed limitation %q: expected 7 colon-separated fields, got %d", s, len(fields))
	}
	var (
		lim Limitation
		err error
	)
	if lim.RealTime, err = ParseLim[Elapse](fields[0]); err != nil {
		return Limitation{}, err
	}
	if lim.CPUTime, err = ParseLim[Elapse](fields[1]); err != nil {
		return Limitation{}, err
	}
	if lim.VirtualMemory, err = ParseLim[Memory](fields[2]); err != nil {
		return Limitation{}, err
	}
	if lim.RealMemory, err = ParseLim[Memory](fields[3]); err != nil {
		return Limitation{}, err
	}
	if lim.StackMemory, err = ParseLim[Memory](fields[4]); err != nil {
		return Limitation{}, err
	}
	if lim.OutputMemory, err = ParseLim[Memory](fields[5]); err != nil {
		return Limitation{}, err
	}
	if lim.Fileno, err = ParseLim[uint64](fields[6]); err != nil {
		return Limitation{}, err
	}
	return lim, nil
}
