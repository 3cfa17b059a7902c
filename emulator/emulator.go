// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ezrec/id16/cpu"
	"github.com/ezrec/id16/internal"
	"github.com/ezrec/id16/io"
	"github.com/ezrec/id16/memory"
)

// Emulator drives a CPU: start, pause, single step, inter-step delay and
// interrupts, serialized so that no two cycles ever run concurrently.
type Emulator struct {
	*cpu.Cpu                // Reference to the CPU simulation.
	Mapper   *memory.Mapper // Memory attached to the CPU.
	Program  *cpu.Program   // Listing of the loaded program, may be nil.

	mutex   sync.Mutex
	running atomic.Bool
	delay   atomic.Int64
	wake    chan struct{}
}

// NewEmulator creates a paused emulator for a CPU attached to mm and the
// I/O ports.
func NewEmulator(mm *memory.Mapper, input io.Input, output io.Output) (emu *Emulator) {
	emu = &Emulator{
		Cpu:    cpu.NewCpu(mm, input, output),
		Mapper: mm,
		wake:   make(chan struct{}, 1),
	}

	return
}

// SetLogger sets the diagnostics sink of the CPU and memory.
func (emu *Emulator) SetLogger(log logrus.FieldLogger) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	emu.Cpu.SetLogger(log)
	emu.Mapper.SetLogger(log)
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(
		maps.All(map[string]string{
			"MEMORY_SIZE": fmt.Sprintf("0x%x", emu.Mapper.Size()),
		}),
		cpu.Defines(),
		io.Defines(),
	)
}

// notify wakes the run loop.
func (emu *Emulator) notify() {
	select {
	case emu.wake <- struct{}{}:
	default:
	}
}

// Start running cycles.
func (emu *Emulator) Start() {
	emu.running.Store(true)
	emu.notify()
}

// Pause running cycles. Returns once no cycle is in flight; no cycle
// starts until the next Start.
func (emu *Emulator) Pause() {
	emu.running.Store(false)

	emu.mutex.Lock()
	defer emu.mutex.Unlock()
}

// Running is true if the emulator is started.
func (emu *Emulator) Running() bool {
	return emu.running.Load()
}

// Step pauses the emulator, then runs a single cycle.
func (emu *Emulator) Step() {
	emu.Pause()
	emu.Tick()
}

// SetDelay sets the delay between cycles, in milliseconds.
// Negative delays are treated as 0, no delay.
func (emu *Emulator) SetDelay(ms int) {
	emu.delay.Store(int64(max(ms, 0)))
}

// Delay returns the delay between cycles.
func (emu *Emulator) Delay() time.Duration {
	return time.Duration(emu.delay.Load()) * time.Millisecond
}

// Interrupt raises an interrupt, serviced on the next cycle.
func (emu *Emulator) Interrupt(code int16) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	emu.Cpu.Interrupt(code)
}

// LineNo returns the source line of the instruction at the execution
// pointer, or 0 if there is no listing for it.
func (emu *Emulator) LineNo() int {
	if emu.Program == nil {
		return 0
	}

	dbg := emu.Program.Debug(int(uint16(emu.Cpu.Get(cpu.EP_EXPTR))))
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single cycle of the emulator.
func (emu *Emulator) Tick() {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	emu.tick()
}

// cycle runs a single cycle, if the emulator is running.
func (emu *Emulator) cycle() bool {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if !emu.running.Load() {
		return false
	}

	emu.tick()

	return true
}

func (emu *Emulator) tick() {
	if emu.Program != nil {
		internal.LoggerOr(emu.Cpu.Log).WithField("line", emu.LineNo()).Debug("tick")
	}

	emu.Cpu.Tick()
}

// Run cycles while the emulator is started, until ctx is done.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if !emu.cycle() {
			select {
			case <-ctx.Done():
				return nil
			case <-emu.wake:
			}
			continue
		}

		delay := emu.Delay()
		if delay == 0 {
			continue
		}

		timer.Reset(delay)
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
	}
}

// Save pauses the emulator, and persists its memory.
func (emu *Emulator) Save(layout memory.Layout, store memory.Storage) (err error) {
	emu.Pause()

	err = layout.Save(emu.Mapper, store)
	if err != nil {
		err = errors.Join(ErrSave, err)
	}

	return
}
