// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package explorir

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"periph.io/x/conn/v3/physic"
)

// PPM=Parts Per Million. Units of measure for CO2 concentration.
type PPM int

func (p PPM) String() string {
	return fmt.Sprintf("%d PPM", int(p))
}

// Mode is one of the sensor's operating modes, set with the 'K'
// command.
type Mode int

const (
	// ModeCommand stops measurements. The sensor only answers commands.
	// This is the power-on default and is required before requesting
	// sensor info.
	ModeCommand Mode = 0
	// ModeStreaming makes the sensor emit the selected output fields
	// twice per second.
	ModeStreaming Mode = 1
	// ModePolling has the sensor measure continuously but only report
	// when polled.
	ModePolling Mode = 2
	// ModeDefault is the mode Init leaves the sensor in.
	ModeDefault = ModeCommand
)

func (m Mode) String() string {
	switch m {
	case ModeCommand:
		return "command"
	case ModeStreaming:
		return "streaming"
	case ModePolling:
		return "polling"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// OutputFields selects which measurement fields the sensor reports,
// set with the 'M' command.
type OutputFields int

const (
	FieldUnfiltered OutputFields = 2
	FieldFiltered   OutputFields = 4
	FieldBoth       OutputFields = FieldFiltered | FieldUnfiltered
)

const (
	// MaxDigitalFilter is the largest digital filter coefficient the
	// sensor accepts.
	MaxDigitalFilter = 65365
	// DefaultDigitalFilter is the sensor's documented power-on filter
	// value, and the value Init programs.
	DefaultDigitalFilter = 16

	// Size of the receive buffer. No response line comes close to this.
	rxBufSize = 128
)

// Opts holds the configuration options for the device.
type Opts struct {
	// ResponseTimeout bounds the wait for each response frame. Leave 0
	// to use the default of 500ms.
	ResponseTimeout time.Duration
	// DigitalFilter is the smoothing coefficient Init programs into the
	// sensor. Range 0 to MaxDigitalFilter. Leave 0 to use
	// DefaultDigitalFilter.
	DigitalFilter uint16
	// InitAbortsOnError makes Init stop at the first failed step. The
	// default is to attempt every step and report the last result,
	// which matches the sensor vendor's reference sequence.
	InitAbortsOnError bool
}

// DefaultOpts holds the default configuration options for the device.
var DefaultOpts = Opts{
	ResponseTimeout: 500 * time.Millisecond,
	DigitalFilter:   DefaultDigitalFilter,
}

// Dev represents an ExplorIR sensor. It owns the state of one physical
// device for the device's whole lifetime: create it once, run Init,
// then issue commands. Operations are one command/response exchange at
// a time; the receive buffer holds at most one pending frame, so a
// frame delivered before the previous one was consumed is lost.
type Dev struct {
	opts Opts
	// The injected transport. Held by reference only; the Dev owns no
	// transport resources beyond closer.
	w      io.Writer
	closer io.Closer

	rx        chan []byte
	done      chan struct{}
	closeOnce sync.Once

	mu    sync.Mutex
	rxBuf [rxBufSize]byte
	rxLen int
	// Most recent engine outcome. Validation failures do not touch it.
	last error
	// Multiplier converting raw readings to PPM. 0 until the scaling
	// factor command has succeeded; CO2 values are meaningless before
	// that.
	scalingFactor uint16
	filteredCO2   PPM
	unfilteredCO2 PPM
	digitalFilter uint16
	zeroPoint     uint32
	compensation  uint32
	mode          Mode
}

// New returns a driver that transmits command frames through w.
// Response frames must be handed to Deliver by whoever owns the receive
// side of the transport. Opts can be nil.
func New(w io.Writer, opts *Opts) (*Dev, error) {
	if w == nil {
		return nil, errors.New("explorir: nil transport")
	}
	if opts == nil {
		opts = &DefaultOpts
	}
	o := *opts
	if o.ResponseTimeout <= 0 {
		o.ResponseTimeout = DefaultOpts.ResponseTimeout
	}
	if o.DigitalFilter == 0 {
		o.DigitalFilter = DefaultDigitalFilter
	}
	return &Dev{
		opts: o,
		w:    w,
		rx:   make(chan []byte, 1),
		done: make(chan struct{}),
		mode: ModeCommand,
	}, nil
}

// Deliver hands one complete response frame to the driver. Call it once
// per expected reply, as soon as the transport has received a full
// line. The payload is copied.
func (d *Dev) Deliver(p []byte) error {
	if len(p) > rxBufSize {
		return fmt.Errorf("explorir: %d byte response exceeds %d byte receive buffer", len(p), rxBufSize)
	}
	frame := make([]byte, len(p))
	copy(frame, p)
	select {
	case d.rx <- frame:
		return nil
	case <-d.done:
		return errClosed
	}
}

// Close releases the transport if the driver owns one and unblocks any
// pending Deliver.
func (d *Dev) Close() error {
	var err error
	d.closeOnce.Do(func() {
		close(d.done)
		if d.closer != nil {
			err = d.closer.Close()
		}
	})
	return err
}

// waitForResponse blocks until a frame has been delivered and moves it
// into the receive buffer, or gives up after the configured timeout.
func (d *Dev) waitForResponse() error {
	t := time.NewTimer(d.opts.ResponseTimeout)
	defer t.Stop()
	select {
	case frame := <-d.rx:
		d.rxLen = copy(d.rxBuf[:], frame)
		return nil
	case <-t.C:
		return ErrTimeout
	}
}

// drainPending discards a frame left over from an earlier exchange,
// typically one that arrived after its operation had already timed out.
func (d *Dev) drainPending() {
	select {
	case <-d.rx:
	default:
	}
}

// LastResult returns the outcome of the most recent engine operation.
// Operations rejected before transmission (invalid input or mode) do
// not count.
func (d *Dev) LastResult() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// FilteredCO2 returns the most recently decoded filtered CO2
// concentration, already multiplied by the scaling factor.
func (d *Dev) FilteredCO2() PPM {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.filteredCO2
}

// UnfilteredCO2 returns the most recently decoded unfiltered CO2
// concentration, already multiplied by the scaling factor.
func (d *Dev) UnfilteredCO2() PPM {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.unfilteredCO2
}

// ScalingFactor returns the sensor's raw-reading multiplier, or 0 if it
// has not been read yet.
func (d *Dev) ScalingFactor() uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.scalingFactor
}

// DigitalFilter returns the last known digital filter coefficient.
func (d *Dev) DigitalFilter() uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.digitalFilter
}

// ZeroPoint returns the value reported by the most recent zero-point
// command.
func (d *Dev) ZeroPoint() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.zeroPoint
}

// Compensation returns the last known pressure and concentration
// compensation value.
func (d *Dev) Compensation() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.compensation
}

// Mode returns the last known operating mode.
func (d *Dev) Mode() Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode
}

// The sensor reading. Only CO2 is populated; the ExplorIR measures CO2
// concentration alone.
type Env struct {
	physic.Env
	CO2 PPM
}

// Return the sensor reading in string format.
func (e *Env) String() string {
	return fmt.Sprintf("CO2: %s", e.CO2.String())
}

// Sense requests a filtered CO2 measurement and stores it in env. The
// value is provisional until the scaling factor has been read, see
// Init.
func (d *Dev) Sense(env *Env) error {
	env.Temperature = 0
	env.Pressure = 0
	env.Humidity = 0
	env.CO2 = 0

	if err := d.RequestFilteredCO2(); err != nil {
		return err
	}
	env.CO2 = d.FilteredCO2()
	return nil
}

// Precision returns the sensor's resolution. CO2 readings move in steps
// of the scaling factor.
func (d *Dev) Precision(env *Env) {
	env.Temperature = 0
	env.Pressure = 0
	env.Humidity = 0
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.scalingFactor == 0 {
		env.CO2 = 1
	} else {
		env.CO2 = PPM(d.scalingFactor)
	}
}

func (d *Dev) String() string {
	return "ExplorIR"
}
