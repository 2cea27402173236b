// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package explorir

import (
	"fmt"
	"strconv"
)

// Command and response field tags. Each command is a single character
// followed by an optional decimal argument, CR/LF terminated.
const (
	tagSetDigitalFilter = 'A'
	tagGetDigitalFilter = 'a'
	tagZeroFromReading  = 'F'
	tagZeroFreshAir     = 'G'
	tagMode             = 'K'
	tagOutputFields     = 'M'
	tagOutputCount      = 'Q'
	tagSetCompensation  = 'S'
	tagGetCompensation  = 's'
	tagZeroNitrogen     = 'U'
	tagSetZero          = 'u'
	tagZeroKnownCO2     = 'X'
	tagSensorInfo       = 'Y'
	tagFilteredCO2      = 'Z'
	tagUnfilteredCO2    = 'z'
	tagAutoZero         = '@'
	tagScalingFactor    = '.'
	tagUnrecognized     = '?'
	terminator          = '\n'
)

// frame builds an argument-less command line.
func frame(tag byte) []byte {
	return []byte{tag, '\r', '\n'}
}

// frameArg builds a command line with a decimal argument. Arguments are
// minimal-width, no padding, per the documented wire format.
func frameArg(tag byte, v uint64) []byte {
	b := append(make([]byte, 0, 12), tag, ' ')
	b = strconv.AppendUint(b, v, 10)
	return append(b, '\r', '\n')
}

// command transmits one frame and consumes the expected number of
// response lines. The parse outcome of the final line becomes the
// session result.
func (d *Dev) command(f []byte, passes int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.drainPending()
	if _, err := d.w.Write(f); err != nil {
		d.last = fmt.Errorf("explorir: transmit %q: %w", f, err)
		return d.last
	}
	for i := 0; i < passes; i++ {
		if err := d.waitForResponse(); err != nil {
			d.last = err
			return d.last
		}
		d.last = d.processResponse()
	}
	return d.last
}

// RequestFilteredCO2 asks for the most recent filtered (smoothed) CO2
// measurement. Response "Z #####". Read the value with FilteredCO2.
func (d *Dev) RequestFilteredCO2() error {
	return d.command(frame(tagFilteredCO2), 1)
}

// RequestUnfilteredCO2 asks for the most recent unfiltered CO2
// measurement. Response "z #####". Read the value with UnfilteredCO2.
func (d *Dev) RequestUnfilteredCO2() error {
	return d.command(frame(tagUnfilteredCO2), 1)
}

// RequestScalingFactor asks for the multiplier that converts raw CO2
// readings to PPM. Response ". #####". Required before CO2 readings
// are meaningful.
func (d *Dev) RequestScalingFactor() error {
	return d.command(frame(tagScalingFactor), 1)
}

// SetOperationMode switches the sensor between command, streaming and
// polling modes. Response "K #####".
func (d *Dev) SetOperationMode(m Mode) error {
	var code byte
	switch m {
	case ModeStreaming:
		code = '1'
	case ModePolling:
		code = '2'
	case ModeCommand:
		code = '0'
	default:
		return ErrInvalidMode
	}
	return d.command([]byte{tagMode, ' ', code, '\r', '\n'}, 1)
}

// SetDigitalFilter programs the sensor's smoothing coefficient. Range 0
// to MaxDigitalFilter, the sensor responds with the new value.
func (d *Dev) SetDigitalFilter(filter uint16) error {
	if filter > MaxDigitalFilter {
		return ErrInvalidInput
	}
	return d.command(frameArg(tagSetDigitalFilter, uint64(filter)), 1)
}

// RequestDigitalFilter asks for the current digital filter value.
// Response "a #####".
func (d *Dev) RequestDigitalFilter() error {
	return d.command(frame(tagGetDigitalFilter), 1)
}

// ZeroFromReading fine-tunes the zero point from a reported/actual
// concentration pair ('F' command).
//
// Not implemented: the datasheet does not document how the two values
// are packed into the command line. Returns ErrNotImplemented without
// transmitting.
func (d *Dev) ZeroFromReading(reported, actual uint32) error {
	return ErrNotImplemented
}

// ZeroInFreshAir sets the zero point assuming the sensor sits in fresh
// air, typically 400 PPM. Response "G #####".
func (d *Dev) ZeroInFreshAir() error {
	return d.command(frame(tagZeroFreshAir), 1)
}

// ZeroInNitrogen sets the zero point assuming the sensor sits in 0 PPM
// CO2 such as nitrogen. Response "U #####".
func (d *Dev) ZeroInNitrogen() error {
	return d.command(frame(tagZeroNitrogen), 1)
}

// SetZeroPoint forces a specific zero point. The value is in raw
// sensor units, see RequestScalingFactor. Response "u #####".
func (d *Dev) SetZeroPoint(zeroPoint uint32) error {
	return d.command(frameArg(tagSetZero, uint64(zeroPoint)), 1)
}

// ZeroFromKnownCO2 sets the zero point from the known CO2 concentration
// surrounding the sensor, in raw sensor units. Response "X #####".
func (d *Dev) ZeroFromKnownCO2(concentration uint32) error {
	return d.command(frameArg(tagZeroKnownCO2, uint64(concentration)), 1)
}

// SetAutoZeroCO2 sets the CO2 level the auto-zero cycle assumes ('P'
// commands 8 and 9).
//
// Not implemented: the two-byte split of the value across command lines
// is not documented. Returns ErrNotImplemented without transmitting.
func (d *Dev) SetAutoZeroCO2(concentration uint32) error {
	return ErrNotImplemented
}

// SetFreshAirCO2 sets the CO2 level assumed for fresh-air zeroing ('P'
// commands 10 and 11).
//
// Not implemented: the two-byte split of the value across command lines
// is not documented. Returns ErrNotImplemented without transmitting.
func (d *Dev) SetFreshAirCO2(concentration uint32) error {
	return ErrNotImplemented
}

// SetAutoZeroIntervals configures the initial and regular auto-zero
// intervals, both in whole days 0 through 9. Response "@ #.# #.#".
func (d *Dev) SetAutoZeroIntervals(initial, regular uint8) error {
	if initial > 9 || regular > 9 {
		return ErrInvalidInput
	}
	return d.command(fmt.Appendf(nil, "@ %d.0 %d.0\r\n", initial, regular), 1)
}

// DisableAutoZero turns the auto-zero cycle off. Response "@ 0".
func (d *Dev) DisableAutoZero() error {
	return d.command([]byte("@ 0\r\n"), 1)
}

// StartAutoZero triggers an auto-zero immediately. The bare "65222"
// line is straight from the datasheet, which gives no further detail.
func (d *Dev) StartAutoZero() error {
	return d.command([]byte("65222\r\n"), 1)
}

// RequestAutoZeroConfig asks for the configured auto-zero intervals.
// Response "@ #.# #.#".
func (d *Dev) RequestAutoZeroConfig() error {
	return d.command(frame(tagAutoZero), 1)
}

// SetCompensation programs the pressure and concentration compensation
// value. Response "S #####".
func (d *Dev) SetCompensation(value uint32) error {
	return d.command(frameArg(tagSetCompensation, uint64(value)), 1)
}

// RequestCompensation asks for the current pressure and concentration
// compensation value. Response "s #####".
func (d *Dev) RequestCompensation() error {
	return d.command(frame(tagGetCompensation), 1)
}

// SetOutputFields selects which measurement fields the sensor reports.
// The mask is transmitted zero-padded to five digits, the one command
// that deviates from the minimal-width argument format. Response
// "M #####".
func (d *Dev) SetOutputFields(fields OutputFields) error {
	switch fields {
	case FieldFiltered, FieldUnfiltered, FieldBoth:
	default:
		return ErrInvalidInput
	}
	return d.command(fmt.Appendf(nil, "M %05d\r\n", int(fields)), 1)
}

// RequestOutputFieldCount asks how many measurement fields the sensor
// currently reports. Response "Q #####".
func (d *Dev) RequestOutputFieldCount() error {
	return d.command(frame(tagOutputCount), 1)
}

// RequestSensorInfo asks for the firmware version and serial number.
// The sensor answers with two separate lines, so two response frames
// are consumed. Valid in command mode only, see SetOperationMode.
func (d *Dev) RequestSensorInfo() error {
	return d.command(frame(tagSensorInfo), 2)
}

// Init runs the power-up configuration sequence: command mode, sensor
// info, scaling factor, digital filter, compensation readback, combined
// filtered+unfiltered output, back to the default mode. By default
// every step is attempted regardless of earlier failures and the last
// step's result is returned; set Opts.InitAbortsOnError to stop at the
// first failure instead.
func (d *Dev) Init() error {
	steps := []func() error{
		func() error { return d.SetOperationMode(ModeCommand) },
		d.RequestSensorInfo,
		d.RequestScalingFactor,
		func() error { return d.SetDigitalFilter(d.opts.DigitalFilter) },
		d.RequestCompensation,
		func() error { return d.SetOutputFields(FieldBoth) },
		func() error { return d.SetOperationMode(ModeDefault) },
	}
	var err error
	for _, step := range steps {
		if err = step(); err != nil && d.opts.InitAbortsOnError {
			return err
		}
	}

	d.mu.Lock()
	d.mode = ModeDefault
	d.filteredCO2 = 0
	d.unfilteredCO2 = 0
	d.digitalFilter = d.opts.DigitalFilter
	d.mu.Unlock()
	return err
}
