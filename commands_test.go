// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package explorir

import (
	"errors"
	"testing"
)

func TestSetDigitalFilter(t *testing.T) {
	tests := []struct {
		filter uint16
		w      string
		r      string
	}{
		// Minimal-width argument, no zero padding.
		{16, "A 16\r\n", " A 00016\r\n"},
		{0, "A 0\r\n", " A 00000\r\n"},
		{MaxDigitalFilter, "A 65365\r\n", " A 65365\r\n"},
	}
	for _, test := range tests {
		d, p := getDev(t, exchange{w: test.w, r: []string{test.r}})
		if err := d.SetDigitalFilter(test.filter); err != nil {
			t.Errorf("SetDigitalFilter(%d): %s", test.filter, err)
		}
		if d.DigitalFilter() != test.filter {
			t.Errorf("DigitalFilter() = %d, want %d", d.DigitalFilter(), test.filter)
		}
		p.verify()
	}
}

func TestSetDigitalFilterOutOfRange(t *testing.T) {
	d, p := getDev(t)
	if err := d.SetDigitalFilter(MaxDigitalFilter + 1); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("SetDigitalFilter(%d) = %v, want ErrInvalidInput", MaxDigitalFilter+1, err)
	}
	if d.LastResult() != nil {
		t.Error("rejected input must not touch the session result")
	}
	p.verify()
}

func TestRequestDigitalFilter(t *testing.T) {
	d, p := getDev(t, exchange{w: "a\r\n", r: []string{" a 00032\r\n"}})
	if err := d.RequestDigitalFilter(); err != nil {
		t.Fatal(err)
	}
	if d.DigitalFilter() != 32 {
		t.Errorf("DigitalFilter() = %d, want 32", d.DigitalFilter())
	}
	p.verify()
}

func TestRequestCO2(t *testing.T) {
	d, p := getDev(t,
		exchange{w: ".\r\n", r: []string{" . 00010\r\n"}},
		exchange{w: "Z\r\n", r: []string{" Z 00123\r\n"}},
		exchange{w: "z\r\n", r: []string{" z 00456\r\n"}},
	)
	if err := d.RequestScalingFactor(); err != nil {
		t.Fatal(err)
	}
	if err := d.RequestFilteredCO2(); err != nil {
		t.Fatal(err)
	}
	if err := d.RequestUnfilteredCO2(); err != nil {
		t.Fatal(err)
	}
	if d.FilteredCO2() != 1230 {
		t.Errorf("FilteredCO2() = %s, want 1230 PPM", d.FilteredCO2())
	}
	if d.UnfilteredCO2() != 4560 {
		t.Errorf("UnfilteredCO2() = %s, want 4560 PPM", d.UnfilteredCO2())
	}
	if d.LastResult() != nil {
		t.Errorf("LastResult() = %v, want nil", d.LastResult())
	}
	p.verify()
}

func TestZeroPointCommands(t *testing.T) {
	tests := []struct {
		name string
		op   func(d *Dev) error
		w    string
		r    string
	}{
		{"ZeroInFreshAir", (*Dev).ZeroInFreshAir, "G\r\n", " G 32997\r\n"},
		{"ZeroInNitrogen", (*Dev).ZeroInNitrogen, "U\r\n", " U 32997\r\n"},
		{"SetZeroPoint", func(d *Dev) error { return d.SetZeroPoint(33000) }, "u 33000\r\n", " u 33000\r\n"},
		{"ZeroFromKnownCO2", func(d *Dev) error { return d.ZeroFromKnownCO2(33000) }, "X 33000\r\n", " X 33000\r\n"},
	}
	for _, test := range tests {
		d, p := getDev(t, exchange{w: test.w, r: []string{test.r}})
		if err := test.op(d); err != nil {
			t.Errorf("%s: %s", test.name, err)
			continue
		}
		if d.ZeroPoint() == 0 {
			t.Errorf("%s: zero point not updated", test.name)
		}
		p.verify()
	}
}

// The commands whose wire encoding the datasheet leaves open must not
// transmit anything.
func TestUnspecifiedCommandsAreStubs(t *testing.T) {
	d, p := getDev(t)
	if err := d.ZeroFromReading(410, 400); !errors.Is(err, ErrNotImplemented) {
		t.Errorf("ZeroFromReading() = %v, want ErrNotImplemented", err)
	}
	if err := d.SetAutoZeroCO2(400); !errors.Is(err, ErrNotImplemented) {
		t.Errorf("SetAutoZeroCO2() = %v, want ErrNotImplemented", err)
	}
	if err := d.SetFreshAirCO2(400); !errors.Is(err, ErrNotImplemented) {
		t.Errorf("SetFreshAirCO2() = %v, want ErrNotImplemented", err)
	}
	p.verify()
}

func TestSetAutoZeroIntervals(t *testing.T) {
	d, p := getDev(t, exchange{w: "@ 5.0 7.0\r\n", r: []string{" @ 5.0 7.0\r\n"}})
	if err := d.SetAutoZeroIntervals(5, 7); err != nil {
		t.Fatal(err)
	}
	p.verify()

	for _, args := range [][2]uint8{{10, 5}, {5, 10}, {10, 10}} {
		d, p := getDev(t)
		if err := d.SetAutoZeroIntervals(args[0], args[1]); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("SetAutoZeroIntervals(%d, %d) = %v, want ErrInvalidInput", args[0], args[1], err)
		}
		p.verify()
	}
}

func TestAutoZeroCommands(t *testing.T) {
	d, p := getDev(t,
		exchange{w: "@ 0\r\n", r: []string{" @ 0\r\n"}},
		exchange{w: "65222\r\n", r: []string{" @ 1.0 8.0\r\n"}},
		exchange{w: "@\r\n", r: []string{" @ 1.0 8.0\r\n"}},
	)
	if err := d.DisableAutoZero(); err != nil {
		t.Fatal(err)
	}
	if err := d.StartAutoZero(); err != nil {
		t.Fatal(err)
	}
	if err := d.RequestAutoZeroConfig(); err != nil {
		t.Fatal(err)
	}
	p.verify()
}

func TestCompensation(t *testing.T) {
	d, p := getDev(t,
		exchange{w: "S 8192\r\n", r: []string{" S 08192\r\n"}},
		exchange{w: "s\r\n", r: []string{" s 08192\r\n"}},
	)
	if err := d.SetCompensation(8192); err != nil {
		t.Fatal(err)
	}
	if err := d.RequestCompensation(); err != nil {
		t.Fatal(err)
	}
	if d.Compensation() != 8192 {
		t.Errorf("Compensation() = %d, want 8192", d.Compensation())
	}
	p.verify()
}

func TestSetOutputFields(t *testing.T) {
	tests := []struct {
		fields OutputFields
		w      string
	}{
		{FieldUnfiltered, "M 00002\r\n"},
		{FieldFiltered, "M 00004\r\n"},
		{FieldBoth, "M 00006\r\n"},
	}
	for _, test := range tests {
		d, p := getDev(t, exchange{w: test.w, r: []string{" M 00006\r\n"}})
		if err := d.SetOutputFields(test.fields); err != nil {
			t.Errorf("SetOutputFields(%d): %s", test.fields, err)
		}
		p.verify()
	}

	d, p := getDev(t)
	if err := d.SetOutputFields(OutputFields(3)); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("SetOutputFields(3) = %v, want ErrInvalidInput", err)
	}
	p.verify()
}

func TestRequestOutputFieldCount(t *testing.T) {
	d, p := getDev(t, exchange{w: "Q\r\n", r: []string{" Q 2\r\n"}})
	if err := d.RequestOutputFieldCount(); err != nil {
		t.Fatal(err)
	}
	p.verify()
}

func TestUnrecognizedCommandReply(t *testing.T) {
	d, p := getDev(t, exchange{w: "Q\r\n", r: []string{" ? 51402\r\n"}})
	if err := d.RequestOutputFieldCount(); !errors.Is(err, ErrUnrecognizedCommand) {
		t.Errorf("RequestOutputFieldCount() = %v, want ErrUnrecognizedCommand", err)
	}
	if !errors.Is(d.LastResult(), ErrUnrecognizedCommand) {
		t.Errorf("LastResult() = %v, want ErrUnrecognizedCommand", d.LastResult())
	}
	p.verify()
}

func TestTransmitError(t *testing.T) {
	d, err := New(&failingWriter{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.RequestFilteredCO2(); err == nil {
		t.Fatal("RequestFilteredCO2() should surface the transport failure")
	} else if !errors.Is(d.LastResult(), errWriteFailed) {
		t.Errorf("LastResult() = %v, want wrapped errWriteFailed", d.LastResult())
	}
}

var errWriteFailed = errors.New("write failed")

type failingWriter struct{}

func (f *failingWriter) Write(p []byte) (int, error) {
	return 0, errWriteFailed
}
