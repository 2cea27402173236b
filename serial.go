// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package explorir

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"go.bug.st/serial"
)

// The sensor's fixed UART parameters: 9600 baud, 8 data bits, no
// parity, 1 stop bit.
const serialBaudRate = 9600

// NewSerial opens the serial device at path and returns a driver wired
// to it. A reader goroutine splits the incoming byte stream into
// response frames and delivers them; Close stops it and releases the
// port. Opts can be nil.
func NewSerial(path string, opts *Opts) (*Dev, error) {
	port, err := serial.Open(path, &serial.Mode{
		BaudRate: serialBaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("explorir: open %s: %w", path, err)
	}
	d, err := New(port, opts)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	d.closer = port
	go d.readFrames(port)
	return d, nil
}

// readFrames splits the byte stream from r into terminator-delimited
// frames and hands each one to Deliver. It returns when the stream ends
// or the driver is closed.
func (d *Dev) readFrames(r io.Reader) {
	br := bufio.NewReaderSize(r, rxBufSize)
	for {
		line, err := br.ReadBytes(terminator)
		if len(line) > 0 {
			if derr := d.Deliver(line); errors.Is(derr, errClosed) {
				return
			}
			// An oversized frame is dropped; the next line may still
			// be well formed.
		}
		if err != nil {
			return
		}
	}
}
