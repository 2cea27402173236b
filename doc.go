// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package explorir controls a GSS ExplorIR CO2 sensor over a UART byte
// stream.
//
// The sensor speaks an ASCII line protocol: every command and every
// response is a single CR/LF terminated line carrying a one-character
// field tag and an optional decimal argument. The driver encodes
// outbound command frames, hands them to an injected transport, and
// decodes the sensor's replies into typed state on the Dev.
//
// Raw CO2 readings must be multiplied by the sensor's scaling factor to
// obtain parts per million; the driver does this once the factor has
// been read from the device. Until then CO2 values decode to 0 and
// should be treated as provisional. Call Init after opening the device
// to run the recommended configuration sequence.
//
// The transport is anything that can write a frame. NewSerial wires the
// driver to a local serial device; New accepts any io.Writer together
// with externally delivered response frames, which is also how the
// package tests drive the protocol engine.
//
// Refer to the GSS ExplorIR datasheet (https://gassensing.co.uk) for
// the full command set.
package explorir
