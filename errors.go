// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package explorir

import "errors"

// Engine operations return nil on success or one of these values.
// Compare with errors.Is: transport failures are wrapped with
// additional context.
var (
	// ErrInvalidMode is returned by SetOperationMode when the supplied
	// value is not one of the defined operating modes. Nothing is
	// transmitted.
	ErrInvalidMode = errors.New("explorir: invalid operation mode")

	// ErrInvalidInput is returned when a numeric argument lies outside
	// its documented range. Nothing is transmitted.
	ErrInvalidInput = errors.New("explorir: argument outside documented range")

	// ErrTimeout is returned when no response frame arrives within
	// Opts.ResponseTimeout.
	ErrTimeout = errors.New("explorir: timed out waiting for sensor response")

	// ErrUnrecognizedCommand is returned when the sensor answers with
	// its "command not understood" marker.
	ErrUnrecognizedCommand = errors.New("explorir: sensor did not recognize command")

	// ErrMalformedResponse is returned when a delivered frame has no
	// line terminator.
	ErrMalformedResponse = errors.New("explorir: response frame missing terminator")

	// ErrNotImplemented is returned by the calibration commands whose
	// wire encoding the datasheet leaves unspecified.
	ErrNotImplemented = errors.New("explorir: wire encoding not documented for this command")
)

var errClosed = errors.New("explorir: device closed")
