// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package explorir

// The sensor prefixes combined-output lines (" Z ##### z #####") with a
// space and pads values to five digits, so the unfiltered field always
// starts at this index.
const combinedUnfilteredIndex = 9

// processResponse scans the delivered response line left to right and
// decodes the first recognized field into the matching Dev attribute.
// Scanning stops at the field for every tag except filtered CO2, which
// resumes at the fixed column where a combined-output line carries the
// unfiltered field. The buffer is zero-filled afterwards so a stale
// frame can never be reparsed. Caller must hold d.mu.
func (d *Dev) processResponse() error {
	buf := d.rxBuf[:d.rxLen]
	defer d.clearBuffer()
	if len(buf) == 0 {
		// Nothing delivered since the last pass.
		return nil
	}

	matched := false
	i := 0
	for i < len(buf) {
		switch buf[i] {
		case terminator:
			return nil
		case tagScalingFactor:
			v, _ := decodeField(buf, i)
			d.scalingFactor = uint16(v)
			return nil
		case tagFilteredCO2:
			v, next := decodeField(buf, i)
			d.filteredCO2 = PPM(v) * PPM(d.scalingFactor)
			matched = true
			if next < combinedUnfilteredIndex {
				next = combinedUnfilteredIndex
			}
			i = next
		case tagUnfilteredCO2:
			v, _ := decodeField(buf, i)
			d.unfilteredCO2 = PPM(v) * PPM(d.scalingFactor)
			return nil
		case tagMode:
			v, _ := decodeField(buf, i)
			d.mode = Mode(v)
			return nil
		case tagSetDigitalFilter, tagGetDigitalFilter:
			v, _ := decodeField(buf, i)
			d.digitalFilter = uint16(v)
			return nil
		case tagZeroFromReading, tagZeroFreshAir, tagZeroNitrogen, tagSetZero, tagZeroKnownCO2:
			v, _ := decodeField(buf, i)
			d.zeroPoint = v
			return nil
		case tagSetCompensation, tagGetCompensation:
			v, _ := decodeField(buf, i)
			d.compensation = v
			return nil
		case tagUnrecognized:
			return ErrUnrecognizedCommand
		default:
			// Separators and anything unrecognized, one byte at a time.
			i++
		}
	}
	if matched {
		// A filtered CO2 value was committed and the fixed-column skip
		// ran past the end of a short single-field line.
		return nil
	}
	return ErrMalformedResponse
}

// decodeField decodes the ASCII decimal argument following the field
// tag at buf[i]. It skips the tag and its separator, drops redundant
// zero padding without consuming a lone zero, then reads at most five
// digits. Returns the value and the index one past the last byte
// consumed.
func decodeField(buf []byte, i int) (uint32, int) {
	i += 2
	for i+1 < len(buf) && buf[i] == '0' && isDigit(buf[i+1]) {
		i++
	}
	// Blanks before the digits are ignored, matching the sensor's
	// column-aligned responses.
	for i < len(buf) && buf[i] == ' ' {
		i++
	}
	var v uint32
	for n := 0; n < 5 && i < len(buf) && isDigit(buf[i]); n++ {
		v = v*10 + uint32(buf[i]-'0')
		i++
	}
	return v, i
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func (d *Dev) clearBuffer() {
	clear(d.rxBuf[:])
	d.rxLen = 0
}
