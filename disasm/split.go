package disasm

// InstSize is the size in bytes of every instruction handled here.
const InstSize = 2

// ScanWords is a bufio.SplitFunc yielding InstSize-byte tokens. A short
// tail at EOF is reported as *TrailingBytesError with Offset left at zero;
// the caller knows where the stream ended.
func ScanWords(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if len(data) < InstSize {
		if atEOF {
			return len(data), nil, &TrailingBytesError{Count: len(data)}
		}
		return 0, nil, nil
	}

	return InstSize, data[0:InstSize], nil
}
