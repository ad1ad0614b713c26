package output

import "io"

type flusher interface {
	Flush() error
}

// flushIfPossible pushes buffered ndjson lines through so streaming readers
// see each event as soon as it is written.
func flushIfPossible(w io.Writer) error {
	f, ok := w.(flusher)
	if !ok {
		return nil
	}
	return f.Flush()
}
