package helpers

import (
	"fmt"
	"io"
)

// MustFprintln writes to w and panics if the write fails. It is for console output where there
// is no sensible way to recover from a broken writer.
func MustFprintln(w io.Writer, a ...any) {
	if _, err := fmt.Fprintln(w, a...); err != nil {
		panic(err)
	}
}

func MustFprintf(w io.Writer, format string, a ...any) {
	if _, err := fmt.Fprintf(w, format, a...); err != nil {
		panic(err)
	}
}
