package oslink

import (
	"io"
	"os"
)

// Data bundles the operating system interface of a program run.
// Tests replace it with in-memory buffers.
type Data struct {
	Args     []string
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
	ShowDiag bool
}

func Get() Data {
	return Data{
		Args:     os.Args,
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		ShowDiag: os.Getenv("SHOW_DIAG") != "",
	}
}
