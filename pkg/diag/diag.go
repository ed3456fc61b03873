package diag

import (
	"fmt"

	"github.com/hknutzen/asaconv/pkg/conf"
)

// Collector receives messages of one device conversion.
// Sub-routines only write to it; the driver reads messages after
// conversion has finished.
type Collector struct {
	messages []string
	warnings int
	errors   int
	// ShowDiag enables messages given to Diag.
	ShowDiag bool
}

func (c *Collector) add(msg string) {
	c.messages = append(c.messages, msg)
}

func (c *Collector) Warn(format string, args ...interface{}) {
	c.warnings++
	c.add(fmt.Sprintf("Warning: "+format, args...))
}

func (c *Collector) Err(format string, args ...interface{}) {
	c.errors++
	c.add(fmt.Sprintf("Error: "+format, args...))
}

// WarnOrErr reports a configurable check.
// Empty errType silences the check.
func (c *Collector) WarnOrErr(
	errType conf.TriState, format string, args ...interface{}) {

	switch errType {
	case "":
	case "warn":
		c.Warn(format, args...)
	default:
		c.Err(format, args...)
	}
}

func (c *Collector) Diag(format string, args ...interface{}) {
	if c.ShowDiag {
		c.add(fmt.Sprintf("DIAG: "+format, args...))
	}
}

// Messages returns all messages in order of appearance.
func (c *Collector) Messages() []string { return c.messages }

func (c *Collector) WarnCount() int { return c.warnings }
func (c *Collector) ErrCount() int  { return c.errors }
