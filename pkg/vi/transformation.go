package vi

import (
	"net/netip"
	"strings"

	"go4.org/netipx"
)

// Step rewrites one IP field of a Flow.
// Variants: AssignFromPool, ShiftIntoSubnet.
type Step interface {
	apply(f *Flow)
	String() string
	isStep()
}

// AssignFromPool assigns some address of Pool.
type AssignFromPool struct {
	Field IPField
	Pool  netipx.IPRange
}

// ShiftIntoSubnet keeps host bits and replaces network bits by
// those of Subnet.
type ShiftIntoSubnet struct {
	Field  IPField
	Subnet netip.Prefix
}

func (AssignFromPool) isStep()  {}
func (ShiftIntoSubnet) isStep() {}

// Evaluation always takes the first address of pool.
func (s AssignFromPool) apply(f *Flow) {
	f.set(s.Field, s.Pool.From())
}

func (s ShiftIntoSubnet) apply(f *Flow) {
	f.set(s.Field, shiftIP(f.get(s.Field), s.Subnet))
}

// Take higher bits from subnet, lower bits from original IP.
func shiftIP(ip netip.Addr, subnet netip.Prefix) netip.Addr {
	if ip.BitLen() != subnet.Addr().BitLen() {
		return ip
	}
	bytes := ip.AsSlice()
	n := subnet.Masked().Addr().AsSlice()
	bits := subnet.Bits()
	for i := range bytes {
		var mask byte
		switch {
		case bits >= 8:
			mask = 0xff
		case bits > 0:
			mask = ^byte(0xff >> bits)
		}
		bits -= 8
		bytes[i] = n[i]&mask | bytes[i]&^mask
	}
	result, _ := netip.AddrFromSlice(bytes)
	return result
}

func (s AssignFromPool) String() string {
	return "assign " + s.Field.String() + " from " +
		RangeSpace{Range: s.Pool}.String()
}

func (s ShiftIntoSubnet) String() string {
	return "shift " + s.Field.String() + " into " + s.Subnet.String()
}

// Transformation applies Steps if Guard matches.
// Otherwise evaluation continues with Else.
// Values are shared between chains and must not be modified.
type Transformation struct {
	Guard BoolExpr
	Steps []Step
	Else  *Transformation
}

// Apply evaluates t with first match semantics.
// It returns the rewritten flow and the matching element of chain,
// or the unchanged flow and nil if no guard matched.
func (t *Transformation) Apply(f Flow, env Env) (Flow, *Transformation) {
	for ; t != nil; t = t.Else {
		if t.Guard.Eval(f, env) {
			for _, s := range t.Steps {
				s.apply(&f)
			}
			return f, t
		}
	}
	return f, nil
}

// Len returns number of elements in chain.
func (t *Transformation) Len() int {
	n := 0
	for ; t != nil; t = t.Else {
		n++
	}
	return n
}

// Lines returns a textual representation with one line for each
// guard and each step.
func (t *Transformation) Lines() []string {
	var result []string
	first := true
	for ; t != nil; t = t.Else {
		kw := "else if "
		if first {
			kw = "if "
			first = false
		}
		result = append(result, kw+t.Guard.String())
		for _, s := range t.Steps {
			result = append(result, " "+s.String())
		}
	}
	return result
}

func (t *Transformation) String() string {
	return strings.Join(t.Lines(), "\n")
}
