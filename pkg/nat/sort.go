package nat

import (
	"cmp"
	"strings"

	"github.com/hknutzen/asaconv/pkg/diag"
	"github.com/hknutzen/asaconv/pkg/netobj"
	"go4.org/netipx"
	"golang.org/x/exp/slices"
)

// Compare orders NAT rules in the order ASA evaluates them:
//   - section Before, then Object, then After,
//   - in sections Before and After by line,
//   - in section Object static before dynamic rules, then smaller
//     address range first, then by lower start address,
//     then by name of network object.
func Compare(a, b *Rule) int {
	if c := cmp.Compare(a.Section, b.Section); c != 0 {
		return c
	}
	switch a.Section {
	case Before, After:
		return cmp.Compare(a.Line, b.Line)
	case Object:
		if a.Dynamic != b.Dynamic {
			if a.Dynamic {
				return 1
			}
			return -1
		}
		ra, rb := objectRange(a), objectRange(b)
		if c := cmp.Compare(netobj.Span(ra), netobj.Span(rb)); c != 0 {
			return c
		}
		if c := ra.From().Compare(rb.From()); c != 0 {
			return c
		}
		return strings.Compare(a.Object.Name(), b.Object.Name())
	}
	diag.Abort("Unknown NAT section %d", int(a.Section))
	return 0
}

func objectRange(r *Rule) netipx.IPRange {
	if r.Object == nil {
		diag.Abort("Missing network object in NAT rule of section object")
	}
	rg, ok := netobj.RangeOf(r.Object)
	if !ok {
		diag.Abort("Missing address range of %s in %s", r.Object, r)
	}
	return rg
}

// Sort sorts rules in place.
func Sort(rules []*Rule) {
	slices.SortFunc(rules, Compare)
}
