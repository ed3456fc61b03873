package nat

import (
	"fmt"

	"github.com/hknutzen/asaconv/pkg/diag"
	"github.com/hknutzen/asaconv/pkg/netobj"
)

// Section is one of three precedence buckets of ASA NAT rules.
type Section int

const (
	// Twice NAT rules before object NAT.
	Before Section = iota
	// Object NAT, defined inside network object.
	Object
	// Twice NAT rules with "after-auto".
	After
)

func (s Section) String() string {
	switch s {
	case Before:
		return "before"
	case Object:
		return "object"
	case After:
		return "after"
	}
	diag.Abort("Unknown NAT section %d", int(s))
	return ""
}

// AnyInterface matches all interfaces in NAT rule.
const AnyInterface = "any"

// Rule is a fully resolved NAT rule.
// It is built by Resolve and isn't changed afterwards.
type Rule struct {
	Section Section
	// Position in configuration, used for ordering of sections
	// Before and After.
	Line             int
	InsideInterface  string
	OutsideInterface string
	RealSource       netobj.Spec
	MappedSource     netobj.Spec
	// Only set for twice NAT; may be nil if missing in configuration.
	RealDestination   netobj.Spec
	MappedDestination netobj.Spec
	Dynamic           bool
	Twice             bool
	Unidirectional    bool
	RouteLookup       bool
	// Network object of RealSource, only set in section Object.
	Object netobj.Object
}

func (r *Rule) String() string {
	kind := "static"
	if r.Dynamic {
		kind = "dynamic"
	}
	if r.Section == Object {
		return fmt.Sprintf("nat (%s,%s) %s %s in %s",
			r.InsideInterface, r.OutsideInterface, kind, r.MappedSource, r.Object)
	}
	result := fmt.Sprintf("nat (%s,%s) line %d source %s %s %s",
		r.InsideInterface, r.OutsideInterface, r.Line, kind,
		r.RealSource, r.MappedSource)
	if r.Twice {
		result += fmt.Sprintf(" destination static %s %s",
			specString(r.MappedDestination), specString(r.RealDestination))
	}
	return result
}

func specString(s netobj.Spec) string {
	if s == nil {
		return "<missing>"
	}
	return s.String()
}

// RawRule is a NAT rule with unresolved names as found in configuration.
type RawRule struct {
	Section           Section
	Line              int
	Inside            string
	Outside           string
	Object            string
	RealSource        string
	MappedSource      string
	RealDestination   string
	MappedDestination string
	Dynamic           bool
	Inactive          bool
	Unidirectional    bool
	RouteLookup       bool
}

func (r *RawRule) String() string {
	if r.Section == Object {
		return fmt.Sprintf("NAT of object:%s", r.Object)
	}
	return fmt.Sprintf("NAT rule at line %d", r.Line)
}

// Resolve looks up all names of raw rules in table.
// Rules with unknown names or with unusable network object
// are dropped with a warning.
// Result contains no inactive rules.
func Resolve(
	raw []*RawRule, t *netobj.Table, skipInactive func(*RawRule),
	w *diag.Collector) []*Rule {

	var result []*Rule
	for _, r := range raw {
		if r.Inactive {
			if skipInactive != nil {
				skipInactive(r)
			}
			continue
		}
		if rule := resolve(r, t, w); rule != nil {
			result = append(result, rule)
		}
	}
	return result
}

func resolve(r *RawRule, t *netobj.Table, w *diag.Collector) *Rule {
	rule := &Rule{
		Section:          r.Section,
		Line:             r.Line,
		InsideInterface:  r.Inside,
		OutsideInterface: r.Outside,
		Dynamic:          r.Dynamic,
		Unidirectional:   r.Unidirectional,
		RouteLookup:      r.RouteLookup,
	}
	if rule.InsideInterface == "" {
		rule.InsideInterface = AnyInterface
	}
	if rule.OutsideInterface == "" {
		rule.OutsideInterface = AnyInterface
	}
	lookup := func(name, what string) netobj.Spec {
		if name == "" {
			w.Warn("Missing %s in %s", what, r)
			return nil
		}
		s, found := t.Spec(name)
		if !found {
			w.Warn("Ignoring %s with undefined %s '%s'", r, what, name)
			return nil
		}
		return s
	}
	if r.Section == Object {
		o := t.Object(r.Object)
		if o == nil {
			w.Warn("Ignoring %s, object is undefined", r)
			return nil
		}
		if _, ok := netobj.RangeOf(o); !ok {
			w.Warn("Ignoring %s, can't get address range of %s", r, o)
			return nil
		}
		rule.Object = o
		rule.RealSource = netobj.ObjectRef{Name: o.Name()}
		if r.RealSource != "" && r.RealSource != o.Name() {
			w.Warn("Ignoring real source '%s' of %s", r.RealSource, r)
		}
		if r.RealDestination != "" || r.MappedDestination != "" {
			w.Warn("Ignoring destination of %s", r)
		}
	} else {
		if rule.RealSource = lookup(r.RealSource, "real source"); rule.RealSource == nil {
			return nil
		}
	}
	if rule.MappedSource = lookup(r.MappedSource, "mapped source"); rule.MappedSource == nil {
		return nil
	}
	if r.Section != Object &&
		(r.RealDestination != "" || r.MappedDestination != "") {

		rule.Twice = true
		if r.MappedDestination == "" || r.RealDestination == "" {
			w.Warn("Twice NAT must define mapped and real destination in %s", r)
		} else {
			rule.MappedDestination = lookup(r.MappedDestination, "mapped destination")
			rule.RealDestination = lookup(r.RealDestination, "real destination")
			if rule.MappedDestination == nil || rule.RealDestination == nil {
				return nil
			}
		}
	}
	return rule
}
