package vi

import (
	"net/netip"
)

type Action int

const (
	Deny Action = iota
	Permit
)

func (a Action) String() string {
	if a == Permit {
		return "permit"
	}
	return "deny"
}

type ACLLine struct {
	Action Action
	Match  BoolExpr
	// Human readable description used by filter trace.
	Trace string
}

func (l ACLLine) String() string {
	result := l.Action.String() + " " + l.Match.String()
	if l.Trace != "" {
		result += " ! " + l.Trace
	}
	return result
}

// IPAccessList is an ordered list of lines with first match
// semantics and implicit deny at end.
type IPAccessList struct {
	Name  string
	Lines []ACLLine
}

// FilterResult tells which line of an access list matched.
// Line is -1 for implicit deny.
type FilterResult struct {
	Action Action
	Line   int
}

func (a *IPAccessList) Filter(f Flow, env Env) FilterResult {
	for i, l := range a.Lines {
		if l.Match.Eval(f, env) {
			return FilterResult{Action: l.Action, Line: i}
		}
	}
	return FilterResult{Action: Deny, Line: -1}
}

// Interface is the vendor independent view of a device interface.
type Interface struct {
	Name    string
	Address netip.Prefix
	// Security level in range 0..100; nil if not configured.
	SecurityLevel *int
	Zone          string
	// Names of access lists applied to incoming and outgoing traffic.
	InFilter  string
	OutFilter string

	IncomingTransformation *Transformation
	OutgoingTransformation *Transformation
}

func (i *Interface) String() string { return "interface:" + i.Name }
