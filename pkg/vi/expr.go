package vi

import (
	"net/netip"
	"strings"
)

type IPField int

const (
	Source IPField = iota
	Destination
)

func (f IPField) String() string {
	if f == Destination {
		return "dst"
	}
	return "src"
}

// Flow is the part of a packet header that is matched and
// rewritten by the expressions and transformations of this package.
type Flow struct {
	Src netip.Addr
	Dst netip.Addr
	// Name of interface where packet was received.
	// Empty for packets originating from the device itself.
	Ingress string
}

func (f Flow) get(field IPField) netip.Addr {
	if field == Destination {
		return f.Dst
	}
	return f.Src
}

func (f *Flow) set(field IPField, ip netip.Addr) {
	if field == Destination {
		f.Dst = ip
	} else {
		f.Src = ip
	}
}

// Env gives access to named access lists referenced from expressions.
type Env map[string]*IPAccessList

// BoolExpr is a match condition on a Flow.
// Variants: True, False, MatchIP, MatchSrcInterface,
// OriginatingFromDevice, PermittedByACL, DeniedByACL, And, Or.
type BoolExpr interface {
	Eval(f Flow, env Env) bool
	String() string
	isBoolExpr()
}

type True struct{}
type False struct{}

type MatchIP struct {
	Field IPField
	Space IPSpace
}

// MatchSrcInterface matches packets received at one of Names.
type MatchSrcInterface struct {
	Names []string
	Trace string
}

type OriginatingFromDevice struct{}

type PermittedByACL struct{ Name string }
type DeniedByACL struct{ Name string }

type And struct{ Conjuncts []BoolExpr }
type Or struct{ Disjuncts []BoolExpr }

func (True) isBoolExpr()                  {}
func (False) isBoolExpr()                 {}
func (MatchIP) isBoolExpr()               {}
func (MatchSrcInterface) isBoolExpr()     {}
func (OriginatingFromDevice) isBoolExpr() {}
func (PermittedByACL) isBoolExpr()        {}
func (DeniedByACL) isBoolExpr()           {}
func (And) isBoolExpr()                   {}
func (Or) isBoolExpr()                    {}

func (True) Eval(Flow, Env) bool  { return true }
func (False) Eval(Flow, Env) bool { return false }

func (e MatchIP) Eval(f Flow, _ Env) bool {
	return e.Space.Contains(f.get(e.Field))
}

func (e MatchSrcInterface) Eval(f Flow, _ Env) bool {
	if f.Ingress == "" {
		return false
	}
	for _, name := range e.Names {
		if name == f.Ingress {
			return true
		}
	}
	return false
}

func (OriginatingFromDevice) Eval(f Flow, _ Env) bool {
	return f.Ingress == ""
}

// Referencing an unknown access list never matches.
func (e PermittedByACL) Eval(f Flow, env Env) bool {
	acl := env[e.Name]
	return acl != nil && acl.Filter(f, env).Action == Permit
}

func (e DeniedByACL) Eval(f Flow, env Env) bool {
	acl := env[e.Name]
	return acl != nil && acl.Filter(f, env).Action == Deny
}

func (e And) Eval(f Flow, env Env) bool {
	for _, c := range e.Conjuncts {
		if !c.Eval(f, env) {
			return false
		}
	}
	return true
}

func (e Or) Eval(f Flow, env Env) bool {
	for _, d := range e.Disjuncts {
		if d.Eval(f, env) {
			return true
		}
	}
	return false
}

func (True) String() string  { return "true" }
func (False) String() string { return "false" }

func (e MatchIP) String() string {
	return e.Field.String() + " in " + e.Space.String()
}

func (e MatchSrcInterface) String() string {
	result := "ingress " + strings.Join(e.Names, ",")
	if e.Trace != "" {
		result += " [" + e.Trace + "]"
	}
	return result
}

func (OriginatingFromDevice) String() string { return "from-device" }

func (e PermittedByACL) String() string { return "permitted-by " + e.Name }
func (e DeniedByACL) String() string    { return "denied-by " + e.Name }

func joinExpr(l []BoolExpr, op string) string {
	parts := make([]string, len(l))
	for i, e := range l {
		s := e.String()
		switch e.(type) {
		case And, Or:
			s = "(" + s + ")"
		}
		parts[i] = s
	}
	return strings.Join(parts, op)
}

func (e And) String() string { return joinExpr(e.Conjuncts, " and ") }
func (e Or) String() string  { return joinExpr(e.Disjuncts, " or ") }

// Conjunction flattens nested And and removes True.
// A single remaining element is returned unchanged.
func Conjunction(l ...BoolExpr) BoolExpr {
	var result []BoolExpr
	for _, e := range l {
		switch x := e.(type) {
		case True:
		case And:
			result = append(result, x.Conjuncts...)
		default:
			result = append(result, e)
		}
	}
	switch len(result) {
	case 0:
		return True{}
	case 1:
		return result[0]
	}
	return And{Conjuncts: result}
}

// Disjunction flattens nested Or and removes False.
func Disjunction(l ...BoolExpr) BoolExpr {
	var result []BoolExpr
	for _, e := range l {
		switch x := e.(type) {
		case False:
		case Or:
			result = append(result, x.Disjuncts...)
		default:
			result = append(result, e)
		}
	}
	switch len(result) {
	case 0:
		return False{}
	case 1:
		return result[0]
	}
	return Or{Disjuncts: result}
}
