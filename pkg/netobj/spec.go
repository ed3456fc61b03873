package netobj

import (
	"net/netip"
)

// Spec specifies addresses in NAT rules.
// Variants: Any, ObjectRef, GroupRef.
type Spec interface {
	String() string
	isSpec()
}

type Any struct{}

type ObjectRef struct{ Name string }

type GroupRef struct{ Name string }

func (Any) isSpec()       {}
func (ObjectRef) isSpec() {}
func (GroupRef) isSpec()  {}

func (Any) String() string         { return "any" }
func (x ObjectRef) String() string { return "object:" + x.Name }
func (x GroupRef) String() string  { return "object-group:" + x.Name }

// Group is a named network object group.
type Group struct {
	Name     string
	Objects  []string
	Prefixes []netip.Prefix
	Groups   []string
}

func (g *Group) String() string { return "object-group:" + g.Name }
