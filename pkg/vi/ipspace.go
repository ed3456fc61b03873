package vi

import (
	"net/netip"
	"strings"

	"go4.org/netipx"
)

// IPSpace is a set of IP addresses.
// Variants: Universe, Empty, PrefixSpace, RangeSpace, UnionSpace.
type IPSpace interface {
	Contains(ip netip.Addr) bool
	String() string
	isIPSpace()
}

type Universe struct{}
type Empty struct{}

type PrefixSpace struct{ Prefix netip.Prefix }

type RangeSpace struct{ Range netipx.IPRange }

type UnionSpace struct{ Spaces []IPSpace }

func (Universe) isIPSpace()    {}
func (Empty) isIPSpace()       {}
func (PrefixSpace) isIPSpace() {}
func (RangeSpace) isIPSpace()  {}
func (UnionSpace) isIPSpace()  {}

func (Universe) Contains(netip.Addr) bool { return true }
func (Empty) Contains(netip.Addr) bool    { return false }

func (s PrefixSpace) Contains(ip netip.Addr) bool { return s.Prefix.Contains(ip) }
func (s RangeSpace) Contains(ip netip.Addr) bool  { return s.Range.Contains(ip) }

func (s UnionSpace) Contains(ip netip.Addr) bool {
	for _, sp := range s.Spaces {
		if sp.Contains(ip) {
			return true
		}
	}
	return false
}

func (Universe) String() string { return "any" }
func (Empty) String() string    { return "none" }

func (s PrefixSpace) String() string { return prefixString(s.Prefix) }

func (s RangeSpace) String() string {
	return s.Range.From().String() + "-" + s.Range.To().String()
}

func (s UnionSpace) String() string {
	l := make([]string, len(s.Spaces))
	for i, sp := range s.Spaces {
		l[i] = sp.String()
	}
	return "{" + strings.Join(l, ",") + "}"
}

func prefixString(p netip.Prefix) string {
	if p.IsSingleIP() {
		return p.Addr().String()
	}
	return p.String()
}

// Union combines spaces, avoiding a union of a single element.
func Union(l ...IPSpace) IPSpace {
	switch len(l) {
	case 0:
		return Empty{}
	case 1:
		return l[0]
	}
	return UnionSpace{Spaces: l}
}
