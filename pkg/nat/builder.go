package nat

import (
	"net/netip"

	"github.com/hknutzen/asaconv/pkg/diag"
	"github.com/hknutzen/asaconv/pkg/netobj"
	"github.com/hknutzen/asaconv/pkg/vi"
	"go4.org/netipx"
)

type Direction int

const (
	// From inside to outside interface: real to mapped address.
	Outgoing Direction = iota
	// From outside to inside interface: mapped to real address.
	Incoming
)

func (d Direction) String() string {
	if d == Incoming {
		return "incoming"
	}
	return "outgoing"
}

// Leg is a guarded list of rewrite steps of a single NAT rule.
// It is linked into a chain by Compose.
type Leg struct {
	Guard vi.BoolExpr
	Steps []vi.Step
}

// Builder converts NAT rules to transformations.
// Rules that can't be represented give nil together with a warning.
type Builder struct {
	objects *netobj.Table
	w       *diag.Collector
}

func NewBuilder(t *netobj.Table, w *diag.Collector) *Builder {
	return &Builder{objects: t, w: w}
}

func (b *Builder) Build(r *Rule, d Direction) *Leg {
	if d == Incoming {
		return b.Incoming(r)
	}
	return b.Outgoing(r)
}

func (b *Builder) Outgoing(r *Rule) *Leg {
	var first *Leg
	if r.Dynamic {
		first = b.dynamicLeg(r, r.RealSource, r.MappedSource, r.InsideInterface)
	} else {
		first = b.staticLeg(r, r.RealSource, r.MappedSource,
			vi.Source, r.InsideInterface, false)
	}
	if first == nil || !r.Twice {
		return first
	}
	if r.MappedDestination == nil || r.RealDestination == nil {
		return nil
	}
	second := b.staticLeg(r, r.MappedDestination, r.RealDestination,
		vi.Destination, AnyInterface, false)
	if second == nil {
		return nil
	}
	return merge(first, second)
}

// Incoming gives the reverse of outgoing transformation.
// Dynamic NAT can't be reversed.
func (b *Builder) Incoming(r *Rule) *Leg {
	if r.Dynamic || r.Unidirectional {
		return nil
	}
	first := b.staticLeg(r, r.RealSource, r.MappedSource,
		vi.Destination, AnyInterface, true)
	if first == nil || !r.Twice {
		return first
	}
	if r.MappedDestination == nil || r.RealDestination == nil {
		return nil
	}
	second := b.staticLeg(r, r.MappedDestination, r.RealDestination,
		vi.Source, AnyInterface, true)
	if second == nil {
		return nil
	}
	return merge(first, second)
}

func merge(a, b *Leg) *Leg {
	steps := make([]vi.Step, 0, len(a.Steps)+len(b.Steps))
	steps = append(steps, a.Steps...)
	steps = append(steps, b.Steps...)
	return &Leg{Guard: vi.Conjunction(a.Guard, b.Guard), Steps: steps}
}

func ingressGuard(intf string) vi.BoolExpr {
	if intf == AnyInterface {
		return vi.True{}
	}
	return vi.MatchSrcInterface{Names: []string{intf}}
}

var prefix00 = netip.PrefixFrom(netip.IPv4Unspecified(), 0)

// natPrefix gets prefix of address used in static NAT.
// Result isAny is set for address 'any'.
func (b *Builder) natPrefix(
	r *Rule, s netobj.Spec) (p netip.Prefix, isAny, ok bool) {

	switch x := s.(type) {
	case netobj.Any:
		return prefix00, true, true
	case netobj.ObjectRef:
		o := b.objects.Object(x.Name)
		switch o.(type) {
		case *netobj.Host, *netobj.Subnet:
			p, _ := netobj.PrefixOf(o)
			return p, false, true
		case *netobj.Range:
			b.w.Warn("Static NAT with range %s is not supported in %s", o, r)
		case *netobj.Fqdn:
			b.w.Warn("FQDN %s is not supported in %s", o, r)
		default:
			diag.Abort("Unresolved %s in %s", x, r)
		}
	case netobj.GroupRef:
		b.w.Warn("Static NAT with %s is not supported in %s", x, r)
	default:
		diag.Abort("Unexpected address specifier %v in %s", s, r)
	}
	return netip.Prefix{}, false, false
}

// staticLeg matches addresses of from in given field and shifts
// them into prefix of to. If reverse is set, addresses of to are
// shifted back into prefix of from.
// 'any' as to side takes prefix from from side, which results
// in identity NAT in both directions.
func (b *Builder) staticLeg(r *Rule, from, to netobj.Spec,
	field vi.IPField, inside string, reverse bool) *Leg {

	fp, fAny, ok := b.natPrefix(r, from)
	if !ok {
		return nil
	}
	tp, tAny, ok := b.natPrefix(r, to)
	if !ok {
		return nil
	}
	switch {
	case tAny:
		tp = fp
	case fAny:
		b.w.Warn("Translating 'any' to %s is not supported in %s", to, r)
		return nil
	}
	if fp.Bits() != tp.Bits() {
		b.w.Warn("Prefix length of %s and %s must be equal in %s",
			from, to, r)
		return nil
	}
	if reverse {
		fp, tp = tp, fp
	}
	return &Leg{
		Guard: vi.Conjunction(
			vi.MatchIP{Field: field, Space: vi.PrefixSpace{Prefix: fp}},
			ingressGuard(inside)),
		Steps: []vi.Step{vi.ShiftIntoSubnet{Field: field, Subnet: tp}},
	}
}

// dynamicLeg translates source addresses of match to some address
// of range object given by shift.
func (b *Builder) dynamicLeg(
	r *Rule, match, shift netobj.Spec, inside string) *Leg {

	space, ok := b.objects.IPSpace(match, b.w)
	if !ok {
		b.w.Warn("Ignoring %s, can't resolve %s", r, match)
		return nil
	}
	pool, ok := b.pool(r, shift)
	if !ok {
		return nil
	}
	return &Leg{
		Guard: vi.Conjunction(
			vi.MatchIP{Field: vi.Source, Space: space},
			ingressGuard(inside)),
		Steps: []vi.Step{vi.AssignFromPool{Field: vi.Source, Pool: pool}},
	}
}

func (b *Builder) pool(r *Rule, s netobj.Spec) (netipx.IPRange, bool) {
	switch x := s.(type) {
	case netobj.Any:
		b.w.Warn("Must not use 'any' as mapped source of dynamic %s", r)
	case netobj.ObjectRef:
		switch o := b.objects.Object(x.Name).(type) {
		case *netobj.Range:
			return o.Range, true
		case *netobj.Host:
			b.w.Warn("PAT to %s is not supported in %s", o, r)
		case *netobj.Subnet:
			b.w.Warn("Dynamic NAT to %s is not supported,"+
				" expected range object in %s", o, r)
		case *netobj.Fqdn:
			b.w.Warn("FQDN %s is not supported in %s", o, r)
		default:
			diag.Abort("Unresolved %s in %s", x, r)
		}
	case netobj.GroupRef:
		b.w.Warn("Dynamic NAT to %s is not supported in %s", x, r)
	default:
		diag.Abort("Unexpected address specifier %v in %s", s, r)
	}
	return netipx.IPRange{}, false
}
