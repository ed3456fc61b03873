package nat

import (
	"github.com/hknutzen/asaconv/pkg/conf"
	"github.com/hknutzen/asaconv/pkg/diag"
	"github.com/hknutzen/asaconv/pkg/netobj"
)

type Identity int

const (
	IdentityUnknown Identity = iota
	NotIdentity
	IsIdentity
)

func identityOf(b bool) Identity {
	if b {
		return IsIdentity
	}
	return NotIdentity
}

// IsIdentityObjectNat checks if mapped source of object NAT equals
// its real source.
// Must only be called for rules of section Object.
func (b *Builder) IsIdentityObjectNat(r *Rule) Identity {
	if r.Section != Object {
		diag.Abort("Identity check for NAT rule of section %s", r.Section)
	}
	if r.Dynamic {
		return NotIdentity
	}
	realRange := objectRange(r)
	switch x := r.MappedSource.(type) {
	case netobj.Any:
		// Only compare start address.
		return identityOf(realRange.From() == prefix00.Addr())
	case netobj.ObjectRef:
		o := b.objects.Object(x.Name)
		if p, ok := netobj.PrefixOf(o); ok {
			if rp, ok := netobj.PrefixOf(r.Object); ok {
				return identityOf(rp == p)
			}
		}
		if rg, ok := netobj.RangeOf(o); ok {
			return identityOf(rg == realRange)
		}
		return IdentityUnknown
	case netobj.GroupRef:
		return IdentityUnknown
	}
	diag.Abort("Unexpected mapped source %v in %s", r.MappedSource, r)
	return IdentityUnknown
}

// CheckDivert is called for object NAT applied to incoming packets.
// ASA forwards these packets to inside interface of NAT rule,
// ignoring the routing table. This isn't modeled, hence only
// a warning is shown.
func (b *Builder) CheckDivert(r *Rule, errType conf.TriState) {
	if r.Section != Object || r.RouteLookup ||
		r.OutsideInterface == AnyInterface {
		return
	}
	switch b.IsIdentityObjectNat(r) {
	case IsIdentity:
		return
	case IdentityUnknown:
		b.w.WarnOrErr(errType,
			"Can't check if %s is identity NAT;"+
				" assuming packets are forwarded by routing table", r)
		return
	}
	b.w.WarnOrErr(errType,
		"Incoming packets of %s may be diverted to interface %s;"+
			" forwarding may differ from routing table", r, r.InsideInterface)
}
