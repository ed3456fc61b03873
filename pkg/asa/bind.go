package asa

import (
	"github.com/hknutzen/asaconv/pkg/nat"
	"github.com/hknutzen/asaconv/pkg/vi"
	"github.com/hknutzen/asaconv/pkg/zone"
)

type ruleLegs struct {
	rule     *nat.Rule
	outgoing *nat.Leg
	incoming *nat.Leg
}

// buildLegs converts each sorted NAT rule once for both directions.
// Warnings of rules with outside interface 'any' are thus shown only
// once, although these rules are bound to each interface.
// A rule that can't be converted for outgoing packets is ignored
// completely.
func (c *converter) buildLegs(b *nat.Builder) []ruleLegs {
	result := make([]ruleLegs, len(c.rules))
	for i, r := range c.rules {
		l := ruleLegs{rule: r, outgoing: b.Build(r, nat.Outgoing)}
		if l.outgoing != nil {
			l.incoming = b.Build(r, nat.Incoming)
		}
		if l.incoming != nil {
			b.CheckDivert(r, c.conf.CheckDivert)
		}
		result[i] = l
	}
	return result
}

func applies(r *nat.Rule, i *vi.Interface) bool {
	return r.OutsideInterface == nat.AnyInterface ||
		r.OutsideInterface == i.Name
}

// bindTransformations attaches NAT chains to outside interfaces.
// Each interface takes the rules applicable to it in sorted order.
func (c *converter) bindTransformations() {
	b := nat.NewBuilder(c.objects, c.w)
	legs := c.buildLegs(b)
	for _, i := range c.interfaces {
		var out, in []*nat.Leg
		for _, l := range legs {
			if applies(l.rule, i) {
				out = append(out, l.outgoing)
				in = append(in, l.incoming)
			}
		}
		i.OutgoingTransformation = nat.Compose(out)
		i.IncomingTransformation = nat.Compose(in)
	}
}

// bindFilters synthesizes outgoing filters from security levels and
// zones and replaces the configured outgoing filter of interfaces.
// The configured filter is still referenced by the synthesized one.
func (c *converter) bindFilters() []*vi.IPAccessList {
	res := zone.Synthesize(c.zoneInput(), c.w)
	for _, i := range c.interfaces {
		if name, found := res.Outgoing[i.Name]; found {
			i.OutFilter = name
		}
	}
	return res.ACLs
}
