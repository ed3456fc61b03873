package asa

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/hknutzen/asaconv/pkg/nat"
	"github.com/hknutzen/asaconv/pkg/netobj"
	"github.com/hknutzen/asaconv/pkg/vi"
	"github.com/hknutzen/asaconv/pkg/zone"
	"go4.org/netipx"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

func sortedKeys[V any](m map[string]V) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

func parseIPv4(s string) (netip.Addr, error) {
	ip, err := netip.ParseAddr(s)
	if err != nil {
		return ip, err
	}
	if !ip.Is4() {
		return ip, fmt.Errorf("IPv6 address %s is not supported", s)
	}
	return ip, nil
}

func parsePrefix(s string) (netip.Prefix, error) {
	p, err := netip.ParsePrefix(s)
	if err != nil {
		return p, err
	}
	if !p.Addr().Is4() {
		return p, fmt.Errorf("IPv6 prefix %s is not supported", s)
	}
	return p, nil
}

// parseRange parses "a.b.c.d-e.f.g.h".
func parseRange(s string) (netipx.IPRange, error) {
	from, to, found := strings.Cut(s, "-")
	if !found {
		return netipx.IPRange{}, fmt.Errorf("expected range, got %q", s)
	}
	a, err := parseIPv4(strings.TrimSpace(from))
	if err != nil {
		return netipx.IPRange{}, err
	}
	b, err := parseIPv4(strings.TrimSpace(to))
	if err != nil {
		return netipx.IPRange{}, err
	}
	r := netipx.IPRangeFrom(a, b)
	if !r.IsValid() {
		return r, fmt.Errorf("invalid range %s", s)
	}
	return r, nil
}

func (c *converter) convertObjects() {
	c.objects = netobj.NewTable()
	for _, name := range sortedKeys(c.doc.NetworkObjects) {
		def := c.doc.NetworkObjects[name]
		if def == nil {
			c.w.Warn("Ignoring object:%s without definition", name)
			continue
		}
		o, err := convertObject(name, def)
		if err != nil {
			c.w.Warn("Ignoring object:%s: %v", name, err)
			continue
		}
		c.objects.AddObject(o)
	}
}

func convertObject(name string, def *ObjectDef) (netobj.Object, error) {
	var result netobj.Object
	count := 0
	if s := def.Host; s != "" {
		count++
		ip, err := parseIPv4(s)
		if err != nil {
			return nil, err
		}
		result = netobj.NewHost(name, ip)
	}
	if s := def.Subnet; s != "" {
		count++
		p, err := parsePrefix(s)
		if err != nil {
			return nil, err
		}
		result = netobj.NewSubnet(name, p)
	}
	if s := def.Range; s != "" {
		count++
		r, err := parseRange(s)
		if err != nil {
			return nil, err
		}
		result = netobj.NewRange(name, r)
	}
	if s := def.Fqdn; s != "" {
		count++
		result = netobj.NewFqdn(name, s)
	}
	if count != 1 {
		return nil, fmt.Errorf(
			"expected exactly one of 'host', 'subnet', 'range', 'fqdn'")
	}
	return result, nil
}

func (c *converter) convertGroups() {
	for _, name := range sortedKeys(c.doc.ObjectGroups) {
		def := c.doc.ObjectGroups[name]
		if c.objects.Object(name) != nil {
			c.w.Warn("Ignoring object-group:%s, name is used by object:%s",
				name, name)
			continue
		}
		g := &netobj.Group{Name: name}
		if def != nil {
			g.Objects = def.Objects
			g.Groups = def.Groups
			for _, s := range def.Prefixes {
				p, err := parsePrefix(s)
				if err != nil {
					c.w.Warn("Ignoring prefix of %s: %v", g, err)
					continue
				}
				g.Prefixes = append(g.Prefixes, p.Masked())
			}
		}
		c.objects.AddGroup(g)
	}
}

// Address of access list line.
func aclSpace(s string) (vi.IPSpace, error) {
	if s == "" || s == "any" {
		return vi.Universe{}, nil
	}
	if strings.Contains(s, "/") {
		p, err := parsePrefix(s)
		if err != nil {
			return nil, err
		}
		return vi.PrefixSpace{Prefix: p.Masked()}, nil
	}
	ip, err := parseIPv4(s)
	if err != nil {
		return nil, err
	}
	return vi.PrefixSpace{Prefix: netip.PrefixFrom(ip, 32)}, nil
}

func (c *converter) convertACLs() {
	c.acls = make(map[string]*vi.IPAccessList)
	for _, name := range sortedKeys(c.doc.AccessLists) {
		if strings.HasPrefix(name, "~") {
			c.w.Warn("Ignoring access-list %s, name must not start with '~'",
				name)
			continue
		}
		acl := &vi.IPAccessList{Name: name}
		for i, def := range c.doc.AccessLists[name] {
			line, err := convertACLLine(def)
			if err != nil {
				c.w.Warn("Ignoring line %d of access-list %s: %v", i+1, name, err)
				continue
			}
			acl.Lines = append(acl.Lines, line)
		}
		c.acls[name] = acl
	}
}

func convertACLLine(def *ACLLineDef) (vi.ACLLine, error) {
	if def == nil {
		return vi.ACLLine{}, fmt.Errorf("empty line")
	}
	var action vi.Action
	switch def.Action {
	case "permit":
		action = vi.Permit
	case "deny":
		action = vi.Deny
	default:
		return vi.ACLLine{}, fmt.Errorf("unknown action '%s'", def.Action)
	}
	src, err := aclSpace(def.Src)
	if err != nil {
		return vi.ACLLine{}, err
	}
	dst, err := aclSpace(def.Dst)
	if err != nil {
		return vi.ACLLine{}, err
	}
	var match []vi.BoolExpr
	if _, ok := src.(vi.Universe); !ok {
		match = append(match, vi.MatchIP{Field: vi.Source, Space: src})
	}
	if _, ok := dst.(vi.Universe); !ok {
		match = append(match, vi.MatchIP{Field: vi.Destination, Space: dst})
	}
	return vi.ACLLine{Action: action, Match: vi.Conjunction(match...)}, nil
}

func (c *converter) filterRef(name, what string, i *vi.Interface) string {
	if name == "" {
		return ""
	}
	if c.acls[name] == nil {
		c.w.Warn("Ignoring undefined access-list %s of %s at %s",
			name, what, i)
		return ""
	}
	return name
}

// Interfaces are known by their nameif in all other parts of
// configuration.
func (c *converter) convertInterfaces() {
	seen := make(map[string]string)
	for _, hw := range sortedKeys(c.doc.Interfaces) {
		def := c.doc.Interfaces[hw]
		if def == nil || def.Shutdown {
			continue
		}
		if def.Nameif == "" {
			c.w.Warn("Ignoring interface %s without nameif", hw)
			continue
		}
		if other, found := seen[def.Nameif]; found {
			c.w.Warn("Ignoring interface %s, nameif %s is already used by %s",
				hw, def.Nameif, other)
			continue
		}
		seen[def.Nameif] = hw
		i := &vi.Interface{Name: def.Nameif, Zone: def.Zone}
		if s := def.Address; s != "" {
			p, err := parsePrefix(s)
			if err != nil {
				c.w.Warn("Ignoring address of %s: %v", i, err)
			} else {
				i.Address = p
			}
		}
		if l := def.SecurityLevel; l != nil {
			if *l < 0 || *l > 100 {
				c.w.Warn("Ignoring security-level %d of %s,"+
					" expected value 0..100", *l, i)
			} else {
				v := *l
				i.SecurityLevel = &v
			}
		}
		i.InFilter = c.filterRef(def.AccessGroupIn, "access-group in", i)
		i.OutFilter = c.filterRef(def.AccessGroupOut, "access-group out", i)
		c.interfaces = append(c.interfaces, i)
	}
	slices.SortFunc(c.interfaces, func(a, b *vi.Interface) int {
		return strings.Compare(a.Name, b.Name)
	})
	c.intfMap = make(map[string]*vi.Interface)
	for _, i := range c.interfaces {
		c.intfMap[i.Name] = i
	}
}

func (c *converter) convertNAT() {
	var raw []*nat.RawRule
	for i, def := range c.doc.NAT {
		if def == nil {
			continue
		}
		r := &nat.RawRule{
			Line:              def.Line,
			Inside:            def.Inside,
			Outside:           def.Outside,
			Object:            def.Object,
			RealSource:        def.RealSource,
			MappedSource:      def.MappedSource,
			RealDestination:   def.RealDestination,
			MappedDestination: def.MappedDestination,
			Inactive:          def.Inactive,
			Unidirectional:    def.Unidirectional,
			RouteLookup:       def.RouteLookup,
		}
		if r.Line == 0 {
			r.Line = i + 1
		}
		switch def.Section {
		case "":
			if def.Object != "" {
				r.Section = nat.Object
			} else {
				r.Section = nat.Before
			}
		case "before":
			r.Section = nat.Before
		case "object":
			r.Section = nat.Object
		case "after":
			r.Section = nat.After
		default:
			c.w.Warn("Ignoring %s with unknown section '%s'", r, def.Section)
			continue
		}
		switch def.Type {
		case "", "static":
		case "dynamic":
			r.Dynamic = true
		default:
			c.w.Warn("Ignoring %s with unknown type '%s'", r, def.Type)
			continue
		}
		raw = append(raw, r)
	}
	skipped := func(r *nat.RawRule) {
		c.w.WarnOrErr(c.conf.CheckInactive, "Ignoring inactive %s", r)
	}
	for _, r := range nat.Resolve(raw, c.objects, skipped, c.w) {
		if !c.knownInterface(r.InsideInterface) {
			c.w.Warn("Ignoring %s with unknown interface %s",
				r, r.InsideInterface)
			continue
		}
		if !c.knownInterface(r.OutsideInterface) {
			c.w.Warn("Ignoring %s with unknown interface %s",
				r, r.OutsideInterface)
			continue
		}
		c.rules = append(c.rules, r)
	}
}

func (c *converter) knownInterface(name string) bool {
	return name == nat.AnyInterface || c.intfMap[name] != nil
}

// Zone pairs referencing undefined inspect policy or policy without
// access list are reported here and later ignored.
func (c *converter) zoneInput() *zone.Input {
	in := &zone.Input{
		Interfaces:  c.interfaces,
		PolicyACL:   make(map[string]string),
		PermitIntra: c.doc.SameSecurityTraffic.IntraInterface,
		PermitInter: c.doc.SameSecurityTraffic.InterInterface,
	}
	for _, name := range sortedKeys(c.doc.InspectPolicies) {
		p := c.doc.InspectPolicies[name]
		if p == nil || p.AccessList == "" {
			c.w.Warn("Missing access-list in inspect-policy %s", name)
			continue
		}
		if c.acls[p.AccessList] == nil {
			c.w.Warn("Undefined access-list %s in inspect-policy %s",
				p.AccessList, name)
			continue
		}
		in.PolicyACL[name] = p.AccessList
	}
	type pairKey struct{ src, dst string }
	seen := make(map[pairKey]bool)
	for _, def := range c.doc.ZonePairs {
		if def == nil {
			continue
		}
		if def.Source == "" || def.Destination == "" {
			c.w.Warn("Ignoring zone-pair without source or destination")
			continue
		}
		k := pairKey{def.Source, def.Destination}
		if seen[k] {
			c.w.Warn("Ignoring duplicate zone-pair %s -> %s",
				def.Source, def.Destination)
			continue
		}
		seen[k] = true
		if p := def.ServicePolicy; p != "" && c.doc.InspectPolicies[p] == nil {
			c.w.Warn("Undefined inspect-policy %s in zone-pair %s -> %s",
				p, def.Source, def.Destination)
		}
		in.Pairs = append(in.Pairs, zone.Pair{
			Src:    def.Source,
			Dst:    def.Destination,
			Policy: def.ServicePolicy,
		})
	}
	return in
}
