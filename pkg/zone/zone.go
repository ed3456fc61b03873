package zone

import (
	"fmt"
	"strings"

	"github.com/hknutzen/asaconv/pkg/diag"
	"github.com/hknutzen/asaconv/pkg/vi"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Pair is a zone pair of IOS style zone based firewall.
// Traffic from zone Src to zone Dst is inspected by policy Policy.
type Pair struct {
	Src    string
	Dst    string
	Policy string
}

type Input struct {
	Interfaces []*vi.Interface
	Pairs      []Pair
	// Maps name of inspect policy to name of its compiled access
	// list. Only contains policies, where access list is available.
	PolicyACL map[string]string
	// same-security-traffic permit intra-interface
	PermitIntra bool
	// same-security-traffic permit inter-interface
	PermitInter bool
}

type Result struct {
	// Generated access lists in order of creation.
	ACLs []*vi.IPAccessList
	// Maps interface name to name of its generated outgoing filter.
	Outgoing map[string]string
}

type level struct {
	value   int
	zone    string
	members []*vi.Interface
}

type synth struct {
	*Input
	w      *diag.Collector
	result *Result
}

// Synthesize derives outgoing filters from security levels
// and from zone pairs.
func Synthesize(in *Input, w *diag.Collector) *Result {
	s := &synth{
		Input:  in,
		w:      w,
		result: &Result{Outgoing: make(map[string]string)},
	}
	levels := s.groupByLevel()
	s.checkZoneNames()
	s.securityLevelACLs(levels)
	s.zonePairACLs()
	return s.result
}

func (s *synth) add(acl *vi.IPAccessList) {
	s.result.ACLs = append(s.result.ACLs, acl)
}

func participates(i *vi.Interface) bool {
	return i.Address.IsValid()
}

func (s *synth) groupByLevel() []*level {
	m := make(map[int]*level)
	for _, i := range s.Interfaces {
		if i.SecurityLevel == nil || !participates(i) {
			continue
		}
		v := *i.SecurityLevel
		l := m[v]
		if l == nil {
			l = &level{value: v, zone: SecurityLevelZoneName(v)}
			m[v] = l
		}
		l.members = append(l.members, i)
	}
	keys := maps.Keys(m)
	slices.Sort(keys)
	result := make([]*level, len(keys))
	for j, v := range keys {
		l := m[v]
		slices.SortFunc(l.members, func(a, b *vi.Interface) int {
			return strings.Compare(a.Name, b.Name)
		})
		result[j] = l
	}
	return result
}

func (s *synth) checkZoneNames() {
	for _, i := range s.Interfaces {
		if isSecurityLevelZoneName(i.Zone) {
			diag.Abort("Zone name %s of %s is reserved for security level",
				i.Zone, i)
		}
	}
	for _, p := range s.Pairs {
		for _, z := range []string{p.Src, p.Dst} {
			if isSecurityLevelZoneName(z) {
				diag.Abort("Zone name %s of zone pair is reserved"+
					" for security level", z)
			}
		}
	}
}

func names(l []*vi.Interface) []string {
	result := make([]string, len(l))
	for i, intf := range l {
		result[i] = intf.Name
	}
	return result
}

func fromDevice() vi.ACLLine {
	return vi.ACLLine{
		Action: vi.Permit,
		Match:  vi.OriginatingFromDevice{},
		Trace:  "permit traffic originating from device",
	}
}

// Phase 2: Outgoing filter of each interface of each security level.
// Interfaces that are member of some IOS style zone are handled
// by zone pairs.
func (s *synth) securityLevelACLs(levels []*level) {
	for idx, l := range levels {
		for _, intf := range l.members {
			if intf.Zone != "" {
				continue
			}
			s.securityLevelACL(intf, l, levels[:idx], levels[idx+1:])
		}
	}
}

func (s *synth) securityLevelACL(
	intf *vi.Interface, same *level, lower, higher []*level) {

	lines := []vi.ACLLine{fromDevice()}

	// Same security level.
	var deny, permit []vi.BoolExpr
	self := []string{intf.Name}
	if s.PermitIntra {
		permit = append(permit, vi.MatchSrcInterface{
			Names: self,
			Trace: "permit same security level traffic on " + intf.String(),
		})
	} else {
		deny = append(deny, vi.MatchSrcInterface{
			Names: self,
			Trace: "deny same security level traffic on " + intf.String(),
		})
	}
	var others []string
	for _, o := range same.members {
		if o != intf {
			others = append(others, o.Name)
		}
	}
	if others != nil {
		if s.PermitInter {
			permit = append(permit, vi.MatchSrcInterface{
				Names: others,
				Trace: "permit traffic from other interfaces of " + same.zone,
			})
		} else {
			deny = append(deny, vi.MatchSrcInterface{
				Names: others,
				Trace: "deny traffic from other interfaces of " + same.zone,
			})
		}
	}
	if deny != nil {
		lines = append(lines, vi.ACLLine{
			Action: vi.Deny,
			Match:  vi.Disjunction(deny...),
			Trace:  "deny traffic from same security level " + same.zone,
		})
	}

	// Lower security level without incoming filter.
	for _, l := range lower {
		var unfiltered []string
		for _, i := range l.members {
			if i.InFilter == "" {
				unfiltered = append(unfiltered, i.Name)
			}
		}
		if unfiltered != nil {
			lines = append(lines, vi.ACLLine{
				Action: vi.Deny,
				Match:  vi.MatchSrcInterface{Names: unfiltered},
				Trace: "deny traffic from unfiltered interfaces of lower " +
					l.zone,
			})
		}
	}

	// Permitted traffic of same, higher and filtered lower security level.
	for _, l := range higher {
		permit = append(permit, vi.MatchSrcInterface{
			Names: names(l.members),
			Trace: "permit traffic from higher " + l.zone,
		})
	}
	for _, l := range lower {
		var filtered []string
		for _, i := range l.members {
			if i.InFilter != "" {
				filtered = append(filtered, i.Name)
			}
		}
		if filtered != nil {
			permit = append(permit, vi.MatchSrcInterface{
				Names: filtered,
				Trace: "permit traffic from filtered interfaces of lower " +
					l.zone,
			})
		}
	}
	if permit != nil {
		permitted := vi.Disjunction(permit...)
		if f := intf.OutFilter; f != "" {
			lines = append(lines,
				vi.ACLLine{
					Action: vi.Deny,
					Match:  vi.Conjunction(permitted, vi.DeniedByACL{Name: f}),
					Trace:  "deny traffic denied by outgoing filter " + f,
				},
				vi.ACLLine{
					Action: vi.Permit,
					Match:  vi.Conjunction(permitted, vi.PermittedByACL{Name: f}),
					Trace:  "permit traffic permitted by outgoing filter " + f,
				})
		} else {
			lines = append(lines, vi.ACLLine{
				Action: vi.Permit,
				Match:  permitted,
				Trace:  "permit traffic by security level",
			})
		}
	}
	name := CombinedOutgoingACLName(intf.Name)
	s.add(&vi.IPAccessList{Name: name, Lines: lines})
	s.result.Outgoing[intf.Name] = name
}

// Phase 3: Outgoing filter of interfaces in IOS style zones.
func (s *synth) zonePairACLs() {
	members := make(map[string][]*vi.Interface)
	for _, i := range s.Interfaces {
		if i.Zone != "" && participates(i) {
			members[i.Zone] = append(members[i.Zone], i)
		}
	}
	targets := make(map[string][]Pair)
	for _, p := range s.Pairs {
		targets[p.Dst] = append(targets[p.Dst], p)
	}
	zones := maps.Keys(targets)
	slices.Sort(zones)
	for _, z := range zones {
		intfs := members[z]
		if intfs == nil {
			continue
		}
		lines := []vi.ACLLine{
			fromDevice(),
			{
				Action: vi.Permit,
				Match:  vi.MatchSrcInterface{Names: names(intfs)},
				Trace:  "permit traffic inside zone " + z,
			},
		}
		for _, p := range targets[z] {
			if line, ok := s.zonePairLine(p, members[p.Src]); ok {
				lines = append(lines, line)
			}
		}
		zoneACL := ZoneOutgoingACLName(z)
		s.add(&vi.IPAccessList{Name: zoneACL, Lines: lines})
		for _, intf := range intfs {
			var match vi.BoolExpr = vi.PermittedByACL{Name: zoneACL}
			trace := "permit traffic permitted by zone " + z
			if f := intf.OutFilter; f != "" {
				match = vi.Conjunction(match, vi.PermittedByACL{Name: f})
				trace += " and by outgoing filter " + f
			}
			name := CombinedOutgoingACLName(intf.Name)
			s.add(&vi.IPAccessList{
				Name: name,
				Lines: []vi.ACLLine{
					{Action: vi.Permit, Match: match, Trace: trace},
				},
			})
			s.result.Outgoing[intf.Name] = name
		}
	}
}

// Access list of zone pair is generated as separate access list,
// which is referenced from access list of destination zone.
func (s *synth) zonePairLine(
	p Pair, srcIntfs []*vi.Interface) (vi.ACLLine, bool) {

	policyACL := s.PolicyACL[p.Policy]
	if policyACL == "" || srcIntfs == nil {
		s.w.Diag("Ignoring zone pair %s -> %s", p.Src, p.Dst)
		return vi.ACLLine{}, false
	}
	name := ZonePairACLName(p.Src, p.Dst)
	s.add(&vi.IPAccessList{
		Name: name,
		Lines: []vi.ACLLine{{
			Action: vi.Permit,
			Match: vi.Conjunction(
				vi.MatchSrcInterface{Names: names(srcIntfs)},
				vi.PermittedByACL{Name: policyACL}),
			Trace: fmt.Sprintf("permit traffic from zone %s to zone %s"+
				" matched by policy %s", p.Src, p.Dst, p.Policy),
		}},
	})
	return vi.ACLLine{
		Action: vi.Permit,
		Match:  vi.PermittedByACL{Name: name},
		Trace:  "permit traffic of zone pair " + p.Src + " -> " + p.Dst,
	}, true
}
