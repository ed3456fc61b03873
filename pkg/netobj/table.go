package netobj

import (
	"github.com/hknutzen/asaconv/pkg/diag"
	"github.com/hknutzen/asaconv/pkg/vi"
)

// Table holds network objects and object groups of one device.
// It is filled during loading and read only afterwards.
// Objects must have IPv4 addresses only.
type Table struct {
	objects map[string]Object
	groups  map[string]*Group
}

func NewTable() *Table {
	return &Table{
		objects: make(map[string]Object),
		groups:  make(map[string]*Group),
	}
}

func (t *Table) AddObject(o Object)        { t.objects[o.Name()] = o }
func (t *Table) AddGroup(g *Group)         { t.groups[g.Name] = g }
func (t *Table) Object(name string) Object { return t.objects[name] }
func (t *Table) Group(name string) *Group  { return t.groups[name] }

// Spec finds address specifier for name used in NAT rule.
// Result is false for unknown name.
func (t *Table) Spec(name string) (Spec, bool) {
	if name == "any" {
		return Any{}, true
	}
	if t.objects[name] != nil {
		return ObjectRef{Name: name}, true
	}
	if t.groups[name] != nil {
		return GroupRef{Name: name}, true
	}
	return nil, false
}

// IPSpace returns the addresses denoted by s.
// Result is false if s can't be represented.
func (t *Table) IPSpace(s Spec, w *diag.Collector) (vi.IPSpace, bool) {
	switch x := s.(type) {
	case Any:
		return vi.Universe{}, true
	case ObjectRef:
		return t.objectSpace(x.Name, w)
	case GroupRef:
		return t.groupSpace(x.Name, make(map[string]bool), w)
	}
	diag.Abort("Unexpected address specifier %v", s)
	return nil, false
}

func (t *Table) objectSpace(name string, w *diag.Collector) (vi.IPSpace, bool) {
	switch x := t.objects[name].(type) {
	case nil:
		w.Warn("Referencing undefined object:%s", name)
	case *Host, *Subnet:
		p, _ := PrefixOf(x)
		return vi.PrefixSpace{Prefix: p}, true
	case *Range:
		return vi.RangeSpace{Range: x.Range}, true
	case *Fqdn:
		w.Warn("FQDN %s is not supported", x)
	}
	return nil, false
}

func (t *Table) groupSpace(
	name string, seen map[string]bool, w *diag.Collector) (vi.IPSpace, bool) {

	g := t.groups[name]
	if g == nil {
		w.Warn("Referencing undefined object-group:%s", name)
		return nil, false
	}
	if seen[name] {
		w.Warn("Found recursion in definition of %s", g)
		return nil, false
	}
	seen[name] = true
	defer delete(seen, name)
	var l []vi.IPSpace
	for _, p := range g.Prefixes {
		l = append(l, vi.PrefixSpace{Prefix: p})
	}
	for _, o := range g.Objects {
		sp, ok := t.objectSpace(o, w)
		if !ok {
			return nil, false
		}
		l = append(l, sp)
	}
	for _, sub := range g.Groups {
		sp, ok := t.groupSpace(sub, seen, w)
		if !ok {
			return nil, false
		}
		l = append(l, sp)
	}
	return vi.Union(l...), true
}
