package asa

import (
	"strings"

	"github.com/hknutzen/asaconv/pkg/conf"
	"github.com/hknutzen/asaconv/pkg/diag"
	"github.com/hknutzen/asaconv/pkg/nat"
	"github.com/hknutzen/asaconv/pkg/netobj"
	"github.com/hknutzen/asaconv/pkg/vi"
	"golang.org/x/exp/slices"
)

// Result is the vendor independent view of a single device.
type Result struct {
	Hostname string
	// Sorted by name.
	Interfaces []*vi.Interface
	// User defined and generated access lists, sorted by name.
	ACLs []*vi.IPAccessList
	// NAT rules in order of evaluation.
	NAT []*nat.Rule
}

// Env gives access lists by name for evaluation of flows.
func (r *Result) Env() vi.Env {
	env := make(vi.Env, len(r.ACLs))
	for _, a := range r.ACLs {
		env[a.Name] = a
	}
	return env
}

func (r *Result) Interface(name string) *vi.Interface {
	for _, i := range r.Interfaces {
		if i.Name == name {
			return i
		}
	}
	return nil
}

type converter struct {
	conf       *conf.Config
	w          *diag.Collector
	doc        *Document
	objects    *netobj.Table
	acls       map[string]*vi.IPAccessList
	interfaces []*vi.Interface
	intfMap    map[string]*vi.Interface
	rules      []*nat.Rule
}

// Convert converts a single device.
// Problems of configuration are reported to w.
// Result error is only set on internal inconsistency.
func Convert(doc *Document, cnf *conf.Config, w *diag.Collector) (*Result, error) {
	var result *Result
	err := diag.Catch(func() {
		c := &converter{conf: cnf, w: w, doc: doc}
		result = c.convert()
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *converter) convert() *Result {
	c.convertObjects()
	c.convertGroups()
	c.convertACLs()
	c.convertInterfaces()
	c.convertNAT()
	nat.Sort(c.rules)
	c.bindTransformations()
	generated := c.bindFilters()

	acls := make([]*vi.IPAccessList, 0, len(c.acls)+len(generated))
	for _, name := range sortedKeys(c.acls) {
		acls = append(acls, c.acls[name])
	}
	acls = append(acls, generated...)
	slices.SortFunc(acls, func(a, b *vi.IPAccessList) int {
		return strings.Compare(a.Name, b.Name)
	})
	return &Result{
		Hostname:   c.doc.Hostname,
		Interfaces: c.interfaces,
		ACLs:       acls,
		NAT:        c.rules,
	}
}
