package netobj

import (
	"encoding/binary"
	"net/netip"

	"go4.org/netipx"
)

// Object is a named network object of ASA configuration.
// Variants: *Host, *Subnet, *Range, *Fqdn.
type Object interface {
	Name() string
	String() string
	isObject()
}

type named struct{ name string }

func (x named) Name() string   { return x.name }
func (x named) String() string { return "object:" + x.name }

type Host struct {
	named
	IP netip.Addr
}

type Subnet struct {
	named
	Prefix netip.Prefix
}

type Range struct {
	named
	Range netipx.IPRange
}

// Fqdn can't be resolved statically and is never supported as
// NAT operand.
type Fqdn struct {
	named
	Domain string
}

func (*Host) isObject()   {}
func (*Subnet) isObject() {}
func (*Range) isObject()  {}
func (*Fqdn) isObject()   {}

func NewHost(name string, ip netip.Addr) *Host {
	return &Host{named{name}, ip}
}

func NewSubnet(name string, p netip.Prefix) *Subnet {
	return &Subnet{named{name}, p.Masked()}
}

func NewRange(name string, r netipx.IPRange) *Range {
	return &Range{named{name}, r}
}

func NewFqdn(name, domain string) *Fqdn {
	return &Fqdn{named{name}, domain}
}

// PrefixOf returns the prefix of host and subnet objects.
func PrefixOf(o Object) (netip.Prefix, bool) {
	switch x := o.(type) {
	case *Host:
		return netip.PrefixFrom(x.IP, x.IP.BitLen()), true
	case *Subnet:
		return x.Prefix, true
	}
	return netip.Prefix{}, false
}

// RangeOf returns the addresses of host, subnet and range objects.
func RangeOf(o Object) (netipx.IPRange, bool) {
	switch x := o.(type) {
	case *Host:
		return netipx.IPRangeFrom(x.IP, x.IP), true
	case *Subnet:
		return netipx.RangeOfPrefix(x.Prefix), true
	case *Range:
		return x.Range, x.Range.IsValid()
	}
	return netipx.IPRange{}, false
}

// Span returns number of addresses of IPv4 range minus one,
// i.e. difference of last and first address.
// It panics on IPv6 addresses.
func Span(r netipx.IPRange) uint32 {
	return toUint32(r.To()) - toUint32(r.From())
}

func toUint32(ip netip.Addr) uint32 {
	b := ip.As4()
	return binary.BigEndian.Uint32(b[:])
}
