package asa

import (
	"testing"

	"gotest.tools/assert"
)

func TestConvertObject(t *testing.T) {
	type test struct {
		def    ObjectDef
		result string
		err    string
	}
	tests := []test{
		{def: ObjectDef{Host: "10.1.1.1"}, result: "object:o"},
		{def: ObjectDef{Subnet: "10.1.1.0/24"}, result: "object:o"},
		{def: ObjectDef{Range: "10.1.1.1 - 10.1.1.9"}, result: "object:o"},
		{def: ObjectDef{Fqdn: "www.example.com"}, result: "object:o"},
		{def: ObjectDef{},
			err: "expected exactly one of 'host', 'subnet', 'range', 'fqdn'"},
		{def: ObjectDef{Host: "10.1.1.1", Fqdn: "x"},
			err: "expected exactly one of 'host', 'subnet', 'range', 'fqdn'"},
		{def: ObjectDef{Host: "2001:db8::1"},
			err: "IPv6 address 2001:db8::1 is not supported"},
		{def: ObjectDef{Subnet: "2001:db8::/64"},
			err: "IPv6 prefix 2001:db8::/64 is not supported"},
		{def: ObjectDef{Range: "2001:db8::1-2001:db8::9"},
			err: "IPv6 address 2001:db8::1 is not supported"},
		{def: ObjectDef{Range: "10.1.1.1"},
			err: `expected range, got "10.1.1.1"`},
		{def: ObjectDef{Range: "10.1.1.9-10.1.1.1"},
			err: "invalid range 10.1.1.9-10.1.1.1"},
	}
	for _, tc := range tests {
		o, err := convertObject("o", &tc.def)
		if tc.err != "" {
			assert.Error(t, err, tc.err)
			continue
		}
		assert.NilError(t, err)
		assert.Equal(t, o.String(), tc.result)
	}
}

func TestSortedKeys(t *testing.T) {
	m := map[string]int{"b": 1, "a": 2, "c": 3}
	assert.DeepEqual(t, sortedKeys(m), []string{"a", "b", "c"})
	assert.Equal(t, len(sortedKeys(map[string]bool{})), 0)
}
