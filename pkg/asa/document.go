package asa

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Document is the parsed configuration of a single ASA device.
type Document struct {
	Hostname            string                    `yaml:"hostname"`
	SameSecurityTraffic SameSecurityTraffic       `yaml:"same-security-traffic"`
	Interfaces          map[string]*InterfaceDef  `yaml:"interfaces"`
	NetworkObjects      map[string]*ObjectDef     `yaml:"network-objects"`
	ObjectGroups        map[string]*GroupDef      `yaml:"object-groups"`
	AccessLists         map[string][]*ACLLineDef  `yaml:"access-lists"`
	InspectPolicies     map[string]*InspectPolicy `yaml:"inspect-policies"`
	ZonePairs           []*ZonePairDef            `yaml:"zone-pairs"`
	NAT                 []*NATDef                 `yaml:"nat"`
}

type SameSecurityTraffic struct {
	IntraInterface bool `yaml:"intra-interface"`
	InterInterface bool `yaml:"inter-interface"`
}

type InterfaceDef struct {
	Nameif         string `yaml:"nameif"`
	Address        string `yaml:"address"`
	SecurityLevel  *int   `yaml:"security-level"`
	Zone           string `yaml:"zone"`
	AccessGroupIn  string `yaml:"access-group-in"`
	AccessGroupOut string `yaml:"access-group-out"`
	Shutdown       bool   `yaml:"shutdown"`
}

// ObjectDef must have exactly one attribute set.
type ObjectDef struct {
	Host   string `yaml:"host"`
	Subnet string `yaml:"subnet"`
	Range  string `yaml:"range"`
	Fqdn   string `yaml:"fqdn"`
}

type GroupDef struct {
	Objects  []string `yaml:"objects"`
	Prefixes []string `yaml:"prefixes"`
	Groups   []string `yaml:"groups"`
}

type ACLLineDef struct {
	Action string `yaml:"action"`
	Src    string `yaml:"src"`
	Dst    string `yaml:"dst"`
}

type InspectPolicy struct {
	AccessList string `yaml:"access-list"`
}

type ZonePairDef struct {
	Source        string `yaml:"source"`
	Destination   string `yaml:"destination"`
	ServicePolicy string `yaml:"service-policy"`
}

type NATDef struct {
	Section           string `yaml:"section"`
	Line              int    `yaml:"line"`
	Object            string `yaml:"object"`
	Inside            string `yaml:"inside"`
	Outside           string `yaml:"outside"`
	Type              string `yaml:"type"`
	RealSource        string `yaml:"real-source"`
	MappedSource      string `yaml:"mapped-source"`
	RealDestination   string `yaml:"real-destination"`
	MappedDestination string `yaml:"mapped-destination"`
	Inactive          bool   `yaml:"inactive"`
	Unidirectional    bool   `yaml:"unidirectional"`
	RouteLookup       bool   `yaml:"route-lookup"`
}

// ParseDocument reads YAML document.
// Unknown keys are rejected.
func ParseDocument(data []byte, fname string) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	doc := new(Document)
	if err := dec.Decode(doc); err != nil {
		if err == io.EOF {
			return doc, nil
		}
		return nil, fmt.Errorf("Invalid YAML in %s: %w", fname, err)
	}
	return doc, nil
}
