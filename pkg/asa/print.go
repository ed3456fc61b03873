package asa

import (
	"bytes"
	"fmt"
	"io"

	"github.com/hknutzen/asaconv/pkg/vi"
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

// Print writes result in given format: text, json or yaml.
func Print(w io.Writer, r *Result, format string) error {
	switch format {
	case "json":
		return printJSON(w, r)
	case "yaml":
		return printYAML(w, r)
	}
	printText(w, r)
	return nil
}

func printText(w io.Writer, r *Result) {
	fmt.Fprintf(w, "device:%s\n", r.Hostname)
	if len(r.NAT) > 0 {
		fmt.Fprintln(w, "nat:")
		for _, n := range r.NAT {
			fmt.Fprintln(w, " "+n.String())
		}
	}
	for _, i := range r.Interfaces {
		fmt.Fprintln(w, i.String())
		if i.Address.IsValid() {
			fmt.Fprintln(w, " address:", i.Address)
		}
		if l := i.SecurityLevel; l != nil {
			fmt.Fprintln(w, " security-level:", *l)
		}
		attr := func(key, val string) {
			if val != "" {
				fmt.Fprintf(w, " %s: %s\n", key, val)
			}
		}
		attr("zone", i.Zone)
		attr("in-filter", i.InFilter)
		attr("out-filter", i.OutFilter)
		chain := func(key string, t *vi.Transformation) {
			if t == nil {
				return
			}
			fmt.Fprintf(w, " %s:\n", key)
			for _, l := range t.Lines() {
				fmt.Fprintln(w, "  "+l)
			}
		}
		chain("incoming", i.IncomingTransformation)
		chain("outgoing", i.OutgoingTransformation)
	}
	for _, a := range r.ACLs {
		fmt.Fprintf(w, "access-list:%s\n", a.Name)
		for _, l := range a.Lines {
			fmt.Fprintln(w, " "+l.String())
		}
	}
}

type jsonLine struct {
	Action string `json:"action" yaml:"action"`
	Match  string `json:"match" yaml:"match"`
	Trace  string `json:"trace,omitempty" yaml:"trace,omitempty"`
}

type jsonACL struct {
	Name  string     `json:"name" yaml:"name"`
	Lines []jsonLine `json:"lines" yaml:"lines"`
}

type jsonTransformation struct {
	Guard string   `json:"guard" yaml:"guard"`
	Steps []string `json:"steps" yaml:"steps"`
}

type jsonInterface struct {
	Name          string               `json:"name" yaml:"name"`
	Address       string               `json:"address,omitempty" yaml:"address,omitempty"`
	SecurityLevel *int                 `json:"security_level,omitempty" yaml:"security-level,omitempty"`
	Zone          string               `json:"zone,omitempty" yaml:"zone,omitempty"`
	InFilter      string               `json:"in_filter,omitempty" yaml:"in-filter,omitempty"`
	OutFilter     string               `json:"out_filter,omitempty" yaml:"out-filter,omitempty"`
	Incoming      []jsonTransformation `json:"incoming,omitempty" yaml:"incoming,omitempty"`
	Outgoing      []jsonTransformation `json:"outgoing,omitempty" yaml:"outgoing,omitempty"`
}

type jsonDevice struct {
	Hostname   string          `json:"hostname" yaml:"hostname"`
	NAT        []string        `json:"nat,omitempty" yaml:"nat,omitempty"`
	Interfaces []jsonInterface `json:"interfaces" yaml:"interfaces"`
	ACLs       []jsonACL       `json:"access_lists" yaml:"access-lists"`
}

func chainData(t *vi.Transformation) []jsonTransformation {
	var result []jsonTransformation
	for ; t != nil; t = t.Else {
		steps := make([]string, len(t.Steps))
		for i, s := range t.Steps {
			steps[i] = s.String()
		}
		result = append(result,
			jsonTransformation{Guard: t.Guard.String(), Steps: steps})
	}
	return result
}

func deviceData(r *Result) *jsonDevice {
	d := &jsonDevice{
		Hostname:   r.Hostname,
		Interfaces: make([]jsonInterface, len(r.Interfaces)),
		ACLs:       make([]jsonACL, len(r.ACLs)),
	}
	for _, n := range r.NAT {
		d.NAT = append(d.NAT, n.String())
	}
	for j, i := range r.Interfaces {
		ji := jsonInterface{
			Name:          i.Name,
			SecurityLevel: i.SecurityLevel,
			Zone:          i.Zone,
			InFilter:      i.InFilter,
			OutFilter:     i.OutFilter,
			Incoming:      chainData(i.IncomingTransformation),
			Outgoing:      chainData(i.OutgoingTransformation),
		}
		if i.Address.IsValid() {
			ji.Address = i.Address.String()
		}
		d.Interfaces[j] = ji
	}
	for j, a := range r.ACLs {
		lines := make([]jsonLine, len(a.Lines))
		for k, l := range a.Lines {
			lines[k] = jsonLine{
				Action: l.Action.String(),
				Match:  l.Match.String(),
				Trace:  l.Trace,
			}
		}
		d.ACLs[j] = jsonACL{Name: a.Name, Lines: lines}
	}
	return d
}

func printJSON(w io.Writer, r *Result) error {
	json := jsoniter.ConfigCompatibleWithStandardLibrary
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", " ")
	return enc.Encode(deviceData(r))
}

func printYAML(w io.Writer, r *Result) error {
	var b bytes.Buffer
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(deviceData(r)); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := w.Write(b.Bytes())
	return err
}
