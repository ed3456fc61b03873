package asa_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hknutzen/asaconv/pkg/asa"
	"github.com/hknutzen/asaconv/pkg/oslink"
	"github.com/hknutzen/asaconv/pkg/testdata"
	"gotest.tools/assert"
)

func capture(std **os.File, f func()) string {
	r, w, err := os.Pipe()
	if err != nil {
		panic(err)
	}
	old := *std
	*std = w
	defer func() {
		*std = old
	}()

	out := make(chan string)
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, r)
		out <- buf.String()
	}()

	f()

	w.Close()
	return <-out
}

func TestOsLink(t *testing.T) {
	type testData struct {
		title  string
		input  string
		stdin  string
		stdout string
		stderr string
		status int
		diag   bool
	}
	tests := []testData{
		{
			title: "Test stderr",
			input: `
hostname: fw1
interfaces:
  Gi0/0: {nameif: x, address: 10.1.1.1/24, zone: "~SECURITY_LEVEL_1~"}
`,
			stderr: `Error: Zone name ~SECURITY_LEVEL_1~ of interface:x is reserved for security level
Aborted
`,
			status: 1,
		},
		{
			title: "Test SHOW_DIAG",
			input: `
hostname: fw1
interfaces:
  Gi0/0: {nameif: in1, address: 10.1.1.1/24, zone: Z1}
zone-pairs:
  - {source: Z2, destination: Z1, service-policy: PM1}
`,
			stdout: `device:fw1
interface:in1
 address: 10.1.1.1/24
 zone: Z1
 out-filter: ~COMBINED_OUTGOING_ACL~in1
access-list:~COMBINED_OUTGOING_ACL~in1
 permit permitted-by ~ZONE_OUTGOING_ACL~Z1 ! permit traffic permitted by zone Z1
access-list:~ZONE_OUTGOING_ACL~Z1
 permit from-device ! permit traffic originating from device
 permit ingress in1 ! permit traffic inside zone Z1
`,
			stderr: `Warning: Undefined inspect-policy PM1 in zone-pair Z2 -> Z1
DIAG: Ignoring zone pair Z2 -> Z1
`,
			diag: true,
		},
		{
			title:  "Test stdout",
			input:  "hostname: fw1",
			stdout: "device:fw1\n",
		},
		{
			title:  "Test stdin",
			stdin:  "hostname: fw2\n",
			stdout: "device:fw2\n",
		},
	}
	origArgs := os.Args
	defer func() { os.Args = origArgs }()
	for _, descr := range tests {
		descr := descr // capture range variable
		t.Run(descr.title, func(t *testing.T) {
			inPath := "-"
			if descr.input != "" {
				inDir := t.TempDir()
				assert.NilError(t, testdata.PrepareInDir(inDir, descr.input))
				inPath = filepath.Join(inDir, "INPUT")
			}
			if descr.diag {
				t.Setenv("SHOW_DIAG", "1")
			}
			if descr.stdin != "" {
				r, w, err := os.Pipe()
				assert.NilError(t, err)
				go func() {
					io.WriteString(w, descr.stdin)
					w.Close()
				}()
				old := os.Stdin
				os.Stdin = r
				defer func() {
					os.Stdin = old
					r.Close()
				}()
			}
			os.Args = []string{"PROGRAM", "-q", inPath}
			var status int
			var stdout string
			stderr := capture(&os.Stderr, func() {
				stdout = capture(&os.Stdout, func() {
					status = asa.ConvertMain(oslink.Get())
				})
			})
			if d := cmp.Diff(descr.stdout, stdout); d != "" {
				t.Error(d)
			}
			if d := cmp.Diff(descr.stderr, stderr); d != "" {
				t.Error(d)
			}
			assert.Equal(t, status, descr.status)
		})
	}
}
