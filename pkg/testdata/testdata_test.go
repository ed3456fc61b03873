package testdata

import (
	"os"
	"path"
	"testing"

	"gotest.tools/assert"
)

func TestParse(t *testing.T) {
	src := `
=VAR=input
hostname: fw1
=END=
############################################################
=TITLE=First
=INPUT=${input}
=OPTIONS=--quiet
=OUTPUT=
device:fw1
=END=

=TITLE=Second
=INPUT=
${input}
interfaces: {}
=SUBST=/fw1/fw2/
=SHOW_DIAG=
=WARNING=NONE
`
	l, err := Parse([]byte(src))
	assert.NilError(t, err)
	assert.Equal(t, len(l), 2)
	assert.DeepEqual(t, *l[0], Descr{
		Title:   "First",
		Input:   "hostname: fw1",
		Options: "--quiet",
		Output:  "device:fw1\n",
	})
	assert.DeepEqual(t, *l[1], Descr{
		Title:    "Second",
		Input:    "hostname: fw2\ninterfaces: {}\n",
		Warning:  "NONE",
		ShowDiag: true,
	})
}

func TestParseErrors(t *testing.T) {
	type test struct {
		src string
		err string
	}
	tests := []test{
		{"=INPUT=x\n", "expected =TITLE="},
		{"=TITLE=t\n=OUTPUT=x\n", "missing =INPUT= in test with =TITLE=t"},
		{"=TITLE=t\n=INPUT=x\n",
			"missing =OUTPUT|WARNING|ERROR= in test with =TITLE=t"},
		{"=TITLE=t\n=INPUT=x\n=INPUT=y\n",
			"found multiple =INPUT= in test with =TITLE=t"},
		{"=TITLE=t\n=INPUT=x\n=WARNING=w\n=ERROR=e\n",
			"must not define =ERROR= together with =WARNING= in test with =TITLE=t"},
		{"=TITLE=t\n=FOO=x\n", "unexpected =FOO= in test with =TITLE=t"},
		{"=TITLE=t\nfoo\n", "expected token '=...=' at line 2: foo"},
		{"=TITLE=t\n=SUBST=/a/b/\n", "=SUBST=/a/b/ must follow after =INPUT="},
		{"", "missing =TITLE= in first test"},
	}
	for _, tc := range tests {
		_, err := Parse([]byte(tc.src))
		assert.Error(t, err, tc.err, tc.src)
	}
}

func TestPrepareInDir(t *testing.T) {
	dir := t.TempDir()
	err := PrepareInDir(dir, "-- config\ncheck_divert = 0;\n-- sub/fw1.yaml\nhostname: fw1\n")
	assert.NilError(t, err)
	data, err := os.ReadFile(path.Join(dir, "config"))
	assert.NilError(t, err)
	assert.Equal(t, string(data), "check_divert = 0;\n")
	data, err = os.ReadFile(path.Join(dir, "sub", "fw1.yaml"))
	assert.NilError(t, err)
	assert.Equal(t, string(data), "hostname: fw1\n")

	dir = t.TempDir()
	assert.NilError(t, PrepareInDir(dir, "NONE"))
	data, err = os.ReadFile(path.Join(dir, "INPUT"))
	assert.NilError(t, err)
	assert.Equal(t, string(data), "")

	assert.Error(t, PrepareInDir(dir, "x\n-- f\n"),
		"missing file marker in first line")
	assert.Error(t, PrepareInDir(dir, "-- /etc/f\n"),
		"unexpected absolute path '/etc/f'")
}
