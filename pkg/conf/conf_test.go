package conf

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/hknutzen/asaconv/pkg/oslink"
	"gotest.tools/assert"
)

func getArgs(args ...string) (string, string, *Config, bool, string) {
	var stderr bytes.Buffer
	d := oslink.Data{
		Args:   append([]string{"PROGRAM"}, args...),
		Stderr: &stderr,
	}
	in, out, cfg, abort := GetArgs(d)
	return in, out, cfg, abort, stderr.String()
}

func TestDefaults(t *testing.T) {
	in, out, cfg, abort, stderr := getArgs("fw.yaml")
	assert.Assert(t, !abort)
	assert.Equal(t, stderr, "")
	assert.Equal(t, in, "fw.yaml")
	assert.Equal(t, out, "")
	assert.Equal(t, cfg.CheckDivert, TriState("warn"))
	assert.Equal(t, cfg.CheckInactive, TriState(""))
	assert.Equal(t, cfg.Format, "text")
	assert.Equal(t, cfg.Concurrency, 1)
	assert.Assert(t, !cfg.Quiet)
}

func TestFlags(t *testing.T) {
	in, out, cfg, abort, _ := getArgs(
		"-q", "--check_divert=0", "--check_inactive", "err",
		"-f", "json", "--concurrency=4", "dir/", "out/")
	assert.Assert(t, !abort)
	assert.Equal(t, in, "dir")
	assert.Equal(t, out, "out")
	assert.Equal(t, cfg.CheckDivert, TriState(""))
	assert.Equal(t, cfg.CheckInactive, TriState("err"))
	assert.Equal(t, cfg.Format, "json")
	assert.Equal(t, cfg.Concurrency, 4)
	assert.Assert(t, cfg.Quiet)
}

func TestInvertedFlag(t *testing.T) {
	_, _, cfg, _, _ := getArgs("-q", "--verbose", "fw.yaml")
	assert.Assert(t, !cfg.Quiet)
}

func TestBadArgs(t *testing.T) {
	_, _, _, abort, stderr := getArgs()
	assert.Assert(t, abort)
	assert.Assert(t, bytes.HasPrefix([]byte(stderr),
		[]byte("Error: Expected 1 or 2 args, got []\nUsage: PROGRAM")))

	_, _, _, abort, stderr = getArgs("--check_divert=maybe", "x")
	assert.Assert(t, abort)
	assert.Assert(t, bytes.Contains([]byte(stderr), []byte("Expected 0|1|warn")))

	_, _, _, abort, stderr = getArgs("--format=xml", "x")
	assert.Assert(t, abort)
	assert.Assert(t, bytes.HasPrefix(
		[]byte(stderr), []byte("Error: Unknown output format: xml\n")))
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "config"), []byte(`
# comment
check_divert = 0;
format = yaml
`), 0644)
	assert.NilError(t, err)

	_, _, cfg, abort, _ := getArgs(dir)
	assert.Assert(t, !abort)
	assert.Equal(t, cfg.CheckDivert, TriState(""))
	assert.Equal(t, cfg.Format, "yaml")

	// Command line has precedence.
	_, _, cfg, _, _ = getArgs("--format=json", dir)
	assert.Equal(t, cfg.Format, "json")

	// Config file is also found next to input file.
	_, _, cfg, _, _ = getArgs(filepath.Join(dir, "fw.yaml"))
	assert.Equal(t, cfg.Format, "yaml")
}

func TestInvalidConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config")
	os.WriteFile(file, []byte("foo = 1\n"), 0644)
	_, _, _, abort, stderr := getArgs(dir)
	assert.Assert(t, abort)
	assert.Equal(t, stderr, "Error: Invalid keyword in "+file+": foo\n")

	os.WriteFile(file, []byte("concurrency = many\n"), 0644)
	_, _, _, abort, stderr = getArgs(dir)
	assert.Assert(t, abort)
	assert.Equal(t, stderr,
		"Error: Invalid value for concurrency in "+file+": many\n")

	os.WriteFile(file, []byte("no equal sign\n"), 0644)
	_, _, _, abort, stderr = getArgs(dir)
	assert.Assert(t, abort)
	assert.Equal(t, stderr,
		"Error: Unexpected line in "+file+": no equal sign\n")
}
