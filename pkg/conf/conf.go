package conf

/*
Get arguments and options from command line and config file.

=head1 COPYRIGHT AND DISCLAIMER

(C) 2018 by Heinz Knutzen <heinz.knutzen@googlemail.com>

http://hknutzen.github.com/Netspoc

This program is free software; you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation; either version 2 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License along
with this program; if not, write to the Free Software Foundation, Inc.,
51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
*/

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hknutzen/asaconv/pkg/oslink"
	"github.com/octago/sflags"
	"github.com/octago/sflags/gen/gpflag"
	flag "github.com/spf13/pflag"
)

// Type for command line flag with value 0|1|warn
type TriState string

func (v *TriState) String() string { return string(*v) }
func (v *TriState) Set(s string) error {
	switch strings.ToLower(s) {
	case "", "0", "no", "f", "false":
		*v = ""
	case "1", "e", "err", "error":
		*v = "err"
	case "w", "warn", "warning":
		*v = "warn"
	default:
		return fmt.Errorf("Expected 0|1|warn but got %s", s)
	}
	return nil
}

// Needed for gen/gpflag to work, mostly for pflag compatibility.
func (v TriState) Type() string { return "tristate" }

// Type for additional name to existing flag with inverted boolean value.
type invFlag struct{ flag *flag.Flag }

func (v invFlag) String() string {
	b, _ := strconv.ParseBool(v.flag.Value.String())
	return strconv.FormatBool(!b)
}
func (v invFlag) Set(s string) error {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	return v.flag.Value.Set(strconv.FormatBool(!b))
}
func (v invFlag) Type() string { return "invFlag" }

// Config holds program flags.
type Config struct {
	CheckDivert   TriState
	CheckInactive TriState
	Concurrency   int
	Format        string `flag:"format f" desc:"Output format: text|json|yaml"`
	Quiet         bool   `flag:"quiet q" desc:"Don't print progress messages"`
}

var invertedFlags = map[string]*struct {
	short string
	orig  string
}{
	"verbose": {short: "v", orig: "quiet"},
}

var outputFormats = map[string]bool{"text": true, "json": true, "yaml": true}

func defaultOptions(fs *flag.FlagSet) *Config {
	cfg := &Config{

		// Object NAT with concrete outside interface may divert
		// incoming packets to its inside interface, bypassing the
		// routing table. This isn't modeled.
		CheckDivert: "warn",

		// Inactive NAT rules are silently ignored.
		CheckInactive: "",

		// Set value to >= 2 to convert devices concurrently.
		Concurrency: 1,

		Format: "text",

		// Print progress messages.
		Quiet: false,
	}
	err := gpflag.ParseTo(cfg, fs, sflags.FlagDivider("_"))
	if err != nil {
		panic(err)
	}
	for name, spec := range invertedFlags {
		origFlag := fs.Lookup(spec.orig)
		inverted := invFlag{origFlag}
		flag := fs.VarPF(inverted, name, spec.short, "")
		flag.NoOptDefVal = "true"
	}
	return cfg
}

// Reads "key = value;" pairs from config file.
// Trailing ";" is optional.
// Comment lines starting with "#" are ignored.
func readConfig(filename string) (map[string]string, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("Failed to read config file %s: %v", filename, err)
	}
	lines := strings.Split(string(bytes), "\n")
	result := make(map[string]string)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed[0] == '#' {
			continue
		}
		key, val, found := strings.Cut(line, "=")
		if !found {
			return nil, fmt.Errorf("Unexpected line in %s: %s", filename, line)
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		val = strings.TrimSuffix(val, ";")
		result[key] = val
	}
	return result, nil
}

// parseFile parses the specified configuration file and populates unset flags
// in fs based on the contents of the file.
func parseFile(filename string, fs *flag.FlagSet) error {
	isSet := make(map[*flag.Flag]bool)
	config, err := readConfig(filename)
	if err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		isSet[f] = true
	})
	fs.VisitAll(func(f *flag.Flag) {
		if err != nil {
			return
		}
		// Ignore inverted flag, but also ignore inverted value from file.
		if inv, found := invertedFlags[f.Name]; found {
			delete(config, inv.orig)
			return
		}
		val, found := config[f.Name]
		if !found {
			return
		}
		delete(config, f.Name)
		if isSet[f] {
			return
		}
		if f.Value.Set(val) != nil {
			err = fmt.Errorf("Invalid value for %s in %s: %s", f.Name, filename, val)
		}
	})
	if err != nil {
		return err
	}
	for name := range config {
		return fmt.Errorf("Invalid keyword in %s: %s", filename, name)
	}
	return nil
}

func isRegular(path string) bool {
	stat, err := os.Stat(path)
	return err == nil && stat.Mode().IsRegular()
}

func isDir(path string) bool {
	stat, err := os.Stat(path)
	return err == nil && stat.Mode().IsDir()
}

// File "config" is searched in input directory or
// in directory of input file.
func addConfigFromFile(inPath string, fs *flag.FlagSet) error {
	dir := inPath
	if !isDir(inPath) {
		dir = filepath.Dir(inPath)
	}
	path := filepath.Join(dir, "config")
	if !isRegular(path) {
		return nil
	}
	return parseFile(path, fs)
}

func (c *Config) check() error {
	if !outputFormats[c.Format] {
		return fmt.Errorf("Unknown output format: %s", c.Format)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("Invalid concurrency: %d", c.Concurrency)
	}
	return nil
}

// GetArgs reads name of input file or directory and optional
// name of output directory from command line.
// Result abort is true, if program must be stopped.
func GetArgs(d oslink.Data) (inPath, outDir string, cfg *Config, abort bool) {
	fs := flag.NewFlagSet(d.Args[0], flag.ContinueOnError)
	fs.SetOutput(d.Stderr)

	// Setup custom usage function.
	fs.Usage = func() {
		fmt.Fprintf(d.Stderr,
			"Usage: %s [options] IN-FILE|IN-DIR [OUT-DIR]\n", d.Args[0])
		fs.PrintDefaults()
	}
	fail := func(err error) {
		fmt.Fprintf(d.Stderr, "Error: %s\n", err)
		fs.Usage()
		abort = true
	}

	cfg = defaultOptions(fs)
	if err := fs.Parse(d.Args[1:]); err != nil {
		if err != flag.ErrHelp {
			fmt.Fprintf(d.Stderr, "Error: %s\n", err)
		}
		return "", "", nil, true
	}
	inPath = fs.Arg(0)
	if inPath == "" || fs.Arg(2) != "" {
		fail(fmt.Errorf("Expected 1 or 2 args, got %v", fs.Args()))
		return
	}

	// Strip trailing slash for nicer messages.
	inPath = strings.TrimSuffix(inPath, "/")
	outDir = strings.TrimSuffix(fs.Arg(1), "/")

	if err := addConfigFromFile(inPath, fs); err != nil {
		fmt.Fprintf(d.Stderr, "Error: %s\n", err)
		return "", "", nil, true
	}
	if err := cfg.check(); err != nil {
		fail(err)
	}
	return
}

// Default returns configuration with default values
// for use as library.
func Default() *Config {
	return defaultOptions(flag.NewFlagSet("", flag.ContinueOnError))
}
