package testdata

/*
Test descriptions are read from files with suffix ".t".
Each test starts with =TITLE= followed by blocks
=INPUT=, =OPTIONS=, =PARAM=, =OUTPUT=, =WARNING=, =ERROR=,
=SHOW_DIAG=, =TODO=.
A block either has its value on the same line or spans the following
lines up to the next definition. A multi line block may be
terminated by =END=.

=VAR=name defines a text block, that is inserted as ${name}.
=SUBST=/old/new/ replaces text in preceding =INPUT=.
*/

import (
	"errors"
	"fmt"
	"os"
	"path"
	"regexp"
	"strings"
)

type Descr struct {
	Title    string
	Input    string
	Options  string
	Param    string
	Output   string
	Warning  string
	Error    string
	ShowDiag bool
	Todo     bool
}

type parser struct {
	lines []string
	pos   int
	vars  map[string]string
}

// GetFiles returns names of test files with suffix ".t" in dataDir.
func GetFiles(dataDir string) ([]string, error) {
	files, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, f := range files {
		if name := f.Name(); strings.HasSuffix(name, ".t") {
			names = append(names, path.Join(dataDir, name))
		}
	}
	return names, nil
}

// ParseFile parses the named file as a list of test descriptions.
func ParseFile(file string) ([]*Descr, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) ([]*Descr, error) {
	p := &parser{
		lines: strings.SplitAfter(string(data), "\n"),
		vars:  make(map[string]string),
	}
	return p.parse()
}

func (p *parser) parse() ([]*Descr, error) {
	var result []*Descr
	var d *Descr
	var seen map[string]bool
	finish := func() error {
		if d == nil {
			return errors.New("missing =TITLE= in first test")
		}
		if d.Input == "" {
			return fmt.Errorf("missing =INPUT= in test with =TITLE=%s", d.Title)
		}
		if d.Output == "" && d.Warning == "" && d.Error == "" {
			return fmt.Errorf(
				"missing =OUTPUT|WARNING|ERROR= in test with =TITLE=%s", d.Title)
		}
		if d.Error != "" && d.Warning != "" {
			return fmt.Errorf(
				"must not define =ERROR= together with =WARNING="+
					" in test with =TITLE=%s", d.Title)
		}
		result = append(result, d)
		return nil
	}
	for p.pos < len(p.lines) {
		line := strings.TrimSpace(p.lines[p.pos])
		if line == "" || line[0] == '#' {
			p.pos++
			continue
		}
		name, rest := definition(line)
		if name == "" {
			return nil, fmt.Errorf("expected token '=...=' at line %d: %s",
				p.pos+1, line)
		}
		p.pos++
		switch name {
		case "VAR":
			if !isName(rest) {
				return nil, errors.New("invalid name after =VAR=: " + rest)
			}
			p.vars[rest] = strings.TrimSuffix(p.block(), "\n")
			continue
		case "SUBST":
			if err := substitute(d, rest); err != nil {
				return nil, err
			}
			continue
		case "TITLE":
			if d != nil {
				if err := finish(); err != nil {
					return nil, err
				}
			}
			d = &Descr{Title: p.text(rest)}
			seen = make(map[string]bool)
			continue
		}
		if d == nil {
			return nil, errors.New("expected =TITLE=")
		}
		if seen[name] {
			return nil, fmt.Errorf(
				"found multiple =%s= in test with =TITLE=%s", name, d.Title)
		}
		seen[name] = true
		text := p.text(rest)
		switch name {
		case "INPUT":
			d.Input = text
		case "OPTIONS":
			d.Options = text
		case "PARAM":
			d.Param = text
		case "OUTPUT":
			d.Output = text
		case "WARNING":
			d.Warning = text
		case "ERROR":
			d.Error = text
		case "SHOW_DIAG":
			d.ShowDiag = true
		case "TODO":
			d.Todo = true
		default:
			return nil, fmt.Errorf(
				"unexpected =%s= in test with =TITLE=%s", name, d.Title)
		}
	}
	if err := finish(); err != nil {
		return nil, err
	}
	return result, nil
}

// definition splits line "=NAME=rest" into NAME and trimmed rest.
// Name is empty if line doesn't start with a definition.
func definition(line string) (name, rest string) {
	if !strings.HasPrefix(line, "=") {
		return "", ""
	}
	name, rest, found := strings.Cut(line[1:], "=")
	if !found || !isName(name) {
		return "", ""
	}
	return name, strings.TrimSpace(rest)
}

// text returns value given on same line as definition
// or else the following block of lines.
func (p *parser) text(rest string) string {
	if rest != "" {
		return p.expand(rest)
	}
	return p.expand(p.block())
}

// block collects lines up to next definition.
// A terminating =END= is consumed.
func (p *parser) block() string {
	var b strings.Builder
	for ; p.pos < len(p.lines); p.pos++ {
		line := p.lines[p.pos]
		if name, _ := definition(line); name != "" {
			if name == "END" {
				p.pos++
			}
			break
		}
		b.WriteString(line)
	}
	return b.String()
}

// expand replaces ${name} by text of corresponding =VAR=.
func (p *parser) expand(text string) string {
	for name, val := range p.vars {
		text = strings.ReplaceAll(text, "${"+name+"}", val)
	}
	return text
}

func substitute(d *Descr, spec string) error {
	if spec == "" {
		return errors.New("missing substitution after =SUBST=")
	}
	parts := strings.Split(spec[1:], spec[:1])
	if len(parts) != 3 || parts[2] != "" {
		return errors.New("invalid substitution: " + spec)
	}
	if d == nil || d.Input == "" {
		return fmt.Errorf("=SUBST=%s must follow after =INPUT=", spec)
	}
	d.Input = strings.ReplaceAll(d.Input, parts[0], parts[1])
	return nil
}

func isName(n string) bool {
	if n == "" {
		return false
	}
	for _, ch := range n {
		if !(ch == '_' || 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' ||
			'0' <= ch && ch <= '9') {
			return false
		}
	}
	return true
}

// PrepareInDir fills input directory with file(s).
// Parts of input are marked by single lines of dashes
// followed by a filename.
// If no markers are given, a single file named INPUT is used.
func PrepareInDir(inDir, input string) error {
	if input == "NONE" {
		input = ""
	}
	re := regexp.MustCompile(`(?m)^-+[ ]*\S+[ ]*\n`)
	markers := re.FindAllStringIndex(input, -1)
	if markers == nil {
		return writeFile(inDir, "INPUT", input)
	}
	if markers[0][0] != 0 {
		return errors.New("missing file marker in first line")
	}
	for i, m := range markers {
		name := strings.Trim(input[m[0]:m[1]-1], "- ")
		end := len(input)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		if err := writeFile(inDir, name, input[m[1]:end]); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(inDir, name, data string) error {
	if path.IsAbs(name) {
		return fmt.Errorf("unexpected absolute path '%s'", name)
	}
	full := path.Join(inDir, name)
	if err := os.MkdirAll(path.Dir(full), 0755); err != nil {
		return err
	}
	return os.WriteFile(full, []byte(data), 0644)
}
