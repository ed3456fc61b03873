package asa

/*
Convert configuration of Cisco ASA devices into vendor independent
model of NAT transformations and access lists.
*/

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hknutzen/asaconv/pkg/conf"
	"github.com/hknutzen/asaconv/pkg/diag"
	"github.com/hknutzen/asaconv/pkg/oslink"
	"golang.org/x/exp/slices"
)

// job holds input and buffered results of a single device.
type job struct {
	path     string
	messages []string
	errCount int
	aborted  error
	output   bytes.Buffer
}

// Name of output file.
func (j *job) name() string {
	if j.path == "-" {
		return "STDIN"
	}
	return filepath.Base(j.path)
}

// inputFiles returns input file or all files of input directory.
// File "config" and hidden files are ignored.
func inputFiles(inPath string) ([]string, error) {
	if inPath == "-" {
		return []string{inPath}, nil
	}
	stat, err := os.Stat(inPath)
	if err != nil {
		return nil, fmt.Errorf("Can't %v", err)
	}
	if !stat.IsDir() {
		return []string{inPath}, nil
	}
	entries, err := os.ReadDir(inPath)
	if err != nil {
		return nil, fmt.Errorf("Can't %v", err)
	}
	var result []string
	for _, e := range entries {
		name := e.Name()
		if name == "config" || strings.HasPrefix(name, ".") ||
			!e.Type().IsRegular() {
			continue
		}
		result = append(result, filepath.Join(inPath, name))
	}
	slices.Sort(result)
	if result == nil {
		return nil, fmt.Errorf("No input files found in %s", inPath)
	}
	return result, nil
}

// run converts a single device. Messages and output are buffered
// and are printed later in order of input files.
func (j *job) run(d oslink.Data, stdin []byte, cnf *conf.Config) {
	w := &diag.Collector{ShowDiag: d.ShowDiag}
	defer func() {
		j.messages = w.Messages()
		j.errCount = w.ErrCount()
	}()
	data := stdin
	if j.path != "-" {
		var err error
		if data, err = os.ReadFile(j.path); err != nil {
			j.aborted = fmt.Errorf("Can't %v", err)
			return
		}
	}
	doc, err := ParseDocument(data, j.path)
	if err != nil {
		j.aborted = err
		return
	}
	result, err := Convert(doc, cnf, w)
	if err != nil {
		j.aborted = err
		return
	}
	if err := Print(&j.output, result, cnf.Format); err != nil {
		j.aborted = err
	}
}

func runConcurrent(jobs []*job, d oslink.Data, stdin []byte, cnf *conf.Config) {
	if cnf.Concurrency <= 1 {
		for _, j := range jobs {
			j.run(d, stdin, cnf)
		}
		return
	}
	concurrentGoroutines := make(chan struct{}, cnf.Concurrency)
	var wg sync.WaitGroup
	for _, j := range jobs {
		concurrentGoroutines <- struct{}{}
		wg.Add(1)
		go func(j *job) {
			defer wg.Done()
			j.run(d, stdin, cnf)
			<-concurrentGoroutines
		}(j)
	}
	wg.Wait()
}

func writeOutput(outDir string, j *job) error {
	path := filepath.Join(outDir, j.name())
	fd, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("Can't %v", err)
	}
	if _, err := fd.Write(j.output.Bytes()); err != nil {
		fd.Close()
		return fmt.Errorf("Can't %v", err)
	}
	return fd.Close()
}

// ConvertMain converts a single device file or all files of a
// directory. Result is written to files of output directory or
// to stdout.
func ConvertMain(d oslink.Data) int {
	inPath, outDir, cnf, abort := conf.GetArgs(d)
	if abort {
		return 1
	}
	errorf := func(format string, args ...interface{}) {
		fmt.Fprintf(d.Stderr, "Error: "+format+"\n", args...)
	}
	info := func(format string, args ...interface{}) {
		if !cnf.Quiet {
			fmt.Fprintf(d.Stderr, format+"\n", args...)
		}
	}
	files, err := inputFiles(inPath)
	if err != nil {
		errorf("%v", err)
		return 1
	}
	var stdin []byte
	if inPath == "-" {
		if stdin, err = io.ReadAll(d.Stdin); err != nil {
			errorf("Can't read STDIN: %v", err)
			return 1
		}
	}
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0777); err != nil {
			errorf("Can't %v", err)
			return 1
		}
	}
	jobs := make([]*job, len(files))
	for i, f := range files {
		jobs[i] = &job{path: f}
	}
	runConcurrent(jobs, d, stdin, cnf)

	status := 0
	for _, j := range jobs {
		for _, msg := range j.messages {
			fmt.Fprintln(d.Stderr, msg)
		}
		if j.aborted != nil {
			errorf("%v", j.aborted)
			fmt.Fprintln(d.Stderr, "Aborted")
			status = 1
			continue
		}
		if j.errCount > 0 {
			fmt.Fprintf(d.Stderr, "Aborted with %d error(s)\n", j.errCount)
			status = 1
			continue
		}
		if outDir == "" {
			d.Stdout.Write(j.output.Bytes())
		} else if err := writeOutput(outDir, j); err != nil {
			errorf("%v", err)
			status = 1
			continue
		}
		info("Converted %s", j.name())
	}
	return status
}
