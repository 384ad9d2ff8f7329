package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/shivanshkc/ubench/pkg/bench"
)

// Output formats.
const (
	formatConsole = "console"
	formatJSON    = "json"
	formatTable   = "table"
)

// Options is the resolved configuration of a command. It can be loaded from a
// YAML file; flags set on the command line take precedence.
type Options struct {
	bench.Config `yaml:",inline"`

	Filter          string `yaml:"filter"`
	Format          string `yaml:"format"`
	Out             string `yaml:"out"`
	OutFormat       string `yaml:"out_format"`
	Color           string `yaml:"color"`
	CountersTabular bool   `yaml:"counters_tabular"`
	List            bool   `yaml:"list"`
	PromTextfile    string `yaml:"prom_textfile"`
	OTelStdout      bool   `yaml:"otel_stdout"`
}

func defaultOptions() Options {
	return Options{
		Config:    bench.DefaultConfig(),
		Filter:    "all",
		Format:    formatConsole,
		OutFormat: formatJSON,
		Color:     "auto",
	}
}

// loadOptionsFile decodes a YAML file on top of opts. Unknown keys are errors.
func loadOptionsFile(path string, opts *Options) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error while reading the config file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(opts); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("error while decoding the config file %s: %w", path, err)
	}
	return nil
}

// resolveOptions merges the defaults, the config file and the flags that
// changed reports as explicitly set.
func resolveOptions(path string, flagged Options, changed func(name string) bool) (Options, error) {
	opts := defaultOptions()
	if path != "" {
		if err := loadOptionsFile(path, &opts); err != nil {
			return Options{}, err
		}
	}

	overrides := map[string]func(){
		"filter":           func() { opts.Filter = flagged.Filter },
		"min-time":         func() { opts.MinTime = flagged.MinTime },
		"repetitions":      func() { opts.Repetitions = flagged.Repetitions },
		"aggregates-only":  func() { opts.ReportAggregatesOnly = flagged.ReportAggregatesOnly },
		"format":           func() { opts.Format = flagged.Format },
		"out":              func() { opts.Out = flagged.Out },
		"out-format":       func() { opts.OutFormat = flagged.OutFormat },
		"color":            func() { opts.Color = flagged.Color },
		"counters-tabular": func() { opts.CountersTabular = flagged.CountersTabular },
		"list":             func() { opts.List = flagged.List },
		"prom-textfile":    func() { opts.PromTextfile = flagged.PromTextfile },
		"otel-stdout":      func() { opts.OTelStdout = flagged.OTelStdout },
	}
	for name, apply := range overrides {
		if changed(name) {
			apply()
		}
	}

	if message := validateOptions(opts); message != "" {
		return Options{}, errors.New(message)
	}
	return opts, nil
}

// useColor resolves the color setting. "auto" enables colors when w is a terminal.
func useColor(setting string, w io.Writer) bool {
	switch setting {
	case "true":
		return true
	case "false":
		return false
	}

	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}
