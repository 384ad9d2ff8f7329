package cli

import (
	"regexp"
	"slices"
	"strings"
)

var formats = []string{formatConsole, formatJSON, formatTable}

// validateOptions validates the resolved options of the run and list commands.
func validateOptions(opts Options) string {
	if err := opts.Config.Validate(); err != nil {
		return "Invalid configuration: " + err.Error()
	}

	// The filter must compile; "all" is a keyword.
	if opts.Filter != "all" {
		if _, err := regexp.Compile(opts.Filter); err != nil {
			return "Invalid filter: " + err.Error()
		}
	}

	if !slices.Contains(formats, opts.Format) {
		return "Format must be one of: " + strings.Join(formats, ", ") + "."
	}
	if !slices.Contains(formats, opts.OutFormat) {
		return "Out format must be one of: " + strings.Join(formats, ", ") + "."
	}

	if !slices.Contains([]string{"auto", "true", "false"}, opts.Color) {
		return "Color must be one of: auto, true, false."
	}

	return ""
}

// validateCompareArgs validates the positional arguments of the compare command.
func validateCompareArgs(args []string) string {
	if len(args) != 2 {
		return "Exactly two result files are required: OLD and NEW."
	}

	for _, arg := range args {
		if strings.TrimSpace(arg) == "" {
			return "Result file paths must not be empty."
		}
	}

	return ""
}
