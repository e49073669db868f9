package config

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/sdejongh/tabsnap/pkg/ratelimit"
	"github.com/sdejongh/tabsnap/pkg/tabular"
)

// Registry returns a reader registry with the configured format overrides.
// Every reader shares one limiter when build.read_limit is set.
func (c *Config) Registry() (*tabular.Registry, error) {
	rate, err := ratelimit.ParseRate(c.Build.ReadLimit)
	if err != nil {
		return nil, fmt.Errorf("build.read_limit: %w", err)
	}

	registry := tabular.NewRegistry()
	for i, o := range c.Build.Overrides {
		reader, err := o.reader()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fieldName("build.overrides", i, o.Name), err)
		}
		err = registry.AddOverride(tabular.Override{
			Name:    o.Name,
			Pattern: o.Pattern,
			When:    tabular.When(o.When),
			Reader:  reader,
		})
		if err != nil {
			return nil, err
		}
	}
	registry.SetLimiter(ratelimit.NewLimiter(rate))
	return registry, nil
}

func (o OverrideConfig) reader() (tabular.Reader, error) {
	switch o.Reader {
	case "", "delimited":
		comma, err := parseDelimiter(o.Delimiter)
		if err != nil {
			return nil, err
		}
		r := &tabular.DelimitedReader{Comma: comma, Encoding: o.Encoding, SkipRows: o.SkipRows}
		if err := r.Validate(); err != nil {
			return nil, err
		}
		return r, nil
	case "spreadsheet":
		return tabular.NewSpreadsheetReader(), nil
	default:
		return nil, fmt.Errorf("unknown reader %q (valid: delimited, spreadsheet)", o.Reader)
	}
}

// parseDelimiter accepts a single character or one of "tab", "comma",
// "semicolon" and "pipe"
func parseDelimiter(s string) (rune, error) {
	switch s {
	case "", "comma":
		return ',', nil
	case "tab", `\t`:
		return '\t', nil
	case "semicolon":
		return ';', nil
	case "pipe":
		return '|', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %s", strconv.Quote(s))
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

func fieldName(section string, i int, name string) string {
	if name != "" {
		return fmt.Sprintf("%s[%s]", section, name)
	}
	return fmt.Sprintf("%s[%d]", section, i)
}
