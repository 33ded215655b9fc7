package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/beetlebugorg/spaceland/pkg/spaceland"
)

// envPrefix namespaces environment overrides, e.g. DBFR_DELIMITER or
// DBFR_QUOTE_ALWAYS.
const envPrefix = "DBFR"

// Config holds the command options after flags, environment and the
// optional YAML config file have been merged.
type Config struct {
	File string `mapstructure:"-"`

	Encoding    string `mapstructure:"encoding"`
	Delimiter   string `mapstructure:"delimiter"`
	Quote       string `mapstructure:"quote"`
	QuoteAlways bool   `mapstructure:"quote-always"`
	Escape      string `mapstructure:"escape"`
	NoHeader    bool   `mapstructure:"no-header"`
	CRLF        bool   `mapstructure:"crlf"`
	Verbose     bool   `mapstructure:"verbose"`
}

// usageError is an invalid command line. It is reported with the usage text.
type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func newFlagSet(stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("dbfr", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SortFlags = false
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: dbfr [flags] FILE\n\nConvert a dBase III file to CSV.\n\nFlags:\n")
		fs.PrintDefaults()
	}

	fs.StringP("encoding", "e", "", "set encoding used to decode the DBF input")
	fs.StringP("delimiter", "d", ",", "set field separator for CSV output")
	fs.StringP("quote", "q", `"`, "set quote character for CSV output")
	fs.Bool("quote-always", false, "quote all fields in output")
	fs.String("escape", "", "set character used to escape a quote character")
	fs.BoolP("no-header", "n", false, "don't output column names in the first row")
	fs.Bool("crlf", false, `use '\r\n' line endings in the output`)
	fs.String("config", "", "read options from a YAML file")
	fs.BoolP("verbose", "v", false, "log debug output to stderr")
	return fs
}

// loadConfig parses args and merges them with DBFR_* environment variables
// and the --config file. Flags set on the command line take precedence.
func loadConfig(args []string, stderr io.Writer) (*Config, error) {
	fs := newFlagSet(stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, err
		}
		return nil, &usageError{msg: err.Error()}
	}

	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if fs.NArg() != 1 {
		return nil, usagef("expected exactly one FILE argument, got %d", fs.NArg())
	}
	cfg.File = fs.Arg(0)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	info, err := os.Stat(c.File)
	if err != nil || !info.Mode().IsRegular() {
		return usagef("argument FILE: file %q does not exist", c.File)
	}

	if c.Encoding != "" {
		if err := spaceland.ValidEncoding(c.Encoding); err != nil {
			return usagef("argument --encoding/-e: %v", err)
		}
	}

	chars := []struct {
		flag     string
		value    string
		optional bool
	}{
		{"--delimiter/-d", c.Delimiter, false},
		{"--quote/-q", c.Quote, false},
		{"--escape", c.Escape, true},
	}
	for _, ch := range chars {
		if ch.optional && ch.value == "" {
			continue
		}
		if utf8.RuneCountInString(ch.value) != 1 {
			return usagef("argument %s: must be a single character (not %q)", ch.flag, ch.value)
		}
	}
	return nil
}

// Dialect returns the CSV dialect selected by the options.
func (c *Config) Dialect() dialect {
	d := defaultDialect()
	d.Delimiter, _ = utf8.DecodeRuneInString(c.Delimiter)
	d.Quote, _ = utf8.DecodeRuneInString(c.Quote)
	if c.Escape != "" {
		d.Escape, _ = utf8.DecodeRuneInString(c.Escape)
	}
	d.QuoteAll = c.QuoteAlways
	if c.CRLF {
		d.LineTerminator = "\r\n"
	}
	return d
}
