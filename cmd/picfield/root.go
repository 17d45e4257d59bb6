package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/reoring/picfield/decimal"
	"github.com/reoring/picfield/i18n"
)

// Config holds the CLI settings. Values are populated from .picfield.yaml,
// PICFIELD_* env vars and flags.
type Config struct {
	Rounding      string `mapstructure:"rounding"`
	Lang          string `mapstructure:"lang"`
	Output        string `mapstructure:"output"`
	Verbose       bool   `mapstructure:"verbose"`
	ExpandRepeats bool   `mapstructure:"expand_repeats"`
}

// app is the state shared by all subcommands of one invocation.
type app struct {
	v        *viper.Viper
	cfg      Config
	rounding decimal.RoundingMode
	log      *zap.Logger
	out      io.Writer
}

func newApp(out io.Writer) *app {
	return &app{v: viper.New(), out: out}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "picfield",
		Short:         "COBOL field codec and picture validation",
		Long:          "picfield formats PIC X/9/S9V9 fields, packs and unpacks COMP-3 and zoned decimals, matches picture clauses and validates record layouts.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default .picfield.yaml)")
	pf.String("rounding", "half-up", "rounding mode: half-up, half-even or down")
	pf.String("lang", "en", "message language (en, ja)")
	pf.StringP("output", "o", "text", "output format: text or json")
	pf.BoolP("verbose", "v", false, "verbose output")
	pf.Bool("expand-repeats", false, "expand picture repeat counts such as 9(5)")
	_ = a.v.BindPFlag("rounding", pf.Lookup("rounding"))
	_ = a.v.BindPFlag("lang", pf.Lookup("lang"))
	_ = a.v.BindPFlag("output", pf.Lookup("output"))
	_ = a.v.BindPFlag("verbose", pf.Lookup("verbose"))
	_ = a.v.BindPFlag("expand_repeats", pf.Lookup("expand-repeats"))

	root.AddCommand(
		newFormatCmd(a),
		newPackCmd(a),
		newUnpackCmd(a),
		newZoneCmd(a),
		newUnzoneCmd(a),
		newMatchCmd(a),
		newValidateCmd(a),
		newRecordCmd(a),
	)
	return root
}

// init loads the configuration and builds the logger.
func (a *app) init(cmd *cobra.Command) error {
	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
	} else {
		a.v.SetConfigName(".picfield")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(home)
		}
	}
	a.v.SetEnvPrefix("PICFIELD")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		// A missing default config file is fine; we use defaults.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	if err := a.v.Unmarshal(&a.cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}

	mode, err := decimal.ParseRoundingMode(a.cfg.Rounding)
	if err != nil {
		return err
	}
	a.rounding = mode
	switch a.cfg.Output {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown output format %q", a.cfg.Output)
	}
	i18n.SetLanguage(a.cfg.Lang)

	if a.log == nil {
		config := zap.NewProductionConfig()
		if a.cfg.Verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		if a.log, err = config.Build(); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
	}
	a.log.Debug("config loaded",
		zap.String("file", a.v.ConfigFileUsed()),
		zap.Stringer("rounding", a.rounding),
		zap.String("lang", a.cfg.Lang))
	return nil
}

// emit writes text, or obj as indented JSON when --output json is set.
func (a *app) emit(text string, obj any) error {
	if a.cfg.Output == "json" {
		b, err := json.MarshalIndent(obj, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(a.out, string(b))
		return err
	}
	_, err := fmt.Fprintln(a.out, text)
	return err
}
