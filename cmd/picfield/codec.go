package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reoring/picfield/codec"
	"github.com/reoring/picfield/decimal"
	"github.com/reoring/picfield/pic"
)

type fieldResult struct {
	Input  string `json:"input"`
	Output string `json:"output"`
	Width  int    `json:"width"`
}

func newFormatCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "format",
		Short: "Format a value as a PIC X, PIC 9 or PIC S9V9 display field",
	}

	var (
		length  int
		pad     string
		checked bool
	)
	x := &cobra.Command{
		Use:   "x VALUE",
		Short: "Pad or truncate text to PIC X(length)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			side, err := pic.ParsePad(pad)
			if err != nil {
				return err
			}
			out := pic.FormatX(args[0], length, side)
			return a.emit(out, fieldResult{Input: args[0], Output: out, Width: length})
		},
	}
	x.Flags().IntVarP(&length, "length", "l", 0, "field length in characters")
	x.Flags().StringVar(&pad, "pad", "right", "padding side: right or left")
	_ = x.MarkFlagRequired("length")

	nine := &cobra.Command{
		Use:   "9 VALUE",
		Short: "Render digits as PIC 9(length), zero-padded",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				out string
				err error
			)
			if checked {
				out, err = pic.FormatNineChecked(args[0], length)
			} else {
				out = pic.FormatNine(args[0], length)
			}
			if err != nil {
				return err
			}
			return a.emit(out, fieldResult{Input: args[0], Output: out, Width: length})
		},
	}
	nine.Flags().IntVarP(&length, "length", "l", 0, "field length in digits")
	nine.Flags().BoolVar(&checked, "checked", false, "fail instead of dropping high-order digits")
	_ = nine.MarkFlagRequired("length")

	var intDigits, fracDigits int
	s9v9 := &cobra.Command{
		Use:   "s9v9 VALUE",
		Short: "Render a decimal as PIC S9(int)V9(frac)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := decimal.Parse(args[0])
			if err != nil {
				return err
			}
			out, err := pic.FormatS9V9Mode(v, intDigits, fracDigits, a.rounding)
			if err != nil {
				return err
			}
			return a.emit(out, fieldResult{Input: args[0], Output: out, Width: len(out)})
		},
	}
	s9v9.Flags().IntVar(&intDigits, "int", 0, "integer digits")
	s9v9.Flags().IntVar(&fracDigits, "frac", 0, "fraction digits")
	_ = s9v9.MarkFlagRequired("int")

	cmd.AddCommand(x, nine, s9v9)
	return cmd
}

type geometryFlags struct {
	digits   int
	scale    int
	unsigned bool
}

func (g *geometryFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&g.digits, "digits", "d", 0, "total digits")
	cmd.Flags().IntVarP(&g.scale, "scale", "s", 0, "implied fraction digits")
	cmd.Flags().BoolVar(&g.unsigned, "unsigned", false, "unsigned field (no sign)")
	_ = cmd.MarkFlagRequired("digits")
}

func newPackCmd(a *app) *cobra.Command {
	var g geometryFlags
	cmd := &cobra.Command{
		Use:   "pack VALUE",
		Short: "Encode a decimal as packed (COMP-3) bytes, printed as hex",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := decimal.Parse(args[0])
			if err != nil {
				return err
			}
			f := codec.PackedField{Digits: g.digits, Scale: g.scale, Unsigned: g.unsigned, Rounding: a.rounding}
			b, err := f.Encode(commandContext(cmd), v)
			if err != nil {
				return err
			}
			out := strings.ToUpper(hex.EncodeToString(b))
			a.log.Debug("packed", zap.String("value", v.String()), zap.Int("bytes", len(b)))
			return a.emit(out, fieldResult{Input: args[0], Output: out, Width: len(b)})
		},
	}
	g.register(cmd)
	return cmd
}

func newUnpackCmd(a *app) *cobra.Command {
	var scale int
	cmd := &cobra.Command{
		Use:   "unpack HEX",
		Short: "Decode packed (COMP-3) bytes given as hex",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := decodeHex(args[0])
			if err != nil {
				return err
			}
			v, err := codec.DecodePacked(b, scale)
			if err != nil {
				return err
			}
			return a.emit(v.String(), fieldResult{Input: args[0], Output: v.String(), Width: len(b)})
		},
	}
	cmd.Flags().IntVarP(&scale, "scale", "s", 0, "implied fraction digits")
	return cmd
}

func newZoneCmd(a *app) *cobra.Command {
	var g geometryFlags
	cmd := &cobra.Command{
		Use:   "zone VALUE",
		Short: "Encode a decimal as zoned text with an overpunched sign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := decimal.Parse(args[0])
			if err != nil {
				return err
			}
			f := codec.ZonedField{Digits: g.digits, Scale: g.scale, Unsigned: g.unsigned, Rounding: a.rounding}
			out, err := f.Encode(commandContext(cmd), v)
			if err != nil {
				return err
			}
			return a.emit(out, fieldResult{Input: args[0], Output: out, Width: len(out)})
		},
	}
	g.register(cmd)
	return cmd
}

func newUnzoneCmd(a *app) *cobra.Command {
	var scale int
	cmd := &cobra.Command{
		Use:   "unzone TEXT",
		Short: "Decode zoned text with an overpunched sign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := codec.DecodeZoned(args[0], scale)
			if err != nil {
				return err
			}
			return a.emit(v.String(), fieldResult{Input: args[0], Output: v.String(), Width: len(args[0])})
		},
	}
	cmd.Flags().IntVarP(&scale, "scale", "s", 0, "implied fraction digits")
	return cmd
}

// decodeHex accepts upper or lower case hex, optionally separated by spaces.
func decodeHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.Join(strings.Fields(s), ""))
	if err != nil {
		return nil, fmt.Errorf("invalid hex input %q: %w", s, err)
	}
	return b, nil
}

// commandContext returns cmd's context, or Background when run outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
