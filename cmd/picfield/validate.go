package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	picfield "github.com/reoring/picfield"
	"github.com/reoring/picfield/i18n"
	"github.com/reoring/picfield/layout"
	"github.com/reoring/picfield/picture"
)

var errInvalid = errors.New("validation failed")

type failureView struct {
	Field    string `json:"field"`
	Code     string `json:"code"`
	Key      string `json:"key"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
	Rule     string `json:"rule,omitempty"`
}

func viewFailures(fs picfield.Failures) []failureView {
	out := make([]failureView, 0, len(fs))
	for _, f := range fs {
		out = append(out, failureView{
			Field:    f.Field,
			Code:     f.Code,
			Key:      f.Message,
			Message:  i18n.Failure(f),
			Severity: f.Severity.String(),
			Rule:     f.Rule,
		})
	}
	return out
}

// loadRecord loads and compiles a layout file, logging configuration warnings.
func (a *app) loadRecord(path string) (*layout.Record, picfield.Failures, error) {
	l, err := layout.LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	rec, warnings, err := l.CompileWith(layout.CompileOptions{
		Picture: picture.Options{ExpandRepeats: a.cfg.ExpandRepeats},
	})
	if err != nil {
		return nil, nil, err
	}
	for _, w := range warnings {
		a.log.Warn("layout warning", zap.String("field", w.Field), zap.String("message", i18n.Failure(w)))
	}
	a.log.Debug("layout compiled", zap.String("layout", rec.Name()), zap.Int("width", rec.Width()))
	return rec, warnings, nil
}

// readValues reads a flat field->text mapping from a JSON or YAML file, or
// JSON from in when path is "-".
func readValues(path string, in io.Reader) (map[string]string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	values := map[string]string{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &values)
	default:
		err = json.Unmarshal(data, &values)
	}
	if err != nil {
		return nil, fmt.Errorf("values %s: %w", path, err)
	}
	return values, nil
}

func newValidateCmd(a *app) *cobra.Command {
	var layoutPath, valuesPath string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate field values against a record layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, warnings, err := a.loadRecord(layoutPath)
			if err != nil {
				return err
			}
			values, err := readValues(valuesPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			fs := rec.Validate(commandContext(cmd), values)
			all := picfield.AppendFailures(warnings, fs...)

			lines := make([]string, 0, len(all))
			for _, v := range viewFailures(all) {
				lines = append(lines, fmt.Sprintf("%s %s: %s", v.Severity, v.Field, v.Message))
			}
			if len(lines) == 0 {
				lines = append(lines, "ok")
			}
			if err := a.emit(strings.Join(lines, "\n"), viewFailures(all)); err != nil {
				return err
			}
			if len(fs.Errors()) > 0 {
				return fmt.Errorf("%w: %s", errInvalid, fs.Errors().Error())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&layoutPath, "layout", "", "layout file (.yaml, .yml or .json)")
	cmd.Flags().StringVar(&valuesPath, "values", "-", "values file (.json or .yaml); - reads JSON from stdin")
	_ = cmd.MarkFlagRequired("layout")
	return cmd
}

func newRecordCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Encode or decode fixed-width records described by a layout",
	}

	var layoutPath, valuesPath string
	encode := &cobra.Command{
		Use:   "encode",
		Short: "Encode field values into a record, printed as hex",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, _, err := a.loadRecord(layoutPath)
			if err != nil {
				return err
			}
			values, err := readValues(valuesPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			b, err := rec.Encode(commandContext(cmd), values)
			if err != nil {
				return err
			}
			out := strings.ToUpper(fmt.Sprintf("%x", b))
			return a.emit(out, fieldResult{Output: out, Width: len(b)})
		},
	}
	encode.Flags().StringVar(&valuesPath, "values", "-", "values file (.json or .yaml); - reads JSON from stdin")

	var workers int
	decode := &cobra.Command{
		Use:   "decode HEX...",
		Short: "Decode hex records into field values",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, _, err := a.loadRecord(layoutPath)
			if err != nil {
				return err
			}
			records := make([][]byte, 0, len(args))
			for _, arg := range args {
				b, err := decodeHex(arg)
				if err != nil {
					return err
				}
				records = append(records, b)
			}
			decoded, err := rec.DecodeAll(commandContext(cmd), records, workers)
			if err != nil {
				return err
			}
			var (
				blocks []string
				views  [][]namedValue
			)
			for _, values := range decoded {
				lines := make([]string, 0, len(values))
				for _, f := range rec.Fields() {
					lines = append(lines, fmt.Sprintf("%s=%s", f.Name, values[f.Name]))
				}
				blocks = append(blocks, strings.Join(lines, "\n"))
				views = append(views, sortedValues(values))
			}
			a.log.Debug("records decoded", zap.Int("count", len(decoded)))
			if len(views) == 1 {
				return a.emit(blocks[0], views[0])
			}
			return a.emit(strings.Join(blocks, "\n\n"), views)
		},
	}
	decode.Flags().IntVar(&workers, "workers", 4, "records decoded concurrently")

	for _, c := range []*cobra.Command{encode, decode} {
		c.Flags().StringVar(&layoutPath, "layout", "", "layout file (.yaml, .yml or .json)")
		_ = c.MarkFlagRequired("layout")
	}
	cmd.AddCommand(encode, decode)
	return cmd
}

type namedValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func sortedValues(m map[string]string) []namedValue {
	out := make([]namedValue, 0, len(m))
	for k, v := range m {
		out = append(out, namedValue{Name: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
