package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/reoring/picfield/i18n"
)

const customerLayout = "../../layout/testdata/customer.yaml"

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out strings.Builder
	a := newApp(&out)
	a.log = zap.NewNop()
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err := root.Execute()
	return out.String(), err
}

func TestCLI_Format(t *testing.T) {
	cases := []struct {
		args []string
		want string
	}{
		{[]string{"format", "x", "AB", "--length", "5"}, "AB   \n"},
		{[]string{"format", "x", "AB", "-l", "4", "--pad", "left"}, "  AB\n"},
		{[]string{"format", "9", "12345", "-l", "3"}, "345\n"},
		{[]string{"format", "s9v9", "--int", "3", "--frac", "2", "--", "-12.5"}, "-012.50\n"},
		{[]string{"format", "s9v9", "0.125", "--int", "1", "--frac", "2"}, "0.13\n"},
		{[]string{"--rounding", "half-even", "format", "s9v9", "0.125", "--int", "1", "--frac", "2"}, "0.12\n"},
	}
	for _, tc := range cases {
		got, err := run(t, "", tc.args...)
		if err != nil {
			t.Fatalf("%v: %v", tc.args, err)
		}
		if got != tc.want {
			t.Fatalf("%v = %q, want %q", tc.args, got, tc.want)
		}
	}
	if _, err := run(t, "", "format", "9", "12345", "-l", "3", "--checked"); err == nil {
		t.Fatalf("--checked must report digit overflow")
	}
}

func TestCLI_PackedAndZoned(t *testing.T) {
	cases := []struct {
		args []string
		want string
	}{
		{[]string{"pack", "12.3", "-d", "3", "-s", "1"}, "123C\n"},
		{[]string{"pack", "123", "-d", "3", "--unsigned"}, "123F\n"},
		{[]string{"unpack", "12 3d", "-s", "1"}, "-12.3\n"},
		{[]string{"zone", "--digits", "5", "--scale", "1", "--", "-12.3"}, "0012L\n"},
		{[]string{"unzone", "012I", "-s", "2"}, "1.29\n"},
	}
	for _, tc := range cases {
		got, err := run(t, "", tc.args...)
		if err != nil {
			t.Fatalf("%v: %v", tc.args, err)
		}
		if got != tc.want {
			t.Fatalf("%v = %q, want %q", tc.args, got, tc.want)
		}
	}
	if _, err := run(t, "", "unpack", "123A"); err == nil {
		t.Fatalf("invalid sign nibble must fail")
	}
	if _, err := run(t, "", "pack", "1234", "-d", "3"); err == nil {
		t.Fatalf("overflow must fail")
	}
}

func TestCLI_JSONOutput(t *testing.T) {
	got, err := run(t, "", "-o", "json", "pack", "--digits", "7", "--scale", "2", "--", "-1234.567")
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	var res fieldResult
	if err := json.Unmarshal([]byte(got), &res); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, got)
	}
	if res.Output != "0123457D" || res.Width != 4 {
		t.Fatalf("unexpected result %+v", res)
	}
	if _, err := run(t, "", "-o", "xml", "pack", "1", "-d", "1"); err == nil {
		t.Fatalf("unknown output format must fail")
	}
}

func TestCLI_Match(t *testing.T) {
	got, err := run(t, "", "match", "999-99-9999", "123-45-6789")
	if err != nil || got != "match\n" {
		t.Fatalf("match: %v %q", err, got)
	}
	got, err = run(t, "", "match", "999-99-9999", "12-345-6789")
	if !errors.Is(err, errNoMatch) || got != "mismatch at position 2\n" {
		t.Fatalf("mismatch: %v %q", err, got)
	}
	if _, err := run(t, "", "--expand-repeats", "match", "9(3)", "123"); err != nil {
		t.Fatalf("repeat counts: %v", err)
	}
	got, _ = run(t, "", "-o", "json", "match", "99", "1x")
	var res matchResult
	if err := json.Unmarshal([]byte(got), &res); err != nil || res.Match || res.Position != 1 || res.Pattern != "[0-9][0-9]" {
		t.Fatalf("json match result: %v %+v", err, res)
	}
}

func TestCLI_Validate(t *testing.T) {
	got, err := run(t, `{"ssn":"123-45-6789","rate":"1.5"}`, "validate", "--layout", customerLayout)
	if err != nil || got != "ok\n" {
		t.Fatalf("valid values: %v %q", err, got)
	}

	got, err = run(t, `{"id":"12x"}`, "validate", "--layout", customerLayout)
	if !errors.Is(err, errInvalid) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(got, "error id: id must be numeric") || !strings.Contains(got, "error ssn: ssn is required") {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestCLI_ValidateJapaneseFromEnv(t *testing.T) {
	t.Setenv("PICFIELD_LANG", "ja")
	defer i18n.SetLanguage("en")
	got, err := run(t, `{"ssn":"1"}`, "validate", "--layout", customerLayout)
	if !errors.Is(err, errInvalid) || !strings.Contains(got, "ピクチャ 999-99-9999") {
		t.Fatalf("expected japanese pattern message, got %v %q", err, got)
	}
}

func TestCLI_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "picfield.yaml")
	if err := os.WriteFile(cfg, []byte("rounding: half-even\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := run(t, "", "--config", cfg, "format", "s9v9", "0.125", "--int", "1", "--frac", "2")
	if err != nil || got != "0.12\n" {
		t.Fatalf("config rounding: %v %q", err, got)
	}
	if _, err := run(t, "", "--config", filepath.Join(dir, "missing.yaml"), "format", "9", "1", "-l", "1"); err == nil {
		t.Fatalf("an explicit missing config file must fail")
	}
}

func TestCLI_Record(t *testing.T) {
	dir := t.TempDir()
	values := filepath.Join(dir, "values.yaml")
	body := "id: \"42\"\nname: ACME\nssn: 123-45-6789\nbalance: \"-1234.5\"\ndelta: \"12.3\"\nrate: \"-12.5\"\nbranch: \"001\"\n"
	if err := os.WriteFile(values, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	hexRecord, err := run(t, "", "record", "encode", "--layout", customerLayout, "--values", values)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(hexRecord, "0123450D") {
		t.Fatalf("packed balance missing from %q", hexRecord)
	}
	got, err := run(t, "", "record", "decode", "--layout", customerLayout, strings.TrimSpace(hexRecord))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, want := range []string{"id=42", "name=ACME", "balance=-1234.50", "delta=12.3", "rate=-12.50", "branch=001"} {
		if !strings.Contains(got, want) {
			t.Fatalf("decoded output %q lacks %q", got, want)
		}
	}

	h := strings.TrimSpace(hexRecord)
	got, err = run(t, "", "-o", "json", "record", "decode", "--layout", customerLayout, h, h)
	if err != nil {
		t.Fatalf("decode two records: %v", err)
	}
	var views [][]namedValue
	if err := json.Unmarshal([]byte(got), &views); err != nil || len(views) != 2 {
		t.Fatalf("expected two decoded records: %v\n%s", err, got)
	}
	if _, err := run(t, "", "record", "decode", "--layout", customerLayout, h, "00"); err == nil {
		t.Fatalf("a short record must fail")
	}
}
