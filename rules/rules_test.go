package rules_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	picfield "github.com/reoring/picfield"
	"github.com/reoring/picfield/picture"
	"github.com/reoring/picfield/rules"
)

func stateZip() rules.Rule {
	return rules.Rule{
		Name:    "state_zip",
		Fields:  []string{"state", "zip"},
		Primary: "zip",
		Message: "validation.zip_state_mismatch",
		Check: rules.If("state", rules.Eq, "CA").Then(func(v rules.Values) bool {
			return strings.HasPrefix(v.Get("zip"), "9")
		}),
	}
}

func TestEvaluate_StateZip(t *testing.T) {
	rs := []rules.Rule{stateZip()}

	if fs := rules.Evaluate(rs, map[string]string{"state": "", "zip": "  "}); len(fs) != 0 {
		t.Fatalf("all-blank rule must be skipped, got %v", fs)
	}
	if fs := rules.Evaluate(rs, map[string]string{}); len(fs) != 0 {
		t.Fatalf("absent fields count as blank, got %v", fs)
	}
	if fs := rules.Evaluate(rs, map[string]string{"state": "CA", "zip": "94105"}); len(fs) != 0 {
		t.Fatalf("matching state/zip must pass, got %v", fs)
	}

	fs := rules.Evaluate(rs, map[string]string{"state": "CA", "zip": "10001"})
	want := picfield.Failures{{
		Field:   "zip",
		Code:    picfield.CodeBusinessRule,
		Message: "validation.zip_state_mismatch",
		Rule:    "state_zip",
	}}
	if diff := cmp.Diff(want, fs); diff != "" {
		t.Fatalf("failures mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluate_PrimaryDefaultsToFirstField(t *testing.T) {
	r := rules.Rule{
		Name:    "range",
		Fields:  []string{"from", "to"},
		Message: "validation.range",
		Check:   rules.Compare("from", rules.Le, "to"),
	}
	fs := rules.Evaluate([]rules.Rule{r}, map[string]string{"from": "10.5", "to": "9"})
	if len(fs) != 1 || fs[0].Field != "from" {
		t.Fatalf("expected failure on first field, got %v", fs)
	}
}

func TestEvaluate_OrderAndNoShortCircuit(t *testing.T) {
	fail := func(name string) rules.Rule {
		return rules.Rule{Name: name, Fields: []string{"a"}, Message: name, Check: func(rules.Values) bool { return false }}
	}
	rs := []rules.Rule{fail("first"), fail("second"), stateZip(), fail("third")}
	fs := rules.Evaluate(rs, map[string]string{"a": "x"})
	var names []string
	for _, f := range fs {
		names = append(names, f.Rule)
	}
	if diff := cmp.Diff([]string{"first", "second", "third"}, names); diff != "" {
		t.Fatalf("rule order mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluate_PanicRecovered(t *testing.T) {
	rs := []rules.Rule{
		{Name: "boom", Fields: []string{"a", "b"}, Primary: "b", Message: "m", Check: func(rules.Values) bool { panic("broken predicate") }},
		{Name: "after", Fields: []string{"a"}, Message: "after", Check: func(rules.Values) bool { return false }},
	}
	fs := rules.Evaluate(rs, map[string]string{"a": "1"})
	if len(fs) != 2 {
		t.Fatalf("expected 2 failures, got %v", fs)
	}
	got := fs[0]
	if got.Code != picfield.CodeRuleError || got.Message != rules.MessageRuleError || got.Field != "b" || got.Rule != "boom" {
		t.Fatalf("unexpected panic failure: %+v", got)
	}
	if got.Cause == nil || !strings.Contains(got.Cause.Error(), "broken predicate") {
		t.Fatalf("cause must carry the panic value, got %v", got.Cause)
	}
	if fs[1].Rule != "after" {
		t.Fatalf("evaluation must continue after a panic")
	}
}

func TestEvaluate_SkipPolicies(t *testing.T) {
	never := func(rules.Values) bool { return false }
	values := map[string]string{"a": "1", "b": ""}

	anyBlank := rules.Rule{Name: "any", Fields: []string{"a", "b"}, Skip: rules.SkipAnyBlank, Check: never}
	if fs := rules.Evaluate([]rules.Rule{anyBlank}, values); len(fs) != 0 {
		t.Fatalf("SkipAnyBlank must skip, got %v", fs)
	}
	allBlank := rules.Rule{Name: "all", Fields: []string{"a", "b"}, Check: never}
	if fs := rules.Evaluate([]rules.Rule{allBlank}, values); len(fs) != 1 {
		t.Fatalf("SkipAllBlank must evaluate, got %v", fs)
	}
	noSkip := rules.Rule{Name: "never", Fields: []string{"b"}, Skip: rules.SkipNever, Check: rules.RequireAll("b")}
	if fs := rules.Evaluate([]rules.Rule{noSkip}, values); len(fs) != 1 {
		t.Fatalf("SkipNever must evaluate, got %v", fs)
	}
}

func TestEvaluate_PredicateSeesDeclaredFieldsOnly(t *testing.T) {
	var seen rules.Values
	r := rules.Rule{Name: "n", Fields: []string{"a"}, Check: func(v rules.Values) bool { seen = v; return true }}
	rules.Evaluate([]rules.Rule{r}, map[string]string{"a": "1", "secret": "x"})
	if diff := cmp.Diff(rules.Values{"a": "1"}, seen); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluate_SeverityAndCode(t *testing.T) {
	r := rules.Rule{Name: "w", Fields: []string{"a"}, Code: "custom", Severity: picfield.Warn, Check: func(rules.Values) bool { return false }}
	fs := rules.Evaluate([]rules.Rule{r}, map[string]string{"a": "1"})
	if len(fs.Warnings()) != 1 || len(fs.Errors()) != 0 || fs[0].Code != "custom" {
		t.Fatalf("unexpected failures: %+v", fs)
	}
}

func TestCombinators(t *testing.T) {
	v := rules.Values{"qty": "010", "max": "9.50", "kind": "B ", "code": "AB-12"}
	cases := []struct {
		name string
		ch   rules.Check
		want bool
	}{
		{"decimal compare", rules.Compare("qty", rules.Gt, "max"), true},
		{"decimal equality ignores scale", rules.CompareValue("qty", rules.Eq, "10.0"), true},
		{"string compare", rules.CompareValue("kind", rules.Lt, "C"), true},
		{"ne", rules.CompareValue("kind", rules.Ne, "B"), false},
		{"one of", rules.OneOf("kind", "A", "B"), true},
		{"require all", rules.RequireAll("qty", "missing"), false},
		{"picture", rules.MatchesPicture("code", picture.MustCompile("AA-99")), true},
		{"and", rules.And(rules.RequireAll("qty"), rules.OneOf("kind", "Z")), false},
		{"or", rules.Or(rules.OneOf("kind", "Z"), rules.RequireAll("qty")), true},
		{"empty or", rules.Or(), true},
		{"not", rules.Not(rules.OneOf("kind", "Z")), true},
		{"if any", rules.IfAny(rules.If("kind", rules.Eq, "Z"), rules.If("qty", rules.Ge, "10")).Then(rules.RequireAll("missing")), false},
		{"if all false", rules.If("kind", rules.Eq, "B").And(rules.If("qty", rules.Lt, "1")).Then(rules.RequireAll("missing")), true},
		{"or conditional", rules.If("kind", rules.Eq, "Z").Or(rules.If("kind", rules.Eq, "B")).Then(rules.OneOf("code", "AB-12")), true},
	}
	for _, tc := range cases {
		if got := tc.ch(v); got != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestFailuresError(t *testing.T) {
	var fs picfield.Failures
	for _, f := range []string{"a", "b", "c", "d"} {
		fs = picfield.AppendFailures(fs, picfield.FailureAt(f, picfield.CodeBusinessRule, "m"))
	}
	want := "business_rule at a; business_rule at b; business_rule at c; ... (total 4)"
	if fs.Error() != want {
		t.Fatalf("Error() = %q", fs.Error())
	}
	got, ok := picfield.AsFailures(fs)
	if !ok || !cmp.Equal(got, fs, cmpopts.EquateEmpty()) {
		t.Fatalf("AsFailures round trip failed")
	}
}
