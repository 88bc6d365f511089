package toon

import (
	"strings"
	"testing"

	"github.com/phobologic/scriptgraph/internal/model"
)

func TestEncodeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", `""`},
		{"simple", "hello", "hello"},
		{"leading space", " hello", `" hello"`},
		{"trailing space", "hello ", `"hello "`},
		{"newline", "a\nb", `"a\nb"`},
		{"tab", "a\tb", `"a\tb"`},
		{"carriage return", "a\rb", `"a\rb"`},
		{"true keyword", "true", `"true"`},
		{"True keyword", "True", `"True"`},
		{"false keyword", "false", `"false"`},
		{"null keyword", "null", `"null"`},
		{"integer", "42", "42"},
		{"negative integer", "-1", "-1"},
		{"float", "3.14", "3.14"},
		{"zero", "0", "0"},
		{"leading zero invalid", "01", "01"},
		{"comma", "a,b", `"a,b"`},
		{"colon", "a:b", `"a:b"`},
		{"quote", `a"b`, `"a\"b"`},
		{"backslash", `a\b`, `"a\\b"`},
		{"bracket", "a[b", `"a[b"`},
		{"brace", "a{b", `"a{b"`},
		{"dash prefix", "-foo", `"-foo"`},
		{"path", "lib/util.ps1", "lib/util.ps1"},
		{"verb-noun name", "get-config", "get-config"},
		{"windows path", `C:\scripts\a.ps1`, `"C:\\scripts\\a.ps1"`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := encodeValue(tt.in)
			if got != tt.want {
				t.Errorf("encodeValue(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	gm := &model.GraphMap{
		Title:  "deploy.ps1",
		Root:   "main",
		Inputs: []string{"deploy.ps1", "lib/util.ps1"},
		Functions: []model.FunctionRank{
			{Name: "get-config", Callees: 0, Callers: 2, Rank: 0.5},
			{Name: "deploy", Callees: 1, Callers: 1, Rank: 0.3},
			{Name: "main", Callees: 2, Callers: 0, Rank: 0.2},
		},
		Calls: []model.CallEdge{
			{Caller: "main", Callee: "deploy"},
			{Caller: "main", Callee: "get-config"},
			{Caller: "deploy", Callee: "get-config"},
		},
	}

	got := Encode(gm)

	want := []string{
		"title: deploy.ps1",
		"root: main",
		"inputs[2]: deploy.ps1,lib/util.ps1",
		"functions[3]{name,callees,callers,rank}:",
		"  get-config,0,2,0.5000",
		"  deploy,1,1,0.3000",
		"  main,2,0,0.2000",
		"calls[3]{caller,callee}:",
		"  main,deploy",
		"  main,get-config",
		"  deploy,get-config",
	}
	lines := strings.Split(got, "\n")
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), got)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestEncodeEmpty(t *testing.T) {
	t.Parallel()

	gm := &model.GraphMap{
		Title: "empty",
		Root:  "main",
	}

	got := Encode(gm)
	if !strings.Contains(got, "inputs[0]: ") {
		t.Errorf("expected empty inputs list, got:\n%s", got)
	}
	if !strings.Contains(got, "functions[0]{name,callees,callers,rank}:") {
		t.Errorf("expected empty functions section, got:\n%s", got)
	}
	if !strings.Contains(got, "calls[0]{caller,callee}:") {
		t.Errorf("expected empty calls section, got:\n%s", got)
	}
}
