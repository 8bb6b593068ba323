package plugins

import (
	"strings"
	"testing"
)

const validScript = `func Step(state, command float64) float64 {
	return state + (command-state)/2
}`

func validDefinition() Definition {
	return Definition{
		Type:    "scripted-damper",
		Version: "1.0.0",
		Script:  validScript,
	}
}

func TestDefinitionValidate(t *testing.T) {
	cases := map[string]struct {
		mutate  func(*Definition)
		wantErr string
	}{
		"valid": {
			mutate: func(*Definition) {},
		},
		"missing type": {
			mutate:  func(d *Definition) { d.Type = "  " },
			wantErr: "type is required",
		},
		"path separator in type": {
			mutate:  func(d *Definition) { d.Type = "../evil" },
			wantErr: "path separators",
		},
		"missing version": {
			mutate:  func(d *Definition) { d.Version = "" },
			wantErr: "version is required",
		},
		"missing script": {
			mutate:  func(d *Definition) { d.Script = "" },
			wantErr: "script is required",
		},
		"script without step function": {
			mutate:  func(d *Definition) { d.Script = "func Advance(s float64) float64 { return s }" },
			wantErr: "must declare func Step",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			def := validDefinition()
			tc.mutate(&def)
			err := def.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestDefinitionNormalized(t *testing.T) {
	def := Definition{
		Type:    "  scripted-damper  ",
		Version: " 1.0.0 ",
		Script:  "\n" + validScript + "\n",
		Params:  map[string]string{" slowdown ": "4", "  ": "dropped"},
	}
	got := def.Normalized()
	if got.Type != "scripted-damper" || got.Version != "1.0.0" {
		t.Fatalf("fields not trimmed: %+v", got)
	}
	if got.Script != validScript {
		t.Fatalf("script not trimmed: %q", got.Script)
	}
	if len(got.Params) != 1 || got.Params["slowdown"] != "4" {
		t.Fatalf("params not normalized: %+v", got.Params)
	}
}

func TestParseDefinitionYAML(t *testing.T) {
	payload := []byte(`
type: scripted-damper
version: 1.0.0
script: |
  func Step(state, command float64) float64 {
      return state + (command-state)/2
  }
params:
  slowdown: "2"
`)
	def, err := ParseDefinitionYAML(payload)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if def.Type != "scripted-damper" || def.Params["slowdown"] != "2" {
		t.Fatalf("unexpected definition: %+v", def)
	}

	if _, err := ParseDefinitionYAML([]byte("   \n")); err == nil {
		t.Fatal("expected error for empty payload")
	}
	if _, err := ParseDefinitionYAML([]byte("type: [oops")); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}
