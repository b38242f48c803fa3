package checklist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validChecklist = `
name: shop-smoke
description: Smoke test for the shop frontend
base_url: http://localhost:3000
checkpoints:
  - id: homepage-loads
    description: The homepage renders its header
    actions:
      - type: navigate
        path: /
      - type: wait_for
        selector: "#header"
        timeout_seconds: 15
      - type: assert_text
        selector: "#header h1"
        text: Shop
      - type: screenshot
        name: homepage
  - id: login-works
    actions:
      - type: click
        selector: "#login"
      - type: type
        selector: "#email"
        text: user@example.com
      - type: select
        selector: "#role"
        value: admin
      - type: hover
        selector: "#submit"
      - type: assert_url
        url_contains: /dashboard
`

func TestParse_Valid(t *testing.T) {
	cl, err := Parse([]byte(validChecklist))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cl.Name != "shop-smoke" || cl.BaseURL != "http://localhost:3000" {
		t.Errorf("header: %+v", cl)
	}
	if len(cl.Checkpoints) != 2 {
		t.Fatalf("checkpoints: %d", len(cl.Checkpoints))
	}
	cp := cl.Checkpoints[0]
	if cp.ID != "homepage-loads" || len(cp.Actions) != 4 {
		t.Errorf("first checkpoint: %+v", cp)
	}
	if cp.Actions[1].Type != ActionWaitFor || cp.Actions[1].TimeoutSeconds != 15 {
		t.Errorf("wait_for action: %+v", cp.Actions[1])
	}
	if cl.Checkpoints[1].Actions[4].URLContains != "/dashboard" {
		t.Errorf("assert_url action: %+v", cl.Checkpoints[1].Actions[4])
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing name",
			yaml:    "base_url: http://x\ncheckpoints: [{id: a, actions: [{type: navigate}]}]",
			wantErr: "name is required",
		},
		{
			name:    "missing base_url",
			yaml:    "name: x\ncheckpoints: [{id: a, actions: [{type: navigate}]}]",
			wantErr: "base_url is required",
		},
		{
			name:    "no checkpoints",
			yaml:    "name: x\nbase_url: http://x\ncheckpoints: []",
			wantErr: "at least one checkpoint",
		},
		{
			name:    "checkpoint without id",
			yaml:    "name: x\nbase_url: http://x\ncheckpoints: [{actions: [{type: navigate}]}]",
			wantErr: "id is required",
		},
		{
			name: "duplicate checkpoint id",
			yaml: "name: x\nbase_url: http://x\ncheckpoints: [{id: a, actions: [{type: navigate}]}, {id: a, actions: [{type: navigate}]}]",

			wantErr: `duplicate id "a"`,
		},
		{
			name:    "checkpoint without actions",
			yaml:    "name: x\nbase_url: http://x\ncheckpoints: [{id: a, actions: []}]",
			wantErr: "at least one action",
		},
		{
			name:    "click without selector",
			yaml:    "name: x\nbase_url: http://x\ncheckpoints: [{id: a, actions: [{type: click}]}]",
			wantErr: "click requires a selector",
		},
		{
			name:    "type without text",
			yaml:    "name: x\nbase_url: http://x\ncheckpoints: [{id: a, actions: [{type: type, selector: '#x'}]}]",
			wantErr: "type requires text",
		},
		{
			name:    "select without value",
			yaml:    "name: x\nbase_url: http://x\ncheckpoints: [{id: a, actions: [{type: select, selector: '#x'}]}]",
			wantErr: "select requires a value",
		},
		{
			name:    "assert_url without url_contains",
			yaml:    "name: x\nbase_url: http://x\ncheckpoints: [{id: a, actions: [{type: assert_url}]}]",
			wantErr: "assert_url requires url_contains",
		},
		{
			name:    "screenshot without name",
			yaml:    "name: x\nbase_url: http://x\ncheckpoints: [{id: a, actions: [{type: screenshot}]}]",
			wantErr: "screenshot requires a name",
		},
		{
			name:    "missing action type",
			yaml:    "name: x\nbase_url: http://x\ncheckpoints: [{id: a, actions: [{selector: '#x'}]}]",
			wantErr: "action type is required",
		},
		{
			name:    "unknown action type",
			yaml:    "name: x\nbase_url: http://x\ncheckpoints: [{id: a, actions: [{type: swipe}]}]",
			wantErr: `unknown action type "swipe"`,
		},
		{
			name:    "negative timeout",
			yaml:    "name: x\nbase_url: http://x\ncheckpoints: [{id: a, actions: [{type: navigate, timeout_seconds: -1}]}]",
			wantErr: "must not be negative",
		},
		{
			name:    "malformed yaml",
			yaml:    "name: [unclosed",
			wantErr: "parsing checklist YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "smoke.yaml")
	if err := os.WriteFile(path, []byte(validChecklist), 0o644); err != nil {
		t.Fatal(err)
	}

	cl, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cl.Name != "shop-smoke" {
		t.Errorf("name: %q", cl.Name)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
