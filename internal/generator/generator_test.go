package generator

import "testing"

func TestPolicy(t *testing.T) {
	opts := Policy("spec.yaml", "out", HTTPClientAxios)

	if opts.Input != "spec.yaml" || opts.Output != "out" || opts.HTTPClient != HTTPClientAxios {
		t.Errorf("caller fields not carried: %+v", opts)
	}
	if !opts.UseOptions || !opts.UseUnionTypes {
		t.Error("expected useOptions and useUnionTypes")
	}
	if !opts.ExportSchemas || !opts.ExportServices || !opts.ExportCore {
		t.Error("expected schemas, services and core exported")
	}
	if opts.Indent != Indent2 {
		t.Errorf("Indent = %q, want 2", opts.Indent)
	}
}

func TestIndentUnit(t *testing.T) {
	tests := []struct {
		in   Indent
		want string
	}{
		{Indent2, "  "},
		{Indent4, "    "},
		{IndentTab, "\t"},
		{"", "    "},
	}
	for _, tc := range tests {
		if got := tc.in.Unit(); got != tc.want {
			t.Errorf("Indent(%q).Unit() = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"policy", Policy("a", "b", HTTPClientFetch), false},
		{"no input", Policy("", "b", HTTPClientFetch), true},
		{"no output", Policy("a", "", HTTPClientFetch), true},
		{"bad client", Policy("a", "b", "xhr"), true},
		{"bad indent", Options{Input: "a", Output: "b", HTTPClient: HTTPClientFetch, Indent: "3"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.opts.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
