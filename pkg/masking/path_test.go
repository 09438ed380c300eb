package masking

import (
	"reflect"
	"testing"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		expr   string
		ok     bool
		kind   PathKind
		render string
	}{
		{"user.email", true, PathField, "user.email"},
		{"$.email", true, PathRootArray, "$.email"},
		{"body.$.email", true, PathMidArray, "body.$.email"},
		{"body.$.items.$.email", true, PathMidArray, "body.$.items.$.email"},
		{"$.items.$.email", true, PathRootArray, "$.items.$.email"},
		{"", false, 0, ""},
		{"$.", false, 0, ""},
		{"body.$.", false, 0, ""},
		{".$.email", false, 0, ""},
		{"body.$.$.", false, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			p, ok := ParsePath(tt.expr)
			if ok != tt.ok {
				t.Fatalf("ParsePath(%q) ok = %v, want %v", tt.expr, ok, tt.ok)
			}
			if !ok {
				return
			}
			if p.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", p.Kind, tt.kind)
			}
			if p.String() != tt.render {
				t.Errorf("String() = %q, want %q", p.String(), tt.render)
			}
		})
	}
}

func TestGet(t *testing.T) {
	data := map[string]any{
		"user": map[string]any{
			"profile": map[string]any{"email": "a@b.com"},
		},
		"body": []any{
			map[string]any{"email": "x@y.com"},
			map[string]any{"name": "no email"},
			map[string]any{"email": "z@y.com"},
		},
		"list": []any{"zero", "one"},
	}

	tests := []struct {
		name string
		expr string
		want any
		ok   bool
	}{
		{"nested field", "user.profile.email", "a@b.com", true},
		{"missing intermediate", "user.settings.theme", nil, false},
		{"through scalar", "user.profile.email.domain", nil, false},
		{"numeric index", "list.1", "one", true},
		{"index out of range", "list.5", nil, false},
		{"mid array collects present values", "body.$.email", []any{"x@y.com", "z@y.com"}, true},
		{"mid array over non-array", "user.$.email", nil, false},
		{"malformed", "body.$.", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Get(data, tt.expr)
			if ok != tt.ok {
				t.Fatalf("Get(%q) ok = %v, want %v", tt.expr, ok, tt.ok)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Get(%q) = %#v, want %#v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestGetRootArray(t *testing.T) {
	data := []any{
		map[string]any{"email": "a@b.com"},
		map[string]any{"email": "c@d.com"},
	}
	got, ok := Get(data, "$.email")
	if !ok {
		t.Fatal("expected root array path to resolve")
	}
	want := []any{"a@b.com", "c@d.com"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}

	if _, ok := Get(map[string]any{"email": "a@b.com"}, "$.email"); ok {
		t.Error("root array path over a map should not resolve")
	}
}

func TestSet(t *testing.T) {
	t.Run("creates intermediate maps", func(t *testing.T) {
		data := map[string]any{}
		if !Set(data, "a.b.c", 1) {
			t.Fatal("Set reported nothing written")
		}
		got, ok := Get(data, "a.b.c")
		if !ok || got != 1 {
			t.Errorf("Get after Set = %v, %v", got, ok)
		}
	})

	t.Run("scalar intermediate is a no-op", func(t *testing.T) {
		data := map[string]any{"a": "scalar"}
		if Set(data, "a.b", 1) {
			t.Error("Set through a scalar should not write")
		}
		if data["a"] != "scalar" {
			t.Errorf("scalar was overwritten: %v", data["a"])
		}
	})

	t.Run("array form writes every element", func(t *testing.T) {
		data := map[string]any{"rows": []any{map[string]any{}, map[string]any{}}}
		if !Set(data, "rows.$.seen", true) {
			t.Fatal("Set reported nothing written")
		}
		for i, row := range data["rows"].([]any) {
			if row.(map[string]any)["seen"] != true {
				t.Errorf("row %d not updated", i)
			}
		}
	})

	t.Run("non-container root", func(t *testing.T) {
		if Set("string root", "a", 1) {
			t.Error("Set on a string root should not write")
		}
		if Set(nil, "a", 1) {
			t.Error("Set on a nil root should not write")
		}
	})
}

func TestApplyNestedWildcard(t *testing.T) {
	data := map[string]any{
		"orders": []any{
			map[string]any{"items": []any{
				map[string]any{"code": "a"},
				map[string]any{"code": "b"},
			}},
			map[string]any{"items": "not an array"},
			map[string]any{"items": []any{map[string]any{"code": "c"}}},
		},
	}

	p, ok := ParsePath("orders.$.items.$.code")
	if !ok {
		t.Fatal("ParsePath failed")
	}

	var seen []any
	p.Apply(data, func(v any) any {
		seen = append(seen, v)
		return "*"
	})

	if !reflect.DeepEqual(seen, []any{"a", "b", "c"}) {
		t.Errorf("visited %v", seen)
	}
	got, _ := Get(data, "orders.$.items.$.code")
	want := []any{[]any{"*", "*"}, []any{"*"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("after Apply got %#v, want %#v", got, want)
	}
}
