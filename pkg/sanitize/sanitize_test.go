package sanitize

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type address struct {
	City string `json:"city"`
	Zip  string `json:"zip,omitempty"`
}

type Base struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

type profile struct {
	Base
	Name     string            `json:"name"`
	Kind     string            `json:"kind"`
	Email    string            `json:"email,omitempty"`
	Secret   string            `json:"-"`
	Address  *address          `json:"address"`
	Tags     []string          `json:"tags"`
	Meta     map[string]string `json:"meta,omitempty"`
	Callback func()            `json:"callback"`
	internal string
}

type node struct {
	Name string `json:"name"`
	Next *node  `json:"next"`
}

type hexID struct{ v string }

func (h hexID) HexString() string { return h.v }

type panicky struct{}

func (panicky) MarshalJSON() ([]byte, error) { panic("getter exploded") }

type failing struct{}

func (failing) MarshalJSON() ([]byte, error) { return nil, errors.New("cannot marshal") }

type level string

func TestClone(t *testing.T) {
	oid := primitive.NewObjectID()
	when := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"string", "hello", "hello"},
		{"int", 42, 42},
		{"bool", true, true},
		{"named string", level("warn"), "warn"},
		{"bytes as text", []byte("hello"), "hello"},
		{"invalid utf8 bytes", []byte{0x66, 0xff, 0x6f}, "f�o"},
		{"object id", oid, oid.Hex()},
		{"hex string accessor", hexID{v: "abc123"}, "abc123"},
		{"time through marshaler", when, "2024-05-01T10:30:00Z"},
		{"error message", errors.New("boom"), "boom"},
		{"nan", math.NaN(), nil},
		{"inf", math.Inf(1), nil},
		{"function", func() {}, nil},
		{"nil pointer", (*address)(nil), nil},
		{
			name: "buffer shape",
			in:   map[string]any{"type": "Buffer", "data": []any{104.0, 105.0}},
			want: "hi",
		},
		{
			name: "buffer shape with a bad byte stays a map",
			in:   map[string]any{"type": "Buffer", "data": []any{300.0}},
			want: map[string]any{"type": "Buffer", "data": []any{300.0}},
		},
		{
			name: "nested map with bytes and ids",
			in: map[string]any{
				"payload": []byte("text"),
				"owner":   oid,
				"list":    []any{1, "two", func() {}},
			},
			want: map[string]any{
				"payload": "text",
				"owner":   oid.Hex(),
				"list":    []any{1, "two", nil},
			},
		},
		{
			name: "non-string keys",
			in:   map[int]string{1: "one"},
			want: map[string]any{"1": "one"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clone(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Clone(%#v) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCloneStruct(t *testing.T) {
	in := profile{
		Base:     Base{ID: "u1", Kind: "base"},
		Name:     "Alice",
		Kind:     "outer",
		Secret:   "s3cr3t",
		Address:  &address{City: "Bangkok"},
		Tags:     []string{"a", "b"},
		Callback: func() {},
		internal: "hidden",
	}

	got, ok := Clone(in).(map[string]any)
	if !ok {
		t.Fatalf("Clone(struct) returned %T", Clone(in))
	}

	want := map[string]any{
		"id":      "u1",
		"kind":    "outer",
		"name":    "Alice",
		"address": map[string]any{"city": "Bangkok"},
		"tags":    []any{"a", "b"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Clone(struct) = %#v, want %#v", got, want)
	}
}

func TestCloneCircular(t *testing.T) {
	t.Run("self-referencing map", func(t *testing.T) {
		m := map[string]any{"name": "root"}
		m["self"] = m

		got := Clone(m).(map[string]any)
		if got["self"] != CircularMarker {
			t.Errorf("self = %#v, want %q", got["self"], CircularMarker)
		}
		if got["name"] != "root" {
			t.Errorf("name = %#v", got["name"])
		}
	})

	t.Run("pointer cycle", func(t *testing.T) {
		a := &node{Name: "a"}
		b := &node{Name: "b", Next: a}
		a.Next = b

		got := Clone(a).(map[string]any)
		next := got["next"].(map[string]any)
		if next["name"] != "b" {
			t.Errorf("next.name = %#v", next["name"])
		}
		if next["next"] != CircularMarker {
			t.Errorf("next.next = %#v, want %q", next["next"], CircularMarker)
		}
	})

	t.Run("shared but acyclic reference is copied twice", func(t *testing.T) {
		shared := map[string]any{"v": 1}
		got := Clone(map[string]any{"a": shared, "b": shared}).(map[string]any)
		want := map[string]any{"v": 1}
		if !reflect.DeepEqual(got["a"], want) || !reflect.DeepEqual(got["b"], want) {
			t.Errorf("shared reference not copied: %#v", got)
		}
	})
}

func TestCloneDoesNotAlias(t *testing.T) {
	in := map[string]any{"user": map[string]any{"email": "a@b.com"}}
	out := Clone(in).(map[string]any)
	out["user"].(map[string]any)["email"] = "changed"

	if in["user"].(map[string]any)["email"] != "a@b.com" {
		t.Error("mutating the clone changed the input")
	}
}

func TestCloneFailureReturnsOriginal(t *testing.T) {
	t.Run("panicking marshaler", func(t *testing.T) {
		in := map[string]any{"bad": panicky{}}
		got := Clone(in)
		if reflect.ValueOf(got).Pointer() != reflect.ValueOf(in).Pointer() {
			t.Errorf("expected the original map back, got %#v", got)
		}
	})

	t.Run("marshaler error", func(t *testing.T) {
		in := []any{failing{}}
		got, ok := Clone(in).([]any)
		if !ok || len(got) != 1 {
			t.Fatalf("unexpected result %#v", got)
		}
		if _, same := got[0].(failing); !same {
			t.Errorf("expected the original slice back, got %#v", got)
		}
	})
}

func TestScrub(t *testing.T) {
	t.Run("failing marshalers become markers", func(t *testing.T) {
		in := map[string]any{"bad": failing{}, "worse": panicky{}, "ok": "fine"}
		got, ok := Scrub(in).(map[string]any)
		if !ok {
			t.Fatalf("Scrub returned %#v", Scrub(in))
		}
		want := map[string]any{"bad": UnserializableMarker, "worse": UnserializableMarker, "ok": "fine"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Scrub = %#v, want %#v", got, want)
		}
	})

	t.Run("cycle with failing marshaler", func(t *testing.T) {
		in := map[string]any{"bad": failing{}}
		in["self"] = in

		got, ok := Scrub(in).(map[string]any)
		if !ok {
			t.Fatal("Scrub did not return a map")
		}
		if reflect.ValueOf(got).Pointer() == reflect.ValueOf(in).Pointer() {
			t.Fatal("Scrub returned the input map")
		}
		if got["self"] != CircularMarker || got["bad"] != UnserializableMarker {
			t.Errorf("Scrub = %#v", got)
		}
	})

	t.Run("top level failing marshaler", func(t *testing.T) {
		if got := Scrub(failing{}); got != UnserializableMarker {
			t.Errorf("Scrub = %#v", got)
		}
	})

	t.Run("well behaved values match Clone", func(t *testing.T) {
		in := map[string]any{"user": map[string]any{"email": "a@b.com"}, "n": 3}
		if !reflect.DeepEqual(Scrub(in), Clone(in)) {
			t.Errorf("Scrub = %#v, Clone = %#v", Scrub(in), Clone(in))
		}
	})
}

func TestCloneDepthLimit(t *testing.T) {
	var root any = "leaf"
	for i := 0; i < MaxDepth+10; i++ {
		root = map[string]any{"n": root}
	}

	cur := Clone(root)
	for i := 0; i <= MaxDepth; i++ {
		m, ok := cur.(map[string]any)
		if !ok {
			t.Fatalf("depth %d: got %T", i, cur)
		}
		cur = m["n"]
	}
	if cur != TruncatedMarker {
		t.Errorf("value past MaxDepth = %#v, want %q", cur, TruncatedMarker)
	}
}
