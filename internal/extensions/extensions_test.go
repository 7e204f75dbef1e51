package extensions

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

const endpointConfig = "x-amazon-apigateway-endpoint-configuration"

func TestMerge(t *testing.T) {
	tests := []struct {
		name    string
		target  Map
		updates Map
		want    Map
	}{
		{
			name:    "insert into empty map",
			target:  Map{},
			updates: Map{endpointConfig: map[string]any{"types": []any{"REGIONAL"}}},
			want:    Map{endpointConfig: map[string]any{"types": []any{"REGIONAL"}}},
		},
		{
			name:    "insert keeps other keys",
			target:  Map{"x-other": "foo"},
			updates: Map{"k": 1.0},
			want:    Map{"x-other": "foo", "k": 1.0},
		},
		{
			name: "merge object fields",
			target: Map{endpointConfig: map[string]any{
				"types":          []any{"EDGE"},
				"vpcEndpointIds": []any{"vpce-1"},
			}},
			updates: Map{endpointConfig: map[string]any{"disableExecuteApiEndpoint": true}},
			want: Map{endpointConfig: map[string]any{
				"types":                     []any{"EDGE"},
				"vpcEndpointIds":            []any{"vpce-1"},
				"disableExecuteApiEndpoint": true,
			}},
		},
		{
			name:    "overwrite existing field",
			target:  Map{"k": map[string]any{"a": 1, "b": 2}},
			updates: Map{"k": map[string]any{"b": 3}},
			want:    Map{"k": map[string]any{"a": 1, "b": 3}},
		},
		{
			name:    "nested objects are replaced, not merged",
			target:  Map{"k": map[string]any{"a": map[string]any{"x": 1, "y": 2}}},
			updates: Map{"k": map[string]any{"a": map[string]any{"y": 3}}},
			want:    Map{"k": map[string]any{"a": map[string]any{"y": 3}}},
		},
		{
			name:    "scalar replaced by object",
			target:  Map{"k": "PRIVATE"},
			updates: Map{"k": map[string]any{"a": 1}},
			want:    Map{"k": map[string]any{"a": 1}},
		},
		{
			name:    "object replaced by scalar",
			target:  Map{"k": map[string]any{"a": 1}},
			updates: Map{"k": true},
			want:    Map{"k": true},
		},
		{
			name:    "list replaced wholesale",
			target:  Map{"k": []any{"EDGE", "REGIONAL"}},
			updates: Map{"k": []any{"PRIVATE"}},
			want:    Map{"k": []any{"PRIVATE"}},
		},
		{
			name:    "nil value replaced",
			target:  Map{"k": nil},
			updates: Map{"k": map[string]any{"a": 1}},
			want:    Map{"k": map[string]any{"a": 1}},
		},
		{
			name:    "empty updates",
			target:  Map{"k": "v"},
			updates: Map{},
			want:    Map{"k": "v"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Merge(tt.target, tt.updates)
			if diff := cmp.Diff(tt.want, tt.target); diff != "" {
				t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeIdempotent(t *testing.T) {
	newTarget := func() Map {
		return Map{
			"x-untouched": map[string]any{"keep": []any{"me"}},
			"x-scalar":    "old",
			endpointConfig: map[string]any{
				"types":          []any{"EDGE"},
				"vpcEndpointIds": []any{"vpce-1"},
			},
		}
	}
	updates := Map{
		"x-scalar":     map[string]any{"now": "object"},
		"x-new":        []any{1.0, 2.0},
		endpointConfig: map[string]any{"types": []any{"REGIONAL"}},
	}

	once := newTarget()
	Merge(once, updates)

	twice := newTarget()
	Merge(twice, updates)
	Merge(twice, updates)

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("Merge() applied twice differs from once (-once +twice):\n%s", diff)
	}
	want := map[string]any{"keep": []any{"me"}}
	if diff := cmp.Diff(want, twice["x-untouched"]); diff != "" {
		t.Errorf("unrelated key changed (-want +got):\n%s", diff)
	}
}

func TestMergeNilTargetPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Merge() into nil map did not panic")
		}
	}()
	Merge(nil, Map{"k": "v"})
}

func TestGet(t *testing.T) {
	m := Map{
		"obj":    map[string]any{"a": 1},
		"scalar": "s",
	}
	if got, ok := Get(m, "obj"); !ok || got["a"] != 1 {
		t.Errorf("Get(obj) = %v, %v; want object", got, ok)
	}
	if _, ok := Get(m, "scalar"); ok {
		t.Error("Get(scalar) returned ok for a non-object value")
	}
	if _, ok := Get(m, "missing"); ok {
		t.Error("Get(missing) returned ok")
	}
}
