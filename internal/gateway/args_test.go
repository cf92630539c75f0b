package gateway

import (
	"net/http"
	"reflect"
	"testing"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    Args
		wantErr bool
	}{
		{
			name: "flatArguments",
			body: `{"order_id": "A1"}`,
			want: Args{"order_id": "A1"},
		},
		{
			name: "wrappedArguments",
			body: `{"args": {"order_id": "A1"}}`,
			want: Args{"order_id": "A1"},
		},
		{
			name: "topLevelWinsOverWrapped",
			body: `{"order_id": "A1", "args": {"order_id": "A2"}}`,
			want: Args{"order_id": "A1"},
		},
		{
			name: "emptyTopLevelFallsBackToWrapped",
			body: `{"order_id": "", "args": {"order_id": "A2"}}`,
			want: Args{"order_id": "A2"},
		},
		{
			name: "nullTopLevelFallsBackToWrapped",
			body: `{"order_id": null, "args": {"order_id": "A2"}}`,
			want: Args{"order_id": "A2"},
		},
		{
			name: "mergedKeys",
			body: `{"reason": "late", "args": {"order_id": "A1"}}`,
			want: Args{"order_id": "A1", "reason": "late"},
		},
		{
			name: "emptyBody",
			body: "",
			want: Args{},
		},
		{
			name: "whitespaceBody",
			body: "  \n",
			want: Args{},
		},
		{
			name:    "invalidJSON",
			body:    `{"order_id":`,
			wantErr: true,
		},
		{
			name:    "nonObjectBody",
			body:    `[1, 2]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseArgs([]byte(tt.body))
			if tt.wantErr {
				if err == nil {
					t.Fatal("ParseArgs() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseArgs() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Both supported shapes must resolve to the identical argument set.
func TestParseArgsShapeEquivalence(t *testing.T) {
	flat, err := ParseArgs([]byte(`{"order_id": "A1"}`))
	if err != nil {
		t.Fatalf("ParseArgs(flat) error: %v", err)
	}
	wrapped, err := ParseArgs([]byte(`{"args": {"order_id": "A1"}}`))
	if err != nil {
		t.Fatalf("ParseArgs(wrapped) error: %v", err)
	}
	if !reflect.DeepEqual(flat, wrapped) {
		t.Errorf("flat %v != wrapped %v", flat, wrapped)
	}
}

func TestDecodeCall(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantName string
		wantArgs Args
		wantErr  bool
	}{
		{
			name:     "functionWithWrappedArgs",
			body:     `{"function": "cancel_order", "args": {"order_id": "A1"}}`,
			wantName: "cancel_order",
			wantArgs: Args{"order_id": "A1"},
		},
		{
			name:     "functionWithFlatArgs",
			body:     `{"function": "cancel_order", "order_id": "A1"}`,
			wantName: "cancel_order",
			wantArgs: Args{"order_id": "A1"},
		},
		{
			name:     "missingFunction",
			body:     `{"order_id": "A1"}`,
			wantName: "",
			wantArgs: Args{"order_id": "A1"},
		},
		{
			name:    "invalidJSON",
			body:    `not json`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, args, err := DecodeCall([]byte(tt.body))
			if tt.wantErr {
				if err == nil {
					t.Fatal("DecodeCall() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeCall() unexpected error: %v", err)
			}
			if name != tt.wantName {
				t.Errorf("function = %q, want %q", name, tt.wantName)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
			if _, leaked := args["function"]; leaked {
				t.Error("function key leaked into args")
			}
		})
	}
}

func TestArgsString(t *testing.T) {
	args := Args{"s": "text", "n": float64(7), "b": true, "nil": nil}

	if got := args.String("s"); got != "text" {
		t.Errorf("String(s) = %q", got)
	}
	if got := args.String("n"); got != "7" {
		t.Errorf("String(n) = %q", got)
	}
	if got := args.String("b"); got != "true" {
		t.Errorf("String(b) = %q", got)
	}
	if got := args.String("nil"); got != "" {
		t.Errorf("String(nil) = %q", got)
	}
	if got := args.String("absent"); got != "" {
		t.Errorf("String(absent) = %q", got)
	}
}

func TestArgsRequire(t *testing.T) {
	tests := []struct {
		name    string
		args    Args
		keys    []string
		wantKey string
	}{
		{"allPresent", Args{"a": "1", "b": "2"}, []string{"a", "b"}, ""},
		{"absentKey", Args{"a": "1"}, []string{"a", "b"}, "b"},
		{"emptyString", Args{"a": ""}, []string{"a"}, "a"},
		{"nullValue", Args{"a": nil}, []string{"a"}, "a"},
		{"noRequirements", Args{}, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cerr := tt.args.Require(tt.keys...)
			if tt.wantKey == "" {
				if cerr != nil {
					t.Fatalf("Require() = %v, want nil", cerr)
				}
				return
			}
			if cerr == nil {
				t.Fatal("Require() = nil, want error")
			}
			if cerr.Code != http.StatusBadRequest {
				t.Errorf("Code = %d, want %d", cerr.Code, http.StatusBadRequest)
			}
			want := "missing required argument: " + tt.wantKey
			if cerr.Message != want {
				t.Errorf("Message = %q, want %q", cerr.Message, want)
			}
		})
	}
}
