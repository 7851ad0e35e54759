package mnoda

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseDatum(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		json     string
		wantType ValueType
		want     Datum
	}{
		{
			name:     "string",
			json:     `{"value": "hello"}`,
			wantType: TypeString,
			want:     NewString("hello"),
		},
		{
			name:     "scalar",
			json:     `{"value": 3.5}`,
			wantType: TypeScalar,
			want:     NewScalar(3.5),
		},
		{
			name:     "string array",
			json:     `{"value": ["a", "b"]}`,
			wantType: TypeStringArray,
			want:     NewStringArray([]string{"a", "b"}),
		},
		{
			name:     "scalar array",
			json:     `{"value": [1, 2.5, -3]}`,
			wantType: TypeScalarArray,
			want:     NewScalarArray([]float64{1, 2.5, -3}),
		},
		{
			name:     "empty array is scalar array",
			json:     `{"value": []}`,
			wantType: TypeScalarArray,
			want:     NewScalarArray(nil),
		},
		{
			name:     "units and tags",
			json:     `{"value": 12, "units": "cm", "tags": ["input", "geometry"]}`,
			wantType: TypeScalar,
			want: func() Datum {
				d := NewScalar(12)
				d.Units = "cm"
				d.Tags = []string{"input", "geometry"}
				return d
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseDatum(parseJSON(t, tt.json))
			if err != nil {
				t.Fatalf("ParseDatum: %v", err)
			}
			if got.Type() != tt.wantType {
				t.Errorf("Type() = %v, want %v", got.Type(), tt.wantType)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseDatum = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseDatumErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		json    string
		wantErr error
		wantMsg string
	}{
		{
			name:    "missing value",
			json:    `{"units": "cm"}`,
			wantErr: ErrMissingField,
			wantMsg: "'value'",
		},
		{
			name:    "null value",
			json:    `{"value": null}`,
			wantErr: ErrMissingField,
			wantMsg: "'value'",
		},
		{
			name:    "object value",
			json:    `{"value": {"a": 1}}`,
			wantErr: ErrMissingField,
			wantMsg: "found object",
		},
		{
			name:    "boolean value",
			json:    `{"value": true}`,
			wantErr: ErrMissingField,
			wantMsg: "found boolean",
		},
		{
			name:    "numbers then string",
			json:    `{"value": [1, "two", 3]}`,
			wantErr: ErrMixedArray,
			wantMsg: "only strings or only numbers",
		},
		{
			name:    "strings then number",
			json:    `{"value": ["one", 2]}`,
			wantErr: ErrMixedArray,
			wantMsg: "only strings or only numbers",
		},
		{
			name:    "array of objects",
			json:    `{"value": [{}]}`,
			wantErr: ErrMixedArray,
		},
		{
			name:    "non-string tag",
			json:    `{"value": 1, "tags": ["ok", 2]}`,
			wantErr: ErrTypeMismatch,
			wantMsg: "'tags'",
		},
		{
			name:    "tags not an array",
			json:    `{"value": 1, "tags": "ok"}`,
			wantErr: ErrTypeMismatch,
			wantMsg: "'tags'",
		},
		{
			name:    "units not a string",
			json:    `{"value": 1, "units": 5}`,
			wantErr: ErrTypeMismatch,
			wantMsg: "'units'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseDatum(parseJSON(t, tt.json))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want errors.Is %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantMsg)
			}
			var fe *FieldError
			if !errors.As(err, &fe) {
				t.Fatalf("error %T is not a *FieldError", err)
			}
			if fe.Context != "data" {
				t.Errorf("Context = %q, want %q", fe.Context, "data")
			}
		})
	}
}

func TestDatumToNode(t *testing.T) {
	t.Parallel()

	withExtras := NewStringArray([]string{"x", "y"})
	withExtras.Units = "m"
	withExtras.Tags = []string{"t1"}

	tests := []struct {
		name string
		d    Datum
		want string
	}{
		{name: "string", d: NewString("v"), want: `{"value": "v"}`},
		{name: "scalar", d: NewScalar(2), want: `{"value": 2}`},
		{name: "string array", d: NewStringArray([]string{"a"}), want: `{"value": ["a"]}`},
		{name: "scalar array", d: NewScalarArray([]float64{1, 2}), want: `{"value": [1, 2]}`},
		{name: "nil scalar array", d: NewScalarArray(nil), want: `{"value": []}`},
		{name: "units and tags", d: withExtras, want: `{"value": ["x", "y"], "units": "m", "tags": ["t1"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assertTree(t, tt.d.ToNode(), tt.want)
		})
	}
}

func TestDatumRoundTrip(t *testing.T) {
	t.Parallel()

	tagged := NewScalarArray([]float64{0.5, 1.5})
	tagged.Units = "s"
	tagged.Tags = []string{"output", "timing"}

	values := []Datum{
		NewString("text"),
		NewString(""),
		NewScalar(-1e9),
		NewStringArray([]string{"a", "b", "c"}),
		NewScalarArray([]float64{1, 2, 3}),
		NewScalarArray([]float64{}),
		tagged,
	}
	for _, d := range values {
		got, err := ParseDatum(d.ToNode())
		if err != nil {
			t.Fatalf("ParseDatum(%+v.ToNode()): %v", d, err)
		}
		if !cmp.Equal(got, d) {
			t.Errorf("round trip of %+v gave %+v", d, got)
		}
	}
}

func TestEmptyStringArrayBecomesScalarArray(t *testing.T) {
	t.Parallel()

	got, err := ParseDatum(NewStringArray(nil).ToNode())
	if err != nil {
		t.Fatalf("ParseDatum: %v", err)
	}
	if got.Type() != TypeScalarArray {
		t.Errorf("Type() = %v, want %v", got.Type(), TypeScalarArray)
	}
	if len(got.ScalarArrayValue()) != 0 {
		t.Errorf("ScalarArrayValue() = %v, want empty", got.ScalarArrayValue())
	}
}

func TestNewArrayCopiesInput(t *testing.T) {
	t.Parallel()

	values := []float64{1, 2}
	d := NewScalarArray(values)
	values[0] = 99
	if d.ScalarArrayValue()[0] != 1 {
		t.Errorf("Datum shares backing array with caller: %v", d.ScalarArrayValue())
	}
}
