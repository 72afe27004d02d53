package storage

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeSeen(t *testing.T) {
	// Firestore hands arrays back as []interface{}, so decoding has to check
	// every element.
	tests := []struct {
		name     string
		data     map[string]interface{}
		want     []string
		wantFail bool
	}{
		{
			name: "string array",
			data: map[string]interface{}{"ids": []interface{}{"imgA", "imgB"}},
			want: []string{"imgA", "imgB"},
		},
		{
			name: "missing field",
			data: map[string]interface{}{"updatedAt": "x"},
		},
		{
			name: "null field",
			data: map[string]interface{}{"ids": nil},
		},
		{
			name:     "not an array",
			data:     map[string]interface{}{"ids": "imgA"},
			wantFail: true,
		},
		{
			name:     "mixed element types",
			data:     map[string]interface{}{"ids": []interface{}{"imgA", int64(3)}},
			wantFail: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeSeen(tt.data)
			if (err != nil) != tt.wantFail {
				t.Fatalf("decodeSeen() error = %v, wantFail = %v", err, tt.wantFail)
			}
			if diff := cmp.Diff(tt.want, got); !tt.wantFail && diff != "" {
				t.Errorf("decodeSeen() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
