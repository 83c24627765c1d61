package vtable

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompareValues(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want int
	}{
		{"nil first", nil, "a", -1},
		{"nil last", int64(0), nil, 1},
		{"both nil", nil, nil, 0},
		{"numeric", int64(2), int64(10), -1},
		{"numeric strings", "2", "10", -1},
		{"mixed numeric", 2.5, "2.5", 0},
		{"lexicographic", "apple", "banana", -1},
		{"number vs text", "10", "abc", -1},
		{"text after number", "a", "9", 1},
		{"number before text that collates first", int64(10), "!", -1},
		{"times", time.Unix(10, 0), time.Unix(5, 0), 1},
		{"blobs", []byte{1, 2}, []byte{1, 3}, -1},
		{"case tie break is deterministic", "a", "a", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareValues(tt.a, tt.b))
		})
	}
}

func TestCompareValues_Antisymmetric(t *testing.T) {
	values := []Value{nil, "B", "b", "a", int64(3), "3", 2.0, true, []byte("x")}
	for _, a := range values {
		for _, b := range values {
			assert.Equal(t, -CompareValues(b, a), CompareValues(a, b), "%v vs %v", a, b)
		}
	}
}

func TestCompareValues_MixedColumnIsTransitive(t *testing.T) {
	values := []Value{"10", "9", "a", "1a", int64(5), "B", "-3", nil, "0x"}
	for _, a := range values {
		for _, b := range values {
			for _, c := range values {
				if CompareValues(a, b) <= 0 && CompareValues(b, c) <= 0 {
					assert.LessOrEqual(t, CompareValues(a, c), 0, "%v <= %v <= %v", a, b, c)
				}
			}
		}
	}

	rows := [][]Value{{"a"}, {"10"}, {"9"}, {"b"}, {"1"}}
	order := ComputeOrder(rows, "", nil, Sort{Column: 0, Direction: SortAscending})
	assert.Equal(t, []int{4, 2, 1, 0, 3}, order)
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "", Stringify(nil))
	assert.Equal(t, "NULL", DisplayText(nil))
	assert.Equal(t, "42", Stringify(int64(42)))
	assert.Equal(t, "1.5", Stringify(1.5))
	assert.Equal(t, "true", Stringify(true))
	assert.Equal(t, "2024-01-02 03:04:05", Stringify(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))
}

func TestBlobLabel(t *testing.T) {
	png := []byte("\x89PNG\x0D\x0A\x1A\x0A\x00\x00\x00\x0DIHDR")
	assert.Equal(t, "image/png", ClassifyBlob(png))
	assert.Contains(t, BlobLabel(png), "image/png")

	junk := []byte{0x00, 0x01, 0x02, 0x03}
	assert.Equal(t, "", ClassifyBlob(junk))
	assert.Equal(t, "[BLOB 4 B]", BlobLabel(junk))

	assert.Equal(t, "", ClassifyBlob(nil))
}
