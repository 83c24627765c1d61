package vtable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldVirtualize(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name     string
		rows     int
		cols     int
		kind     TableKind
		override Override
		want     bool
	}{
		{"small table", 50, 5, TableKindData, OverrideAuto, false},
		{"row threshold", 300, 1, TableKindData, OverrideAuto, true},
		{"just below row threshold", 299, 1, TableKindData, OverrideAuto, false},
		{"cell threshold", 200, 60, TableKindQuery, OverrideAuto, true},
		{"just below cell threshold", 199, 60, TableKindQuery, OverrideAuto, false},
		{"schema never virtualizes", 5000, 10, TableKindSchema, OverrideAuto, false},
		{"force on wins", 1, 1, TableKindSchema, OverrideOn, true},
		{"force off wins", 100000, 40, TableKindData, OverrideOff, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldVirtualize(tt.rows, tt.cols, tt.kind, tt.override, th))
		})
	}
}

func TestShouldVirtualize_CustomThresholds(t *testing.T) {
	th := Thresholds{MinRows: 10, MinCells: 0}
	assert.True(t, ShouldVirtualize(10, 1, TableKindData, OverrideAuto, th))
	assert.False(t, ShouldVirtualize(9, 1000, TableKindData, OverrideAuto, th))
}
