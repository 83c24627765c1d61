package vtable

// TableKind distinguishes what a table shows.
type TableKind int

const (
	TableKindData TableKind = iota
	TableKindQuery
	// TableKindSchema tables list column metadata. They are small and
	// static and are never virtualized.
	TableKindSchema
)

func (k TableKind) String() string {
	switch k {
	case TableKindQuery:
		return "query"
	case TableKindSchema:
		return "schema"
	default:
		return "data"
	}
}

// Override forces virtualization on or off regardless of volume.
type Override int

const (
	OverrideAuto Override = iota
	OverrideOn
	OverrideOff
)

// Thresholds are the volume limits above which a table virtualizes.
type Thresholds struct {
	MinRows  int
	MinCells int
}

// DefaultThresholds returns the stock limits.
func DefaultThresholds() Thresholds {
	return Thresholds{MinRows: 300, MinCells: 12000}
}

// ShouldVirtualize decides once, at table creation, whether a table
// renders through a moving window.
func ShouldVirtualize(rowCount, columnCount int, kind TableKind, override Override, th Thresholds) bool {
	switch override {
	case OverrideOn:
		return true
	case OverrideOff:
		return false
	}
	if kind == TableKindSchema {
		return false
	}
	if th.MinRows > 0 && rowCount >= th.MinRows {
		return true
	}
	return th.MinCells > 0 && rowCount*columnCount >= th.MinCells
}
