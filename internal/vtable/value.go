package vtable

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Value is a single cell as delivered by the data source: nil, a scalar,
// or a binary blob ([]byte).
type Value = any

// NullText is how nil cells are displayed.
const NullText = "NULL"

// Stringify returns the text used for search, filtering and lexicographic
// comparison. Nil values stringify to "" so they never match a search.
func Stringify(v Value) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return BlobLabel(val)
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

// DisplayText is Stringify with NULL rendered visibly.
func DisplayText(v Value) string {
	if v == nil {
		return NullText
	}
	return Stringify(v)
}

// BlobLabel describes a binary value. Blobs that sniff as a known image
// format are labeled with their MIME type; anything else gets the generic
// blob indicator.
func BlobLabel(b []byte) string {
	size := humanize.Bytes(uint64(len(b)))
	if kind := ClassifyBlob(b); kind != "" {
		return fmt.Sprintf("[%s %s]", kind, size)
	}
	return fmt.Sprintf("[BLOB %s]", size)
}

// ClassifyBlob returns the image MIME type of b, or "" when b is not a
// recognized image.
func ClassifyBlob(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	ct := http.DetectContentType(b)
	if strings.HasPrefix(ct, "image/") {
		return ct
	}
	return ""
}

// numeric reports v as a float when it is a number or a string that
// parses as a finite number.
func numeric(v Value) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case float32:
		return float64(val), true
	case float64:
		if math.IsNaN(val) {
			return 0, false
		}
		return val, true
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Comparator orders cell values. Nil sorts first, numbers compare
// numerically and sort before everything else, the rest by collation with
// a byte-order tie break.
// A Comparator is not safe for concurrent use.
type Comparator struct {
	col *collate.Collator
}

// NewComparator returns a comparator using locale-neutral collation.
func NewComparator() *Comparator {
	return &Comparator{col: collate.New(language.Und)}
}

// Compare returns -1, 0 or 1.
func (c *Comparator) Compare(a, b Value) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}

	if ba, ok := a.([]byte); ok {
		if bb, ok := b.([]byte); ok {
			return bytes.Compare(ba, bb)
		}
	}

	fa, okA := numeric(a)
	fb, okB := numeric(b)
	switch {
	case okA && okB:
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	case okA:
		return -1
	case okB:
		return 1
	}

	sa, sb := Stringify(a), Stringify(b)
	if r := c.col.CompareString(sa, sb); r != 0 {
		return r
	}
	return strings.Compare(sa, sb)
}

// CompareValues compares a and b with a fresh Comparator.
func CompareValues(a, b Value) int {
	return NewComparator().Compare(a, b)
}
