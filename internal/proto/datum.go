package proto

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sysdb/sysdbd/internal/errors"
)

// DatumType tags the variant held by a Datum.
type DatumType uint32

const (
	TypeNull DatumType = iota
	TypeInteger
	TypeDecimal
	TypeString
	TypeDatetime
	TypeBinary
)

// ArrayFlag composes with any scalar DatumType via bitwise OR to mark
// an array-of-that-type datum.
const ArrayFlag DatumType = 1 << 8

// Datum is a tagged value of one of five scalar types, or Null, with an
// optional array flag. Copies are deep; zero value is Null.
type Datum struct {
	Type    DatumType
	Integer int64
	Decimal float64
	String  string
	Time    time.Time
	Binary  []byte
	Array   []Datum
}

// Scalar returns the type with the array flag stripped.
func (d Datum) Scalar() DatumType {
	return d.Type &^ ArrayFlag
}

// IsArray reports whether the array flag is set.
func (d Datum) IsArray() bool {
	return d.Type&ArrayFlag != 0
}

// Copy returns a deep copy of d.
func (d Datum) Copy() Datum {
	cp := d
	if d.Binary != nil {
		cp.Binary = append([]byte(nil), d.Binary...)
	}
	if d.Array != nil {
		cp.Array = make([]Datum, len(d.Array))
		for i, e := range d.Array {
			cp.Array[i] = e.Copy()
		}
	}
	return cp
}

// Free is a documented no-op retained for API symmetry with the
// reference C client library, where Datum values owned explicit
// heap memory. Go's garbage collector makes an explicit release
// unnecessary.
func (d Datum) Free() {}

// StrlenEstimate returns an estimate, in bytes, of the formatted length
// of d — useful for callers pre-sizing a reply buffer.
func (d Datum) StrlenEstimate() int {
	if d.IsArray() {
		n := 2
		for _, e := range d.Array {
			n += e.StrlenEstimate() + 2
		}
		return n
	}
	switch d.Scalar() {
	case TypeNull:
		return 4
	case TypeInteger:
		return 20
	case TypeDecimal:
		return 24
	case TypeString:
		return len(d.String) + 2
	case TypeDatetime:
		return 25
	case TypeBinary:
		return len(d.Binary)*2 + 3
	default:
		return 0
	}
}

// Format renders d in the canonical textual form used by QUERY replies
// and JSON attribute values: integers as plain decimal, decimals with
// 17 significant digits, strings double-quoted and escaped, datetimes
// as UTC "YYYY-MM-DD HH:MM:SS +0000", binary as hex prefixed by x"...",
// arrays as comma-space-joined elements inside brackets.
func (d Datum) Format() string {
	if d.IsArray() {
		parts := make([]string, len(d.Array))
		for i, e := range d.Array {
			parts[i] = e.Format()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}

	switch d.Scalar() {
	case TypeNull:
		return "NULL"
	case TypeInteger:
		return strconv.FormatInt(d.Integer, 10)
	case TypeDecimal:
		return strconv.FormatFloat(d.Decimal, 'g', 17, 64)
	case TypeString:
		return formatQuotedString(d.String)
	case TypeDatetime:
		return d.Time.UTC().Format("2006-01-02 15:04:05 -0700")
	case TypeBinary:
		return "x\"" + fmt.Sprintf("%x", d.Binary) + "\""
	default:
		return ""
	}
}

func formatQuotedString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString("\\\"")
		case '\\':
			b.WriteString("\\\\")
		case '\n':
			b.WriteString("\\n")
		case '\t':
			b.WriteString("\\t")
		case '\r':
			b.WriteString("\\r")
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, "\\x%02x", r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Compare performs a total, type-aware comparison: Null sorts below
// any value; same-type values compare naturally; mixed scalar types
// fall back to comparing their type ordinal.
func (a Datum) Compare(b Datum) int {
	if a.Scalar() == TypeNull && b.Scalar() == TypeNull {
		return 0
	}
	if a.Scalar() == TypeNull {
		return -1
	}
	if b.Scalar() == TypeNull {
		return 1
	}
	if a.Scalar() != b.Scalar() {
		return compareInt(int(a.Scalar()), int(b.Scalar()))
	}

	switch a.Scalar() {
	case TypeInteger:
		return compareInt64(a.Integer, b.Integer)
	case TypeDecimal:
		return compareFloat(a.Decimal, b.Decimal)
	case TypeString:
		return strings.Compare(a.String, b.String)
	case TypeDatetime:
		switch {
		case a.Time.Before(b.Time):
			return -1
		case a.Time.After(b.Time):
			return 1
		default:
			return 0
		}
	case TypeBinary:
		return strings.Compare(string(a.Binary), string(b.Binary))
	default:
		return 0
	}
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// EncodeDatum appends the wire encoding of d to buf: a u32 type tag
// followed by a type-dependent body. Arrays encode a u32 element count
// followed by each element's body alone; elements carry no type tag of
// their own, their type being the array's tag without ArrayFlag.
func EncodeDatum(buf []byte, d Datum) []byte {
	var typeTag [4]byte
	nbo.PutUint32(typeTag[:], uint32(d.Type))
	buf = append(buf, typeTag[:]...)

	if d.IsArray() {
		var count [4]byte
		nbo.PutUint32(count[:], uint32(len(d.Array)))
		buf = append(buf, count[:]...)
		for _, e := range d.Array {
			buf = encodeDatumBody(buf, e)
		}
		return buf
	}
	return encodeDatumBody(buf, d)
}

func encodeDatumBody(buf []byte, d Datum) []byte {
	switch d.Scalar() {
	case TypeNull:
		return buf
	case TypeInteger:
		var v [8]byte
		nbo.PutUint64(v[:], uint64(d.Integer))
		return append(buf, v[:]...)
	case TypeDecimal:
		var v [8]byte
		nbo.PutUint64(v[:], math.Float64bits(d.Decimal))
		return append(buf, v[:]...)
	case TypeString:
		return encodeCstr(buf, d.String)
	case TypeDatetime:
		var v [8]byte
		nbo.PutUint64(v[:], uint64(d.Time.UnixNano()))
		return append(buf, v[:]...)
	case TypeBinary:
		var l [4]byte
		nbo.PutUint32(l[:], uint32(len(d.Binary)))
		buf = append(buf, l[:]...)
		return append(buf, d.Binary...)
	default:
		return buf
	}
}

// DecodeDatum reads a wire-encoded datum from buf, returning the value
// and the number of bytes consumed.
func DecodeDatum(buf []byte) (Datum, int, error) {
	if err := need(buf, 4, "datum type"); err != nil {
		return Datum{}, 0, err
	}
	typ := DatumType(nbo.Uint32(buf[:4]))
	consumed := 4
	rest := buf[4:]

	if typ&ArrayFlag != 0 {
		if err := need(rest, 4, "datum array length"); err != nil {
			return Datum{}, 0, err
		}
		count := int(nbo.Uint32(rest[:4]))
		consumed += 4
		rest = rest[4:]

		elems := make([]Datum, 0, count)
		elemType := typ &^ ArrayFlag
		for i := 0; i < count; i++ {
			e, n, err := decodeDatumBody(elemType, rest)
			if err != nil {
				return Datum{}, 0, err
			}
			elems = append(elems, e)
			consumed += n
			rest = rest[n:]
		}
		return Datum{Type: typ, Array: elems}, consumed, nil
	}

	d, n, err := decodeDatumBody(typ, rest)
	if err != nil {
		return Datum{}, 0, err
	}
	d.Type = typ
	return d, consumed + n, nil
}

func decodeDatumBody(typ DatumType, buf []byte) (Datum, int, error) {
	switch typ {
	case TypeNull:
		return Datum{Type: TypeNull}, 0, nil
	case TypeInteger:
		if err := need(buf, 8, "integer datum"); err != nil {
			return Datum{}, 0, err
		}
		return Datum{Type: TypeInteger, Integer: int64(nbo.Uint64(buf[:8]))}, 8, nil
	case TypeDecimal:
		if err := need(buf, 8, "decimal datum"); err != nil {
			return Datum{}, 0, err
		}
		return Datum{Type: TypeDecimal, Decimal: math.Float64frombits(nbo.Uint64(buf[:8]))}, 8, nil
	case TypeString:
		s, n, err := decodeCstr(buf)
		if err != nil {
			return Datum{}, 0, err
		}
		return Datum{Type: TypeString, String: s}, n, nil
	case TypeDatetime:
		if err := need(buf, 8, "datetime datum"); err != nil {
			return Datum{}, 0, err
		}
		ns := int64(nbo.Uint64(buf[:8]))
		return Datum{Type: TypeDatetime, Time: time.Unix(0, ns).UTC()}, 8, nil
	case TypeBinary:
		if err := need(buf, 4, "binary datum length"); err != nil {
			return Datum{}, 0, err
		}
		l := int(nbo.Uint32(buf[:4]))
		if err := need(buf[4:], l, "binary datum body"); err != nil {
			return Datum{}, 0, err
		}
		return Datum{Type: TypeBinary, Binary: append([]byte(nil), buf[4:4+l]...)}, 4 + l, nil
	default:
		return Datum{}, 0, errors.WrapWithCode(fmt.Errorf("unknown datum type %d", typ), errors.ErrProtocol, "decoding datum")
	}
}
