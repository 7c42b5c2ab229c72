package value

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// From widens an arbitrary Go primitive into a CellValue, following the
// same type-switch idiom excelize's streaming SetRow uses for inbound row
// data. Unrecognized types fall back to their fmt.Sprint text form.
func From(v interface{}) CellValue {
	switch t := v.(type) {
	case nil:
		return NewEmpty()
	case CellValue:
		return t
	case string:
		return NewText(t)
	case bool:
		return NewBool(t)
	case int:
		return NewNumberFromInt(int64(t))
	case int8:
		return NewNumberFromInt(int64(t))
	case int16:
		return NewNumberFromInt(int64(t))
	case int32:
		return NewNumberFromInt(int64(t))
	case int64:
		return NewNumberFromInt(t)
	case uint:
		return NewNumberFromInt(int64(t))
	case uint8:
		return NewNumberFromInt(int64(t))
	case uint16:
		return NewNumberFromInt(int64(t))
	case uint32:
		return NewNumberFromInt(int64(t))
	case uint64:
		return NewNumberFromInt(int64(t))
	case float32:
		return NewNumberFromFloat(float64(t))
	case float64:
		return NewNumberFromFloat(t)
	case decimal.Decimal:
		return NewNumber(t)
	case time.Time:
		return NewDateTime(t)
	case ErrorKind:
		return NewError(t)
	default:
		return NewText(fmt.Sprint(t))
	}
}
