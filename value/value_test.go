package value

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestWideningEmpty(t *testing.T) {
	assert.True(t, From("").IsEmpty())
	assert.True(t, From("   ").IsEmpty())
	assert.True(t, From(nil).IsEmpty())
}

func TestWideningPrimitives(t *testing.T) {
	assert.Equal(t, Number, From(42).Kind())
	assert.Equal(t, Bool, From(true).Kind())
	assert.Equal(t, Text, From("hi").Kind())
	assert.True(t, From(42).Number().Equal(decimal.NewFromInt(42)))
}

func TestErrorKindCodes(t *testing.T) {
	cases := map[ErrorKind]string{
		Div0:     "#DIV/0!",
		NA:       "#N/A",
		Name:     "#NAME?",
		Null:     "#NULL!",
		Num:      "#NUM!",
		Ref:      "#REF!",
		ValueErr: "#VALUE!",
	}
	for k, want := range cases {
		assert.Equal(t, want, k.String())
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, NewNumberFromInt(1).Equal(NewNumberFromInt(1)))
	assert.False(t, NewNumberFromInt(1).Equal(NewNumberFromInt(2)))
	assert.True(t, NewEmpty().Equal(NewEmpty()))
	assert.False(t, NewText("a").Equal(NewNumberFromInt(1)))
}

func TestRichTextPlainText(t *testing.T) {
	v := NewRichText([]RichRun{{Text: "Hello "}, {Text: "World", FontKey: "bold"}})
	assert.Equal(t, "Hello World", v.PlainText())
}

func TestFormulaCachedValue(t *testing.T) {
	cached := NewNumberFromInt(5)
	f := NewFormula("=1+4", &cached)
	assert.Equal(t, Formula, f.Kind())
	assert.Equal(t, "=1+4", f.FormulaText())
	assert.True(t, f.CachedValue().Equal(cached))
}

func TestSerialAfterMarch1900LeapBug(t *testing.T) {
	v := NewDateTime(time.Date(1900, time.March, 2, 0, 0, 0, 0, time.UTC))
	// Excel's serial for 1900-03-02 is 62 (it believes 1900-02-29 existed).
	assert.Equal(t, "62", v.Serial().String())
}
