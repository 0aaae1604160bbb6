package dataset

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DayMonthYear is the layout used whenever a date is rendered as text.
const DayMonthYear = "02-01-2006"

type Kind int

const (
	KindNull Kind = iota
	KindText
	KindDate
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindDate:
		return "date"
	case KindNumber:
		return "number"
	}

	return "unknown"
}

// Value is a single cell. The zero Value is Null.
type Value struct {
	kind Kind
	text string
	date time.Time
	num  decimal.Decimal
}

func Null() Value {
	return Value{}
}

func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Date truncates t to a calendar day in UTC.
func Date(t time.Time) Value {
	return Value{kind: KindDate, date: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

func Number(d decimal.Decimal) Value {
	return Value{kind: KindNumber, num: d}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// IsBlank reports whether the value is Null or whitespace-only text.
func (v Value) IsBlank() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindText:
		return strings.TrimSpace(v.text) == ""
	}

	return false
}

// Text renders the value as text. Dates use DayMonthYear and Null renders empty.
func (v Value) Text() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindDate:
		return v.date.Format(DayMonthYear)
	case KindNumber:
		return v.num.String()
	}

	return ""
}

func (v Value) String() string {
	return v.Text()
}

func (v Value) Time() (time.Time, bool) {
	if v.kind != KindDate {
		return time.Time{}, false
	}

	return v.date, true
}

func (v Value) Decimal() (decimal.Decimal, bool) {
	if v.kind != KindNumber {
		return decimal.Zero, false
	}

	return v.num, true
}

func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}

	switch v.kind {
	case KindText:
		return v.text == o.text
	case KindDate:
		return v.date.Equal(o.date)
	case KindNumber:
		return v.num.Equal(o.num)
	}

	return true
}
