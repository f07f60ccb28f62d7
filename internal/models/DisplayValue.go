package models

import (
	"bytes"
	"errors"
	json "github.com/goccy/go-json"
	"github.com/spf13/cast"
)

// DisplayValue is a loosely typed listing field (area, hive capacity) that
// arrives either as a JSON string or a JSON number and is shown verbatim.
type DisplayValue struct {
	text   string
	number bool
}

func NewDisplayText(s string) DisplayValue {
	return DisplayValue{text: s}
}

func NewDisplayNumber(n int) DisplayValue {
	return DisplayValue{text: cast.ToString(n), number: true}
}

func (d DisplayValue) String() string {
	return d.text
}

func (d DisplayValue) IsZero() bool {
	return d.text == ""
}

// Int is the lenient numeric reading of the value, see LenientInt.
func (d DisplayValue) Int() int {
	return LenientInt(d.text)
}

func (d DisplayValue) MarshalJSON() ([]byte, error) {
	if d.number {
		return []byte(d.text), nil
	}
	return json.Marshal(d.text)
}

func (d *DisplayValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*d = DisplayValue{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = DisplayValue{text: s}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("display value must be a string or a number")
	}
	*d = DisplayValue{text: n.String(), number: true}
	return nil
}
