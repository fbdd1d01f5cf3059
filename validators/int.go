package validators

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// trailingZeros matches an integral decimal tail such as "10.0".
var trailingZeros = regexp.MustCompile(`\.0*\s*$`)

// Int is an integer request field that also accepts numeric strings.
// Values that are not integers decode without error and leave Valid false,
// so ValidateRecipe can report them next to every other field error.
type Int struct {
	Value int
	Valid bool
}

// NewInt returns a valid Int holding v.
func NewInt(v int) Int {
	return Int{Value: v, Valid: true}
}

func (i *Int) UnmarshalJSON(data []byte) error {
	*i = Int{}
	raw := string(bytes.TrimSpace(data))
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
	}
	n, err := strconv.Atoi(trailingZeros.ReplaceAllString(raw, ""))
	if err != nil {
		return nil
	}
	i.Value, i.Valid = n, true
	return nil
}
