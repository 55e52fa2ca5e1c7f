package spec

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Size is a byte count parsed from supervisor-style size strings: "300M",
// "1G", "512K", "150MB", or a bare number of bytes. Suffixes are binary
// multiples spelled the way process supervisors spell them.
type Size int64

const (
	kilobyte = 1 << 10
	megabyte = 1 << 20
	gigabyte = 1 << 30
)

// ParseSize parses a size string. Empty input means zero (no limit).
func ParseSize(s string) (Size, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return 0, nil
	}
	upper := strings.ToUpper(t)
	upper = strings.TrimSuffix(upper, "B")
	mult := int64(1)
	switch {
	case strings.HasSuffix(upper, "K"):
		mult = kilobyte
		upper = strings.TrimSuffix(upper, "K")
	case strings.HasSuffix(upper, "M"):
		mult = megabyte
		upper = strings.TrimSuffix(upper, "M")
	case strings.HasSuffix(upper, "G"):
		mult = gigabyte
		upper = strings.TrimSuffix(upper, "G")
	}
	upper = strings.TrimSpace(upper)
	if upper == "" {
		return 0, fmt.Errorf("invalid size %q: missing numeric part", s)
	}
	n, err := strconv.ParseFloat(upper, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid size %q: negative", s)
	}
	return Size(n * float64(mult)), nil
}

// String renders the size the way a supervisor config spells it, using the
// largest suffix that divides it evenly.
func (z Size) String() string {
	v := int64(z)
	switch {
	case v == 0:
		return "0"
	case v%gigabyte == 0:
		return strconv.FormatInt(v/gigabyte, 10) + "G"
	case v%megabyte == 0:
		return strconv.FormatInt(v/megabyte, 10) + "M"
	case v%kilobyte == 0:
		return strconv.FormatInt(v/kilobyte, 10) + "K"
	default:
		return strconv.FormatInt(v, 10)
	}
}

func (z Size) Bytes() int64 { return int64(z) }

func (z Size) MarshalJSON() ([]byte, error) {
	if z == 0 {
		return []byte("0"), nil
	}
	return json.Marshal(z.String())
}

func (z *Size) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := ParseSize(s)
		if err != nil {
			return err
		}
		*z = v
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("invalid size %d: negative", n)
	}
	*z = Size(n)
	return nil
}

func (z *Size) UnmarshalText(b []byte) error {
	v, err := ParseSize(string(b))
	if err != nil {
		return err
	}
	*z = v
	return nil
}

var sizeType = reflect.TypeOf(Size(0))

// SizeHookFunc decodes config scalars into Size for viper/mapstructure.
func SizeHookFunc() mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != sizeType {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return ParseSize(v)
		case int:
			return Size(v), nil
		case int32:
			return Size(v), nil
		case int64:
			return Size(v), nil
		case float64:
			return Size(v), nil
		default:
			return data, nil
		}
	}
}
