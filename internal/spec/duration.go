package spec

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// Duration is a time.Duration that unmarshals from either a bare number
// (interpreted as milliseconds, the supervisor's native unit) or a Go
// duration string. It marshals back to milliseconds so serialized specs stay
// consumable by the supervisor.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// Milliseconds returns the duration as whole milliseconds.
func (d Duration) Milliseconds() int64 { return time.Duration(d).Milliseconds() }

// ParseDuration accepts "1500", "1500ms", "2s", "1m30s".
// A bare number means milliseconds.
func ParseDuration(s string) (Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Duration(time.Duration(ms) * time.Millisecond), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return Duration(d), nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(d.Milliseconds(), 10)), nil
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := ParseDuration(s)
		if err != nil {
			return err
		}
		*d = v
		return nil
	}
	var ms float64
	if err := json.Unmarshal(b, &ms); err != nil {
		return err
	}
	*d = Duration(time.Duration(ms * float64(time.Millisecond)))
	return nil
}

// UnmarshalText lets Duration work with encoding-aware decoders.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

var durationType = reflect.TypeOf(Duration(0))

// DurationHookFunc decodes config scalars (TOML integers are milliseconds,
// strings go through ParseDuration) into Duration. Wire it into viper via
// viper.DecodeHook together with SizeHookFunc.
func DurationHookFunc() mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != durationType {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return ParseDuration(v)
		case int:
			return Duration(time.Duration(v) * time.Millisecond), nil
		case int32:
			return Duration(time.Duration(v) * time.Millisecond), nil
		case int64:
			return Duration(time.Duration(v) * time.Millisecond), nil
		case float64:
			return Duration(time.Duration(v * float64(time.Millisecond))), nil
		case time.Duration:
			return Duration(v), nil
		default:
			return data, nil
		}
	}
}
