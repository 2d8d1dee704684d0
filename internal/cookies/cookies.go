// File: internal/cookies/cookies.go
package cookies

import (
	"encoding/json"
	"errors"
	"fmt"
	iofs "io/fs"
	"math"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/afero"
)

// Record is one cookie as exported by the browser. Fields are passed through
// untouched except for the ones Normalize rewrites.
type Record map[string]any

// Well-known record keys.
const (
	KeyName     = "name"
	KeyValue    = "value"
	KeyDomain   = "domain"
	KeyPath     = "path"
	KeyExpiry   = "expiry"
	KeyHTTPOnly = "httpOnly"
	KeySecure   = "secure"
	KeySameSite = "sameSite"
)

var codec = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// Name returns the cookie name, or "unknown" when it is missing.
func (r Record) Name() string {
	if s, ok := r[KeyName].(string); ok && s != "" {
		return s
	}
	return "unknown"
}

// String returns the string value stored under key, or "".
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Bool returns the boolean stored under key, or false.
func (r Record) Bool(key string) bool {
	b, _ := r[key].(bool)
	return b
}

// Expiry returns the integer expiry and whether one is set.
func (r Record) Expiry() (int64, bool) {
	v, ok := r[KeyExpiry]
	if !ok {
		return 0, false
	}
	n, err := toInt(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Normalize prepares a saved record for injection into the current page:
// domain and sameSite are dropped so the browser assigns the current domain,
// and expiry is coerced to an integer. The receiver is not modified.
func (r Record) Normalize() (Record, error) {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	delete(out, KeyDomain)
	delete(out, KeySameSite)

	if v, ok := out[KeyExpiry]; ok {
		n, err := toInt(v)
		if err != nil {
			return nil, fmt.Errorf("cookie %q has an invalid expiry: %w", r.Name(), err)
		}
		out[KeyExpiry] = n
	}
	return out, nil
}

// toInt truncates any numeric representation to an int64.
func toInt(v any) (int64, error) {
	switch n := v.(type) {
	case float64:
		return floatToInt(n)
	case float32:
		return floatToInt(float64(n))
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, err
		}
		return floatToInt(f)
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", n)
		}
		return floatToInt(f)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64", u)
		}
		return int64(u), nil
	}
	return 0, fmt.Errorf("unsupported type %T", v)
}

func floatToInt(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("%v is out of range", f)
	}
	return int64(f), nil
}

// Save writes the records as an indented JSON array, creating parent
// directories as needed.
func Save(fs afero.Fs, path string, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	data, err := codec.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode cookies: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := afero.WriteFile(fs, path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write cookies to %s: %w", path, err)
	}
	return nil
}

// Load reads a cookie file written by Save or by any tool that exports a JSON
// array of cookie objects. A missing file yields an error matching os.ErrNotExist.
func Load(fs afero.Fs, path string) ([]Record, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies from %s: %w", path, err)
	}
	var records []Record
	if err := codec.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode cookies from %s: %w", path, err)
	}
	return records, nil
}

// IsNotExist reports whether err came from a missing cookie file.
func IsNotExist(err error) bool {
	return errors.Is(err, iofs.ErrNotExist)
}
