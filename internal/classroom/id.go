package classroom

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID identifies a record within its collection. It is minted from the clock and
// compared numerically, but clients often send it as a string (route params,
// form values), so decoding accepts both.
type ID int64

// ParseID parses a decimal identifier.
func ParseID(s string) (ID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return ID(n), nil
}

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*id = 0
			return nil
		}
		parsed, err := ParseID(s)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	}

	var f json.Number
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid id %s", data)
	}
	if n, err := f.Int64(); err == nil {
		*id = ID(n)
		return nil
	}
	fl, err := f.Float64()
	if err != nil {
		return fmt.Errorf("invalid id %s", data)
	}
	*id = ID(int64(fl))
	return nil
}
