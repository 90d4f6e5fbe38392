package shard

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// TokenMagic is the first field of every shard token. The trailing digit
// is the format version.
const TokenMagic = "shardwise1"

// ErrStructuralDecode is returned when a candidate token cannot be
// parsed at all: wrong magic, missing required fields, non-numeric
// numbers, or an undecodable payload.
var ErrStructuralDecode = errors.New("malformed shard token")

var payloadEncoding = base64.RawURLEncoding

// Encode serializes a record into its single-line token form. The
// output field order is fixed; Decode(Encode(r)) == r for every valid
// record.
func Encode(r Record) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s i=%d t=%d n=%d p=%s",
		TokenMagic, r.OrdinalIndex, r.Threshold, r.TotalCount,
		payloadEncoding.EncodeToString(r.Payload)), nil
}

// Decode parses a token back into a record. Unknown k=v fields are
// ignored for forward compatibility. When the token parses structurally
// but violates the record invariants, the partially decoded record is
// returned alongside ErrRecordInvalid so callers can still inspect the
// claimed threshold.
func Decode(token string) (Record, error) {
	fields := strings.Fields(strings.TrimSpace(token))
	if len(fields) == 0 || fields[0] != TokenMagic {
		return Record{}, fmt.Errorf("%w: missing %q magic", ErrStructuralDecode, TokenMagic)
	}

	var rec Record
	seen := make(map[string]bool, 4)
	for _, field := range fields[1:] {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			return Record{}, fmt.Errorf("%w: field %q is not key=value", ErrStructuralDecode, field)
		}
		if seen[key] {
			return Record{}, fmt.Errorf("%w: duplicate field %q", ErrStructuralDecode, key)
		}
		seen[key] = true

		switch key {
		case "i", "t", "n":
			num, err := strconv.Atoi(value)
			if err != nil {
				return Record{}, fmt.Errorf("%w: field %q is not numeric: %q", ErrStructuralDecode, key, value)
			}
			switch key {
			case "i":
				rec.OrdinalIndex = num
			case "t":
				rec.Threshold = num
			case "n":
				rec.TotalCount = num
			}
		case "p":
			payload, err := payloadEncoding.DecodeString(value)
			if err != nil {
				return Record{}, fmt.Errorf("%w: undecodable payload: %v", ErrStructuralDecode, err)
			}
			rec.Payload = payload
		default:
			// Unknown field from a newer encoder; skip.
		}
	}

	for _, required := range []string{"i", "t", "n", "p"} {
		if !seen[required] {
			return Record{}, fmt.Errorf("%w: missing required field %q", ErrStructuralDecode, required)
		}
	}

	if err := rec.Validate(); err != nil {
		return rec, err
	}
	return rec, nil
}

// IsToken reports whether the line parses as a fully valid shard token.
func IsToken(line string) bool {
	_, err := Decode(line)
	return err == nil
}
