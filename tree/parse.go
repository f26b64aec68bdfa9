package tree

import (
	"bytes"
	"fmt"
	"io"

	"github.com/buger/jsonparser"
	"github.com/goccy/go-json"
	platformerrors "github.com/jmgilman/go/errors"
)

var (
	// ErrSyntax is returned for input that is not a single well-formed JSON value.
	ErrSyntax = platformerrors.New(platformerrors.CodeInvalidInput, "invalid JSON")

	// ErrScalarRoot is returned by ParseDocument when the top-level value is
	// not an object or array.
	ErrScalarRoot = platformerrors.New(platformerrors.CodeInvalidInput, "document root is not an object or array")
)

// Parse decodes data into a Node tree.
func Parse(data []byte) (Node, error) {
	// jsonparser is lenient about malformed input, so validate up front.
	if err := validate(data); err != nil {
		return nil, err
	}
	data = replaceLoneSurrogates(data)
	value, typ, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return build(value, typ)
}

// validate checks that data holds exactly one JSON value. Numbers are kept
// as json.Number so out-of-range exponents such as 1e400 are not rejected;
// their grammar is checked by build.
func validate(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	if err := dec.Decode(&v); err != io.EOF {
		return fmt.Errorf("%w: trailing data after value", ErrSyntax)
	}
	return nil
}

// ParseDocument decodes data and requires the root to be a container.
func ParseDocument(data []byte) (Node, error) {
	root, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if !IsContainer(root) {
		return nil, fmt.Errorf("%w: got %s", ErrScalarRoot, root.Kind())
	}
	return root, nil
}

func build(value []byte, typ jsonparser.ValueType) (Node, error) {
	switch typ {
	case jsonparser.Object:
		obj := NewObject()
		err := jsonparser.ObjectEach(value, func(key, v []byte, t jsonparser.ValueType, _ int) error {
			child, err := build(v, t)
			if err != nil {
				return err
			}
			// key is already unescaped and points into a scratch buffer
			obj.Set(string(key), child)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		return obj, nil

	case jsonparser.Array:
		arr := NewArray()
		var inner error
		_, err := jsonparser.ArrayEach(value, func(v []byte, t jsonparser.ValueType, _ int, err error) {
			if inner != nil {
				return
			}
			if err != nil {
				inner = err
				return
			}
			child, err := build(v, t)
			if err != nil {
				inner = err
				return
			}
			arr.Append(child)
		})
		if err == nil {
			err = inner
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		return arr, nil

	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		return String(s), nil

	case jsonparser.Number:
		if !validNumber(value) {
			return nil, fmt.Errorf("%w: invalid number %q", ErrSyntax, value)
		}
		return Number(string(value)), nil

	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		return Bool(b), nil

	case jsonparser.Null:
		return Null{}, nil
	}
	return nil, fmt.Errorf("%w: unexpected value type %s", ErrSyntax, typ)
}

// validNumber reports whether lit matches the JSON number grammar:
// -?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?
func validNumber(lit []byte) bool {
	i := 0
	if i < len(lit) && lit[i] == '-' {
		i++
	}
	switch {
	case i < len(lit) && lit[i] == '0':
		i++
	case i < len(lit) && lit[i] >= '1' && lit[i] <= '9':
		i = digits(lit, i)
	default:
		return false
	}
	if i < len(lit) && lit[i] == '.' {
		j := digits(lit, i+1)
		if j == i+1 {
			return false
		}
		i = j
	}
	if i < len(lit) && (lit[i] == 'e' || lit[i] == 'E') {
		i++
		if i < len(lit) && (lit[i] == '+' || lit[i] == '-') {
			i++
		}
		j := digits(lit, i)
		if j == i {
			return false
		}
		i = j
	}
	return i == len(lit)
}

func digits(b []byte, i int) int {
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		i++
	}
	return i
}

var replacementEscape = []byte(`\ufffd`)

// replaceLoneSurrogates rewrites \uXXXX escapes naming an unpaired UTF-16
// surrogate to \ufffd so they decode to U+FFFD. data must already be valid
// JSON, which confines backslashes to string literals.
func replaceLoneSurrogates(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u`)) {
		return data
	}
	var out []byte
	last := 0
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' {
			continue
		}
		if i+1 >= len(data) || data[i+1] != 'u' {
			i++
			continue
		}
		r, ok := escapedUnit(data, i)
		if !ok {
			i++
			continue
		}
		switch {
		case r >= 0xD800 && r <= 0xDBFF:
			if lo, ok := escapedUnit(data, i+6); ok && lo >= 0xDC00 && lo <= 0xDFFF {
				i += 11
				continue
			}
		case r >= 0xDC00 && r <= 0xDFFF:
		default:
			i += 5
			continue
		}
		out = append(out, data[last:i]...)
		out = append(out, replacementEscape...)
		last = i + 6
		i += 5
	}
	if out == nil {
		return data
	}
	return append(out, data[last:]...)
}

// escapedUnit decodes the \uXXXX escape starting at data[i].
func escapedUnit(data []byte, i int) (rune, bool) {
	if i+6 > len(data) || data[i] != '\\' || data[i+1] != 'u' {
		return 0, false
	}
	var r rune
	for _, c := range data[i+2 : i+6] {
		r <<= 4
		switch {
		case c >= '0' && c <= '9':
			r |= rune(c - '0')
		case c >= 'a' && c <= 'f':
			r |= rune(c-'a') + 10
		case c >= 'A' && c <= 'F':
			r |= rune(c-'A') + 10
		default:
			return 0, false
		}
	}
	return r, true
}
