package tree

import (
	"bytes"

	"github.com/goccy/go-json"
)

// Encode returns the canonical compact encoding of n. Object members are
// written in document order and numbers as their source literal.
func Encode(n Node) []byte {
	var buf bytes.Buffer
	encodeTo(&buf, n)
	return buf.Bytes()
}

// Size returns len(Encode(n)). Container sizes are computed once per node.
func Size(n Node) int64 {
	switch v := n.(type) {
	case *Object:
		v.sizeOnce.Do(func() {
			size := int64(2)
			for i, k := range v.keys {
				if i > 0 {
					size++
				}
				size += int64(len(quote(k))) + 1 + Size(v.values[i])
			}
			v.size = size
		})
		return v.size
	case *Array:
		v.sizeOnce.Do(func() {
			size := int64(2)
			for i, item := range v.items {
				if i > 0 {
					size++
				}
				size += Size(item)
			}
			v.size = size
		})
		return v.size
	default:
		return int64(len(Encode(n)))
	}
}

func encodeTo(buf *bytes.Buffer, n Node) {
	switch v := n.(type) {
	case *Object:
		buf.WriteByte('{')
		for i, k := range v.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.Write(quote(k))
			buf.WriteByte(':')
			encodeTo(buf, v.values[i])
		}
		buf.WriteByte('}')
	case *Array:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			encodeTo(buf, item)
		}
		buf.WriteByte(']')
	case String:
		buf.Write(quote(string(v)))
	case Number:
		buf.WriteString(string(v))
	case Bool:
		if v {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Null:
		buf.WriteString("null")
	}
}

func quote(s string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		// strings always encode
		panic(err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})
}
