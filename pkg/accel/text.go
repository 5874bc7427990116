package accel

import (
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/unicode"
)

func utf16Encoding(e Endian) unicode.Endianness {
	if e == LittleEndian {
		return unicode.LittleEndian
	}
	return unicode.BigEndian
}

func appendString(dst []byte, s string, enc Encoding, end Endian) ([]byte, error) {
	switch enc {
	case UTF8:
		return append(dst, s...), nil
	case Unicode:
		b, err := unicode.UTF16(utf16Encoding(end), unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode string as UTF-16")
		}
		return append(dst, b...), nil
	case ASCII:
		for _, r := range s {
			if r >= utf8.RuneSelf {
				r = '?'
			}
			dst = append(dst, byte(r))
		}
		return dst, nil
	default:
		return nil, errors.Errorf("unsupported encoding %s", enc)
	}
}

func decodeString(b []byte, enc Encoding, end Endian) (string, error) {
	switch enc {
	case UTF8:
		return string(b), nil
	case Unicode:
		if len(b)%2 != 0 {
			return "", errors.Errorf("invalid UTF-16 payload of odd length %d", len(b))
		}
		out, err := unicode.UTF16(utf16Encoding(end), unicode.IgnoreBOM).NewDecoder().Bytes(b)
		if err != nil {
			return "", errors.Wrap(err, "failed to decode UTF-16 string")
		}
		return string(out), nil
	case ASCII:
		out := make([]byte, len(b))
		for i, c := range b {
			if c >= utf8.RuneSelf {
				c = '?'
			}
			out[i] = c
		}
		return string(out), nil
	default:
		return "", errors.Errorf("unsupported encoding %s", enc)
	}
}
