package inspect

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
	"github.com/tidwall/sjson"
)

// JSON renders the document as a JSON object. Raw payloads and the checksum are hex encoded.
func JSON(doc *Document) ([]byte, error) {
	out := []byte(`{}`)
	var err error
	for _, kv := range []struct {
		path  string
		value any
	}{
		{"encoding", doc.Encoding.String()},
		{"endian", doc.Endian.String()},
		{"size", doc.Size},
		{"checksum", checksum(doc.Checksum)},
	} {
		if out, err = sjson.SetBytes(out, kv.path, kv.value); err != nil {
			return nil, errors.Wrapf(err, "failed to set %s", kv.path)
		}
	}
	fields, err := bodyJSON(doc.Fields)
	if err != nil {
		return nil, err
	}
	out, err = sjson.SetRawBytes(out, "fields", fields)
	if err != nil {
		return nil, errors.Wrap(err, "failed to set fields")
	}
	return out, nil
}

func bodyJSON(body Body) ([]byte, error) {
	out := []byte(`[]`)
	for _, f := range body {
		obj, err := fieldJSON(f)
		if err != nil {
			return nil, errors.Wrapf(err, "field %d", f.Index)
		}
		if out, err = sjson.SetRawBytes(out, "-1", obj); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func fieldJSON(f Field) ([]byte, error) {
	out := []byte(`{}`)
	var err error
	set := func(path string, value any) {
		if err == nil {
			out, err = sjson.SetBytes(out, path, value)
		}
	}
	set("index", f.Index)
	set("type", f.Type.String())
	set("raw", hex.EncodeToString(f.Raw))
	if f.Unsigned != nil {
		set("unsigned", *f.Unsigned)
		set("signed", *f.Signed)
	}
	if f.Text != nil {
		set("text", *f.Text)
	}
	if err != nil {
		return nil, err
	}
	if f.Nested != nil {
		nested, err := bodyJSON(f.Nested)
		if err != nil {
			return nil, err
		}
		return sjson.SetRawBytes(out, "nested", nested)
	}
	return out, nil
}

var cborMode = func() cbor.EncMode {
	m, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return m
}()

// CBOR renders the document with deterministic CBOR encoding.
func CBOR(doc *Document) ([]byte, error) {
	out, err := cborMode.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode document as CBOR")
	}
	return out, nil
}

// Text writes an indented human readable listing of the document.
func Text(w io.Writer, doc *Document) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "message %s/%s size=%d checksum=%s\n", doc.Encoding, doc.Endian, doc.Size, checksum(doc.Checksum))
	textBody(&sb, doc.Fields, 1)
	_, err := io.WriteString(w, sb.String())
	return err
}

func textBody(sb *strings.Builder, body Body, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, f := range body {
		fmt.Fprintf(sb, "%s%d %s [%d] %s", indent, f.Index, f.Type, len(f.Raw), hex.EncodeToString(f.Raw))
		if f.Unsigned != nil {
			fmt.Fprintf(sb, " u=%d s=%d", *f.Unsigned, *f.Signed)
		}
		if f.Text != nil {
			fmt.Fprintf(sb, " text=%s", strconv.Quote(*f.Text))
		}
		sb.WriteByte('\n')
		if f.Nested != nil {
			textBody(sb, f.Nested, depth+1)
		}
	}
}

func checksum(sum uint64) string {
	return fmt.Sprintf("%016x", sum)
}
