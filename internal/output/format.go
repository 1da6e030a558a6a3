// Package output renders API responses and writes them to their destination.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shaarli/shaarli-client-go/internal/errors"
)

// Format selects how a response body is rendered.
type Format string

const (
	// FormatJSON is compact JSON keeping the server's key order.
	FormatJSON Format = "json"
	// FormatPPrint is JSON with sorted keys and 4-space indentation.
	FormatPPrint Format = "pprint"
	// FormatText is the raw body.
	FormatText Format = "text"
	// FormatYAML is the JSON document as block-style YAML.
	FormatYAML Format = "yaml"
)

// DefaultFormat is used when no format is requested.
const DefaultFormat = FormatPPrint

// Formats lists every supported format.
func Formats() []Format {
	return []Format{FormatJSON, FormatPPrint, FormatText, FormatYAML}
}

// ParseFormat returns the format named s.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", errors.NewConfigurationErrorf("unsupported format %q", s)
}

// Render formats body according to format. An empty body renders as the
// empty string in every format.
func Render(format Format, body []byte) (string, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return "", err
	}

	if len(body) == 0 {
		return "", nil
	}

	if format == FormatText {
		return string(body), nil
	}

	if !json.Valid(body) {
		return "", errors.NewParseError("response_decoding", fmt.Errorf("response body is not valid JSON"))
	}

	switch format {
	case FormatJSON:
		return compactJSON(body)
	case FormatPPrint:
		return prettyJSON(body)
	default:
		return yamlDocument(body)
	}
}

// compactJSON re-serializes body on one line with ", " and ": " separators,
// keeping object keys in the order the server sent them.
func compactJSON(body []byte) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var b strings.Builder
	if err := writeValue(dec, &b); err != nil {
		return "", errors.NewParseError("response_decoding", err)
	}
	return b.String(), nil
}

func writeValue(dec *json.Decoder, b *strings.Builder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			b.WriteByte('{')
			for first := true; dec.More(); first = false {
				if !first {
					b.WriteString(", ")
				}
				key, err := dec.Token()
				if err != nil {
					return err
				}
				if err := writeString(b, key.(string)); err != nil {
					return err
				}
				b.WriteString(": ")
				if err := writeValue(dec, b); err != nil {
					return err
				}
			}
			b.WriteByte('}')
		case '[':
			b.WriteByte('[')
			for first := true; dec.More(); first = false {
				if !first {
					b.WriteString(", ")
				}
				if err := writeValue(dec, b); err != nil {
					return err
				}
			}
			b.WriteByte(']')
		}
		// closing delimiter
		_, err := dec.Token()
		return err
	case string:
		return writeString(b, v)
	case json.Number:
		b.WriteString(v.String())
	case bool:
		fmt.Fprintf(b, "%t", v)
	case nil:
		b.WriteString("null")
	}
	return nil
}

func writeString(b *strings.Builder, s string) error {
	data, err := marshalNoEscape(s, "")
	if err != nil {
		return err
	}
	b.Write(data)
	return nil
}

// prettyJSON re-serializes body with sorted keys and 4-space indentation.
func prettyJSON(body []byte) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return "", errors.NewParseError("response_decoding", err)
	}

	data, err := marshalNoEscape(v, "    ")
	if err != nil {
		return "", errors.NewParseError("response_encoding", err)
	}
	return string(data), nil
}

func marshalNoEscape(v interface{}, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// yamlDocument re-emits the JSON body as block-style YAML. JSON is parsed
// as YAML so the server's key order survives.
func yamlDocument(body []byte) (string, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(body, &node); err != nil {
		return "", errors.NewParseError("response_decoding", err)
	}
	blockStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return "", errors.NewParseError("response_encoding", err)
	}
	if err := enc.Close(); err != nil {
		return "", errors.NewParseError("response_encoding", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// blockStyle drops the flow and quoting styles inherited from JSON; the
// encoder re-quotes strings that would otherwise change type.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

// RenderTo writes the formatted body followed by a newline to w. Nothing is
// written for an empty body.
func RenderTo(w io.Writer, format Format, body []byte) error {
	s, err := Render(format, body)
	if err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	_, err = fmt.Fprintln(w, s)
	return err
}
