package tokenizer

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/pkg/errors"
)

const (
	// WebPartV2Namespace marks definitions whose properties are the direct
	// children of the root element.
	WebPartV2Namespace = "http://schemas.microsoft.com/WebPart/v2"

	// WebPartV3Namespace marks definitions whose properties live under
	// webParts/webPart/data/properties/property.
	WebPartV3Namespace = "http://schemas.microsoft.com/WebPart/v3"
)

var (
	v3PropertyPath = []string{"webPart", "data", "properties", "property"}
	textEscaper    = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
)

// TokenizeWebPart tokenizes the property values of a serialized web part
// definition. Only the text of property elements is rewritten; every other byte
// of the definition, CDATA markers included, is kept as is. Malformed XML
// yields an error and callers are expected to fall back to Tokenize.
func (t *Tokenizer) TokenizeWebPart(def string) (string, error) {
	if strings.TrimSpace(def) == "" {
		return def, nil
	}

	var (
		dec   = xml.NewDecoder(strings.NewReader(def))
		out   strings.Builder
		stack []xml.Name
		v2    bool
		last  int64
	)

	for {
		start := dec.InputOffset()
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return "", errors.Wrap(err, "failed to parse web part definition")
		}

		switch tok := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 {
				v2 = tok.Name.Space == WebPartV2Namespace
			}
			stack = append(stack, tok.Name)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if !isProperty(stack, v2) {
				continue
			}

			end := dec.InputOffset()
			raw := def[start:end]
			replaced, ok := t.rewrite(raw, string(tok))
			if !ok {
				continue
			}

			out.WriteString(def[last:start])
			out.WriteString(replaced)
			last = end
		}
	}

	if len(stack) > 0 {
		return "", errors.New("failed to parse web part definition: unexpected end of input")
	}

	out.WriteString(def[last:])
	return out.String(), nil
}

// rewrite returns the serialized replacement for a text node, and false when
// tokenization left the text unchanged.
func (t *Tokenizer) rewrite(raw, text string) (string, bool) {
	tokenized := t.Tokenize(text)
	if tokenized == text {
		return "", false
	}

	if strings.HasPrefix(raw, "<![CDATA[") {
		return "<![CDATA[" + strings.ReplaceAll(tokenized, "]]>", "]]]]><![CDATA[>") + "]]>", true
	}

	return textEscaper.Replace(tokenized), true
}

func isProperty(stack []xml.Name, v2 bool) bool {
	if v2 {
		return len(stack) == 2
	}

	if len(stack) != len(v3PropertyPath)+1 {
		return false
	}

	for i, local := range v3PropertyPath {
		name := stack[i+1]
		if name.Local != local || name.Space != WebPartV3Namespace {
			return false
		}
	}

	return true
}
