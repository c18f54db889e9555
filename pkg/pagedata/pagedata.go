// Package pagedata extracts the document properties embedded in the markup of
// publishing pages.
//
// Publishing pages carry their field values in a conditional comment of the
// form
//
//	<SharePoint:CTFieldRefs ...><xml>
//	  <mso:CustomDocumentProperties>
//	    <mso:PublishingPageLayout msdt:dt="string">...</mso:PublishingPageLayout>
//	  </mso:CustomDocumentProperties>
//	</xml></SharePoint:CTFieldRefs>
//
// ExtractProperties returns every value of that block, empty ones included,
// keyed by the field's local name.
package pagedata

import (
	"encoding/xml"
	"io"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// ErrNoPageData is returned when the content does not contain a field block.
var ErrNoPageData = errors.New("content does not contain page data")

var fieldRefs = regexp.MustCompile(`(?s)<SharePoint:CTFieldRefs.*<xml>(.*)</xml>.*</SharePoint:CTFieldRefs>`)

const propertiesElement = "CustomDocumentProperties"

// ExtractProperties parses the field block of a page's markup.
func ExtractProperties(content string) (map[string]string, error) {
	match := fieldRefs.FindStringSubmatch(content)
	if match == nil {
		return nil, ErrNoPageData
	}

	dec := xml.NewDecoder(strings.NewReader(`<data xmlns:mso="mso" xmlns:msdt="msdt">` + match[1] + `</data>`))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity

	var (
		props   = make(map[string]string)
		depth   int
		inProps bool
		field   string
		value   strings.Builder
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, errors.Wrap(err, "failed to parse page data")
		}

		switch tok := tok.(type) {
		case xml.StartElement:
			depth++
			switch {
			case depth == 2 && tok.Name.Local == propertiesElement && tok.Name.Space == "mso":
				inProps = true
			case depth == 3 && inProps:
				field = tok.Name.Local
				value.Reset()
			}
		case xml.EndElement:
			switch {
			case depth == 3 && inProps:
				props[field] = value.String()
				field = ""
			case depth == 2:
				inProps = false
			}
			depth--
		case xml.CharData:
			if field != "" {
				value.Write(tok)
			}
		}
	}

	return props, nil
}
