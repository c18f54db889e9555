package manifest

import (
	"encoding/xml"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/provkit/pkg/template"
)

// Namespace is the schema namespace written by Latest.
const Namespace = "http://schemas.dev.office.com/PnP/2022/09/ProvisioningSchema"

const containerPrefix = "CONTAINER-"

type (
	xmlFormatter struct {
		namespace string
	}

	xmlProvisioning struct {
		XMLName   xml.Name     `xml:"Provisioning"`
		Xmlns     string       `xml:"xmlns,attr,omitempty"`
		XmlnsPnp  string       `xml:"xmlns:pnp,attr,omitempty"`
		Templates xmlTemplates `xml:"Templates"`
	}

	xmlTemplates struct {
		ID        string        `xml:"ID,attr,omitempty"`
		Templates []xmlTemplate `xml:"ProvisioningTemplate"`
	}

	// xmlTemplate keeps unmodelled sections on the side of Files they were read
	// from; the schema is a sequence so their position matters.
	xmlTemplate struct {
		ID      string
		Version string
		Files   *xmlFiles
		Before  []xmlSection
		After   []xmlSection
	}

	xmlFiles struct {
		Files []xmlFile `xml:"File"`
	}

	xmlFile struct {
		Src        string         `xml:"Src,attr"`
		Folder     string         `xml:"Folder,attr"`
		Level      string         `xml:"Level,attr,omitempty"`
		Overwrite  string         `xml:"Overwrite,attr,omitempty"`
		Properties *xmlProperties `xml:"Properties"`
		WebParts   *xmlWebParts   `xml:"WebParts"`
	}

	xmlProperties struct {
		Properties []xmlProperty `xml:"Property"`
	}

	xmlProperty struct {
		Key   string `xml:"Key,attr"`
		Value string `xml:"Value,attr"`
	}

	xmlWebParts struct {
		WebParts []xmlWebPart `xml:"WebPart"`
	}

	xmlWebPart struct {
		Order    uint   `xml:"Order,attr"`
		Zone     string `xml:"Zone,attr"`
		Title    string `xml:"Title,attr"`
		Contents string `xml:"Contents"`
	}

	xmlSection struct {
		XMLName xml.Name
		Attrs   []xml.Attr `xml:",any,attr"`
		Inner   string     `xml:",innerxml"`
	}
)

func (f *xmlFormatter) Encode(w io.Writer, t *template.Template) error {
	if t == nil {
		return errors.New("template cannot be nil")
	}

	doc := xmlProvisioning{
		Xmlns:    f.namespace,
		XmlnsPnp: f.namespace,
		Templates: xmlTemplates{
			ID:        containerPrefix + t.ID,
			Templates: []xmlTemplate{toXMLTemplate(t)},
		},
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return errors.Wrap(err, "failed to write manifest header")
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(err, "failed to encode manifest")
	}

	if _, err := io.WriteString(w, "\n"); err != nil {
		return errors.Wrap(err, "failed to write manifest")
	}

	return nil
}

func (f *xmlFormatter) Decode(r io.Reader) (*template.Template, error) {
	var doc xmlProvisioning
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode manifest")
	}

	if len(doc.Templates.Templates) == 0 {
		return nil, errors.New("manifest does not contain a provisioning template")
	}

	return fromXMLTemplate(doc.Templates.Templates[0])
}

func (t xmlTemplate) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Attr = []xml.Attr{{Name: xml.Name{Local: "ID"}, Value: t.ID}}
	if t.Version != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "Version"}, Value: t.Version})
	}

	if err := e.EncodeToken(start); err != nil {
		return err
	}

	for _, sec := range t.Before {
		if err := e.Encode(sec); err != nil {
			return err
		}
	}

	if t.Files != nil {
		if err := e.EncodeElement(t.Files, xml.StartElement{Name: xml.Name{Local: "Files"}}); err != nil {
			return err
		}
	}

	for _, sec := range t.After {
		if err := e.Encode(sec); err != nil {
			return err
		}
	}

	return e.EncodeToken(start.End())
}

func (t *xmlTemplate) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "ID":
			t.ID = a.Value
		case "Version":
			t.Version = a.Value
		}
	}

	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}

		switch tok := tok.(type) {
		case xml.StartElement:
			if tok.Name.Local == "Files" {
				t.Files = &xmlFiles{}
				if err := d.DecodeElement(t.Files, &tok); err != nil {
					return err
				}
				continue
			}

			var sec xmlSection
			if err := d.DecodeElement(&sec, &tok); err != nil {
				return err
			}

			if t.Files == nil {
				t.Before = append(t.Before, sec)
			} else {
				t.After = append(t.After, sec)
			}
		case xml.EndElement:
			return nil
		}
	}
}

func toXMLTemplate(t *template.Template) xmlTemplate {
	out := xmlTemplate{
		ID:      t.ID,
		Version: t.Version,
	}

	if len(t.Files) > 0 {
		out.Files = &xmlFiles{Files: make([]xmlFile, 0, len(t.Files))}
		for _, f := range t.Files {
			out.Files.Files = append(out.Files.Files, toXMLFile(f))
		}
	}

	for _, s := range t.Extra {
		sec := xmlSection{
			XMLName: xml.Name{Local: s.Name},
			Inner:   s.InnerXML,
		}
		for _, a := range s.Attrs {
			sec.Attrs = append(sec.Attrs, xml.Attr{Name: xml.Name{Local: a.Name}, Value: a.Value})
		}
		if s.BeforeFiles {
			out.Before = append(out.Before, sec)
		} else {
			out.After = append(out.After, sec)
		}
	}

	return out
}

func toXMLFile(f *template.File) xmlFile {
	out := xmlFile{
		Src:       f.Src,
		Folder:    f.Folder,
		Level:     f.Level.String(),
		Overwrite: strconv.FormatBool(f.Overwrite),
	}

	if len(f.Properties) > 0 {
		keys := make([]string, 0, len(f.Properties))
		for k := range f.Properties {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		out.Properties = &xmlProperties{}
		for _, k := range keys {
			out.Properties.Properties = append(out.Properties.Properties, xmlProperty{Key: k, Value: f.Properties[k]})
		}
	}

	if len(f.WebParts) > 0 {
		out.WebParts = &xmlWebParts{}
		for _, wp := range f.WebParts {
			out.WebParts.WebParts = append(out.WebParts.WebParts, xmlWebPart(wp))
		}
	}

	return out
}

func fromXMLTemplate(in xmlTemplate) (*template.Template, error) {
	t := &template.Template{
		ID:      in.ID,
		Version: in.Version,
		Files:   make([]*template.File, 0),
	}

	if in.Files != nil {
		for _, xf := range in.Files.Files {
			f, err := fromXMLFile(xf)
			if err != nil {
				return nil, err
			}
			t.Files = append(t.Files, f)
		}
	}

	for _, sec := range in.Before {
		t.Extra = append(t.Extra, fromXMLSection(sec, true))
	}
	for _, sec := range in.After {
		t.Extra = append(t.Extra, fromXMLSection(sec, false))
	}

	return t, nil
}

func fromXMLSection(in xmlSection, beforeFiles bool) template.Section {
	s := template.Section{
		Name:        in.XMLName.Local,
		InnerXML:    in.Inner,
		BeforeFiles: beforeFiles,
	}
	for _, a := range in.Attrs {
		s.Attrs = append(s.Attrs, template.Attr{Name: attrName(a.Name), Value: a.Value})
	}

	return s
}

func fromXMLFile(in xmlFile) (*template.File, error) {
	level, err := template.ParseFileLevel(in.Level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid file entry: %s", in.Src)
	}

	overwrite := true
	if v := strings.TrimSpace(in.Overwrite); v != "" {
		overwrite, err = strconv.ParseBool(v)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid overwrite flag for file entry: %s", in.Src)
		}
	}

	f := template.NewFile(in.Src, in.Folder)
	f.Level = level
	f.Overwrite = overwrite

	if in.Properties != nil {
		f.Properties = make(map[string]string, len(in.Properties.Properties))
		for _, p := range in.Properties.Properties {
			f.Properties[p.Key] = p.Value
		}
	}

	if in.WebParts != nil {
		for _, wp := range in.WebParts.WebParts {
			f.WebParts = append(f.WebParts, template.WebPart(wp))
		}
	}

	return f, nil
}

// attrName flattens a decoded attribute name. Prefixed attributes lose their
// namespace on decode, so the prefix is re-attached from the resolved space
// when it is a plain prefix.
func attrName(n xml.Name) string {
	if n.Space == "" || strings.Contains(n.Space, ":") {
		return n.Local
	}

	return n.Space + ":" + n.Local
}
