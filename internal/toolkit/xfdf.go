package toolkit

import (
	"bytes"
	"encoding/xml"
	"slices"
	"strings"
)

type xfdfDocument struct {
	XMLName xml.Name     `xml:"xfdf"`
	XMLNS   string       `xml:"xmlns,attr"`
	Fields  []*xfdfField `xml:"fields>field"`
}

type xfdfField struct {
	Name     string       `xml:"name,attr"`
	Value    *string      `xml:"value,omitempty"`
	Children []*xfdfField `xml:"field,omitempty"`
}

// encodeXFDF renders values as an XFDF document. Dotted names become nested
// fields, and siblings are emitted in name order.
func encodeXFDF(values map[string]string) ([]byte, error) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	slices.Sort(names)

	root := &xfdfField{}
	for _, name := range names {
		node := root
		for part := range strings.SplitSeq(name, ".") {
			node = node.child(part)
		}
		v := values[name]
		node.Value = &v
	}

	doc := xfdfDocument{
		XMLNS:  "http://ns.adobe.com/xfdf/",
		Fields: root.Children,
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (f *xfdfField) child(name string) *xfdfField {
	for _, c := range f.Children {
		if c.Name == name {
			return c
		}
	}
	c := &xfdfField{Name: name}
	f.Children = append(f.Children, c)
	return c
}
