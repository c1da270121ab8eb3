// Package pdftest builds small, well-formed PDF documents for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Field describes a text form field placed on a page.
type Field struct {
	Name  string
	Value string
	Page  int
	X, Y  float64
	W, H  float64
}

// Document returns a PDF with the given number of blank letter-size pages.
func Document(pages int) []byte {
	return Form(pages)
}

// Form returns a PDF with the given pages and an AcroForm holding fields.
// Each field is a merged field/widget dictionary.
func Form(pages int, fields ...Field) []byte {
	if pages < 1 {
		pages = 1
	}

	// Object layout: 1 catalog, 2 pages tree, 3 acroform, 4.. pages, then fields.
	firstPage := 4
	firstField := firstPage + pages

	annots := make(map[int][]string)
	for i, f := range fields {
		page := f.Page
		if page < 1 || page > pages {
			page = 1
		}
		annots[page] = append(annots[page], fmt.Sprintf("%d 0 R", firstField+i))
	}

	objs := []string{}

	catalog := "<< /Type /Catalog /Pages 2 0 R"
	if len(fields) > 0 {
		catalog += " /AcroForm 3 0 R"
	}
	objs = append(objs, catalog+" >>")

	kids := make([]string, pages)
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", firstPage+i)
	}
	objs = append(objs, fmt.Sprintf(
		"<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 612 792] /Resources << >> >>",
		strings.Join(kids, " "), pages,
	))

	fieldRefs := make([]string, len(fields))
	for i := range fields {
		fieldRefs[i] = fmt.Sprintf("%d 0 R", firstField+i)
	}
	objs = append(objs, fmt.Sprintf(
		"<< /Fields [%s] /DA (/Helv 0 Tf 0 g) /DR << /Font << /Helv << /Type /Font /Subtype /Type1 /BaseFont /Helvetica >> >> >> >>",
		strings.Join(fieldRefs, " "),
	))

	for i := range pages {
		page := "<< /Type /Page /Parent 2 0 R"
		if refs := annots[i+1]; len(refs) > 0 {
			page += fmt.Sprintf(" /Annots [%s]", strings.Join(refs, " "))
		}
		objs = append(objs, page+" >>")
	}

	for _, f := range fields {
		page := f.Page
		if page < 1 || page > pages {
			page = 1
		}
		w, h := f.W, f.H
		if w == 0 {
			w = 150
		}
		if h == 0 {
			h = 18
		}
		objs = append(objs, fmt.Sprintf(
			"<< /Type /Annot /Subtype /Widget /FT /Tx /T (%s) /V (%s) /DA (/Helv 12 Tf 0 g) /F 4 /Rect [%g %g %g %g] /P %d 0 R >>",
			escape(f.Name), escape(f.Value), f.X, f.Y, f.X+w, f.Y+h, firstPage+page-1,
		))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")

	offsets := make([]int, len(objs))
	for i, obj := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)

	return buf.Bytes()
}

// WriteFile writes data into a temp file named name and returns its path.
func WriteFile(t testing.TB, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
