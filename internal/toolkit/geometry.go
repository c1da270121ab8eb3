package toolkit

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Rect is a widget rectangle in PDF user space with its 1-based page.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Page   int     `json:"page"`
}

// DefaultRect is reported for fields whose widget cannot be located.
var DefaultRect = Rect{X: 0, Y: 0, Width: 100, Height: 20, Page: 1}

// FieldGeometry reads the AcroForm of the PDF at path and returns the
// rectangle of each named field's first widget, keyed by fully qualified
// field name. Documents without a form yield an empty map.
func FieldGeometry(path string) (map[string]Rect, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(f, conf)
	if err != nil {
		return nil, fmt.Errorf("read pdf context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("page count: %w", err)
	}

	rects := map[string]Rect{}

	root, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	acroObj, found := root.Find("AcroForm")
	if !found {
		return rects, nil
	}
	acroForm, err := ctx.DereferenceDict(acroObj)
	if err != nil || acroForm == nil {
		return rects, err
	}

	fieldsObj, found := acroForm.Find("Fields")
	if !found {
		return rects, nil
	}
	fields, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return nil, fmt.Errorf("fields: %w", err)
	}

	g := &geometry{ctx: ctx, pages: pageNumbers(ctx), rects: rects}
	for _, obj := range fields {
		g.walk(obj, "", 0)
	}

	return rects, nil
}

const maxFieldDepth = 32

type geometry struct {
	ctx   *model.Context
	pages map[int]int
	rects map[string]Rect
}

func (g *geometry) walk(obj types.Object, parent string, depth int) {
	if depth > maxFieldDepth {
		return
	}

	d, err := g.ctx.DereferenceDict(obj)
	if err != nil || d == nil {
		return
	}

	name := parent
	if t, found := d.Find("T"); found {
		if s, err := g.ctx.DereferenceStringOrHexLiteral(t, model.V10, nil); err == nil && s != "" {
			if name != "" {
				name += "."
			}
			name += s
		}
	}

	if name != "" {
		if _, seen := g.rects[name]; !seen {
			if r, ok := g.widgetRect(d); ok {
				g.rects[name] = r
			}
		}
	}

	kidsObj, found := d.Find("Kids")
	if !found {
		return
	}
	kids, err := g.ctx.DereferenceArray(kidsObj)
	if err != nil {
		return
	}

	for _, kid := range kids {
		g.walk(kid, name, depth+1)
	}
}

// widgetRect returns the rectangle of d itself when it is a merged
// field/widget, otherwise the first kid widget carrying a Rect.
func (g *geometry) widgetRect(d types.Dict) (Rect, bool) {
	if r, ok := g.rect(d); ok {
		return r, true
	}

	kidsObj, found := d.Find("Kids")
	if !found {
		return Rect{}, false
	}
	kids, err := g.ctx.DereferenceArray(kidsObj)
	if err != nil {
		return Rect{}, false
	}

	for _, kid := range kids {
		kd, err := g.ctx.DereferenceDict(kid)
		if err != nil || kd == nil {
			continue
		}
		if _, named := kd.Find("T"); named {
			continue
		}
		if r, ok := g.rect(kd); ok {
			return r, true
		}
	}

	return Rect{}, false
}

func (g *geometry) rect(d types.Dict) (Rect, bool) {
	rectObj, found := d.Find("Rect")
	if !found {
		return Rect{}, false
	}

	arr, err := g.ctx.DereferenceArray(rectObj)
	if err != nil || len(arr) != 4 {
		return Rect{}, false
	}

	var c [4]float64
	for i, v := range arr {
		n, err := g.ctx.DereferenceNumber(v)
		if err != nil {
			return Rect{}, false
		}
		c[i] = n
	}

	llx, urx := min(c[0], c[2]), max(c[0], c[2])
	lly, ury := min(c[1], c[3]), max(c[1], c[3])

	page := 1
	if p, found := d.Find("P"); found {
		if ref, ok := p.(types.IndirectRef); ok {
			if n, ok := g.pages[int(ref.ObjectNumber)]; ok {
				page = n
			}
		}
	}

	return Rect{X: llx, Y: lly, Width: urx - llx, Height: ury - lly, Page: page}, true
}

// pageNumbers maps page object numbers to 1-based page numbers.
func pageNumbers(ctx *model.Context) map[int]int {
	pages := make(map[int]int, ctx.PageCount)
	for i := 1; i <= ctx.PageCount; i++ {
		_, ref, _, err := ctx.PageDict(i, false)
		if err != nil || ref == nil {
			continue
		}
		pages[int(ref.ObjectNumber)] = i
	}
	return pages
}
