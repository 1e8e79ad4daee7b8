// Package vector traces band masks into filled SVG paths.
package vector

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"papercut/internal/models"

	svg "github.com/ajstarks/svgo"
	"github.com/gotranspile/gotrace"
)

// Trace is the outline of one mask: path data plus the transform the tracer placed them under.
type Trace struct {
	Transform string
	Paths     []string
}

func (t Trace) Empty() bool {
	return len(t.Paths) == 0
}

// Layer is one band to export: its colour and its selection mask (255 = selected).
type Layer struct {
	Color models.Color
	Mask  *image.Gray
}

// TraceMask outlines the selected pixels of mask.
func TraceMask(mask *image.Gray) (Trace, error) {
	if mask == nil {
		return Trace{}, fmt.Errorf("mask is nil")
	}

	// The tracer fills dark pixels, so the selection is inverted first.
	inverted := image.NewGray(mask.Bounds())
	for i, v := range mask.Pix {
		inverted.Pix[i] = 255 - v
	}

	bm := gotrace.BitmapFromGray(inverted, nil)
	paths, err := gotrace.Trace(bm, nil)
	if err != nil {
		return Trace{}, fmt.Errorf("trace: %w", err)
	}
	if paths == nil {
		return Trace{}, nil
	}

	var buf bytes.Buffer
	sz := mask.Bounds().Size()
	if err := gotrace.Render("svg", nil, &buf, paths, sz.X, sz.Y); err != nil {
		return Trace{}, fmt.Errorf("render trace: %w", err)
	}

	return extract(buf.Bytes())
}

// extract collects every <path d> of a rendered trace, wherever it is nested, and the first
// group transform.
func extract(doc []byte) (Trace, error) {
	var t Trace
	dec := xml.NewDecoder(bytes.NewReader(doc))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return t, nil
		}
		if err != nil {
			return Trace{}, fmt.Errorf("parse traced svg: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "g":
			if t.Transform == "" {
				t.Transform = attr(start, "transform")
			}
		case "path":
			if d := strings.TrimSpace(attr(start, "d")); d != "" {
				t.Paths = append(t.Paths, d)
			}
		}
	}
}

func attr(e xml.StartElement, name string) string {
	for _, a := range e.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// Export writes a width x height SVG with one filled group per layer, in layer order.
// Layers whose mask selects nothing are left out. It returns the number of groups written.
func Export(w io.Writer, width, height int, layers []Layer) (int, error) {
	traces := make([]Trace, len(layers))
	for i, l := range layers {
		t, err := TraceMask(l.Mask)
		if err != nil {
			return 0, fmt.Errorf("layer %d: %w", i+1, err)
		}
		traces[i] = t
	}

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:#000000")

	groups := 0
	for i, t := range traces {
		if t.Empty() {
			continue
		}

		attrs := []string{fmt.Sprintf(`id="band-%02d"`, i+1), fmt.Sprintf(`fill="%s"`, layers[i].Color.Hex())}
		if t.Transform != "" {
			attrs = append(attrs, fmt.Sprintf(`transform="%s"`, t.Transform))
		}
		canvas.Group(attrs...)
		for _, d := range t.Paths {
			canvas.Path(d)
		}
		canvas.Gend()
		groups++
	}

	canvas.End()
	return groups, nil
}

// ExportFile is Export into a newly created file at path.
func ExportFile(path string, width, height int, layers []Layer) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}

	groups, err := Export(f, width, height, layers)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close %s: %w", path, cerr)
	}
	return groups, err
}
