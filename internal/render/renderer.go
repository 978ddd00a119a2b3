package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"dealdocs-backend/internal/templates"
)

// BoundsPolicy controls what happens when a placement falls outside its page.
type BoundsPolicy int

const (
	// PolicySkip drops the offending placement and reports a warning.
	PolicySkip BoundsPolicy = iota
	// PolicyFail aborts the render with ErrFieldOutOfBounds.
	PolicyFail
)

// Options tunes a single render call.
type Options struct {
	Policy BoundsPolicy
}

// SignatureMark is a signature placeholder or captured mark to draw.
type SignatureMark struct {
	FieldID string
	Role    string
	Type    string // signature | initials
	Value   string // captured mark; empty draws a placeholder
}

// Warning reports a placement that was skipped during rendering.
type Warning struct {
	Field  string `json:"field"`
	Page   int    `json:"page"`
	Reason string `json:"reason"`
}

// Output is a rendered artifact.
type Output struct {
	PDF       []byte
	PageCount int
	Warnings  []Warning
}

// Renderer turns a template's base PDF plus resolved values into a filled
// artifact. It never mutates the stored base bytes; every call works on an
// in-memory copy, so renders for distinct documents run fully in parallel.
type Renderer struct {
	AssetDir string
}

// New constructs a Renderer reading base PDFs from assetDir.
func New(assetDir string) *Renderer {
	return &Renderer{AssetDir: assetDir}
}

// stamp is one positioned piece of text bound for a page.
type stamp struct {
	field    string
	page     int
	x, y     float64
	text     string
	fontSize float64
}

// Render produces the filled PDF for a template.
func (r *Renderer) Render(ctx context.Context, def templates.TemplateDefinition, schema templates.FieldSchema, values map[string]any, marks []SignatureMark, opts Options) (Output, error) {
	base, err := os.ReadFile(filepath.Join(r.AssetDir, def.SourceFile))
	if err != nil {
		if os.IsNotExist(err) {
			return Output{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, def.SourceFile)
		}
		return Output{}, fmt.Errorf("%w: read %s: %s", ErrTemplateLoadFailed, def.SourceFile, err)
	}
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}

	conf := newConfiguration()

	pageCount, err := api.PageCount(bytes.NewReader(base), conf)
	if err != nil {
		return Output{}, fmt.Errorf("%w: %s: %s", ErrTemplateLoadFailed, def.SourceFile, err)
	}
	if pageCount != schema.PageCount {
		return Output{}, fmt.Errorf("%w: schema declares %d pages, asset has %d", ErrGeometryMismatch, schema.PageCount, pageCount)
	}

	dims, err := api.PageDims(bytes.NewReader(base), conf)
	if err != nil {
		return Output{}, fmt.Errorf("%w: %s: %s", ErrTemplateLoadFailed, def.SourceFile, err)
	}
	if len(dims) != pageCount {
		return Output{}, fmt.Errorf("%w: %d pages but %d media boxes", ErrGeometryMismatch, pageCount, len(dims))
	}

	stamps := buildStamps(schema, values, marks)

	out := Output{PageCount: pageCount}
	wmMap := make(map[int][]*model.Watermark)
	for _, st := range stamps {
		if reason, ok := checkBounds(st, dims); !ok {
			if opts.Policy == PolicyFail {
				return Output{}, fmt.Errorf("%w: %s: %s", ErrFieldOutOfBounds, st.field, reason)
			}
			out.Warnings = append(out.Warnings, Warning{Field: st.field, Page: st.page, Reason: reason})
			continue
		}
		wm, err := api.TextWatermark(st.text, watermarkDesc(st), true, false, types.POINTS)
		if err != nil {
			return Output{}, fmt.Errorf("%w: stamp %s: %s", ErrTemplateLoadFailed, st.field, err)
		}
		wmMap[st.page] = append(wmMap[st.page], wm)
	}

	if err := ctx.Err(); err != nil {
		return Output{}, err
	}

	if len(wmMap) == 0 {
		out.PDF = append([]byte(nil), base...)
		return out, nil
	}

	var buf bytes.Buffer
	if err := api.AddWatermarksSliceMap(bytes.NewReader(base), &buf, wmMap, conf); err != nil {
		return Output{}, fmt.Errorf("%w: stamp %s: %s", ErrTemplateLoadFailed, def.SourceFile, err)
	}
	out.PDF = buf.Bytes()
	return out, nil
}

// newConfiguration returns a pdfcpu configuration that tolerates the locked
// third-party source forms: validation is relaxed and permission enforcement
// widened so stamping is allowed, while structural parsing stays on so a
// corrupt template still fails loudly.
func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.Permissions = model.PermissionsAll
	return conf
}

// buildStamps collects positioned text for fields and signature marks, in
// schema order so output is deterministic for identical input.
func buildStamps(schema templates.FieldSchema, values map[string]any, marks []SignatureMark) []stamp {
	var stamps []stamp

	for _, f := range schema.Fields {
		if f.Placement == nil {
			continue
		}
		value, ok := values[f.Name]
		if !ok {
			continue
		}
		text := formatValue(f.Type, value)
		if text == "" {
			continue
		}
		size := f.Placement.FontSize
		if size <= 0 {
			size = 10
		}
		stamps = append(stamps, stamp{
			field:    f.Name,
			page:     f.Placement.Page,
			x:        f.Placement.X,
			y:        f.Placement.Y,
			text:     text,
			fontSize: size,
		})
	}

	byID := make(map[string]SignatureMark, len(marks))
	for _, m := range marks {
		byID[m.FieldID] = m
	}
	for _, sig := range schema.Signatures {
		mark, ok := byID[sig.ID]
		if !ok {
			continue
		}
		text := mark.Value
		if text == "" {
			label := sig.Role
			if sig.Type == "initials" {
				label = sig.Role + " initials"
			}
			text = "X" + strings.Repeat("_", 24) + " (" + label + ")"
		}
		stamps = append(stamps, stamp{
			field:    sig.ID,
			page:     sig.Page,
			x:        sig.X,
			y:        sig.Y,
			text:     text,
			fontSize: 10,
		})
	}

	return stamps
}

func checkBounds(st stamp, dims []types.Dim) (string, bool) {
	if st.page < 1 || st.page > len(dims) {
		return fmt.Sprintf("page %d outside document", st.page), false
	}
	dim := dims[st.page-1]
	if st.x < 0 || st.y < 0 || st.x > dim.Width || st.y > dim.Height {
		return fmt.Sprintf("(%.1f,%.1f) outside page %d (%gx%g)", st.x, st.y, st.page, dim.Width, dim.Height), false
	}
	return "", true
}

// formatValue renders a resolved value as stamp text. False booleans produce
// nothing; true booleans render the checkbox mark.
func formatValue(t templates.FieldType, v any) string {
	switch t {
	case templates.FieldBoolean:
		if b, ok := v.(bool); ok && b {
			return "X"
		}
		return ""
	case templates.FieldNumber:
		if n, ok := v.(float64); ok {
			return strconv.FormatFloat(n, 'f', -1, 64)
		}
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// watermarkDesc builds a pdfcpu watermark descriptor. The points parameter
// must be an integer; pdfcpu rejects fractional font sizes.
func watermarkDesc(st stamp) string {
	return fmt.Sprintf("fontname:Helvetica, points:%d, scale:1 abs, position:bl, offset:%.1f %.1f, rotation:0, fillcolor:#000000, opacity:1", int(st.fontSize), st.x, st.y)
}
