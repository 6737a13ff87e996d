package certforge

import (
	"fmt"
	"image/color"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers"
)

/*
 * Attention: tdewolff/canvas uses mm as the unit of measurement, all input in
 * this package takes px as the unit and is converted to mm when drawn.
 */

const DPI = 72

func pxToMM(px float64) float64 {
	return (px * 25.4) / DPI
}

// Painter draws a LayoutTree onto a tdewolff canvas. The same painter backs
// the interactive SVG preview and the fixed-page PDF artifact, which is what
// keeps the two targets pixel-identical.
type Painter struct {
	cfg      *Config
	fonts    *FontLoader
	families map[string]*canvas.FontFamily
}

func NewPainter(cfg *Config) (*Painter, error) {
	fonts, err := NewFontLoader(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create font loader: %w", err)
	}

	return &Painter{
		cfg:      cfg,
		fonts:    fonts,
		families: make(map[string]*canvas.FontFamily),
	}, nil
}

// WriteFile renders the tree and writes it to output. The output format
// follows the file extension, .pdf for artifacts and .svg for previews.
func (p *Painter) WriteFile(tree *LayoutTree, output string) error {
	c := canvas.New(pxToMM(tree.Width), pxToMM(tree.Height))
	ctx := canvas.NewContext(c)
	// Change coordination from bottom-left to top-left
	ctx.SetCoordSystem(canvas.CartesianIV)

	if err := p.draw(ctx, tree); err != nil {
		return err
	}

	if err := renderers.Write(output, c); err != nil {
		return fmt.Errorf("failed to write render output: %w", err)
	}

	return nil
}

func (p *Painter) draw(ctx *canvas.Context, tree *LayoutTree) error {
	if tree.BackgroundColor != "" {
		ctx.SetFillColor(canvas.Hex(tree.BackgroundColor))
		ctx.DrawPath(0, 0, canvas.Rectangle(pxToMM(tree.Width), pxToMM(tree.Height)))
	}

	for _, box := range tree.Boxes {
		if err := p.drawBox(ctx, box); err != nil {
			return fmt.Errorf("failed to draw element %s: %w", box.ID, err)
		}
	}

	return nil
}

func (p *Painter) drawBox(ctx *canvas.Context, box LayoutBox) error {
	ctx.Push()
	defer ctx.Pop()

	if box.Rotation != 0 {
		cx := pxToMM(box.X + box.Width/2)
		cy := pxToMM(box.Y + box.Height/2)
		ctx.ComposeView(canvas.Identity.RotateAbout(box.Rotation, cx, cy))
	}

	switch box.Type {
	case ElementTypeText, ElementTypeDynamic:
		return p.drawText(ctx, box)
	case ElementTypeShape:
		p.drawShape(ctx, box)
		return nil
	default:
		return fmt.Errorf("unknown element type: %s", box.Type)
	}
}

func (p *Painter) drawText(ctx *canvas.Context, box LayoutBox) error {
	if box.Text == "" {
		return nil
	}

	family, err := p.family(box.Font)
	if err != nil {
		return err
	}

	style := canvas.FontRegular
	if box.Font.Weight == FontWeightBold {
		style = canvas.FontBold
	}

	face := family.Face(box.Font.Size, withOpacity(canvas.Hex(box.Font.Color), box.Opacity), style, canvas.FontNormal)

	rt := canvas.NewRichText(face)
	rt.WriteString(box.Text)

	widthMM := pxToMM(box.Width)
	heightMM := pxToMM(box.Height)

	textBox := rt.ToText(widthMM, heightMM, canvas.Left, canvas.Top, 0.0, 0.0)
	textWidthMM, textHeightMM := textBox.Bounds().W(), textBox.Bounds().H()

	// Vertically centered inside the box, horizontal position by alignment.
	y := pxToMM(box.Y) + (heightMM-textHeightMM)/2

	var x float64
	switch box.Font.Align {
	case TextAlignLeft:
		x = pxToMM(box.X)
	case TextAlignRight:
		x = pxToMM(box.X) + widthMM - textWidthMM
	default:
		x = pxToMM(box.X) + (widthMM-textWidthMM)/2
	}

	ctx.DrawText(x, y, textBox)
	return nil
}

func (p *Painter) drawShape(ctx *canvas.Context, box LayoutBox) {
	ctx.SetFillColor(canvas.Transparent)
	ctx.SetStrokeColor(canvas.Transparent)

	if box.FillColor != "" {
		ctx.SetFillColor(withOpacity(canvas.Hex(box.FillColor), box.Opacity))
	}
	if box.BorderWidth > 0 && box.BorderColor != "" {
		ctx.SetStrokeColor(withOpacity(canvas.Hex(box.BorderColor), box.Opacity))
		ctx.SetStrokeWidth(pxToMM(box.BorderWidth))
		if box.BorderStyle == "dashed" {
			ctx.SetDashes(0.0, pxToMM(box.BorderWidth*3), pxToMM(box.BorderWidth*2))
		}
	}

	x := pxToMM(box.X)
	y := pxToMM(box.Y)
	w := pxToMM(box.Width)
	h := pxToMM(box.Height)

	switch box.Shape {
	case ShapeKindCircle:
		// Ellipse inscribed in the box, a non-square box stays an ellipse.
		ctx.DrawPath(x+w/2, y+h/2, canvas.Ellipse(w/2, h/2))
	case ShapeKindLine:
		line := &canvas.Path{}
		line.MoveTo(0, h/2)
		line.LineTo(w, h/2)
		ctx.DrawPath(x, y, line)
	default:
		ctx.DrawPath(x, y, canvas.Rectangle(w, h))
	}

	ctx.SetDashes(0.0)
}

func (p *Painter) family(font FontAttrs) (*canvas.FontFamily, error) {
	if family, ok := p.families[font.Name]; ok {
		return family, nil
	}

	style := canvas.FontRegular
	if font.Weight == FontWeightBold {
		style = canvas.FontBold
	}

	family, err := p.fonts.LoadFont(font.Name, style)
	if err != nil {
		return nil, err
	}

	p.families[font.Name] = family
	return family, nil
}

func withOpacity(c color.RGBA, opacity float64) color.RGBA {
	if opacity >= 1 || opacity <= 0 {
		return c
	}

	c.A = uint8(float64(c.A) * opacity)
	return c
}
