package certforge

// LayoutBox is one fully resolved element, absolute px coordinates, ready for
// an output adapter. Boxes appear in painter's order, first is furthest back.
type LayoutBox struct {
	ID       string
	Type     ElementType
	X        float64
	Y        float64
	Width    float64
	Height   float64
	Rotation float64
	Opacity  float64

	// Text and dynamic variants.
	Text string
	Font FontAttrs

	// Shape variant. Ellipse marks a circle-kind shape, it renders as the
	// ellipse inscribed in the box rather than being forced square.
	Shape       ShapeKind
	Ellipse     bool
	BorderWidth float64
	BorderColor string
	BorderStyle string
	FillColor   string
}

// LayoutTree is the renderer's output: an abstract drawable surface of exactly
// Width x Height logical units. Both the SVG preview and the PDF artifact
// consume the same tree, only the adapter differs.
type LayoutTree struct {
	Width           float64
	Height          float64
	BackgroundColor string
	BackgroundImage string
	Boxes           []LayoutBox
}

// Layout resolves a template snapshot against field values into a LayoutTree.
// It is a pure function: identical inputs yield identical trees.
//
// zoom scales x, y, width, height, border and font sizes uniformly so a
// zoomed preview stays visually identical to the unscaled layout. zoom <= 0
// means no scaling.
func Layout(t *Template, values map[FieldKey]string, zoom float64) *LayoutTree {
	if zoom <= 0 {
		zoom = 1
	}

	tree := &LayoutTree{
		Width:           t.Width() * zoom,
		Height:          t.Height() * zoom,
		BackgroundColor: t.BackgroundColor,
		BackgroundImage: t.BackgroundImage,
		Boxes:           make([]LayoutBox, 0, len(t.Elements)),
	}

	for _, el := range t.Elements {
		base := el.Base()
		box := LayoutBox{
			ID:       base.ID,
			X:        base.X * zoom,
			Y:        base.Y * zoom,
			Width:    base.Width * zoom,
			Height:   base.Height * zoom,
			Rotation: base.Rotation,
			Opacity:  base.Opacity,
		}
		if box.Opacity == 0 {
			box.Opacity = 1
		}

		switch e := el.(type) {
		case *TextElement:
			box.Type = ElementTypeText
			box.Text = e.Content
			box.Font = scaleFont(e.Font, zoom)
		case *DynamicElement:
			box.Type = ElementTypeDynamic
			// Unknown key resolves to the empty string, a broken element
			// must not block the rest of the render.
			box.Text = e.Prefix + values[e.Field] + e.Suffix
			box.Font = scaleFont(e.Font, zoom)
		case *ShapeElement:
			box.Type = ElementTypeShape
			box.Shape = e.Kind
			box.Ellipse = e.Kind == ShapeKindCircle
			box.BorderWidth = e.BorderWidth * zoom
			box.BorderColor = e.BorderColor
			box.BorderStyle = e.BorderStyle
			box.FillColor = e.FillColor
		default:
			continue
		}

		tree.Boxes = append(tree.Boxes, box)
	}

	return tree
}

func scaleFont(f FontAttrs, zoom float64) FontAttrs {
	f.Size = f.Size * zoom
	return f
}
