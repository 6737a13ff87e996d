package certforge

import (
	"fmt"
)

type PageSize string

const (
	PageSizeA4     PageSize = "A4"
	PageSizeLetter PageSize = "Letter"
)

type Orientation string

const (
	OrientationPortrait  Orientation = "portrait"
	OrientationLandscape Orientation = "landscape"
)

// Canvas dimensions in px at 96 CSS px/in. Width and height are always derived
// from (size, orientation), never stored independently.
var pageDimensions = map[PageSize][2]float64{
	// portrait width x height
	PageSizeA4:     {793, 1122},
	PageSizeLetter: {816, 1056},
}

func PageDimensions(size PageSize, orientation Orientation) (float64, float64, error) {
	dims, ok := pageDimensions[size]
	if !ok {
		return 0, 0, fmt.Errorf("unknown page size: %s", size)
	}

	switch orientation {
	case OrientationPortrait:
		return dims[0], dims[1], nil
	case OrientationLandscape:
		return dims[1], dims[0], nil
	default:
		return 0, 0, fmt.Errorf("unknown orientation: %s", orientation)
	}
}

// Template is a reusable certificate design: a fixed-size canvas plus an
// ordered element list. Slice order is z-order, ascending is back-to-front.
type Template struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Size            PageSize    `json:"size"`
	Orientation     Orientation `json:"orientation"`
	BackgroundColor string      `json:"backgroundColor"`
	// Object name of an optional background image in the artifact store,
	// empty when the canvas is a plain color.
	BackgroundImage string      `json:"backgroundImage,omitempty"`
	Elements        ElementList `json:"elements"`
}

func (t *Template) Width() float64 {
	w, _, err := PageDimensions(t.Size, t.Orientation)
	if err != nil {
		return 0
	}
	return w
}

func (t *Template) Height() float64 {
	_, h, err := PageDimensions(t.Size, t.Orientation)
	if err != nil {
		return 0
	}
	return h
}

func (t *Template) FindElement(id string) (int, Element) {
	for i, el := range t.Elements {
		if el.Base().ID == id {
			return i, el
		}
	}
	return -1, nil
}

func (t *Template) AppendElement(el Element) {
	t.Elements = append(t.Elements, el)
}

func (t *Template) ReplaceElement(id string, el Element) error {
	i, _ := t.FindElement(id)
	if i < 0 {
		return fmt.Errorf("element %s not found", id)
	}

	el.Base().ID = id
	t.Elements[i] = el
	return nil
}

// RemoveElement deletes the element and compacts the list, no gaps remain.
func (t *Template) RemoveElement(id string) error {
	i, _ := t.FindElement(id)
	if i < 0 {
		return fmt.Errorf("element %s not found", id)
	}

	t.Elements = append(t.Elements[:i], t.Elements[i+1:]...)
	return nil
}

type MoveDirection int

const (
	MoveUp MoveDirection = iota
	MoveDown
)

// MoveElement swaps the element with its adjacent neighbor. Moving the first
// element down or the last element up is a no-op.
func (t *Template) MoveElement(id string, direction MoveDirection) error {
	i, _ := t.FindElement(id)
	if i < 0 {
		return fmt.Errorf("element %s not found", id)
	}

	j := i
	switch direction {
	case MoveUp:
		j = i + 1
	case MoveDown:
		j = i - 1
	}

	if j < 0 || j >= len(t.Elements) {
		return nil
	}

	t.Elements[i], t.Elements[j] = t.Elements[j], t.Elements[i]
	return nil
}
