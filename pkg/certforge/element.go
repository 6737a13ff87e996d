package certforge

import (
	"encoding/json"
	"fmt"
)

type ElementType string

const (
	ElementTypeText    ElementType = "text"
	ElementTypeDynamic ElementType = "dynamic"
	ElementTypeShape   ElementType = "shape"
)

type TextAlign string

const (
	TextAlignLeft   TextAlign = "left"
	TextAlignCenter TextAlign = "center"
	TextAlignRight  TextAlign = "right"
)

type FontWeight string

const (
	FontWeightRegular FontWeight = "regular"
	FontWeightBold    FontWeight = "bold"
)

type FontAttrs struct {
	Name   string     `json:"name"`
	Size   float64    `json:"size"`
	Color  string     `json:"color"`
	Weight FontWeight `json:"weight"`
	Align  TextAlign  `json:"align"`
}

// BaseElement carries the box every element variant shares. Coordinates are
// canvas px from the top-left corner.
type BaseElement struct {
	ID       string      `json:"id"`
	Type     ElementType `json:"type"`
	X        float64     `json:"x"`
	Y        float64     `json:"y"`
	Width    float64     `json:"width"`
	Height   float64     `json:"height"`
	Rotation float64     `json:"rotation"`
	Opacity  float64     `json:"opacity"`
}

// Element is the tagged union of template element variants. The renderer
// switches exhaustively on the concrete type.
type Element interface {
	Base() *BaseElement
}

type TextElement struct {
	BaseElement
	Content string    `json:"content"`
	Font    FontAttrs `json:"font"`
}

func (e *TextElement) Base() *BaseElement { return &e.BaseElement }

type DynamicElement struct {
	BaseElement
	Field  FieldKey  `json:"field"`
	Prefix string    `json:"prefix,omitempty"`
	Suffix string    `json:"suffix,omitempty"`
	Font   FontAttrs `json:"font"`
}

func (e *DynamicElement) Base() *BaseElement { return &e.BaseElement }

type ShapeKind string

const (
	ShapeKindRectangle ShapeKind = "rectangle"
	ShapeKindCircle    ShapeKind = "circle"
	ShapeKindLine      ShapeKind = "line"
)

type ShapeElement struct {
	BaseElement
	Kind        ShapeKind `json:"kind"`
	BorderWidth float64   `json:"borderWidth"`
	BorderColor string    `json:"borderColor"`
	BorderStyle string    `json:"borderStyle"`
	FillColor   string    `json:"fillColor"`
}

func (e *ShapeElement) Base() *BaseElement { return &e.BaseElement }

// ElementList round-trips the union through JSON, dispatching on the "type"
// tag. Stored as a jsonb column on the template row.
type ElementList []Element

func (l ElementList) MarshalJSON() ([]byte, error) {
	raw := make([]json.RawMessage, len(l))
	for i, el := range l {
		var (
			data []byte
			err  error
		)

		switch e := el.(type) {
		case *TextElement:
			e.Type = ElementTypeText
			data, err = json.Marshal(e)
		case *DynamicElement:
			e.Type = ElementTypeDynamic
			data, err = json.Marshal(e)
		case *ShapeElement:
			e.Type = ElementTypeShape
			data, err = json.Marshal(e)
		default:
			err = fmt.Errorf("unknown element type %T", el)
		}
		if err != nil {
			return nil, err
		}

		raw[i] = data
	}

	return json.Marshal(raw)
}

func (l *ElementList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(ElementList, 0, len(raw))
	for _, item := range raw {
		el, err := UnmarshalElement(item)
		if err != nil {
			return err
		}

		out = append(out, el)
	}

	*l = out
	return nil
}

// UnmarshalElement decodes a single element, dispatching on its "type" tag.
func UnmarshalElement(data []byte) (Element, error) {
	var tag struct {
		Type ElementType `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, err
	}

	var el Element
	switch tag.Type {
	case ElementTypeText:
		el = &TextElement{}
	case ElementTypeDynamic:
		el = &DynamicElement{}
	case ElementTypeShape:
		el = &ShapeElement{}
	default:
		return nil, fmt.Errorf("unknown element type: %s", tag.Type)
	}

	if err := json.Unmarshal(data, el); err != nil {
		return nil, err
	}

	return el, nil
}
