package certforge

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestElementListJSONDispatch(t *testing.T) {
	list := ElementList{
		&TextElement{
			BaseElement: BaseElement{ID: "t1", X: 10, Y: 20, Width: 300, Height: 40},
			Content:     "Awarded to",
			Font:        FontAttrs{Name: "Lora", Size: 18, Color: "#222222", Align: TextAlignCenter},
		},
		&DynamicElement{
			BaseElement: BaseElement{ID: "d1", X: 10, Y: 70, Width: 300, Height: 60},
			Field:       FieldStudentName,
			Suffix:      "!",
		},
		&ShapeElement{
			BaseElement: BaseElement{ID: "s1", X: 0, Y: 0, Width: 100, Height: 50},
			Kind:        ShapeKindCircle,
			BorderWidth: 2,
			BorderColor: "#000000",
		},
	}

	data, err := json.Marshal(list)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded ElementList
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if len(decoded) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(decoded))
	}

	if _, ok := decoded[0].(*TextElement); !ok {
		t.Errorf("expected TextElement at 0, got %T", decoded[0])
	}
	dyn, ok := decoded[1].(*DynamicElement)
	if !ok {
		t.Fatalf("expected DynamicElement at 1, got %T", decoded[1])
	}
	if dyn.Field != FieldStudentName || dyn.Suffix != "!" {
		t.Errorf("dynamic element lost attributes: %+v", dyn)
	}
	shape, ok := decoded[2].(*ShapeElement)
	if !ok {
		t.Fatalf("expected ShapeElement at 2, got %T", decoded[2])
	}
	if shape.Kind != ShapeKindCircle {
		t.Errorf("expected circle kind, got %s", shape.Kind)
	}
}

func TestElementListUnknownType(t *testing.T) {
	raw := `[{"id":"x1","type":"sticker"}]`

	var decoded ElementList
	err := json.Unmarshal([]byte(raw), &decoded)
	if err == nil {
		t.Fatal("expected error for unknown element type")
	}
	if !strings.Contains(err.Error(), "sticker") {
		t.Errorf("error should name the unknown type, got: %v", err)
	}
}
