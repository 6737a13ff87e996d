package certforge

import (
	"testing"
)

func TestPageDimensions(t *testing.T) {
	tests := []struct {
		name        string
		size        PageSize
		orientation Orientation
		wantWidth   float64
		wantHeight  float64
		wantErr     bool
	}{
		{name: "A4 portrait", size: PageSizeA4, orientation: OrientationPortrait, wantWidth: 793, wantHeight: 1122},
		{name: "A4 landscape", size: PageSizeA4, orientation: OrientationLandscape, wantWidth: 1122, wantHeight: 793},
		{name: "Letter portrait", size: PageSizeLetter, orientation: OrientationPortrait, wantWidth: 816, wantHeight: 1056},
		{name: "Letter landscape", size: PageSizeLetter, orientation: OrientationLandscape, wantWidth: 1056, wantHeight: 816},
		{name: "Unknown size", size: PageSize("A5"), orientation: OrientationPortrait, wantErr: true},
		{name: "Unknown orientation", size: PageSizeA4, orientation: Orientation("sideways"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := PageDimensions(tt.size, tt.orientation)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %fx%f", w, h)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if w != tt.wantWidth || h != tt.wantHeight {
				t.Errorf("expected %fx%f, got %fx%f", tt.wantWidth, tt.wantHeight, w, h)
			}
		})
	}
}

func testTemplate() *Template {
	return &Template{
		ID:          "tpl-1",
		Name:        "Completion",
		Size:        PageSizeA4,
		Orientation: OrientationLandscape,
		Elements: ElementList{
			&TextElement{BaseElement: BaseElement{ID: "a"}, Content: "Certificate of Completion"},
			&DynamicElement{BaseElement: BaseElement{ID: "b"}, Field: FieldStudentName},
			&ShapeElement{BaseElement: BaseElement{ID: "c"}, Kind: ShapeKindRectangle},
		},
	}
}

func elementIDs(tpl *Template) []string {
	ids := make([]string, len(tpl.Elements))
	for i, el := range tpl.Elements {
		ids[i] = el.Base().ID
	}
	return ids
}

func TestMoveElement(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		direction MoveDirection
		want      []string
	}{
		{name: "Move middle up", id: "b", direction: MoveUp, want: []string{"a", "c", "b"}},
		{name: "Move middle down", id: "b", direction: MoveDown, want: []string{"b", "a", "c"}},
		{name: "Move last up is no-op", id: "c", direction: MoveUp, want: []string{"a", "b", "c"}},
		{name: "Move first down is no-op", id: "a", direction: MoveDown, want: []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := testTemplate()
			if err := tpl.MoveElement(tt.id, tt.direction); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got := elementIDs(tpl)
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("expected order %v, got %v", tt.want, got)
				}
			}
		})
	}

	t.Run("Unknown element", func(t *testing.T) {
		tpl := testTemplate()
		if err := tpl.MoveElement("nope", MoveUp); err == nil {
			t.Error("expected error for unknown element")
		}
	})
}

func TestRemoveElementCompactsList(t *testing.T) {
	tpl := testTemplate()

	if err := tpl.RemoveElement("b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := elementIDs(tpl)
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("expected [a c], got %v", got)
	}

	if err := tpl.RemoveElement("b"); err == nil {
		t.Error("expected error removing missing element")
	}
}

func TestReplaceElementKeepsID(t *testing.T) {
	tpl := testTemplate()

	err := tpl.ReplaceElement("b", &DynamicElement{Field: FieldCourseName})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, el := tpl.FindElement("b")
	dyn, ok := el.(*DynamicElement)
	if !ok {
		t.Fatalf("expected dynamic element, got %T", el)
	}
	if dyn.Field != FieldCourseName {
		t.Errorf("expected field %s, got %s", FieldCourseName, dyn.Field)
	}
}
