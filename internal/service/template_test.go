package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/openlearn/certforge/internal/constant"
	"github.com/openlearn/certforge/internal/model"
	"github.com/openlearn/certforge/pkg/certforge"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeTemplateMutationStore struct {
	rows   map[string]*model.CertificateTemplate
	nextId int
}

func (f *fakeTemplateMutationStore) Create(ctx context.Context, tx *gorm.DB, template *model.CertificateTemplate) (*model.CertificateTemplate, error) {
	f.nextId++
	template.ID = fmt.Sprintf("template-%d", f.nextId)
	f.rows[template.ID] = template
	return template, nil
}

func (f *fakeTemplateMutationStore) GetById(ctx context.Context, tx *gorm.DB, id string) (*model.CertificateTemplate, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (f *fakeTemplateMutationStore) List(ctx context.Context, tx *gorm.DB, status constant.TemplateStatus, page, pageSize uint) (*[]model.CertificateTemplate, int64, error) {
	var rows []model.CertificateTemplate
	for _, row := range f.rows {
		if status == "" || row.Status == status {
			rows = append(rows, *row)
		}
	}
	return &rows, int64(len(rows)), nil
}

func (f *fakeTemplateMutationStore) Update(ctx context.Context, tx *gorm.DB, template *model.CertificateTemplate) error {
	f.rows[template.ID] = template
	return nil
}

func (f *fakeTemplateMutationStore) UpdateElements(ctx context.Context, tx *gorm.DB, template *model.CertificateTemplate) error {
	f.rows[template.ID] = template
	return nil
}

func (f *fakeTemplateMutationStore) UpdateStatus(ctx context.Context, tx *gorm.DB, id string, status constant.TemplateStatus) error {
	row, ok := f.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	row.Status = status
	return nil
}

func (f *fakeTemplateMutationStore) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	delete(f.rows, id)
	return nil
}

type fakePreviewRenderer struct {
	calls []float64
}

func (f *fakePreviewRenderer) RenderPreview(ctx context.Context, template *certforge.Template, values map[certforge.FieldKey]string, zoom float64) (string, error) {
	f.calls = append(f.calls, zoom)
	return "/tmp/preview.svg", nil
}

func newTemplateFixture(t *testing.T) (*fakeTemplateMutationStore, *fakePreviewRenderer, *fakeAuditSink, *TemplateService) {
	t.Helper()

	store := &fakeTemplateMutationStore{rows: map[string]*model.CertificateTemplate{}}
	preview := &fakePreviewRenderer{}
	audit := &fakeAuditSink{}
	clock := fixedClock{at: time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)}
	return store, preview, audit, NewTemplateService(zap.NewNop().Sugar(), clock, store, preview, audit)
}

func TestTemplateCreate(t *testing.T) {
	_, _, audit, service := newTemplateFixture(t)

	template, err := service.Create(context.Background(), TemplateParams{Name: "Completion", Actor: "admin-1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if template.Status != constant.TemplateStatusDraft {
		t.Errorf("status = %q, want draft", template.Status)
	}
	if template.Size != certforge.PageSizeA4 || template.Orientation != certforge.OrientationLandscape {
		t.Errorf("defaults not applied: size=%q orientation=%q", template.Size, template.Orientation)
	}
	if w, h, _ := template.Dimensions(); w != 1122 || h != 793 {
		t.Errorf("dimensions = %gx%g, want 1122x793", w, h)
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != constant.AuditActionCreated {
		t.Errorf("expected a created audit entry, got %+v", audit.entries)
	}
}

func TestTemplateCreateRejectsUnknownSize(t *testing.T) {
	_, _, _, service := newTemplateFixture(t)

	_, err := service.Create(context.Background(), TemplateParams{Name: "Bad", Size: "A5", Actor: "admin-1"})
	if err == nil {
		t.Fatal("expected unknown page size to be rejected")
	}
}

func TestTemplateElementOps(t *testing.T) {
	store, _, _, service := newTemplateFixture(t)

	template, err := service.Create(context.Background(), TemplateParams{Name: "Completion", Actor: "admin-1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	first, err := service.AddElement(context.Background(), template.ID, &certforge.TextElement{
		BaseElement: certforge.BaseElement{Type: certforge.ElementTypeText, X: 10, Y: 20, Width: 300, Height: 40},
		Content:     "Certificate of Completion",
	})
	if err != nil {
		t.Fatalf("AddElement: %v", err)
	}
	if first.Base().ID == "" {
		t.Fatal("added element should get an id")
	}

	second, err := service.AddElement(context.Background(), template.ID, &certforge.DynamicElement{
		BaseElement: certforge.BaseElement{Type: certforge.ElementTypeDynamic, X: 10, Y: 80, Width: 300, Height: 40},
		Field:       certforge.FieldStudentName,
	})
	if err != nil {
		t.Fatalf("AddElement: %v", err)
	}

	if err := service.MoveElement(context.Background(), template.ID, second.Base().ID, certforge.MoveUp); err != nil {
		t.Fatalf("MoveElement: %v", err)
	}

	tpl, err := store.rows[template.ID].ToRenderTemplate()
	if err != nil {
		t.Fatalf("ToRenderTemplate: %v", err)
	}
	if len(tpl.Elements) != 2 {
		t.Fatalf("got %d elements, want 2", len(tpl.Elements))
	}
	if tpl.Elements[0].Base().ID != second.Base().ID {
		t.Errorf("move should have swapped the elements, order = [%s, %s]", tpl.Elements[0].Base().ID, tpl.Elements[1].Base().ID)
	}

	if err := service.RemoveElement(context.Background(), template.ID, first.Base().ID); err != nil {
		t.Fatalf("RemoveElement: %v", err)
	}
	tpl, _ = store.rows[template.ID].ToRenderTemplate()
	if len(tpl.Elements) != 1 || tpl.Elements[0].Base().ID != second.Base().ID {
		t.Errorf("remove should compact the list around the survivor")
	}
}

func TestTemplateLifecycle(t *testing.T) {
	_, _, _, service := newTemplateFixture(t)

	template, err := service.Create(context.Background(), TemplateParams{Name: "Completion", Actor: "admin-1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	err = service.Activate(context.Background(), template.ID, "admin-1")
	if err == nil || !strings.Contains(err.Error(), "no elements") {
		t.Fatalf("empty template must not activate, got %v", err)
	}

	if _, err := service.AddElement(context.Background(), template.ID, &certforge.TextElement{
		BaseElement: certforge.BaseElement{Type: certforge.ElementTypeText, Width: 100, Height: 20},
		Content:     "hello",
	}); err != nil {
		t.Fatalf("AddElement: %v", err)
	}
	if err := service.Activate(context.Background(), template.ID, "admin-1"); err != nil {
		t.Fatalf("Activate: %v", err)
	}

	if err := service.Archive(context.Background(), template.ID, "admin-1"); err != nil {
		t.Fatalf("Archive: %v", err)
	}

	_, err = service.AddElement(context.Background(), template.ID, &certforge.TextElement{
		BaseElement: certforge.BaseElement{Type: certforge.ElementTypeText},
	})
	if err == nil || !strings.Contains(err.Error(), "archived") {
		t.Errorf("archived template must reject element edits, got %v", err)
	}

	if err := service.Activate(context.Background(), template.ID, "admin-1"); err == nil {
		t.Error("archived template must not re-activate")
	}
}

func TestTemplatePreview(t *testing.T) {
	_, preview, _, service := newTemplateFixture(t)

	template, err := service.Create(context.Background(), TemplateParams{Name: "Completion", Actor: "admin-1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	path, err := service.Preview(context.Background(), template.ID, 0.5)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if path == "" {
		t.Error("preview should return the rendered path")
	}
	if len(preview.calls) != 1 || preview.calls[0] != 0.5 {
		t.Errorf("preview zoom = %v, want [0.5]", preview.calls)
	}
}
