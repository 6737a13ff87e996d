package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openlearn/certforge/internal/constant"
	"github.com/openlearn/certforge/internal/model"
	"github.com/openlearn/certforge/internal/util"
	"github.com/openlearn/certforge/pkg/certforge"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const elementIdLength = 12

type TemplateMutationStore interface {
	Create(ctx context.Context, tx *gorm.DB, template *model.CertificateTemplate) (*model.CertificateTemplate, error)
	GetById(ctx context.Context, tx *gorm.DB, id string) (*model.CertificateTemplate, error)
	List(ctx context.Context, tx *gorm.DB, status constant.TemplateStatus, page, pageSize uint) (*[]model.CertificateTemplate, int64, error)
	Update(ctx context.Context, tx *gorm.DB, template *model.CertificateTemplate) error
	UpdateElements(ctx context.Context, tx *gorm.DB, template *model.CertificateTemplate) error
	UpdateStatus(ctx context.Context, tx *gorm.DB, id string, status constant.TemplateStatus) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error
}

// PreviewRenderer produces the editor's SVG rendition of a template.
type PreviewRenderer interface {
	RenderPreview(ctx context.Context, template *certforge.Template, values map[certforge.FieldKey]string, zoom float64) (string, error)
}

type TemplateParams struct {
	Name        string
	Description string
	Size        certforge.PageSize
	Orientation certforge.Orientation
	Background  string
	Actor       string
}

type TemplateService struct {
	logger    *zap.SugaredLogger
	clock     Clock
	templates TemplateMutationStore
	preview   PreviewRenderer
	audit     AuditSink
}

func NewTemplateService(logger *zap.SugaredLogger, clock Clock, templates TemplateMutationStore, preview PreviewRenderer, audit AuditSink) *TemplateService {
	return &TemplateService{
		logger:    logger,
		clock:     clock,
		templates: templates,
		preview:   preview,
		audit:     audit,
	}
}

func (s *TemplateService) Create(ctx context.Context, p TemplateParams) (*model.CertificateTemplate, error) {
	if p.Size == "" {
		p.Size = certforge.PageSizeA4
	}
	if p.Orientation == "" {
		p.Orientation = certforge.OrientationLandscape
	}
	if _, _, err := certforge.PageDimensions(p.Size, p.Orientation); err != nil {
		return nil, err
	}
	if p.Background == "" {
		p.Background = "#ffffff"
	}

	template := &model.CertificateTemplate{
		Name:        p.Name,
		Description: p.Description,
		Size:        p.Size,
		Orientation: p.Orientation,
		Background:  p.Background,
		Status:      constant.TemplateStatusDraft,
	}
	if err := template.SetElements(certforge.ElementList{}); err != nil {
		return nil, err
	}

	if _, err := s.templates.Create(ctx, nil, template); err != nil {
		return nil, fmt.Errorf("failed to create certificate template %s: %w", p.Name, err)
	}

	s.appendAudit(ctx, template.ID, constant.AuditActionCreated, p.Actor, fmt.Sprintf("certificate template %s created", template.Name))
	return template, nil
}

func (s *TemplateService) Get(ctx context.Context, id string) (*model.CertificateTemplate, error) {
	template, err := s.templates.GetById(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("certificate template %s not found", id)
		}
		return nil, fmt.Errorf("failed to load certificate template %s: %w", id, err)
	}
	return template, nil
}

func (s *TemplateService) List(ctx context.Context, status constant.TemplateStatus, page, pageSize uint) (*[]model.CertificateTemplate, int64, error) {
	return s.templates.List(ctx, nil, status, page, pageSize)
}

// Update changes template metadata. Archived templates are frozen.
func (s *TemplateService) Update(ctx context.Context, id string, p TemplateParams) (*model.CertificateTemplate, error) {
	template, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if template.Status == constant.TemplateStatusArchived {
		return nil, fmt.Errorf("certificate template %s is archived and cannot be edited", template.Name)
	}

	if p.Name != "" {
		template.Name = p.Name
	}
	template.Description = p.Description
	if p.Size != "" {
		template.Size = p.Size
	}
	if p.Orientation != "" {
		template.Orientation = p.Orientation
	}
	if _, _, err := certforge.PageDimensions(template.Size, template.Orientation); err != nil {
		return nil, err
	}
	if p.Background != "" {
		template.Background = p.Background
	}

	if err := s.templates.Update(ctx, nil, template); err != nil {
		return nil, fmt.Errorf("failed to update certificate template %s: %w", template.Name, err)
	}

	s.appendAudit(ctx, template.ID, constant.AuditActionUpdated, p.Actor, fmt.Sprintf("certificate template %s updated", template.Name))
	return template, nil
}

// AddElement appends an element to the template's draw order and assigns it
// an opaque id.
func (s *TemplateService) AddElement(ctx context.Context, templateId string, element certforge.Element) (certforge.Element, error) {
	id, err := util.GenerateNChar(elementIdLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate element id: %w", err)
	}
	element.Base().ID = id

	err = s.mutateElements(ctx, templateId, func(tpl *certforge.Template) error {
		tpl.AppendElement(element)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return element, nil
}

// UpdateElement replaces an element in place, keeping its id and z-order.
func (s *TemplateService) UpdateElement(ctx context.Context, templateId, elementId string, element certforge.Element) error {
	return s.mutateElements(ctx, templateId, func(tpl *certforge.Template) error {
		return tpl.ReplaceElement(elementId, element)
	})
}

func (s *TemplateService) MoveElement(ctx context.Context, templateId, elementId string, direction certforge.MoveDirection) error {
	return s.mutateElements(ctx, templateId, func(tpl *certforge.Template) error {
		return tpl.MoveElement(elementId, direction)
	})
}

func (s *TemplateService) RemoveElement(ctx context.Context, templateId, elementId string) error {
	return s.mutateElements(ctx, templateId, func(tpl *certforge.Template) error {
		return tpl.RemoveElement(elementId)
	})
}

func (s *TemplateService) mutateElements(ctx context.Context, templateId string, mutate func(tpl *certforge.Template) error) error {
	template, err := s.Get(ctx, templateId)
	if err != nil {
		return err
	}
	if template.Status == constant.TemplateStatusArchived {
		return fmt.Errorf("certificate template %s is archived and cannot be edited", template.Name)
	}

	tpl, err := template.ToRenderTemplate()
	if err != nil {
		return err
	}
	if err := mutate(tpl); err != nil {
		return err
	}
	if err := template.SetElements(tpl.Elements); err != nil {
		return err
	}

	if err := s.templates.UpdateElements(ctx, nil, template); err != nil {
		return fmt.Errorf("failed to store elements of template %s: %w", template.Name, err)
	}
	return nil
}

// Preview renders the template as an SVG with fabricated sample values. zoom
// scales the layout uniformly, zero or negative means 1.
func (s *TemplateService) Preview(ctx context.Context, templateId string, zoom float64) (string, error) {
	template, err := s.Get(ctx, templateId)
	if err != nil {
		return "", err
	}

	tpl, err := template.ToRenderTemplate()
	if err != nil {
		return "", err
	}

	values := certforge.ResolveFields(certforge.ModePreview, sampleResolveInput(s.clock.Now()), nil)
	return s.preview.RenderPreview(ctx, tpl, values, zoom)
}

// Activate makes a draft template issuable. A template with no elements would
// render a blank page, activation rejects it.
func (s *TemplateService) Activate(ctx context.Context, id, actor string) error {
	template, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if template.Status == constant.TemplateStatusArchived {
		return fmt.Errorf("certificate template %s is archived and cannot be activated", template.Name)
	}

	tpl, err := template.ToRenderTemplate()
	if err != nil {
		return err
	}
	if len(tpl.Elements) == 0 {
		return fmt.Errorf("certificate template %s has no elements", template.Name)
	}

	if err := s.templates.UpdateStatus(ctx, nil, template.ID, constant.TemplateStatusActive); err != nil {
		return fmt.Errorf("failed to activate certificate template %s: %w", template.Name, err)
	}

	s.appendAudit(ctx, template.ID, constant.AuditActionActivated, actor, fmt.Sprintf("certificate template %s activated", template.Name))
	return nil
}

// Archive retires a template from issuance. Already-issued certificates keep
// their frozen snapshots and artifacts.
func (s *TemplateService) Archive(ctx context.Context, id, actor string) error {
	template, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.templates.UpdateStatus(ctx, nil, template.ID, constant.TemplateStatusArchived); err != nil {
		return fmt.Errorf("failed to archive certificate template %s: %w", template.Name, err)
	}

	s.appendAudit(ctx, template.ID, constant.AuditActionArchived, actor, fmt.Sprintf("certificate template %s archived", template.Name))
	return nil
}

func (s *TemplateService) Delete(ctx context.Context, id, actor string) error {
	template, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.templates.Delete(ctx, nil, template.ID); err != nil {
		return fmt.Errorf("failed to delete certificate template %s: %w", template.Name, err)
	}

	s.appendAudit(ctx, template.ID, constant.AuditActionDeleted, actor, fmt.Sprintf("certificate template %s deleted", template.Name))
	return nil
}

func (s *TemplateService) appendAudit(ctx context.Context, templateId string, action constant.AuditAction, actor, description string) {
	if err := s.audit.Append(ctx, &model.AuditLog{
		Entity:      constant.AuditEntityTemplate,
		EntityID:    templateId,
		Action:      action,
		Actor:       actor,
		Description: description,
		Timestamp:   s.clock.Now(),
	}); err != nil {
		s.logger.Errorf("Audit append failed for template %s: %v", templateId, err)
	}
}

func sampleResolveInput(now time.Time) certforge.ResolveInput {
	return certforge.ResolveInput{
		StudentName:    "Student Name",
		StudentEmail:   "student@example.com",
		CourseName:     "Course Name",
		ClassName:      "Class Name",
		IssueDate:      now,
		CompletionDate: now,
	}
}
