package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/openlearn/certforge/internal/constant"
	"github.com/openlearn/certforge/internal/middleware"
	"github.com/openlearn/certforge/internal/queue"
	"github.com/openlearn/certforge/internal/service"
	"github.com/openlearn/certforge/internal/util"
	"github.com/openlearn/certforge/pkg/certforge"
	"gorm.io/gorm"
)

type IssuanceController struct {
	*baseController
	Queue *queue.RabbitMQ
}

type IssueRequest struct {
	StudentID    string            `json:"studentId" form:"studentId" binding:"required,strNotEmpty"`
	EnrollmentID *string           `json:"enrollmentId" form:"enrollmentId" binding:"omitempty"`
	Notes        string            `json:"notes" form:"notes" binding:"omitempty"`
	Overrides    map[string]string `json:"overrides" form:"overrides" binding:"omitempty"`
	SkipExisting bool              `json:"skipExisting" form:"skipExisting" binding:"omitempty"`
}

func (ic IssuanceController) Issue(ctx *gin.Context) {
	templateId := ctx.Params.ByName("templateId")
	if templateId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Template id is required", util.GenerateErrorMessages(errors.New(ErrTemplateIdRequired), "templateId"), nil)
		return
	}

	var params IssueRequest
	if err := ctx.ShouldBindJSON(&params); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	overrides := make(map[certforge.FieldKey]string, len(params.Overrides))
	for key, val := range params.Overrides {
		overrides[certforge.FieldKey(key)] = val
	}

	result := ic.svc.Issuance.Issue(ctx, service.IssueParams{
		CertificateID: templateId,
		StudentID:     params.StudentID,
		EnrollmentID:  params.EnrollmentID,
		Notes:         params.Notes,
		Overrides:     overrides,
		SkipExisting:  params.SkipExisting,
		Actor:         middleware.GetActor(ctx),
	})

	switch result.Status {
	case service.IssueStatusIssued:
		util.ResponseSuccess(ctx, gin.H{
			"issuance": result.Issuance,
			"message":  result.Message,
		})
	case service.IssueStatusSkipped:
		util.ResponseSuccess(ctx, gin.H{
			"issuance": result.Issuance,
			"skipped":  true,
			"message":  result.Message,
		})
	case service.IssueStatusConflict:
		util.ResponseFailed(ctx, http.StatusConflict, result.Message, util.GenerateErrorMessages(errors.New(result.Message), "duplicate"), gin.H{
			"issuance": result.Issuance,
		})
	default:
		util.ResponseFailed(ctx, http.StatusUnprocessableEntity, result.Message, util.GenerateErrorMessages(errors.New(result.Message)), nil)
	}
}

type BulkIssueRequest struct {
	StudentIDs   []string `json:"studentIds" form:"studentIds" binding:"required,min=1"`
	CourseID     *string  `json:"courseId" form:"courseId" binding:"omitempty"`
	ClassID      *string  `json:"classId" form:"classId" binding:"omitempty"`
	Notes        string   `json:"notes" form:"notes" binding:"omitempty"`
	SkipExisting bool     `json:"skipExisting" form:"skipExisting" binding:"omitempty"`
}

// BulkIssue runs small batches inside the request and pushes large ones to
// the queue.
func (ic IssuanceController) BulkIssue(ctx *gin.Context) {
	templateId := ctx.Params.ByName("templateId")
	if templateId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Template id is required", util.GenerateErrorMessages(errors.New(ErrTemplateIdRequired), "templateId"), nil)
		return
	}

	var params BulkIssueRequest
	if err := ctx.ShouldBindJSON(&params); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	actor := middleware.GetActor(ctx)

	if ic.Queue != nil && len(params.StudentIDs) > ic.app.Config.App.MaxInlineBulkTargets {
		payload := queue.NewBulkIssuePayload(templateId, params.StudentIDs, params.CourseID, params.ClassID, params.Notes, params.SkipExisting, actor)
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to enqueue bulk issuance", util.GenerateErrorMessages(err), nil)
			return
		}

		if err := ic.Queue.Publish(queue.QueueBulkIssue, payloadBytes); err != nil {
			util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to enqueue bulk issuance", util.GenerateErrorMessages(err), nil)
			return
		}

		util.ResponseSuccess(ctx, gin.H{
			"queued":       true,
			"studentCount": len(params.StudentIDs),
		})
		return
	}

	result := ic.svc.Bulk.BulkIssue(ctx, service.BulkIssueParams{
		CertificateID: templateId,
		StudentIDs:    params.StudentIDs,
		CourseID:      params.CourseID,
		ClassID:       params.ClassID,
		Notes:         params.Notes,
		SkipExisting:  params.SkipExisting,
		Actor:         actor,
	})

	util.ResponseSuccess(ctx, gin.H{"result": result})
}

type ListIssuancesRequest struct {
	Page     uint `json:"page" form:"page" binding:"omitempty"`
	PageSize uint `json:"pageSize" form:"pageSize" binding:"omitempty"`
}

func (ic IssuanceController) ListByTemplate(ctx *gin.Context) {
	templateId := ctx.Params.ByName("templateId")
	if templateId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Template id is required", util.GenerateErrorMessages(errors.New(ErrTemplateIdRequired), "templateId"), nil)
		return
	}

	var params ListIssuancesRequest
	if err := ctx.ShouldBindQuery(&params); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	if params.Page == 0 {
		params.Page = 1
	}
	if params.PageSize == 0 {
		params.PageSize = constant.DefaultPageSize
	}
	if params.PageSize > constant.MaxPageSize {
		params.PageSize = constant.MaxPageSize
	}

	issuances, totalCount, err := ic.app.Repository.Issuance.ListByTemplate(ctx, nil, templateId, params.Page, params.PageSize)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to get issuance list", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"total":     totalCount,
		"issuances": issuances,
		"page":      params.Page,
		"pageSize":  params.PageSize,
		"totalPage": util.CalculateTotalPage(totalCount, params.PageSize),
	})
}

func (ic IssuanceController) ListByStudent(ctx *gin.Context) {
	studentId := ctx.Params.ByName("studentId")
	if studentId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Student id is required", util.GenerateErrorMessages(errors.New("student id is required"), "studentId"), nil)
		return
	}

	issuances, err := ic.app.Repository.Issuance.ListByStudent(ctx, nil, studentId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to get issuance list", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{"issuances": issuances})
}

// Download responds with a presigned URL for the issued artifact.
func (ic IssuanceController) Download(ctx *gin.Context) {
	issuanceId := ctx.Params.ByName("issuanceId")
	if issuanceId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Issuance id is required", util.GenerateErrorMessages(errors.New(ErrIssuanceIdRequired), "issuanceId"), nil)
		return
	}

	issuance, err := ic.app.Repository.Issuance.GetById(ctx, nil, issuanceId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.ResponseFailed(ctx, http.StatusNotFound, "Certificate issuance not found", util.GenerateErrorMessages(errors.New(ErrIssuanceNotFound), "notFound"), nil)
			return
		}
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to get issuance", util.GenerateErrorMessages(err), nil)
		return
	}

	url, err := issuance.ArtifactFile.ToPresignedUrl(ctx, ic.app.S3)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to get presigned URL for certificate", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"certificateNumber": issuance.CertificateNumber,
		"url":               url,
	})
}

// DownloadZip bundles every issued artifact of a template into one zip and
// streams it.
func (ic IssuanceController) DownloadZip(ctx *gin.Context) {
	templateId := ctx.Params.ByName("templateId")
	if templateId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Template id is required", util.GenerateErrorMessages(errors.New(ErrTemplateIdRequired), "templateId"), nil)
		return
	}

	issuances, _, err := ic.app.Repository.Issuance.ListByTemplate(ctx, nil, templateId, 1, constant.MaxPageSize)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to get issuance list", util.GenerateErrorMessages(err), nil)
		return
	}

	if issuances == nil || len(*issuances) == 0 {
		util.ResponseFailed(ctx, http.StatusNotFound, "No certificates issued for this template", util.GenerateErrorMessages(errors.New("no certificates issued"), "notFound"), nil)
		return
	}

	tempDir, err := os.MkdirTemp("", "certforge_zip_*")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Error creating temporary directory", util.GenerateErrorMessages(err), nil)
		return
	}
	defer os.RemoveAll(tempDir)

	downloadDir := filepath.Join(tempDir, "certificates")
	if err := os.MkdirAll(downloadDir, 0755); err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Error creating download directory", util.GenerateErrorMessages(err), nil)
		return
	}

	for _, issuance := range *issuances {
		if issuance.Status != constant.IssuanceStatusIssued || issuance.ArtifactFileId == "" {
			continue
		}

		localPath := filepath.Join(downloadDir, fmt.Sprintf("%s.pdf", issuance.CertificateNumber))
		if err := issuance.ArtifactFile.DownloadToLocal(ctx, ic.app.S3, localPath); err != nil {
			util.ResponseFailed(ctx, http.StatusInternalServerError, "Error downloading certificate", util.GenerateErrorMessages(err), nil)
			return
		}
	}

	zipPath := filepath.Join(tempDir, fmt.Sprintf("certificates_%s.zip", templateId))
	if err := util.ZipDir(downloadDir, zipPath); err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Error creating zip archive", util.GenerateErrorMessages(err), nil)
		return
	}

	ctx.FileAttachment(zipPath, filepath.Base(zipPath))
}

type RevokeRequest struct {
	Reason string `json:"reason" form:"reason" binding:"required,strNotEmpty"`
}

func (ic IssuanceController) Revoke(ctx *gin.Context) {
	issuanceId := ctx.Params.ByName("issuanceId")
	if issuanceId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Issuance id is required", util.GenerateErrorMessages(errors.New(ErrIssuanceIdRequired), "issuanceId"), nil)
		return
	}

	var params RevokeRequest
	if err := ctx.ShouldBindJSON(&params); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Revocation reason is required", util.GenerateErrorMessages(err), nil)
		return
	}

	if err := ic.svc.Issuance.Revoke(ctx, issuanceId, params.Reason, middleware.GetActor(ctx)); err != nil {
		switch {
		case strings.Contains(err.Error(), "not found"):
			util.ResponseFailed(ctx, http.StatusNotFound, "Certificate issuance not found", util.GenerateErrorMessages(err, "notFound"), nil)
		case strings.Contains(err.Error(), "already revoked"):
			util.ResponseFailed(ctx, http.StatusConflict, "Certificate is already revoked", util.GenerateErrorMessages(err), nil)
		default:
			util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to revoke certificate", util.GenerateErrorMessages(err), nil)
		}
		return
	}

	util.ResponseSuccess(ctx, nil)
}

func (ic IssuanceController) Delete(ctx *gin.Context) {
	issuanceId := ctx.Params.ByName("issuanceId")
	if issuanceId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Issuance id is required", util.GenerateErrorMessages(errors.New(ErrIssuanceIdRequired), "issuanceId"), nil)
		return
	}

	if err := ic.svc.Issuance.Delete(ctx, issuanceId, middleware.GetActor(ctx)); err != nil {
		if strings.Contains(err.Error(), "not found") {
			util.ResponseFailed(ctx, http.StatusNotFound, "Certificate issuance not found", util.GenerateErrorMessages(err, "notFound"), nil)
			return
		}
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to delete certificate issuance", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, nil)
}
