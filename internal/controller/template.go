package controller

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/openlearn/certforge/internal/constant"
	"github.com/openlearn/certforge/internal/middleware"
	"github.com/openlearn/certforge/internal/model"
	"github.com/openlearn/certforge/internal/service"
	"github.com/openlearn/certforge/internal/util"
	"github.com/openlearn/certforge/pkg/certforge"
)

type TemplateController struct {
	*baseController
}

type TemplateRequest struct {
	Name        string                `json:"name" form:"name" binding:"omitempty,strNotEmpty"`
	Description string                `json:"description" form:"description" binding:"omitempty"`
	Size        certforge.PageSize    `json:"size" form:"size" binding:"omitempty"`
	Orientation certforge.Orientation `json:"orientation" form:"orientation" binding:"omitempty"`
	Background  string                `json:"background" form:"background" binding:"omitempty"`
}

func (tc TemplateController) Create(ctx *gin.Context) {
	var params TemplateRequest
	if err := ctx.ShouldBindJSON(&params); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}
	if params.Name == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Template name is required", util.GenerateErrorMessages(errors.New("name is required"), "name"), nil)
		return
	}

	template, err := tc.svc.Template.Create(ctx, tc.templateParams(ctx, params))
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Failed to create certificate template", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{"template": template})
}

func (tc TemplateController) templateParams(ctx *gin.Context, params TemplateRequest) service.TemplateParams {
	return service.TemplateParams{
		Name:        params.Name,
		Description: params.Description,
		Size:        params.Size,
		Orientation: params.Orientation,
		Background:  params.Background,
		Actor:       middleware.GetActor(ctx),
	}
}

func (tc TemplateController) Get(ctx *gin.Context) {
	templateId := ctx.Params.ByName("templateId")
	if templateId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Template id is required", util.GenerateErrorMessages(errors.New(ErrTemplateIdRequired), "templateId"), nil)
		return
	}

	template, err := tc.svc.Template.Get(ctx, templateId)
	if err != nil {
		tc.respondTemplateErr(ctx, err)
		return
	}

	backgroundUrl := ""
	if template.BackgroundFile != nil {
		backgroundUrl, err = template.BackgroundFile.ToPresignedUrl(ctx, tc.app.S3)
		if err != nil {
			util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to get presigned URL for background", util.GenerateErrorMessages(err), nil)
			return
		}
	}

	util.ResponseSuccess(ctx, gin.H{
		"template":      template,
		"backgroundUrl": backgroundUrl,
	})
}

type ListTemplatesRequest struct {
	Page     uint                    `json:"page" form:"page" binding:"omitempty"`
	PageSize uint                    `json:"pageSize" form:"pageSize" binding:"omitempty"`
	Status   constant.TemplateStatus `json:"status" form:"status" binding:"omitempty"`
}

func (tc TemplateController) List(ctx *gin.Context) {
	var params ListTemplatesRequest
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

	templates, totalCount, err := tc.svc.Template.List(ctx, params.Status, params.Page, params.PageSize)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to get template list", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"total":     totalCount,
		"templates": templates,
		"page":      params.Page,
		"pageSize":  params.PageSize,
		"totalPage": util.CalculateTotalPage(totalCount, params.PageSize),
		"status":    params.Status,
	})
}

func (tc TemplateController) Update(ctx *gin.Context) {
	templateId := ctx.Params.ByName("templateId")
	if templateId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Template id is required", util.GenerateErrorMessages(errors.New(ErrTemplateIdRequired), "templateId"), nil)
		return
	}

	var params TemplateRequest
	if err := ctx.ShouldBindJSON(&params); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	template, err := tc.svc.Template.Update(ctx, templateId, tc.templateParams(ctx, params))
	if err != nil {
		tc.respondTemplateErr(ctx, err)
		return
	}

	util.ResponseSuccess(ctx, gin.H{"template": template})
}

func (tc TemplateController) Delete(ctx *gin.Context) {
	templateId := ctx.Params.ByName("templateId")
	if templateId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Template id is required", util.GenerateErrorMessages(errors.New(ErrTemplateIdRequired), "templateId"), nil)
		return
	}

	if err := tc.svc.Template.Delete(ctx, templateId, middleware.GetActor(ctx)); err != nil {
		tc.respondTemplateErr(ctx, err)
		return
	}

	util.ResponseSuccess(ctx, nil)
}

// UploadBackground stores the uploaded image and links it to the template.
func (tc TemplateController) UploadBackground(ctx *gin.Context) {
	templateId := ctx.Params.ByName("templateId")
	if templateId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Template id is required", util.GenerateErrorMessages(errors.New(ErrTemplateIdRequired), "templateId"), nil)
		return
	}

	template, err := tc.svc.Template.Get(ctx, templateId)
	if err != nil {
		tc.respondTemplateErr(ctx, err)
		return
	}

	fileHeader, err := ctx.FormFile("background")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Background file is required", util.GenerateErrorMessages(err, "background"), nil)
		return
	}

	info, err := util.UploadFileToS3ByFileHeader(fileHeader, &util.FileUploadOptions{
		DirectoryPath: util.GetTemplateDirectoryPath(template.ID),
		UniquePrefix:  true,
		Bucket:        tc.app.Config.Minio.Bucket,
		S3:            tc.app.S3,
	})
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to upload background", util.GenerateErrorMessages(err), nil)
		return
	}

	file, err := tc.app.Repository.File.Create(ctx, nil, &model.File{
		FileName:       fileHeader.Filename,
		UniqueFileName: info.Key,
		BucketName:     info.Bucket,
		Size:           info.Size,
	})
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to record background file", util.GenerateErrorMessages(err), nil)
		return
	}

	template.BackgroundFileId = &file.ID
	if err := tc.app.Repository.Template.Update(ctx, nil, template); err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to link background to template", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{"file": file})
}

func (tc TemplateController) AddElement(ctx *gin.Context) {
	templateId := ctx.Params.ByName("templateId")
	if templateId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Template id is required", util.GenerateErrorMessages(errors.New(ErrTemplateIdRequired), "templateId"), nil)
		return
	}

	element, ok := tc.bindElement(ctx)
	if !ok {
		return
	}

	element, err := tc.svc.Template.AddElement(ctx, templateId, element)
	if err != nil {
		tc.respondTemplateErr(ctx, err)
		return
	}

	util.ResponseSuccess(ctx, gin.H{"element": element})
}

func (tc TemplateController) UpdateElement(ctx *gin.Context) {
	templateId := ctx.Params.ByName("templateId")
	elementId := ctx.Params.ByName("elementId")
	if templateId == "" || elementId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Template id and element id are required", util.GenerateErrorMessages(errors.New(ErrTemplateIdRequired), "templateId"), nil)
		return
	}

	element, ok := tc.bindElement(ctx)
	if !ok {
		return
	}

	if err := tc.svc.Template.UpdateElement(ctx, templateId, elementId, element); err != nil {
		tc.respondTemplateErr(ctx, err)
		return
	}

	util.ResponseSuccess(ctx, gin.H{"element": element})
}

type MoveElementRequest struct {
	Direction string `json:"direction" form:"direction" binding:"required,oneof=up down"`
}

func (tc TemplateController) MoveElement(ctx *gin.Context) {
	templateId := ctx.Params.ByName("templateId")
	elementId := ctx.Params.ByName("elementId")
	if templateId == "" || elementId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Template id and element id are required", util.GenerateErrorMessages(errors.New(ErrTemplateIdRequired), "templateId"), nil)
		return
	}

	var params MoveElementRequest
	if err := ctx.ShouldBindJSON(&params); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	direction := certforge.MoveUp
	if params.Direction == "down" {
		direction = certforge.MoveDown
	}

	if err := tc.svc.Template.MoveElement(ctx, templateId, elementId, direction); err != nil {
		tc.respondTemplateErr(ctx, err)
		return
	}

	util.ResponseSuccess(ctx, nil)
}

func (tc TemplateController) RemoveElement(ctx *gin.Context) {
	templateId := ctx.Params.ByName("templateId")
	elementId := ctx.Params.ByName("elementId")
	if templateId == "" || elementId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Template id and element id are required", util.GenerateErrorMessages(errors.New(ErrTemplateIdRequired), "templateId"), nil)
		return
	}

	if err := tc.svc.Template.RemoveElement(ctx, templateId, elementId); err != nil {
		tc.respondTemplateErr(ctx, err)
		return
	}

	util.ResponseSuccess(ctx, nil)
}

type PreviewRequest struct {
	Zoom float64 `json:"zoom" form:"zoom" binding:"omitempty"`
}

// Preview streams the SVG rendition of the template with sample values.
func (tc TemplateController) Preview(ctx *gin.Context) {
	templateId := ctx.Params.ByName("templateId")
	if templateId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Template id is required", util.GenerateErrorMessages(errors.New(ErrTemplateIdRequired), "templateId"), nil)
		return
	}

	var params PreviewRequest
	if err := ctx.ShouldBindQuery(&params); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	svgPath, err := tc.svc.Template.Preview(ctx, templateId, params.Zoom)
	if err != nil {
		tc.respondTemplateErr(ctx, err)
		return
	}
	defer os.Remove(svgPath)

	file, err := os.Open(svgPath)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to open rendered preview", util.GenerateErrorMessages(err), nil)
		return
	}
	defer file.Close()

	ctx.Header("Content-Type", "image/svg+xml")
	io.Copy(ctx.Writer, file)
}

func (tc TemplateController) Activate(ctx *gin.Context) {
	tc.updateStatus(ctx, tc.svc.Template.Activate)
}

func (tc TemplateController) Archive(ctx *gin.Context) {
	tc.updateStatus(ctx, tc.svc.Template.Archive)
}

func (tc TemplateController) updateStatus(ctx *gin.Context, change func(ctx context.Context, id, actor string) error) {
	templateId := ctx.Params.ByName("templateId")
	if templateId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Template id is required", util.GenerateErrorMessages(errors.New(ErrTemplateIdRequired), "templateId"), nil)
		return
	}

	if err := change(ctx, templateId, middleware.GetActor(ctx)); err != nil {
		tc.respondTemplateErr(ctx, err)
		return
	}

	util.ResponseSuccess(ctx, nil)
}

func (tc TemplateController) bindElement(ctx *gin.Context) (certforge.Element, bool) {
	body, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return nil, false
	}

	element, err := certforge.UnmarshalElement(body)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid element", util.GenerateErrorMessages(err, "element"), nil)
		return nil, false
	}

	return element, true
}

func (tc TemplateController) respondTemplateErr(ctx *gin.Context, err error) {
	switch {
	case strings.Contains(err.Error(), "not found"):
		util.ResponseFailed(ctx, http.StatusNotFound, "Certificate template not found", util.GenerateErrorMessages(err, "notFound"), nil)
	case strings.Contains(err.Error(), "archived"):
		util.ResponseFailed(ctx, http.StatusConflict, "Certificate template is archived", util.GenerateErrorMessages(err), nil)
	default:
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to process certificate template", util.GenerateErrorMessages(err), nil)
	}
}
