package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/openlearn/certforge/internal/model"
	"github.com/openlearn/certforge/internal/util"
	"gorm.io/gorm"
)

type AssignmentController struct {
	*baseController
}

type CreateAssignmentRequest struct {
	CertificateTemplateID string  `json:"certificateTemplateId" form:"certificateTemplateId" binding:"required,strNotEmpty"`
	CourseID              *string `json:"courseId" form:"courseId" binding:"omitempty"`
	ClassID               *string `json:"classId" form:"classId" binding:"omitempty"`
}

// Create links a template to a course or a class. Exactly one of the two
// targets must be set.
func (ac AssignmentController) Create(ctx *gin.Context) {
	var params CreateAssignmentRequest
	if err := ctx.ShouldBindJSON(&params); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	if (params.CourseID == nil) == (params.ClassID == nil) {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Assignment must target exactly one of courseId or classId", util.GenerateErrorMessages(errors.New("exactly one of courseId or classId must be set"), "target"), nil)
		return
	}

	template, err := ac.app.Repository.Template.GetById(ctx, nil, params.CertificateTemplateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.ResponseFailed(ctx, http.StatusNotFound, "Certificate template not found", util.GenerateErrorMessages(errors.New(ErrTemplateNotFound), "notFound"), nil)
			return
		}
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to get certificate template", util.GenerateErrorMessages(err), nil)
		return
	}

	assignment, err := ac.app.Repository.Assignment.Create(ctx, nil, &model.CertificateAssignment{
		CertificateTemplateID: template.ID,
		CourseID:              params.CourseID,
		ClassID:               params.ClassID,
	})
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to create certificate assignment", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{"assignment": assignment})
}

type ListAssignmentsRequest struct {
	CourseID *string `json:"courseId" form:"courseId" binding:"omitempty"`
	ClassID  *string `json:"classId" form:"classId" binding:"omitempty"`
}

func (ac AssignmentController) ListForTarget(ctx *gin.Context) {
	var params ListAssignmentsRequest
	if err := ctx.ShouldBindQuery(&params); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	if (params.CourseID == nil) == (params.ClassID == nil) {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Exactly one of courseId or classId must be set", util.GenerateErrorMessages(errors.New("exactly one of courseId or classId must be set"), "target"), nil)
		return
	}

	assignments, err := ac.app.Repository.Assignment.ListForTarget(ctx, nil, params.CourseID, params.ClassID)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to get assignment list", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{"assignments": assignments})
}

// SetDefault promotes an assignment to default for its target, demoting the
// previous default in the same transaction.
func (ac AssignmentController) SetDefault(ctx *gin.Context) {
	assignmentId := ctx.Params.ByName("assignmentId")
	if assignmentId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Assignment id is required", util.GenerateErrorMessages(errors.New(ErrAssignmentIdRequired), "assignmentId"), nil)
		return
	}

	if err := ac.svc.Assignment.SetDefault(ctx, assignmentId); err != nil {
		if strings.Contains(err.Error(), "not found") {
			util.ResponseFailed(ctx, http.StatusNotFound, "Certificate assignment not found", util.GenerateErrorMessages(err, "notFound"), nil)
			return
		}
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to set default assignment", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, nil)
}

func (ac AssignmentController) Delete(ctx *gin.Context) {
	assignmentId := ctx.Params.ByName("assignmentId")
	if assignmentId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Assignment id is required", util.GenerateErrorMessages(errors.New(ErrAssignmentIdRequired), "assignmentId"), nil)
		return
	}

	if err := ac.app.Repository.Assignment.Delete(ctx, nil, assignmentId); err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to delete certificate assignment", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, nil)
}
