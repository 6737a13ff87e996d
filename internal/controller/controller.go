package controller

import (
	appcontext "github.com/openlearn/certforge/internal/app_context"
	"github.com/openlearn/certforge/internal/queue"
	"github.com/openlearn/certforge/internal/service"
)

const (
	ErrTemplateIdRequired   = "template id is required"
	ErrTemplateNotFound     = "certificate template not found"
	ErrIssuanceIdRequired   = "issuance id is required"
	ErrIssuanceNotFound     = "certificate issuance not found"
	ErrAssignmentIdRequired = "assignment id is required"
	ErrNumberRequired       = "certificate number is required"
)

type baseController struct {
	app *appcontext.Application
	svc *service.Services
}

type Controller struct {
	Index      *IndexController
	Template   *TemplateController
	Issuance   *IssuanceController
	Assignment *AssignmentController
	Verify     *VerifyController
}

func newBaseController(app *appcontext.Application, svc *service.Services) *baseController {
	return &baseController{app: app, svc: svc}
}

func NewController(app *appcontext.Application, svc *service.Services, q *queue.RabbitMQ) *Controller {
	bc := newBaseController(app, svc)

	return &Controller{
		Index:      &IndexController{baseController: bc},
		Template:   &TemplateController{baseController: bc},
		Issuance:   &IssuanceController{baseController: bc, Queue: q},
		Assignment: &AssignmentController{baseController: bc},
		Verify:     &VerifyController{baseController: bc},
	}
}
