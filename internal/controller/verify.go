package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openlearn/certforge/internal/util"
	"gorm.io/gorm"
)

type VerifyController struct {
	*baseController
}

// Verify is the public lookup behind the QR code on every certificate. It
// never exposes more than the frozen snapshot and the revocation state.
func (vc VerifyController) Verify(ctx *gin.Context) {
	certificateNumber := ctx.Params.ByName("certificateNumber")
	if certificateNumber == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Certificate number is required", util.GenerateErrorMessages(errors.New(ErrNumberRequired), "certificateNumber"), nil)
		return
	}

	issuance, err := vc.app.Repository.Issuance.GetByNumber(ctx, nil, certificateNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.ResponseFailed(ctx, http.StatusNotFound, "Certificate not found", util.GenerateErrorMessages(errors.New("no certificate with this number"), "notFound"), nil)
			return
		}
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to verify certificate", util.GenerateErrorMessages(err), nil)
		return
	}

	values, err := issuance.FieldSnapshotValues()
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to read certificate snapshot", util.GenerateErrorMessages(err), nil)
		return
	}

	payload := gin.H{
		"valid":             !issuance.IsRevoked(),
		"status":            issuance.Status,
		"certificateNumber": issuance.CertificateNumber,
		"issuedAt":          issuance.IssuedAt,
		"fields":            values,
	}

	if issuance.IsRevoked() {
		payload["revokedAt"] = issuance.RevokedAt
		payload["revokedReason"] = issuance.RevokedReason
	}

	util.ResponseSuccess(ctx, payload)
}
