package handlers

import (
	"context"
	"fmt"

	"github.com/clubsphere/club-api/internal/auth"
	"github.com/clubsphere/club-api/internal/credentials"
	"github.com/clubsphere/club-api/internal/models"
	"github.com/clubsphere/club-api/internal/permissions"
	"github.com/clubsphere/club-api/internal/registration"
)

type CertificateHandler struct {
	ledger      *credentials.Ledger
	engine      *registration.Engine
	authHandler *auth.AuthHandler
}

func NewCertificateHandler(ledger *credentials.Ledger, engine *registration.Engine, authHandler *auth.AuthHandler) *CertificateHandler {
	return &CertificateHandler{ledger: ledger, engine: engine, authHandler: authHandler}
}

type IssueCertificateRequest struct {
	auth.AuthInput
	EventID        uint `path:"eventID"`
	RegistrationID uint `path:"regID"`
}

type IssueCertificateResponse struct {
	Body struct {
		CredentialID string `json:"credential_id"`
	}
}

func (h *CertificateHandler) HandleIssue(ctx context.Context, input *IssueCertificateRequest) (*IssueCertificateResponse, error) {
	if _, err := h.authHandler.RequirePermission(ctx, input.Cookie, permissions.ManageCertificates); err != nil {
		return nil, err
	}
	if err := h.checkRegistrationEvent(ctx, input.EventID, input.RegistrationID); err != nil {
		return nil, err
	}

	credentialID, err := h.ledger.IssueRegistration(ctx, input.RegistrationID)
	if err != nil {
		return nil, domainError(err)
	}

	res := &IssueCertificateResponse{}
	res.Body.CredentialID = credentialID
	return res, nil
}

type RevokeCertificateRequest struct {
	auth.AuthInput
	EventID        uint `path:"eventID"`
	RegistrationID uint `path:"regID"`
}

func (h *CertificateHandler) HandleRevoke(ctx context.Context, input *RevokeCertificateRequest) (*struct{}, error) {
	if _, err := h.authHandler.RequirePermission(ctx, input.Cookie, permissions.ManageCertificates); err != nil {
		return nil, err
	}
	if err := h.checkRegistrationEvent(ctx, input.EventID, input.RegistrationID); err != nil {
		return nil, err
	}

	if err := h.ledger.RevokeRegistration(ctx, input.RegistrationID); err != nil {
		return nil, domainError(err)
	}
	return nil, nil
}

type BulkCertificateRequest struct {
	auth.AuthInput
	EventID uint `path:"eventID"`
}

type BulkCertificateResponse struct {
	Body struct {
		Outcomes []credentials.BulkOutcome `json:"outcomes"`
	}
}

func (h *CertificateHandler) HandleBulkIssueRegistrations(ctx context.Context, input *BulkCertificateRequest) (*BulkCertificateResponse, error) {
	if _, err := h.authHandler.RequirePermission(ctx, input.Cookie, permissions.ManageCertificates); err != nil {
		return nil, err
	}

	outcomes, err := h.ledger.BulkIssueRegistrations(ctx, input.EventID)
	if err != nil {
		return nil, domainError(err)
	}

	res := &BulkCertificateResponse{}
	res.Body.Outcomes = outcomes
	return res, nil
}

type BulkTeamCertificateRequest struct {
	auth.AuthInput
	EventID uint   `path:"eventID"`
	Role    string `query:"role" doc:"Optional staff role filter, e.g. volunteer" required:"false"`
}

func (h *CertificateHandler) HandleBulkIssueParticipants(ctx context.Context, input *BulkTeamCertificateRequest) (*BulkCertificateResponse, error) {
	if _, err := h.authHandler.RequirePermission(ctx, input.Cookie, permissions.ManageCertificates); err != nil {
		return nil, err
	}

	outcomes, err := h.ledger.BulkIssueParticipants(ctx, input.EventID, input.Role)
	if err != nil {
		return nil, domainError(err)
	}

	res := &BulkCertificateResponse{}
	res.Body.Outcomes = outcomes
	return res, nil
}

type IssueParticipantCertificateRequest struct {
	auth.AuthInput
	EventID       uint `path:"eventID"`
	ParticipantID uint `path:"participantID"`
}

func (h *CertificateHandler) HandleIssueParticipant(ctx context.Context, input *IssueParticipantCertificateRequest) (*IssueCertificateResponse, error) {
	if _, err := h.authHandler.RequirePermission(ctx, input.Cookie, permissions.ManageCertificates); err != nil {
		return nil, err
	}

	credentialID, err := h.ledger.IssueParticipant(ctx, input.ParticipantID)
	if err != nil {
		return nil, domainError(err)
	}

	res := &IssueCertificateResponse{}
	res.Body.CredentialID = credentialID
	return res, nil
}

func (h *CertificateHandler) HandleRevokeParticipant(ctx context.Context, input *IssueParticipantCertificateRequest) (*struct{}, error) {
	if _, err := h.authHandler.RequirePermission(ctx, input.Cookie, permissions.ManageCertificates); err != nil {
		return nil, err
	}

	if err := h.ledger.RevokeParticipant(ctx, input.ParticipantID); err != nil {
		return nil, domainError(err)
	}
	return nil, nil
}

type VerifyCertificateRequest struct {
	CredentialID string `path:"credentialID"`
}

type VerifyCertificateResponse struct {
	Body credentials.VerificationResult
}

// HandleVerifyCertificate is public. No auth header is honored and every
// failure returns the same generic body.
func (h *CertificateHandler) HandleVerifyCertificate(ctx context.Context, input *VerifyCertificateRequest) (*VerifyCertificateResponse, error) {
	result := h.ledger.Verify(ctx, input.CredentialID)
	return &VerifyCertificateResponse{Body: *result}, nil
}

func (h *CertificateHandler) checkRegistrationEvent(ctx context.Context, eventID, regID uint) error {
	reg, err := h.engine.Get(ctx, regID)
	if err != nil {
		return domainError(err)
	}
	if reg.EventID != eventID {
		return domainError(fmt.Errorf("%w: registration", models.ErrNotFound))
	}
	return nil
}
