package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/bakerykit/internal/client/client"
	"github.com/dmitrijs2005/bakerykit/internal/client/models"
	"github.com/dmitrijs2005/bakerykit/internal/logging"
)

// RecoveryState is a step of the forgot-password flow.
type RecoveryState int

const (
	RecoveryIdle RecoveryState = iota
	RecoveryAwaitingCode
	RecoveryAwaitingNewPassword
	RecoveryDone
)

func (s RecoveryState) String() string {
	switch s {
	case RecoveryIdle:
		return "idle"
	case RecoveryAwaitingCode:
		return "awaiting_code"
	case RecoveryAwaitingNewPassword:
		return "awaiting_new_password"
	case RecoveryDone:
		return "done"
	default:
		return "unknown"
	}
}

// RecoveryService drives forgot-password → code → reset-password. The
// ticket lives in memory only.
type RecoveryService struct {
	api client.Client
	log logging.Logger

	mu     sync.Mutex
	state  RecoveryState
	ticket *models.RecoveryTicket
}

func NewRecoveryService(api client.Client, log logging.Logger) *RecoveryService {
	if log == nil {
		log = logging.Nop()
	}
	return &RecoveryService{api: api, log: log.With("component", "recovery")}
}

func (r *RecoveryService) State() RecoveryState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Ticket returns a copy of the in-progress ticket.
func (r *RecoveryService) Ticket() (models.RecoveryTicket, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ticket == nil {
		return models.RecoveryTicket{}, false
	}
	return *r.ticket, true
}

// RequestCode asks the backend to mail a reset code and returns the server
// message.
func (r *RecoveryService) RequestCode(ctx context.Context, email string) (string, error) {
	if blank(email) {
		return "", invalid(MsgEmailRequired)
	}
	email = NormalizeEmail(email)

	msg, err := r.api.ForgotPassword(ctx, email)
	if err != nil {
		return "", fmt.Errorf("request reset code: %w", err)
	}

	r.mu.Lock()
	r.ticket = &models.RecoveryTicket{Email: email}
	r.state = RecoveryAwaitingCode
	r.mu.Unlock()

	r.log.Info(ctx, "reset code requested", "email", email)
	return msg, nil
}

// SubmitCode records the code from the email. It is a local step.
func (r *RecoveryService) SubmitCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return invalid(MsgCodeRequired)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ticket == nil {
		r.ticket = &models.RecoveryTicket{}
	}
	r.ticket.ResetCode = code
	r.state = RecoveryAwaitingNewPassword
	return nil
}

// ResetPassword sets a new password with the emailed code. Local checks run
// in order: required fields, confirmation, strength. None of them sends a
// request on failure.
func (r *RecoveryService) ResetPassword(ctx context.Context, email, code, newPassword, confirmPassword string) error {
	if err := validateNewPassword(newPassword, confirmPassword, email, code); err != nil {
		return err
	}

	req := client.ResetPasswordRequest{
		Email:       NormalizeEmail(email),
		Code:        strings.TrimSpace(code),
		NewPassword: newPassword,
	}
	if err := r.api.ResetPassword(ctx, req); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}

	r.mu.Lock()
	r.ticket = nil
	r.state = RecoveryDone
	r.mu.Unlock()

	r.log.Info(ctx, "password reset", "email", req.Email)
	return nil
}

// Cancel discards the ticket, e.g. when the user navigates away.
func (r *RecoveryService) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticket = nil
	r.state = RecoveryIdle
}
