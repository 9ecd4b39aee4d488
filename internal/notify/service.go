package notify

import (
	"context"
	"fmt"

	"github.com/civitas-ai/citizen-assist-platform/internal/casework"
	"github.com/civitas-ai/citizen-assist-platform/internal/scheduling"
	"github.com/civitas-ai/citizen-assist-platform/pkg/logging"
)

// Service sends confirmation emails to citizens. Every method is
// fire-and-forget: failures are logged and never reach the caller.
type Service struct {
	email  EmailSender
	logger *logging.Logger
}

var _ scheduling.Hook = (*Service)(nil)
var _ casework.Hook = (*Service)(nil)

// NewService creates a notification service. A nil sender disables email.
func NewService(email EmailSender, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:  email,
		logger: logger,
	}
}

// AppointmentScheduled emails the booking confirmation.
func (s *Service) AppointmentScheduled(ctx context.Context, appt scheduling.Appointment) {
	body := fmt.Sprintf(
		"Estimado/a %s:\n\nSu cita para %s fue registrada.\n\nFecha: %s\nHorario: %s\nNúmero de cita: %s\n\nPor favor preséntese 10 minutos antes con su documento de identidad.\n\nMunicipalidad",
		appt.CitizenName, appt.Procedure, appt.Date, appt.Time, appt.ID,
	)
	s.send(ctx, appt.CitizenEmail, appt.CitizenName, "Confirmación de cita "+appt.ID, body)
}

// AppointmentCancelled emails the cancellation notice.
func (s *Service) AppointmentCancelled(ctx context.Context, appt scheduling.Appointment) {
	body := fmt.Sprintf(
		"Estimado/a %s:\n\nSu cita %s del %s a las %s fue cancelada.\n\nPuede solicitar un nuevo turno cuando lo desee.\n\nMunicipalidad",
		appt.CitizenName, appt.ID, appt.Date, appt.Time,
	)
	s.send(ctx, appt.CitizenEmail, appt.CitizenName, "Cancelación de cita "+appt.ID, body)
}

// CaseCreated emails the case ticket confirmation.
func (s *Service) CaseCreated(ctx context.Context, c casework.Case) {
	body := fmt.Sprintf(
		"Estimado/a %s:\n\nSu caso fue derivado al %s.\n\nNúmero de caso: %s\nPrioridad: %s\n\nUn funcionario se comunicará con usted.\n\nMunicipalidad",
		c.CitizenName, c.Department.DisplayName(), c.ID, c.Priority,
	)
	s.send(ctx, c.CitizenEmail, c.CitizenName, "Caso registrado "+c.ID, body)
}

// CaseUpdated emails the status change.
func (s *Service) CaseUpdated(ctx context.Context, c casework.Case) {
	body := fmt.Sprintf(
		"Estimado/a %s:\n\nSu caso %s cambió de estado.\n\nNuevo estado: %s\n\nMunicipalidad",
		c.CitizenName, c.ID, c.Status,
	)
	s.send(ctx, c.CitizenEmail, c.CitizenName, "Actualización de caso "+c.ID, body)
}

func (s *Service) send(ctx context.Context, to, toName, subject, body string) {
	if s.email == nil || to == "" {
		return
	}
	if err := s.email.Send(ctx, EmailMessage{
		To:      to,
		ToName:  toName,
		Subject: subject,
		Body:    body,
	}); err != nil {
		s.logger.Error("confirmation email failed", "to", to, "subject", subject, "error", err)
	}
}
