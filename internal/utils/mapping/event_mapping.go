package mapping

import (
	"github.com/ledgercore/subledger_app/internal/core/domain"
	"github.com/ledgercore/subledger_app/internal/models"
)

// ToModelAccountingEvent converts a domain AccountingEvent to a model AccountingEvent
func ToModelAccountingEvent(d domain.AccountingEvent) models.AccountingEvent {
	return models.AccountingEvent{
		EventID:         d.EventID,
		OrganizationID:  d.OrganizationID,
		SourceSystem:    d.SourceSystem,
		EventType:       d.EventType,
		TransactionDate: d.TransactionDate,
		Payload:         d.Payload,
		IdempotencyKey:  d.IdempotencyKey,
		Status:          string(d.Status),
		JournalID:       d.JournalID,
		ReceivedAt:      d.ReceivedAt,
		CreatedBy:       d.CreatedBy,
	}
}

// ToDomainAccountingEvent converts a model AccountingEvent to a domain AccountingEvent
func ToDomainAccountingEvent(m models.AccountingEvent) domain.AccountingEvent {
	return domain.AccountingEvent{
		EventID:         m.EventID,
		OrganizationID:  m.OrganizationID,
		SourceSystem:    m.SourceSystem,
		EventType:       m.EventType,
		TransactionDate: m.TransactionDate,
		Payload:         m.Payload,
		IdempotencyKey:  m.IdempotencyKey,
		Status:          domain.EventStatus(m.Status),
		JournalID:       m.JournalID,
		ReceivedAt:      m.ReceivedAt,
		CreatedBy:       m.CreatedBy,
	}
}

// ToDomainAccountingEventSlice converts a slice of model AccountingEvents to domain AccountingEvents
func ToDomainAccountingEventSlice(ms []models.AccountingEvent) []domain.AccountingEvent {
	ds := make([]domain.AccountingEvent, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccountingEvent(m)
	}
	return ds
}
