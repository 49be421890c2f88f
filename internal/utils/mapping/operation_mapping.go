package mapping

import (
	"github.com/auwerk/otus-service-billing/internal/core/domain"
	"github.com/auwerk/otus-service-billing/internal/models"
)

// ToModelOperation converts a domain Operation to a model Operation
func ToModelOperation(d domain.Operation) models.Operation {
	return models.Operation{
		OperationID: d.OperationID,
		AccountID:   d.AccountID,
		Type:        models.OperationType(d.Type),
		Amount:      d.Amount,
		Comment:     d.Comment,
		RelatedTo:   d.RelatedTo,
		CreatedAt:   d.CreatedAt,
	}
}

// ToDomainOperation converts a model Operation to a domain Operation
func ToDomainOperation(m models.Operation) domain.Operation {
	return domain.Operation{
		OperationID: m.OperationID,
		AccountID:   m.AccountID,
		Type:        domain.OperationType(m.Type),
		Amount:      m.Amount,
		Comment:     m.Comment,
		RelatedTo:   m.RelatedTo,
		CreatedAt:   m.CreatedAt,
	}
}

// ToDomainOperationSlice converts a slice of model Operations to a slice of domain Operations
func ToDomainOperationSlice(ms []models.Operation) []domain.Operation {
	ds := make([]domain.Operation, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainOperation(m)
	}
	return ds
}
