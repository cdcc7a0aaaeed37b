package models

import "mhregistry/pkg/domain"

// Document classifies the legal instrument backing a registration.
// One document per registration; the document ID is a checksum-validated
// identifier unique across the registry.
type Document struct {
	DocumentID         domain.DocumentID `json:"documentId"`
	DocumentType       DocumentType      `json:"documentType"`
	AttentionReference string            `json:"attentionReference,omitempty"`
	DeclaredValue      int64             `json:"declaredValue,omitempty"`
	ConsiderationValue string            `json:"considerationValue,omitempty"`
	OwnLand            bool              `json:"ownLand,omitempty"`
}
