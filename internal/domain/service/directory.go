package service

import "RsiWatch/internal/domain/models"

// SymbolResolver maps between user-entered names and canonical market symbols.
type SymbolResolver interface {
	ResolveToCanonical(query string) (string, bool)
	ResolveToDisplayName(symbol string) string
	Search(query string, limit int) []models.SymbolRecord
	IsKnownOrPlausible(query string) bool
}
