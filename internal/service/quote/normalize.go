// Package quote implements the quote sources that turn a watchlist symbol into
// its latest RSI reading.
package quote

import (
	"strings"

	"RsiWatch/internal/domain/models"
	"RsiWatch/internal/domain/service"
)

// Normalize maps a stored or user-entered symbol to the form the remote service
// expects: directory resolution first (names, index aliases, 6-digit codes),
// otherwise the trimmed input unchanged.
func Normalize(r service.SymbolResolver, symbol string) (string, error) {
	s := strings.TrimSpace(symbol)
	if s == "" {
		return "", models.ResolutionError(symbol)
	}
	if r != nil {
		if canonical, ok := r.ResolveToCanonical(s); ok {
			return canonical, nil
		}
	}
	return s, nil
}
