package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"RsiWatch/internal/domain/models"
	domrepo "RsiWatch/internal/domain/repository"
	domsvc "RsiWatch/internal/domain/service"
	applogger "RsiWatch/pkg/logger"
)

// WatchlistUseCase implements the user-facing watchlist commands.
type WatchlistUseCase struct {
	store    domrepo.WatchlistStore
	values   domrepo.RsiValueStore
	resolver domsvc.SymbolResolver
	log      *applogger.Logger

	mu      sync.Mutex
	refresh map[chan struct{}]struct{}
}

func NewWatchlistUseCase(store domrepo.WatchlistStore, values domrepo.RsiValueStore, resolver domsvc.SymbolResolver, l *applogger.Logger) *WatchlistUseCase {
	if l == nil {
		l = applogger.Nop()
	}
	return &WatchlistUseCase{
		store:    store,
		values:   values,
		resolver: resolver,
		log:      l,
		refresh:  make(map[chan struct{}]struct{}),
	}
}

// IsValidSymbol is permissive: directory hits, dotted tickers and six-digit codes
// are all accepted without asking the quote source.
func (u *WatchlistUseCase) IsValidSymbol(query string) bool {
	return u.resolver.IsKnownOrPlausible(strings.TrimSpace(query))
}

// AddSymbol resolves query and appends it to the watchlist. Adding a symbol that
// is already present is not an error. The returned value is the canonical symbol.
func (u *WatchlistUseCase) AddSymbol(ctx context.Context, query string) (string, error) {
	symbol, err := u.canonical(query)
	if err != nil {
		return "", err
	}
	added, err := u.store.Add(ctx, symbol)
	if err != nil {
		return "", err
	}
	if added {
		if err := u.values.Seed(ctx, symbol); err != nil {
			return symbol, err
		}
		u.log.Info("symbol added", applogger.String("symbol", symbol), applogger.String("query", query))
	}
	return symbol, nil
}

func (u *WatchlistUseCase) canonical(query string) (string, error) {
	q := strings.TrimSpace(query)
	if !u.resolver.IsKnownOrPlausible(q) {
		return "", models.ResolutionError(q)
	}
	if symbol, ok := u.resolver.ResolveToCanonical(q); ok {
		return symbol, nil
	}
	return strings.ToUpper(q), nil
}

// DeleteSymbol removes a symbol given either its canonical form or its display
// name. Removing an absent symbol is a no-op.
func (u *WatchlistUseCase) DeleteSymbol(ctx context.Context, canonicalOrDisplay string) error {
	q := strings.TrimSpace(canonicalOrDisplay)
	symbol := q
	if s, ok := u.resolver.ResolveToCanonical(q); ok {
		symbol = s
	}

	removed, err := u.store.Remove(ctx, symbol)
	if err != nil {
		return err
	}
	if !removed && symbol != q {
		// stored under the raw form, e.g. a foreign ticker with different case
		if removed, err = u.store.Remove(ctx, q); err != nil {
			return err
		}
		symbol = q
	}
	if removed {
		if err := u.values.Delete(ctx, symbol); err != nil {
			return err
		}
		u.log.Info("symbol removed", applogger.String("symbol", symbol))
	}
	return nil
}

// Reorder stores a new order given as display names, as shown to the user.
// Names are mapped back through the directory; unknown names are taken as
// canonical symbols.
func (u *WatchlistUseCase) Reorder(ctx context.Context, displayOrder []string) error {
	symbols := make([]string, 0, len(displayOrder))
	for _, name := range displayOrder {
		n := strings.TrimSpace(name)
		if n == "" {
			return fmt.Errorf("reorder: %w", models.ResolutionError(name))
		}
		if s, ok := u.resolver.ResolveToCanonical(n); ok {
			n = s
		}
		symbols = append(symbols, n)
	}
	return u.store.SetOrder(ctx, symbols)
}

// Rows returns the watchlist with display names and last known RSI values.
// Symbols never fetched show 0.
func (u *WatchlistUseCase) Rows(ctx context.Context) ([]models.WatchlistRow, error) {
	symbols, err := u.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return u.rows(ctx, symbols)
}

func (u *WatchlistUseCase) rows(ctx context.Context, symbols []string) ([]models.WatchlistRow, error) {
	values, err := u.values.Get(ctx, symbols)
	if err != nil {
		return nil, err
	}
	rows := make([]models.WatchlistRow, 0, len(symbols))
	for _, s := range symbols {
		rows = append(rows, models.WatchlistRow{
			Symbol:      s,
			DisplayName: u.resolver.ResolveToDisplayName(s),
			LastRSI:     values[s],
		})
	}
	return rows, nil
}

// ObserveRows emits the rows for the current watchlist, again after every
// watchlist change and after every ValuesChanged call, until ctx ends.
func (u *WatchlistUseCase) ObserveRows(ctx context.Context) (<-chan []models.WatchlistRow, error) {
	lists, err := u.store.Observe(ctx)
	if err != nil {
		return nil, err
	}

	refresh := make(chan struct{}, 1)
	u.mu.Lock()
	u.refresh[refresh] = struct{}{}
	u.mu.Unlock()

	out := make(chan []models.WatchlistRow, 1)
	go func() {
		defer close(out)
		defer func() {
			u.mu.Lock()
			delete(u.refresh, refresh)
			u.mu.Unlock()
		}()

		var current []string
		have := false
		for {
			select {
			case symbols, ok := <-lists:
				if !ok {
					return
				}
				current, have = symbols, true
			case <-refresh:
				if !have {
					continue
				}
			case <-ctx.Done():
				return
			}

			rows, err := u.rows(ctx, current)
			if err != nil {
				u.log.Warn("watchlist rows", applogger.Error(err))
				continue
			}
			select {
			case out <- rows:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// ValuesChanged makes every row observer re-read the stored RSI values.
func (u *WatchlistUseCase) ValuesChanged() {
	u.mu.Lock()
	defer u.mu.Unlock()
	for ch := range u.refresh {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (u *WatchlistUseCase) Search(query string, limit int) []models.SymbolRecord {
	return u.resolver.Search(query, limit)
}
