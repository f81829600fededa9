package tracker

import (
	"strings"

	"github.com/address-cache/app/models"
	"github.com/address-cache/internal/normalizer"
	"go.uber.org/zap"
)

// SignatureTracker holds the current and previous normalized address
// and the per-level last-notified signatures. Signature comparison is a
// pure function; the only mutable bookkeeping is the pointer pair and
// the last-notified map.
type SignatureTracker struct {
	current      *models.BrazilianStandardAddress
	previous     *models.BrazilianStandardAddress
	lastNotified map[models.ChangeLevel]string
	logger       *zap.Logger
}

// NewSignatureTracker creates a new SignatureTracker
func NewSignatureTracker(logger *zap.Logger) *SignatureTracker {
	return &SignatureTracker{
		lastNotified: make(map[models.ChangeLevel]string),
		logger:       logger,
	}
}

// Update shifts current to previous and installs newAddress as current.
// When the caller hands back the pointer already installed (a cache hit
// reuses the cached value), the new current is a clone so current and
// previous are never the same object.
func (st *SignatureTracker) Update(newAddress *models.BrazilianStandardAddress) {
	if newAddress == st.current {
		newAddress = newAddress.Clone()
	}
	st.previous = st.current
	st.current = newAddress
}

// Current returns the currently installed address, nil before the first update
func (st *SignatureTracker) Current() *models.BrazilianStandardAddress {
	return st.current
}

// Previous returns the address before the last update, nil until the second
func (st *SignatureTracker) Previous() *models.BrazilianStandardAddress {
	return st.previous
}

// HasChangedAt reports whether the level's signature differs between
// the current and previous address. Pure query, no side effects.
func (st *SignatureTracker) HasChangedAt(level models.ChangeLevel) bool {
	return SignatureAt(st.current, level) != SignatureAt(st.previous, level)
}

// GetChangeDetails returns the previous/current pair and the change
// flag for the level. Pure query, no side effects.
func (st *SignatureTracker) GetChangeDetails(level models.ChangeLevel) *models.ChangeDetails {
	return &models.ChangeDetails{
		Level:    level,
		Previous: st.previous,
		Current:  st.current,
		Changed:  st.HasChangedAt(level),
	}
}

// ShouldNotify reports whether the current signature differs from the
// last one notified at the level. Guards against notification storms
// when a noisy provider repeats the same address through intermediate
// no-op updates.
func (st *SignatureTracker) ShouldNotify(level models.ChangeLevel) bool {
	return SignatureAt(st.current, level) != st.lastNotified[level]
}

// MarkNotified records the current signature as the last notified one
func (st *SignatureTracker) MarkNotified(level models.ChangeLevel) {
	sig := SignatureAt(st.current, level)
	st.lastNotified[level] = sig
	st.logger.Debug("marked level notified",
		zap.String("level", string(level)),
		zap.String("signature", sig))
}

// Reset drops both address pointers and the last-notified bookkeeping
func (st *SignatureTracker) Reset() {
	st.current = nil
	st.previous = nil
	st.lastNotified = make(map[models.ChangeLevel]string)
}

// SignatureAt concatenates the fields relevant to the level into a
// deterministic signature. Fields are folded (lowercase, no diacritics)
// so provider case or accent flapping compares equal. A nil address has
// the empty signature.
func SignatureAt(addr *models.BrazilianStandardAddress, level models.ChangeLevel) string {
	if addr == nil {
		return ""
	}
	switch level {
	case models.LevelStreet:
		return joinSignature(addr.Logradouro, addr.Numero)
	case models.LevelNeighborhood:
		return joinSignature(addr.Bairro)
	case models.LevelMunicipality:
		return joinSignature(addr.Municipio, addr.UF)
	}
	return ""
}

// joinSignature folds each field and joins them with a separator that
// cannot appear in folded values, keeping the mapping unambiguous
func joinSignature(fields ...*string) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		if f != nil {
			parts[i] = normalizer.Fold(*f)
		}
	}
	return strings.Join(parts, "\x1f")
}
