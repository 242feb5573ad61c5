// Package correlate maps live connector state to the sessions bound to it and
// builds the per-connector display board of a charger.
package correlate

import (
	"charging_console/internal/models"
)

// Outcome describes how a connector was resolved to a session.
type Outcome int

const (
	// NotActionable means the connector carries no transaction or is the station itself.
	NotActionable Outcome = iota
	// Matched means the transaction was found in the loaded session list.
	Matched
	// Placeholder means the transaction is not known locally yet and a stand-in was synthesized.
	Placeholder
)

func (o Outcome) String() string {
	switch o {
	case Matched:
		return "matched"
	case Placeholder:
		return "placeholder"
	default:
		return "not_actionable"
	}
}

// Resolution is the result of Resolve. Session is only meaningful when
// Outcome is not NotActionable.
type Resolution struct {
	Outcome Outcome
	Session models.Session
}

// Actionable reports whether a session can be opened for the connector.
func (r Resolution) Actionable() bool {
	return r.Outcome != NotActionable
}

// SplitConnectors separates the station pseudo-connector (index 0) from the
// numbered, user-facing connectors. Input order is preserved.
func SplitConnectors(connectors []models.Connector) (*models.Connector, []models.Connector) {
	var station *models.Connector
	selectable := make([]models.Connector, 0, len(connectors))
	for i := range connectors {
		if connectors[i].IsStation() {
			c := connectors[i]
			station = &c
			continue
		}
		selectable = append(selectable, connectors[i])
	}
	return station, selectable
}

// Resolve finds the session to open for conn among the currently loaded
// sessions. When the connector reports a transaction the list does not
// contain yet (it started between ticks, or the two lists were fetched at
// slightly different moments), a placeholder keyed by that transaction id is
// returned so the readings can still be fetched.
func Resolve(sessions []models.Session, conn models.Connector) Resolution {
	if conn.IsStation() || !conn.HasActiveTransaction() {
		return Resolution{Outcome: NotActionable}
	}
	tx := *conn.CurrentTransactionID
	if s, ok := FindByTransaction(sessions, tx); ok {
		return Resolution{Outcome: Matched, Session: s}
	}
	return Resolution{Outcome: Placeholder, Session: NewPlaceholder(tx)}
}

// FindByTransaction returns the session with the given transaction id.
func FindByTransaction(sessions []models.Session, tx int) (models.Session, bool) {
	for _, s := range sessions {
		if s.TransactionID == tx {
			return s, true
		}
	}
	return models.Session{}, false
}

// NewPlaceholder returns a minimal active session for transaction tx. Every
// field except the transaction id stays at its zero value.
func NewPlaceholder(tx int) models.Session {
	return models.Session{
		TransactionID: tx,
		IDTag:         models.UnknownIDTag,
		Placeholder:   true,
	}
}
