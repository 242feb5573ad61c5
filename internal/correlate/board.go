package correlate

import (
	"charging_console/internal/models"
)

// Tone is the colour family a status is rendered with.
type Tone string

const (
	ToneGreen     Tone = "green"
	ToneBlue      Tone = "blue"
	ToneLightBlue Tone = "light-blue"
	ToneOrange    Tone = "orange"
	ToneRed       Tone = "red"
	ToneGray      Tone = "gray"
)

// ToneFor maps a connector status to its display tone.
func ToneFor(s models.ConnectorStatus) Tone {
	switch s {
	case models.StatusAvailable:
		return ToneGreen
	case models.StatusCharging:
		return ToneBlue
	case models.StatusFinishing:
		return ToneLightBlue
	case models.StatusReserved:
		return ToneOrange
	case models.StatusUnavailable, models.StatusFaulted:
		return ToneRed
	default:
		return ToneGray
	}
}

// StationBadge is the aggregate station status taken from connector 0.
type StationBadge struct {
	Status models.ConnectorStatus `json:"status"`
	Tone   Tone                   `json:"tone"`
}

// ConnectorCard is the display state of one selectable connector.
type ConnectorCard struct {
	ConnectorID   int                    `json:"connector_id"`
	Status        models.ConnectorStatus `json:"status"`
	Tone          Tone                   `json:"tone"`
	Actionable    bool                   `json:"actionable"`
	TransactionID *int                   `json:"transaction_id,omitempty"`
	// SessionKnown is false when the transaction is not yet in the session list.
	SessionKnown bool `json:"session_known"`
}

// Board is the reconciled connector grid of a charger.
type Board struct {
	ChargerID      string          `json:"charger_id"`
	Online         bool            `json:"online"`
	Station        *StationBadge   `json:"station,omitempty"`
	Connectors     []ConnectorCard `json:"connectors"`
	TotalSessions  int             `json:"total_sessions"`
	ActiveSessions int             `json:"active_sessions"`
}

// BuildBoard derives the connector grid from a charger and its sessions. The
// station connector never appears among the cards.
func BuildBoard(ch models.Charger, sessions []models.Session) Board {
	station, selectable := SplitConnectors(ch.Connectors)

	b := Board{
		ChargerID:     ch.ID,
		Online:        ch.IsOnline,
		Connectors:    make([]ConnectorCard, 0, len(selectable)),
		TotalSessions: len(sessions),
	}
	if station != nil {
		b.Station = &StationBadge{Status: station.Status, Tone: ToneFor(station.Status)}
	}
	for _, s := range sessions {
		if s.IsActive() {
			b.ActiveSessions++
		}
	}
	for _, conn := range selectable {
		res := Resolve(sessions, conn)
		card := ConnectorCard{
			ConnectorID:  conn.ConnectorID,
			Status:       conn.Status,
			Tone:         ToneFor(conn.Status),
			Actionable:   res.Actionable(),
			SessionKnown: res.Outcome == Matched,
		}
		if res.Actionable() {
			tx := res.Session.TransactionID
			card.TransactionID = &tx
		}
		b.Connectors = append(b.Connectors, card)
	}
	return b
}
