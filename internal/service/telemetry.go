package service

import (
	"context"
	"errors"

	"charging_console/internal/correlate"
	"charging_console/internal/models"
	"charging_console/internal/series"
)

var (
	ErrConnectorNotFound = errors.New("connector not found")
	ErrNotActionable     = errors.New("connector has no active transaction")
)

// readingsFailedMsg is shown in the panel when readings cannot be loaded.
const readingsFailedMsg = "failed to load meter readings"

// ReadingsPanel is the series chart of one transaction. A failed fetch is
// reported through Error with an empty series set; it never fails the page.
type ReadingsPanel struct {
	TransactionID int           `json:"transaction_id"`
	Series        series.Result `json:"series"`
	PointCount    int           `json:"point_count"`
	NoData        bool          `json:"no_data"`
	Error         string        `json:"error,omitempty"`
}

// SessionPanel is the right-hand panel opened from a connector card.
type SessionPanel struct {
	ChargerID   string         `json:"charger_id"`
	ConnectorID int            `json:"connector_id"`
	Outcome     string         `json:"outcome"`
	Session     models.Session `json:"session"`
	Readings    ReadingsPanel  `json:"readings"`
}

type detailSource interface {
	detailData(ctx context.Context, chargerID string) (DetailData, error)
}

type TelemetryService struct {
	backend  Backend
	details  detailSource
	recorder ReadingsRecorder
}

func NewTelemetryService(backend Backend, details detailSource, recorder ReadingsRecorder) *TelemetryService {
	return &TelemetryService{backend: backend, details: details, recorder: recorder}
}

// ConnectorSession resolves the session bound to a connector against the
// charger's current sessions and loads its readings. A transaction the
// session list does not know yet yields a placeholder session.
func (s *TelemetryService) ConnectorSession(ctx context.Context, chargerID string, connectorID int) (SessionPanel, error) {
	d, err := s.details.detailData(ctx, chargerID)
	if err != nil {
		return SessionPanel{}, err
	}

	conn, ok := d.Charger.Connector(connectorID)
	if !ok {
		return SessionPanel{}, ErrConnectorNotFound
	}
	res := correlate.Resolve(d.Sessions, conn)
	if !res.Actionable() {
		return SessionPanel{}, ErrNotActionable
	}

	return SessionPanel{
		ChargerID:   chargerID,
		ConnectorID: connectorID,
		Outcome:     res.Outcome.String(),
		Session:     res.Session,
		Readings:    s.Readings(ctx, res.Session.ReadingsKey()),
	}, nil
}

// Readings fetches and aggregates the readings of a transaction.
func (s *TelemetryService) Readings(ctx context.Context, transactionID int) ReadingsPanel {
	readings, err := s.backend.ListReadings(ctx, transactionID)
	if s.recorder != nil {
		s.recorder.ReadingsFetched(err)
	}
	if err != nil {
		return ReadingsPanel{
			TransactionID: transactionID,
			Series:        series.Aggregate(nil),
			NoData:        true,
			Error:         readingsFailedMsg,
		}
	}

	res := series.Aggregate(readings)
	return ReadingsPanel{
		TransactionID: transactionID,
		Series:        res,
		PointCount:    res.PointCount(),
		NoData:        res.Empty(),
	}
}
