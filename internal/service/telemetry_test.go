package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"charging_console/internal/correlate"
	"charging_console/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type detailSourceStub struct {
	data DetailData
	err  error
}

func (d detailSourceStub) detailData(context.Context, string) (DetailData, error) {
	return d.data, d.err
}

type recorderStub struct {
	ok, failed int
}

func (r *recorderStub) ReadingsFetched(err error) {
	if err != nil {
		r.failed++
		return
	}
	r.ok++
}

func TestTelemetry_UnknownTransactionGetsPlaceholder(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	b := &backendStub{ListReadingsFn: func(_ context.Context, tx int) ([]models.Reading, error) {
		return []models.Reading{
			{Timestamp: models.At(at.Add(time.Minute)), Value: 2, Unit: "kW", Measurand: "Power.Active.Import"},
			{Timestamp: models.At(at), Value: 1, Unit: "kW", Measurand: "Power.Active.Import"},
		}, nil
	}}
	rec := &recorderStub{}
	s := NewTelemetryService(b, detailSourceStub{data: DetailData{
		Charger:  chargerWithTx("CP-1", 55),
		Sessions: []models.Session{},
	}}, rec)

	panel, err := s.ConnectorSession(context.Background(), "CP-1", 1)
	require.NoError(t, err)

	assert.Equal(t, correlate.Placeholder.String(), panel.Outcome)
	assert.True(t, panel.Session.Placeholder)
	assert.Equal(t, 55, panel.Session.TransactionID)
	assert.Equal(t, models.UnknownIDTag, panel.Session.IDTag)
	assert.Equal(t, int64(55), b.lastReadingTx.Load())
	assert.Equal(t, 2, panel.Readings.PointCount)
	assert.False(t, panel.Readings.NoData)
	assert.Empty(t, panel.Readings.Error)
	assert.Equal(t, 1, rec.ok)
}

func TestTelemetry_KnownSessionIsMatched(t *testing.T) {
	t.Parallel()

	b := &backendStub{}
	s := NewTelemetryService(b, detailSourceStub{data: DetailData{
		Charger:  chargerWithTx("CP-1", 55),
		Sessions: []models.Session{{ID: 9, TransactionID: 55, IDTag: "RFID-1"}},
	}}, nil)

	panel, err := s.ConnectorSession(context.Background(), "CP-1", 1)
	require.NoError(t, err)
	assert.Equal(t, "matched", panel.Outcome)
	assert.Equal(t, 9, panel.Session.ID)
	assert.Equal(t, "RFID-1", panel.Session.IDTag)
	assert.True(t, panel.Readings.NoData)
}

func TestTelemetry_ConnectorErrors(t *testing.T) {
	t.Parallel()

	src := detailSourceStub{data: DetailData{Charger: chargerWithTx("CP-1", 55)}}
	s := NewTelemetryService(&backendStub{}, src, nil)

	tests := []struct {
		name      string
		connector int
		wantErr   error
	}{
		{name: "station connector", connector: 0, wantErr: ErrNotActionable},
		{name: "idle connector", connector: 2, wantErr: ErrNotActionable},
		{name: "missing connector", connector: 7, wantErr: ErrConnectorNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.ConnectorSession(context.Background(), "CP-1", tt.connector)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	upstreamErr := errors.New("boom")
	s = NewTelemetryService(&backendStub{}, detailSourceStub{err: upstreamErr}, nil)
	_, err := s.ConnectorSession(context.Background(), "CP-1", 1)
	require.ErrorIs(t, err, upstreamErr)
}

func TestTelemetry_ReadingsFailureIsLocal(t *testing.T) {
	t.Parallel()

	b := &backendStub{ListReadingsFn: func(context.Context, int) ([]models.Reading, error) {
		return nil, errors.New("503")
	}}
	rec := &recorderStub{}
	s := NewTelemetryService(b, detailSourceStub{}, rec)

	panel := s.Readings(context.Background(), 12)
	assert.Equal(t, 12, panel.TransactionID)
	assert.Equal(t, readingsFailedMsg, panel.Error)
	assert.True(t, panel.NoData)
	assert.Zero(t, panel.PointCount)
	assert.True(t, panel.Series.Empty())
	assert.Equal(t, 1, rec.failed)
}
