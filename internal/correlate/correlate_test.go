package correlate

import (
	"testing"
	"time"

	"charging_console/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func txID(v int) *int { return &v }

func TestResolve(t *testing.T) {
	t.Parallel()

	ended := models.At(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	sessions := []models.Session{
		{ID: 1, TransactionID: 41, IDTag: "TAG-A", EndTime: &ended},
		{ID: 2, TransactionID: 42, IDTag: "TAG-B"},
	}

	cases := []struct {
		name    string
		conn    models.Connector
		outcome Outcome
		tx      int
		idTag   string
	}{
		{
			name:    "no transaction is not actionable",
			conn:    models.Connector{ConnectorID: 1, Status: models.StatusAvailable},
			outcome: NotActionable,
		},
		{
			name:    "zero transaction id is not actionable",
			conn:    models.Connector{ConnectorID: 1, Status: models.StatusAvailable, CurrentTransactionID: txID(0)},
			outcome: NotActionable,
		},
		{
			name:    "station connector is never actionable",
			conn:    models.Connector{ConnectorID: 0, Status: models.StatusCharging, CurrentTransactionID: txID(42)},
			outcome: NotActionable,
		},
		{
			name:    "known transaction is matched",
			conn:    models.Connector{ConnectorID: 2, Status: models.StatusCharging, CurrentTransactionID: txID(42)},
			outcome: Matched,
			tx:      42,
			idTag:   "TAG-B",
		},
		{
			name:    "unknown transaction gets a placeholder",
			conn:    models.Connector{ConnectorID: 1, Status: models.StatusCharging, CurrentTransactionID: txID(99)},
			outcome: Placeholder,
			tx:      99,
			idTag:   models.UnknownIDTag,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			res := Resolve(sessions, tc.conn)
			require.Equal(t, tc.outcome, res.Outcome, res.Outcome.String())
			if tc.outcome == NotActionable {
				assert.False(t, res.Actionable())
				return
			}
			assert.True(t, res.Actionable())
			assert.Equal(t, tc.tx, res.Session.TransactionID)
			assert.Equal(t, tc.tx, res.Session.ReadingsKey())
			assert.Equal(t, tc.idTag, res.Session.IDTag)
		})
	}
}

func TestResolve_PlaceholderWithEmptySessionList(t *testing.T) {
	t.Parallel()

	conn := models.Connector{ConnectorID: 1, Status: models.StatusCharging, CurrentTransactionID: txID(55)}
	res := Resolve(nil, conn)

	require.Equal(t, Placeholder, res.Outcome)
	s := res.Session
	assert.Equal(t, 55, s.TransactionID)
	assert.Equal(t, 55, s.ReadingsKey())
	assert.True(t, s.Placeholder)
	assert.True(t, s.IsActive())
	assert.Nil(t, s.EndTime)
	assert.Nil(t, s.MeterStop)
	assert.Nil(t, s.TotalEnergy)
	assert.Zero(t, s.MeterStart)
	assert.Zero(t, s.ID)
}

func TestSplitConnectors(t *testing.T) {
	t.Parallel()

	conns := []models.Connector{
		{ConnectorID: 2, Status: models.StatusCharging},
		{ConnectorID: 0, Status: models.StatusAvailable},
		{ConnectorID: 1, Status: models.StatusFaulted},
	}
	station, selectable := SplitConnectors(conns)

	require.NotNil(t, station)
	assert.Equal(t, models.StatusAvailable, station.Status)
	require.Len(t, selectable, 2)
	assert.Equal(t, 2, selectable[0].ConnectorID)
	assert.Equal(t, 1, selectable[1].ConnectorID)
	for _, c := range selectable {
		assert.NotZero(t, c.ConnectorID)
	}

	// mutation of the returned badge must not leak into the input
	station.Status = models.StatusFaulted
	assert.Equal(t, models.StatusAvailable, conns[1].Status)
}

func TestSplitConnectors_NoStation(t *testing.T) {
	t.Parallel()

	station, selectable := SplitConnectors([]models.Connector{{ConnectorID: 1}})
	assert.Nil(t, station)
	assert.Len(t, selectable, 1)
}

func TestToneFor(t *testing.T) {
	t.Parallel()

	cases := map[models.ConnectorStatus]Tone{
		models.StatusAvailable:   ToneGreen,
		models.StatusCharging:    ToneBlue,
		models.StatusFinishing:   ToneLightBlue,
		models.StatusReserved:    ToneOrange,
		models.StatusUnavailable: ToneRed,
		models.StatusFaulted:     ToneRed,
		models.StatusPreparing:   ToneGray,
		"SomethingNew":           ToneGray,
	}
	for status, want := range cases {
		assert.Equal(t, want, ToneFor(status), string(status))
	}
}

func TestBuildBoard(t *testing.T) {
	t.Parallel()

	ended := models.At(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	ch := models.Charger{
		ID:       "CP-1",
		IsOnline: true,
		Connectors: []models.Connector{
			{ConnectorID: 0, Status: models.StatusAvailable, CurrentTransactionID: txID(7)},
			{ConnectorID: 1, Status: models.StatusCharging, CurrentTransactionID: txID(7)},
			{ConnectorID: 2, Status: models.StatusCharging, CurrentTransactionID: txID(8)},
			{ConnectorID: 3, Status: models.StatusFaulted},
		},
	}
	sessions := []models.Session{
		{TransactionID: 7},
		{TransactionID: 3, EndTime: &ended},
	}

	b := BuildBoard(ch, sessions)

	assert.Equal(t, "CP-1", b.ChargerID)
	assert.True(t, b.Online)
	require.NotNil(t, b.Station)
	assert.Equal(t, models.StatusAvailable, b.Station.Status)
	assert.Equal(t, ToneGreen, b.Station.Tone)
	assert.Equal(t, 2, b.TotalSessions)
	assert.Equal(t, 1, b.ActiveSessions)

	require.Len(t, b.Connectors, 3)
	for _, c := range b.Connectors {
		assert.NotEqual(t, models.StationConnectorID, c.ConnectorID)
	}

	one, two, three := b.Connectors[0], b.Connectors[1], b.Connectors[2]
	assert.True(t, one.Actionable)
	assert.True(t, one.SessionKnown)
	require.NotNil(t, one.TransactionID)
	assert.Equal(t, 7, *one.TransactionID)

	assert.True(t, two.Actionable)
	assert.False(t, two.SessionKnown)
	require.NotNil(t, two.TransactionID)
	assert.Equal(t, 8, *two.TransactionID)

	assert.False(t, three.Actionable)
	assert.Nil(t, three.TransactionID)
	assert.Equal(t, ToneRed, three.Tone)
}

func TestBuildBoard_WithoutStationConnector(t *testing.T) {
	t.Parallel()

	b := BuildBoard(models.Charger{ID: "CP-2", Connectors: []models.Connector{{ConnectorID: 1, Status: models.StatusAvailable}}}, nil)
	assert.Nil(t, b.Station)
	assert.Len(t, b.Connectors, 1)
	assert.Zero(t, b.TotalSessions)
}
