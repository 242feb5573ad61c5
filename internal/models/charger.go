package models

// StationConnectorID is the connector index reserved for the station itself.
const StationConnectorID = 0

// ConnectorStatus mirrors the OCPP 1.6 StatusNotification status values.
type ConnectorStatus string

const (
	StatusAvailable     ConnectorStatus = "Available"
	StatusPreparing     ConnectorStatus = "Preparing"
	StatusCharging      ConnectorStatus = "Charging"
	StatusSuspendedEVSE ConnectorStatus = "SuspendedEVSE"
	StatusSuspendedEV   ConnectorStatus = "SuspendedEV"
	StatusFinishing     ConnectorStatus = "Finishing"
	StatusReserved      ConnectorStatus = "Reserved"
	StatusUnavailable   ConnectorStatus = "Unavailable"
	StatusFaulted       ConnectorStatus = "Faulted"
	StatusUnknown       ConnectorStatus = "Unknown"
)

// Known reports whether s is one of the statuses above. Unknown values are
// kept verbatim so a newer backend never breaks decoding.
func (s ConnectorStatus) Known() bool {
	switch s {
	case StatusAvailable, StatusPreparing, StatusCharging, StatusSuspendedEVSE,
		StatusSuspendedEV, StatusFinishing, StatusReserved, StatusUnavailable,
		StatusFaulted, StatusUnknown:
		return true
	}
	return false
}

// Connector is one outlet of a charger, or the station itself when
// ConnectorID is StationConnectorID.
type Connector struct {
	ConnectorID          int             `json:"connector_id"`
	Status               ConnectorStatus `json:"status"`
	CurrentTransactionID *int            `json:"current_transaction_id,omitempty"`
}

// IsStation reports whether the connector represents the whole station.
func (c Connector) IsStation() bool {
	return c.ConnectorID == StationConnectorID
}

// HasActiveTransaction reports whether the connector is bound to a transaction.
func (c Connector) HasActiveTransaction() bool {
	return c.CurrentTransactionID != nil && *c.CurrentTransactionID != 0
}

// ActiveSessionRef is the short active-session summary on the overview list.
type ActiveSessionRef struct {
	TransactionID    int    `json:"transaction_id"`
	RenterName       string `json:"renter_name"`
	EnergyConsumedWh int    `json:"energy_consumed"`
}

// Charger is the console's read-only copy of a charging station.
type Charger struct {
	ID               string            `json:"id"`
	Vendor           *string           `json:"vendor"`
	Model            *string           `json:"model"`
	FirmwareVersion  *string           `json:"firmware_version,omitempty"`
	IsOnline         bool              `json:"is_online"`
	LastHeartbeat    *Timestamp        `json:"last_heartbeat,omitempty"`
	ParkingSpotLabel *string           `json:"parking_spot_label"`
	ParkingSpotID    *int              `json:"parking_spot_id,omitempty"`
	Connectors       []Connector       `json:"connectors"`
	ActiveSession    *ActiveSessionRef `json:"active_session,omitempty"`
}

// Connector returns the connector with the given index.
func (c Charger) Connector(id int) (Connector, bool) {
	for _, conn := range c.Connectors {
		if conn.ConnectorID == id {
			return conn, true
		}
	}
	return Connector{}, false
}
