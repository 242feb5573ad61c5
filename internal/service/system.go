package service

import (
	"context"
	"fmt"
	"net"
	"strconv"
)

const defaultOCPPPort = 8000

// ChargePointPlaceholder stands in for the id the installer types into the charger.
const ChargePointPlaceholder = "<CHARGE_POINT_ID>"

// InstallerInfo tells an installer where to point a new charger.
type InstallerInfo struct {
	IPAddress    string `json:"ip_address"`
	Hostname     string `json:"hostname,omitempty"`
	OCPPPort     int    `json:"ocpp_port"`
	WebSocketURL string `json:"websocket_url"`
}

type SystemService struct {
	backend  Backend
	ocppPort int
}

func NewSystemService(backend Backend, ocppPort int) *SystemService {
	if ocppPort <= 0 {
		ocppPort = defaultOCPPPort
	}
	return &SystemService{backend: backend, ocppPort: ocppPort}
}

func (s *SystemService) Installer(ctx context.Context) (InstallerInfo, error) {
	info, err := s.backend.SystemInfo(ctx)
	if err != nil {
		return InstallerInfo{}, fmt.Errorf("system info: %w", err)
	}
	return InstallerInfo{
		IPAddress:    info.IPAddress,
		Hostname:     info.Hostname,
		OCPPPort:     s.ocppPort,
		WebSocketURL: ocppURL(info.IPAddress, s.ocppPort),
	}, nil
}

// ocppURL renders ws://<ip>:<port>/ocpp/<CHARGE_POINT_ID>; IPv6 hosts are bracketed.
func ocppURL(host string, port int) string {
	return "ws://" + net.JoinHostPort(host, strconv.Itoa(port)) + "/ocpp/" + ChargePointPlaceholder
}
