package models

// User is the authenticated operator as reported by the backend.
type User struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Mode     string `json:"mode,omitempty"`
}

// SystemInfo is the backend's network description, used for installer hints.
type SystemInfo struct {
	IPAddress string `json:"ip_address"`
	Hostname  string `json:"hostname,omitempty"`
}
