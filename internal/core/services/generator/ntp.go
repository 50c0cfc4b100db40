package generator

import (
	"fmt"
	"strings"
)

// NTPRequest describes an NTP time-sync configuration.
type NTPRequest struct {
	Device          string `json:"device"`
	PrimaryServer   string `json:"primary_server"`
	SecondaryServer string `json:"secondary_server,omitempty"`
	Timezone        string `json:"timezone"`
	UseAuth         bool   `json:"use_auth"`
	KeyID           string `json:"key_id,omitempty"`
	KeyValue        string `json:"key_value,omitempty"`
	OutputFormat    string `json:"output_format"`
}

// GenerateNTP renders the NTP configuration block for the request.
func GenerateNTP(req NTPRequest) (string, error) {
	if req.PrimaryServer == "" {
		return "", fmt.Errorf("ntp request requires a primary server")
	}
	tz := req.Timezone
	if tz == "" {
		tz = "UTC"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "clock timezone %s\n", tz)
	fmt.Fprintf(&b, "ntp server %s\n", req.PrimaryServer)
	if req.SecondaryServer != "" {
		fmt.Fprintf(&b, "ntp server %s\n", req.SecondaryServer)
	}
	if req.UseAuth && req.KeyID != "" && req.KeyValue != "" {
		b.WriteString("ntp authenticate\n")
		fmt.Fprintf(&b, "ntp authentication-key %s md5 %s\n", req.KeyID, req.KeyValue)
		fmt.Fprintf(&b, "ntp trusted-key %s\n", req.KeyID)
	}

	return Render(strings.TrimSpace(b.String()), req.OutputFormat), nil
}
