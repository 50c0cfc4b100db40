package generator

import (
	"fmt"
	"strings"
)

// SNMPv3Request describes an SNMPv3 monitoring configuration.
type SNMPv3Request struct {
	Mode         string `json:"mode"` // secure-default | balanced | legacy-compatible
	Device       string `json:"device"`
	Host         string `json:"host"`
	User         string `json:"user"`
	Group        string `json:"group"`
	AuthPassword string `json:"auth_password"`
	PrivPassword string `json:"priv_password"`
	OutputFormat string `json:"output_format"`
}

// snmpAlgorithms maps a security mode to (auth, priv) algorithm names.
var snmpAlgorithms = map[string][2]string{
	"secure-default":    {"SHA-256", "AES-256"},
	"balanced":          {"SHA", "AES-128"},
	"legacy-compatible": {"SHA", "AES-128"},
}

// GenerateSNMPv3 renders the snmp-server block for the request.
func GenerateSNMPv3(req SNMPv3Request) (string, error) {
	if req.Host == "" || req.User == "" || req.Group == "" {
		return "", fmt.Errorf("snmpv3 request requires host, user and group")
	}

	algos, ok := snmpAlgorithms[req.Mode]
	if !ok {
		algos = snmpAlgorithms["balanced"]
	}
	authAlgo, privAlgo := algos[0], algos[1]

	cfg := fmt.Sprintf(`snmp-server view ALL iso included
snmp-server group %s v3 priv read ALL write ALL
snmp-server user %s %s v3 auth %s %s priv %s %s
snmp-server host %s version 3 priv %s
snmp-server enable traps`,
		req.Group,
		req.User, req.Group, authAlgo, req.AuthPassword, privAlgo, req.PrivPassword,
		req.Host, req.User,
	)

	return Render(strings.TrimSpace(cfg), req.OutputFormat), nil
}
