package generator

import (
	"fmt"
	"strings"
)

// AAA modes.
const (
	AAAModeTacacs    = "tacacs"
	AAAModeLocalOnly = "local-only"
)

// TacacsServer is one TACACS+ server definition.
type TacacsServer struct {
	Name string `json:"name"`
	IP   string `json:"ip"`
	Key  string `json:"key"`
}

func (s *TacacsServer) complete() bool {
	return s.Name != "" && s.IP != "" && s.Key != ""
}

// AAARequest describes an AAA/TACACS+ configuration.
type AAARequest struct {
	Device       string `json:"device"`
	Mode         string `json:"mode"` // tacacs | local-only
	EnableSecret string `json:"enable_secret,omitempty"`
	OutputFormat string `json:"output_format"`

	Primary         TacacsServer `json:"primary,omitempty"`
	Secondary       TacacsServer `json:"secondary,omitempty"`
	SourceInterface string       `json:"source_interface,omitempty"`
}

// GenerateAAA renders the AAA configuration block for the request.
func GenerateAAA(req AAARequest) (string, error) {
	switch req.Mode {
	case AAAModeLocalOnly:
		return Render(generateAAALocal(req.EnableSecret), req.OutputFormat), nil
	case AAAModeTacacs:
		cfg, err := generateAAATacacs(req)
		if err != nil {
			return "", err
		}
		return Render(cfg, req.OutputFormat), nil
	default:
		return "", fmt.Errorf("invalid aaa mode %q, allowed: %q, %q", req.Mode, AAAModeTacacs, AAAModeLocalOnly)
	}
}

func generateAAALocal(enableSecret string) string {
	var b strings.Builder
	b.WriteString("! AAA local-only baseline\n")
	b.WriteString("aaa new-model\n")
	b.WriteString("aaa authentication login default local\n")
	b.WriteString("aaa authorization exec default local\n")
	b.WriteString("aaa accounting update periodic 15\n")

	if enableSecret != "" {
		fmt.Fprintf(&b, "\n! Enable secret\nenable secret %s\n", enableSecret)
	}

	b.WriteString(`
! Line configuration
line vty 0 4
 login local
 transport input ssh
!`)
	return strings.TrimSpace(b.String())
}

func generateAAATacacs(req AAARequest) (string, error) {
	if !req.Primary.complete() {
		return "", fmt.Errorf("primary TACACS+ server definition is incomplete")
	}

	var b strings.Builder
	b.WriteString("! AAA with TACACS+ and local fallback\n")
	b.WriteString("aaa new-model\n")
	b.WriteString("aaa authentication login default group tacacs+ local\n")
	b.WriteString("aaa authorization exec default group tacacs+ local\n")
	b.WriteString("aaa accounting update periodic 15\n")

	if req.EnableSecret != "" {
		fmt.Fprintf(&b, "\n! Enable secret\nenable secret %s\n", req.EnableSecret)
	}

	b.WriteString("\n! TACACS+ server definitions\n")
	fmt.Fprintf(&b, "tacacs server %s\n address ipv4 %s\n key %s\n", req.Primary.Name, req.Primary.IP, req.Primary.Key)
	if req.Secondary.complete() {
		fmt.Fprintf(&b, "\ntacacs server %s\n address ipv4 %s\n key %s\n", req.Secondary.Name, req.Secondary.IP, req.Secondary.Key)
	}

	if req.SourceInterface != "" {
		fmt.Fprintf(&b, "\n! TACACS+ source interface\nip tacacs source-interface %s\n", req.SourceInterface)
	}

	b.WriteString(`
! Line configuration
line vty 0 4
 login authentication default
 transport input ssh
!`)
	return strings.TrimSpace(b.String()), nil
}
