// Package wellknown resolves service object names that have a fixed,
// device-independent meaning: the PAN-OS predefined services plus the
// conventional names most rulebases define for common protocols. Custom
// service objects are per-device and cannot be resolved offline; lookups
// for them simply miss.
package wellknown

import (
	"fmt"
	"strings"
)

type ServiceEntry struct {
	Protocol  string
	StartPort int
	EndPort   int
}

var serviceRegistry = map[string][]ServiceEntry{
	// PAN-OS predefined service objects.
	"service-http":  {{Protocol: "tcp", StartPort: 80, EndPort: 80}, {Protocol: "tcp", StartPort: 8080, EndPort: 8080}},
	"service-https": {{Protocol: "tcp", StartPort: 443, EndPort: 443}},

	// Conventional names seen across exported rulebases.
	"ssh":    {{Protocol: "tcp", StartPort: 22, EndPort: 22}},
	"telnet": {{Protocol: "tcp", StartPort: 23, EndPort: 23}},
	"smtp":   {{Protocol: "tcp", StartPort: 25, EndPort: 25}},
	"dns": {
		{Protocol: "tcp", StartPort: 53, EndPort: 53},
		{Protocol: "udp", StartPort: 53, EndPort: 53},
	},
	"ntp":        {{Protocol: "udp", StartPort: 123, EndPort: 123}},
	"snmp":       {{Protocol: "udp", StartPort: 161, EndPort: 161}},
	"ldap":       {{Protocol: "tcp", StartPort: 389, EndPort: 389}},
	"syslog":     {{Protocol: "udp", StartPort: 514, EndPort: 514}},
	"rdp":        {{Protocol: "tcp", StartPort: 3389, EndPort: 3389}},
	"mysql":      {{Protocol: "tcp", StartPort: 3306, EndPort: 3306}},
	"postgresql": {{Protocol: "tcp", StartPort: 5432, EndPort: 5432}},
}

// Lookup returns the port definitions for a well-known service name.
func Lookup(name string) ([]ServiceEntry, bool) {
	entries, ok := serviceRegistry[strings.ToLower(name)]
	return entries, ok
}

// Describe renders a service name with its resolved ports, e.g.
// "service-http (tcp/80, tcp/8080)". Unknown names come back unchanged.
func Describe(name string) string {
	entries, ok := Lookup(name)
	if !ok {
		return name
	}
	parts := make([]string, len(entries))
	for i, e := range entries {
		if e.StartPort == e.EndPort {
			parts[i] = fmt.Sprintf("%s/%d", e.Protocol, e.StartPort)
		} else {
			parts[i] = fmt.Sprintf("%s/%d-%d", e.Protocol, e.StartPort, e.EndPort)
		}
	}
	return fmt.Sprintf("%s (%s)", name, strings.Join(parts, ", "))
}
