package wellknown

import "testing"

func TestLookupCaseInsensitive(t *testing.T) {
	entries, ok := Lookup("Service-HTTP")
	if !ok {
		t.Fatal("expected service-http to resolve")
	}
	if len(entries) != 2 || entries[0].StartPort != 80 {
		t.Errorf("unexpected entries %v", entries)
	}

	if _, ok := Lookup("custom-app-svc"); ok {
		t.Error("custom service names must not resolve")
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"service-https", "service-https (tcp/443)"},
		{"dns", "dns (tcp/53, udp/53)"},
		{"custom-app-svc", "custom-app-svc"},
		{"any", "any"},
	}
	for _, tt := range tests {
		if got := Describe(tt.in); got != tt.want {
			t.Errorf("Describe(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
