package clickhouse

import (
	"testing"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

func TestBuildOptions(t *testing.T) {
	tests := []struct {
		name     string
		cfg      ClientConfig
		addr     string
		protocol clickhouse.Protocol
		settings bool
	}{
		{
			name:     "native",
			cfg:      ClientConfig{Host: "ch", Port: 9000, Database: "rsiwatch", User: "default"},
			addr:     "ch:9000",
			protocol: clickhouse.Native,
		},
		{
			name:     "http with execution limit",
			cfg:      ClientConfig{Host: "ch", Port: 8123, UseHTTP: true, MaxExecTime: 30 * time.Second},
			addr:     "ch:8123",
			protocol: clickhouse.HTTP,
			settings: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			o := buildOptions(tc.cfg)
			if len(o.Addr) != 1 || o.Addr[0] != tc.addr {
				t.Fatalf("addr = %v, want %s", o.Addr, tc.addr)
			}
			if o.Protocol != tc.protocol {
				t.Fatalf("protocol = %v", o.Protocol)
			}
			if o.Auth.Database != tc.cfg.Database {
				t.Fatalf("database = %q", o.Auth.Database)
			}
			if got := o.Settings["max_execution_time"]; tc.settings && got != 30 {
				t.Fatalf("max_execution_time = %v", got)
			}
		})
	}
}

func TestNewClientRequiresHost(t *testing.T) {
	if _, err := NewClient(WithPort(9000)); err == nil {
		t.Fatalf("expected error without host")
	}
}
