package clients

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"

	"fieldforce-system/internal/rpc"
)

func TestHealthClientReportsProbeStatus(t *testing.T) {
	storeErr := errors.New("store offline")
	failing := true
	srv := rpc.NewServer(
		rpc.Probe{Service: "store", Check: func(context.Context) error {
			if failing {
				return storeErr
			}
			return nil
		}},
		rpc.Probe{Service: "cache", Check: func(context.Context) error { return nil }},
	)
	lis := bufconn.Listen(1 << 20)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	client, err := NewHealthClient("passthrough:///bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(client.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	srv.Refresh(ctx)
	checks := map[string]string{"": "NOT_SERVING", "store": "NOT_SERVING", "cache": "SERVING"}
	for service, want := range checks {
		got, err := client.Status(ctx, service)
		if err != nil {
			t.Fatalf("status %q: %v", service, err)
		}
		if got != want {
			t.Errorf("status %q = %s, want %s", service, got, want)
		}
	}

	failing = false
	srv.Refresh(ctx)
	if got, _ := client.Status(ctx, ""); got != "SERVING" {
		t.Errorf("overall status after recovery = %s, want SERVING", got)
	}

	if _, err := client.Status(ctx, "unknown"); err == nil {
		t.Error("expected NotFound for unregistered service")
	}
}

func TestNilHealthClient(t *testing.T) {
	var c *HealthClient
	if _, err := c.Status(context.Background(), ""); err == nil {
		t.Fatal("expected error from nil client")
	}
	c.Close()
}
