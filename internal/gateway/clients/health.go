package clients

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthClient probes the backend's gRPC health service.
type HealthClient struct {
	health healthpb.HealthClient
	conn   *grpc.ClientConn
}

func NewHealthClient(target string, opts ...grpc.DialOption) (*HealthClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("health service connection failed: %v", err)
	}
	log.Printf("Health probe targeting %s", target)
	return &HealthClient{health: healthpb.NewHealthClient(conn), conn: conn}, nil
}

// Status returns the serving status of service ("" for overall).
func (c *HealthClient) Status(ctx context.Context, service string) (string, error) {
	if c == nil {
		return "UNKNOWN", fmt.Errorf("health client not initialized")
	}
	resp, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return "UNKNOWN", err
	}
	return resp.GetStatus().String(), nil
}

func (c *HealthClient) Close() {
	if c != nil && c.conn != nil {
		c.conn.Close()
	}
}
