package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/veriauth/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// authorizationMetadataKey is the gRPC metadata key (lower case by protocol).
var authorizationMetadataKey = strings.ToLower(common.AuthorizationHeaderName)

// TokenCredentials implements credentials.PerRPCCredentials on top of the
// session store, for channels that use transport security.
type TokenCredentials struct {
	Tokens TokenSource
	Secure bool
}

var _ credentials.PerRPCCredentials = TokenCredentials{}

func (c TokenCredentials) GetRequestMetadata(ctx context.Context, uri ...string) (map[string]string, error) {
	token := c.Tokens.AuthToken()
	if token == "" {
		return nil, nil
	}
	return map[string]string{authorizationMetadataKey: token}, nil
}

func (c TokenCredentials) RequireTransportSecurity() bool {
	return c.Secure
}

func withAuthorizationMD(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(authorizationMetadataKey)
	if token != "" {
		md.Set(authorizationMetadataKey, token)
	}
	return metadata.NewOutgoingContext(ctx, md)
}

// UnaryInterceptor attaches the session credential to each call. On
// codes.Unauthenticated it refreshes once (when a refresh token is stored)
// and retries; remaining failures are mapped with mapRPCError.
func UnaryInterceptor(tokens TokenSource, refresher Refresher) grpc.UnaryClientInterceptor {
	transport := &AuthTransport{Tokens: tokens, Refresher: refresher}

	return func(
		ctx context.Context,
		method string,
		req, reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		token := tokens.AuthToken()
		err := invoker(withAuthorizationMD(ctx, token), method, req, reply, cc, opts...)
		if err == nil {
			return nil
		}

		if status.Code(err) != codes.Unauthenticated || refresher == nil || tokens.RefreshToken() == "" {
			return mapRPCError(err)
		}

		fresh, rerr := transport.refresh(ctx, token)
		if rerr != nil {
			return mapRPCError(err)
		}
		return mapRPCError(invoker(withAuthorizationMD(ctx, fresh), method, req, reply, cc, opts...))
	}
}

func mapRPCError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

// HealthClient pings a gRPC backend over an authenticated connection using
// the standard health-checking service.
type HealthClient struct {
	conn   *grpc.ClientConn
	health healthpb.HealthClient
}

// NewHealthClient dials target without transport security; the credential
// travels through UnaryInterceptor.
func NewHealthClient(target string, tokens TokenSource, refresher Refresher, opts ...grpc.DialOption) (*HealthClient, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(UnaryInterceptor(tokens, refresher)),
	}, opts...)

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, err
	}
	return &HealthClient{conn: conn, health: healthpb.NewHealthClient(conn)}, nil
}

// Ping returns nil when the server reports SERVING.
func (h *HealthClient) Ping(ctx context.Context) error {
	resp, err := h.health.Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return err
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return ErrUnavailable
	}
	return nil
}

func (h *HealthClient) Close() error {
	return h.conn.Close()
}
