package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = PackageName + ".SessionService"

// Full method names, as seen by interceptors.
const (
	SessionService_Login_FullMethodName      = "/" + ServiceName + "/Login"
	SessionService_Regenerate_FullMethodName = "/" + ServiceName + "/Regenerate"
	SessionService_Invalidate_FullMethodName = "/" + ServiceName + "/Invalidate"
	SessionService_Verify_FullMethodName     = "/" + ServiceName + "/Verify"
	SessionService_WhoAmI_FullMethodName     = "/" + ServiceName + "/WhoAmI"
)

// SessionServiceServer is the server API for SessionService.
type SessionServiceServer interface {
	Login(context.Context, *LoginRequest) (*SessionResponse, error)
	Regenerate(context.Context, *RefreshTokenRequest) (*SessionResponse, error)
	Invalidate(context.Context, *RefreshTokenRequest) (*InvalidateResponse, error)
	Verify(context.Context, *RefreshTokenRequest) (*VerifyResponse, error)
	WhoAmI(context.Context, *WhoAmIRequest) (*Principal, error)
}

// UnimplementedSessionServiceServer answers codes.Unimplemented for every method.
type UnimplementedSessionServiceServer struct{}

func (UnimplementedSessionServiceServer) Login(context.Context, *LoginRequest) (*SessionResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Login not implemented")
}
func (UnimplementedSessionServiceServer) Regenerate(context.Context, *RefreshTokenRequest) (*SessionResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Regenerate not implemented")
}
func (UnimplementedSessionServiceServer) Invalidate(context.Context, *RefreshTokenRequest) (*InvalidateResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Invalidate not implemented")
}
func (UnimplementedSessionServiceServer) Verify(context.Context, *RefreshTokenRequest) (*VerifyResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Verify not implemented")
}
func (UnimplementedSessionServiceServer) WhoAmI(context.Context, *WhoAmIRequest) (*Principal, error) {
	return nil, status.Error(codes.Unimplemented, "method WhoAmI not implemented")
}

func RegisterSessionServiceServer(s grpc.ServiceRegistrar, srv SessionServiceServer) {
	s.RegisterService(&SessionService_ServiceDesc, srv)
}

// unaryHandler adapts one typed method to grpc's method handler signature.
// Requests are decoded from their protobuf form before interceptors run, so
// interceptors see the Go message; the reply goes back out as protobuf.
func unaryHandler[Req, Resp any, PReq wirePtr[Req], PResp wirePtr[Resp]](fullMethod string, call func(SessionServiceServer, context.Context, PReq) (PResp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := PReq(new(Req))
		msg := newWire(in.messageName())
		if err := dec(msg); err != nil {
			return nil, err
		}
		in.decode(msg)

		handler := func(ctx context.Context, req any) (any, error) {
			resp, err := call(srv.(SessionServiceServer), ctx, req.(PReq))
			if err != nil {
				return nil, err
			}
			if resp == nil {
				resp = PResp(new(Resp))
			}
			return toWire(resp), nil
		}
		if interceptor == nil {
			return handler(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, in, info, handler)
	}
}

var SessionService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SessionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Login", Handler: unaryHandler[LoginRequest, SessionResponse](SessionService_Login_FullMethodName, SessionServiceServer.Login)},
		{MethodName: "Regenerate", Handler: unaryHandler[RefreshTokenRequest, SessionResponse](SessionService_Regenerate_FullMethodName, SessionServiceServer.Regenerate)},
		{MethodName: "Invalidate", Handler: unaryHandler[RefreshTokenRequest, InvalidateResponse](SessionService_Invalidate_FullMethodName, SessionServiceServer.Invalidate)},
		{MethodName: "Verify", Handler: unaryHandler[RefreshTokenRequest, VerifyResponse](SessionService_Verify_FullMethodName, SessionServiceServer.Verify)},
		{MethodName: "WhoAmI", Handler: unaryHandler[WhoAmIRequest, Principal](SessionService_WhoAmI_FullMethodName, SessionServiceServer.WhoAmI)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: FileName,
}

// SessionServiceClient is the client API for SessionService.
type SessionServiceClient interface {
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*SessionResponse, error)
	Regenerate(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*SessionResponse, error)
	Invalidate(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*InvalidateResponse, error)
	Verify(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*VerifyResponse, error)
	WhoAmI(ctx context.Context, in *WhoAmIRequest, opts ...grpc.CallOption) (*Principal, error)
}

type sessionServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewSessionServiceClient(cc grpc.ClientConnInterface) SessionServiceClient {
	return &sessionServiceClient{cc: cc}
}

// invoke sends in as protobuf and decodes the reply into a fresh Resp.
func invoke[Req, Resp any, PReq wirePtr[Req], PResp wirePtr[Resp]](ctx context.Context, cc grpc.ClientConnInterface, method string, in PReq, opts []grpc.CallOption) (PResp, error) {
	if in == nil {
		in = PReq(new(Req))
	}
	out := PResp(new(Resp))
	reply := newWire(out.messageName())
	if err := cc.Invoke(ctx, method, toWire(in), reply, opts...); err != nil {
		return nil, err
	}
	out.decode(reply)
	return out, nil
}

func (c *sessionServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[LoginRequest, SessionResponse](ctx, c.cc, SessionService_Login_FullMethodName, in, opts)
}

func (c *sessionServiceClient) Regenerate(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[RefreshTokenRequest, SessionResponse](ctx, c.cc, SessionService_Regenerate_FullMethodName, in, opts)
}

func (c *sessionServiceClient) Invalidate(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*InvalidateResponse, error) {
	return invoke[RefreshTokenRequest, InvalidateResponse](ctx, c.cc, SessionService_Invalidate_FullMethodName, in, opts)
}

func (c *sessionServiceClient) Verify(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*VerifyResponse, error) {
	return invoke[RefreshTokenRequest, VerifyResponse](ctx, c.cc, SessionService_Verify_FullMethodName, in, opts)
}

func (c *sessionServiceClient) WhoAmI(ctx context.Context, in *WhoAmIRequest, opts ...grpc.CallOption) (*Principal, error) {
	return invoke[WhoAmIRequest, Principal](ctx, c.cc, SessionService_WhoAmI_FullMethodName, in, opts)
}
