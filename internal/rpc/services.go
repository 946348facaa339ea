// Package rpc describes the rsvp.v1 gRPC services. Every request and response message is a
// google.protobuf.Struct, so the descriptors are written by hand instead of generated.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Service names.
const (
	VerificationServiceName = "rsvp.v1.VerificationService"
	ResponseServiceName     = "rsvp.v1.ResponseService"
	AdminServiceName        = "rsvp.v1.AdminService"
	DevServiceName          = "rsvp.v1.DevService"
)

// Full method names, as seen by interceptors in grpc.UnaryServerInfo.FullMethod.
const (
	MethodSendCode       = "/" + VerificationServiceName + "/SendCode"
	MethodVerifyCode     = "/" + VerificationServiceName + "/VerifyCode"
	MethodSubmitResponse = "/" + ResponseServiceName + "/SubmitResponse"
	MethodGetResponse    = "/" + ResponseServiceName + "/GetResponse"
	MethodAdminLogin     = "/" + AdminServiceName + "/Login"
	MethodAdminLogout    = "/" + AdminServiceName + "/Logout"
	MethodListGuests     = "/" + AdminServiceName + "/ListGuests"
	MethodDevGetCode     = "/" + DevServiceName + "/GetCode"
	MethodHealthCheck    = "/grpc.health.v1.Health/Check"
	MethodHealthWatch    = "/grpc.health.v1.Health/Watch"
)

// VerificationServer is the server API for VerificationService.
type VerificationServer interface {
	SendCode(context.Context, *structpb.Struct) (*structpb.Struct, error)
	VerifyCode(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ResponseServer is the server API for ResponseService.
type ResponseServer interface {
	SubmitResponse(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetResponse(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// AdminServer is the server API for AdminService.
type AdminServer interface {
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Logout(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListGuests(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// DevServer is the server API for DevService.
type DevServer interface {
	GetCode(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

// unaryMethod builds a MethodDesc that decodes a Struct and runs it through the server's interceptor chain.
func unaryMethod(service, method string, call unaryCall) grpc.MethodDesc {
	fullMethod := "/" + service + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv, ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// VerificationServiceDesc is the grpc.ServiceDesc for VerificationService.
var VerificationServiceDesc = grpc.ServiceDesc{
	ServiceName: VerificationServiceName,
	HandlerType: (*VerificationServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(VerificationServiceName, "SendCode", func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return srv.(VerificationServer).SendCode(ctx, in)
		}),
		unaryMethod(VerificationServiceName, "VerifyCode", func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return srv.(VerificationServer).VerifyCode(ctx, in)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rsvp/v1/verification.proto",
}

// ResponseServiceDesc is the grpc.ServiceDesc for ResponseService.
var ResponseServiceDesc = grpc.ServiceDesc{
	ServiceName: ResponseServiceName,
	HandlerType: (*ResponseServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(ResponseServiceName, "SubmitResponse", func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return srv.(ResponseServer).SubmitResponse(ctx, in)
		}),
		unaryMethod(ResponseServiceName, "GetResponse", func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return srv.(ResponseServer).GetResponse(ctx, in)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rsvp/v1/response.proto",
}

// AdminServiceDesc is the grpc.ServiceDesc for AdminService.
var AdminServiceDesc = grpc.ServiceDesc{
	ServiceName: AdminServiceName,
	HandlerType: (*AdminServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(AdminServiceName, "Login", func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return srv.(AdminServer).Login(ctx, in)
		}),
		unaryMethod(AdminServiceName, "Logout", func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return srv.(AdminServer).Logout(ctx, in)
		}),
		unaryMethod(AdminServiceName, "ListGuests", func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return srv.(AdminServer).ListGuests(ctx, in)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rsvp/v1/admin.proto",
}

// DevServiceDesc is the grpc.ServiceDesc for DevService.
var DevServiceDesc = grpc.ServiceDesc{
	ServiceName: DevServiceName,
	HandlerType: (*DevServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(DevServiceName, "GetCode", func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return srv.(DevServer).GetCode(ctx, in)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rsvp/v1/dev.proto",
}

// RegisterVerificationServer registers srv with s.
func RegisterVerificationServer(s grpc.ServiceRegistrar, srv VerificationServer) {
	s.RegisterService(&VerificationServiceDesc, srv)
}

// RegisterResponseServer registers srv with s.
func RegisterResponseServer(s grpc.ServiceRegistrar, srv ResponseServer) {
	s.RegisterService(&ResponseServiceDesc, srv)
}

// RegisterAdminServer registers srv with s.
func RegisterAdminServer(s grpc.ServiceRegistrar, srv AdminServer) {
	s.RegisterService(&AdminServiceDesc, srv)
}

// RegisterDevServer registers srv with s.
func RegisterDevServer(s grpc.ServiceRegistrar, srv DevServer) {
	s.RegisterService(&DevServiceDesc, srv)
}

// Invoke calls a unary rsvp.v1 method on cc with fields as the request Struct.
func Invoke(ctx context.Context, cc grpc.ClientConnInterface, method string, fields map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
