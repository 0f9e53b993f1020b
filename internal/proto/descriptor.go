// Package proto defines the wire contract of the skillhub session service:
// message types, the gRPC service descriptor, and the client stub.
//
// Messages travel as protocol buffers through grpc's default codec. The
// schema is assembled at init from descriptorpb, and each Go message is
// copied to and from a dynamicpb message at the stub boundary.
package proto

import (
	gproto "google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const (
	FileName    = "skillhub/session/v1/session.proto"
	PackageName = "skillhub.session"
)

// File_skillhub_session_proto is the registered session.proto descriptor.
var File_skillhub_session_proto protoreflect.FileDescriptor

func init() {
	fd, err := protodesc.NewFile(sessionFile(), protoregistry.GlobalFiles)
	if err != nil {
		panic(err)
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		panic(err)
	}
	File_skillhub_session_proto = fd
}

var (
	typeString    = descriptorpb.FieldDescriptorProto_TYPE_STRING
	typeBool      = descriptorpb.FieldDescriptorProto_TYPE_BOOL
	typeMessage   = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE
	labelOptional = descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
	labelRepeated = descriptorpb.FieldDescriptorProto_LABEL_REPEATED
)

func field(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   gproto.String(name),
		Number: gproto.Int32(number),
		Label:  labelOptional.Enum(),
		Type:   typ.Enum(),
	}
}

func repeated(f *descriptorpb.FieldDescriptorProto) *descriptorpb.FieldDescriptorProto {
	f.Label = labelRepeated.Enum()
	return f
}

func messageField(name string, number int32, typeName string) *descriptorpb.FieldDescriptorProto {
	f := field(name, number, typeMessage)
	f.TypeName = gproto.String(typeName)
	return f
}

func timestampField(name string, number int32) *descriptorpb.FieldDescriptorProto {
	return messageField(name, number, "."+string((&timestamppb.Timestamp{}).ProtoReflect().Descriptor().FullName()))
}

func message(name string, fields ...*descriptorpb.FieldDescriptorProto) *descriptorpb.DescriptorProto {
	return &descriptorpb.DescriptorProto{Name: gproto.String(name), Field: fields}
}

func method(name, in, out string) *descriptorpb.MethodDescriptorProto {
	return &descriptorpb.MethodDescriptorProto{
		Name:       gproto.String(name),
		InputType:  gproto.String("." + PackageName + "." + in),
		OutputType: gproto.String("." + PackageName + "." + out),
	}
}

// sessionFile is the schema; field numbers are part of the wire contract.
func sessionFile() *descriptorpb.FileDescriptorProto {
	return &descriptorpb.FileDescriptorProto{
		Name:       gproto.String(FileName),
		Package:    gproto.String(PackageName),
		Syntax:     gproto.String("proto3"),
		Dependency: []string{timestamppb.File_google_protobuf_timestamp_proto.Path()},
		MessageType: []*descriptorpb.DescriptorProto{
			message("LoginRequest",
				field("identifier", 1, typeString),
				field("password", 2, typeString),
			),
			message("RefreshTokenRequest",
				field("refresh_token", 1, typeString),
			),
			message("WhoAmIRequest"),
			message("Principal",
				field("id", 1, typeString),
				field("kind", 2, typeString),
				field("username", 3, typeString),
				field("email", 4, typeString),
				repeated(field("roles", 5, typeString)),
				field("active", 6, typeBool),
				field("owner_id", 7, typeString),
			),
			message("SessionResponse",
				field("access_token", 1, typeString),
				timestampField("access_token_expires_at", 2),
				field("refresh_token", 3, typeString),
				timestampField("refresh_token_expires_at", 4),
				messageField("principal", 5, "."+PackageName+".Principal"),
			),
			message("InvalidateResponse",
				field("message", 1, typeString),
			),
			message("VerifyResponse",
				field("token", 1, typeString),
				timestampField("expiry_date", 2),
				field("username", 3, typeString),
				field("email", 4, typeString),
				field("principal_kind", 5, typeString),
				field("principal_id", 6, typeString),
			),
		},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: gproto.String("SessionService"),
			Method: []*descriptorpb.MethodDescriptorProto{
				method("Login", "LoginRequest", "SessionResponse"),
				method("Regenerate", "RefreshTokenRequest", "SessionResponse"),
				method("Invalidate", "RefreshTokenRequest", "InvalidateResponse"),
				method("Verify", "RefreshTokenRequest", "VerifyResponse"),
				method("WhoAmI", "WhoAmIRequest", "Principal"),
			},
		}},
	}
}
