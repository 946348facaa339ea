package rpc

import (
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// String returns the trimmed string field name of req, or "" when it is absent or not a string.
func String(req *structpb.Struct, name string) string {
	return strings.TrimSpace(RawString(req, name))
}

// RawString is String without trimming, for secrets that must be compared as sent.
func RawString(req *structpb.Struct, name string) string {
	if req == nil {
		return ""
	}
	v, ok := req.GetFields()[name]
	if !ok {
		return ""
	}
	if s, ok := v.GetKind().(*structpb.Value_StringValue); ok {
		return s.StringValue
	}
	return ""
}

// Object returns the struct field name of req as a map, and false when it is absent or not an object.
func Object(req *structpb.Struct, name string) (map[string]any, bool) {
	if req == nil {
		return nil, false
	}
	v, ok := req.GetFields()[name]
	if !ok {
		return nil, false
	}
	s, ok := v.GetKind().(*structpb.Value_StructValue)
	if !ok || s.StructValue == nil {
		return nil, false
	}
	return s.StructValue.AsMap(), true
}

// Reply builds a response Struct from fields. Values must be structpb-compatible.
func Reply(fields map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return out, nil
}
