package api

import (
	"context"

	"google.golang.org/grpc"
)

// FeedsApi_ServiceDesc wires FeedsApiServer onto a grpc.Server by hand: the
// method table a protoc-generated _grpc.pb.go would otherwise produce.
var FeedsApi_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "feeds.FeedsApi",
	HandlerType: (*FeedsApiServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetFeedForAddress", Handler: _FeedsApi_GetFeedForAddress_Handler},
		{MethodName: "GetMessageById", Handler: _FeedsApi_GetMessageById_Handler},
		{MethodName: "GetFeedMessagesById", Handler: _FeedsApi_GetFeedMessagesById_Handler},
		{MethodName: "GetKeyGenerations", Handler: _FeedsApi_GetKeyGenerations_Handler},
		{MethodName: "AddMemberToGroupFeed", Handler: _FeedsApi_AddMemberToGroupFeed_Handler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "DownloadAttachment", Handler: _FeedsApi_DownloadAttachment_Handler, ServerStreams: true},
	},
	Metadata: "feeds.proto",
}

func _FeedsApi_GetFeedForAddress_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetFeedForAddressRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FeedsApiServer).GetFeedForAddress(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/feeds.FeedsApi/GetFeedForAddress"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FeedsApiServer).GetFeedForAddress(ctx, req.(*GetFeedForAddressRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _FeedsApi_GetMessageById_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetMessageByIdRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FeedsApiServer).GetMessageById(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/feeds.FeedsApi/GetMessageById"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FeedsApiServer).GetMessageById(ctx, req.(*GetMessageByIdRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _FeedsApi_GetFeedMessagesById_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetFeedMessagesByIdRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FeedsApiServer).GetFeedMessagesById(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/feeds.FeedsApi/GetFeedMessagesById"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FeedsApiServer).GetFeedMessagesById(ctx, req.(*GetFeedMessagesByIdRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _FeedsApi_GetKeyGenerations_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetKeyGenerationsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FeedsApiServer).GetKeyGenerations(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/feeds.FeedsApi/GetKeyGenerations"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FeedsApiServer).GetKeyGenerations(ctx, req.(*GetKeyGenerationsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _FeedsApi_AddMemberToGroupFeed_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(AddMemberToGroupFeedRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FeedsApiServer).AddMemberToGroupFeed(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/feeds.FeedsApi/AddMemberToGroupFeed"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FeedsApiServer).AddMemberToGroupFeed(ctx, req.(*AddMemberToGroupFeedRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// feedsApiDownloadAttachmentServer adapts grpc.ServerStream's generic
// SendMsg to the typed AttachmentStream interface the service code expects.
type feedsApiDownloadAttachmentServer struct {
	grpc.ServerStream
}

func (x *feedsApiDownloadAttachmentServer) Send(m *AttachmentChunk) error {
	return x.ServerStream.SendMsg(m)
}

func _FeedsApi_DownloadAttachment_Handler(srv interface{}, stream grpc.ServerStream) error {
	in := new(DownloadAttachmentRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(FeedsApiServer).DownloadAttachment(in, &feedsApiDownloadAttachmentServer{stream})
}

// NewGRPCServer builds a grpc.Server with the json codec forced for every
// call and FeedsApi registered (spec §4.6).
func NewGRPCServer(svc FeedsApiServer, opts ...grpc.ServerOption) *grpc.Server {
	allOpts := append([]grpc.ServerOption{grpc.CustomCodec(jsonCodec{})}, opts...)
	s := grpc.NewServer(allOpts...)
	s.RegisterService(&FeedsApi_ServiceDesc, svc)
	return s
}
