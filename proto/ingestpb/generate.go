// Package ingestpb holds the generated wire contract of the cluster_rpc.Ingest
// service described in ingest.proto.
package ingestpb

//go:generate protoc --go_out=. --go_opt=paths=source_relative --go-grpc_out=. --go-grpc_opt=paths=source_relative ingest.proto
