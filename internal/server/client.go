package server

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/perks-tracker/constants"
	"github.com/joseph-ayodele/perks-tracker/internal/core/perks"
)

// ExtractResponse is the decoded Extract reply.
type ExtractResponse struct {
	Issuer     constants.IssuerKey   `json:"issuer"`
	Candidates []perks.PerkCandidate `json:"candidates"`
}

// IssuerInfo is one entry of the SupportedIssuers reply.
type IssuerInfo struct {
	Key  constants.IssuerKey `json:"key"`
	Name string              `json:"name"`
}

// Client calls perks.v1.PerkExtractor.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Extract(ctx context.Context, text string, issuer string, opts ...grpc.CallOption) (ExtractResponse, error) {
	in, err := structpb.NewStruct(map[string]any{"text": text, "issuer": issuer})
	if err != nil {
		return ExtractResponse{}, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, extractMethod, in, out, opts...); err != nil {
		return ExtractResponse{}, err
	}
	var resp ExtractResponse
	return resp, decode(out, &resp)
}

func (c *Client) SupportedIssuers(ctx context.Context, opts ...grpc.CallOption) ([]IssuerInfo, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, supportedIssuersMethod, &structpb.Struct{}, out, opts...); err != nil {
		return nil, err
	}
	var resp struct {
		Issuers []IssuerInfo `json:"issuers"`
	}
	if err := decode(out, &resp); err != nil {
		return nil, err
	}
	return resp.Issuers, nil
}

func decode(s *structpb.Struct, v any) error {
	raw, err := json.Marshal(s.AsMap())
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
