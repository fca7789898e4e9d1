package rpc

import "github.com/golang/protobuf/proto"

// Decode splits a payload into function ID and body. body aliases payload.
func Decode(payload []byte) (id uint64, body []byte, err error) {
	id, n := proto.DecodeVarint(payload)
	if n == 0 {
		return 0, nil, ErrMalformed
	}
	return id, payload[n:], nil
}

// EncodedLen returns the payload length of a call.
func EncodedLen(id uint64, bodyLen int) int {
	return proto.SizeVarint(id) + bodyLen
}
