package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec 每个连接在握手时选定一种编码：json 走文本帧，msgpack 走二进制帧
type Codec interface {
	Name() string
	Binary() bool
	Encode(t string, payload any) ([]byte, error)
	DecodeEnvelope(b []byte) (Envelope, error)
	DecodePayload(env Envelope, out any) error
}

var (
	JSON    Codec = jsonCodec{}
	MsgPack Codec = msgpackCodec{}
)

// CodecByName 空名字默认 json
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSON, nil
	case "msgpack":
		return MsgPack, nil
	}
	return nil, fmt.Errorf("unknown codec %q", name)
}

// DecodePayload 按类型解出负载
func DecodePayload[T any](c Codec, env Envelope) (T, error) {
	var out T
	err := c.DecodePayload(env, &out)
	return out, err
}

func checkEncode(t string, payload any) error {
	if t == "" {
		return fmt.Errorf("trying to encode envelope with empty type")
	}
	if payload == nil {
		return fmt.Errorf("trying to encode nil payload for %q", t)
	}
	return nil
}

type jsonCodec struct{}

type jsonEnvelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"`
}

func (jsonCodec) Name() string { return "json" }
func (jsonCodec) Binary() bool { return false }

func (jsonCodec) Encode(t string, payload any) ([]byte, error) {
	if err := checkEncode(t, payload); err != nil {
		return nil, err
	}
	pb, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(jsonEnvelope{T: t, P: pb})
}

func (jsonCodec) DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, fmt.Errorf("decode envelope: empty frame")
	}
	var e jsonEnvelope
	if err := json.Unmarshal(b, &e); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return Envelope{T: e.T, P: e.P}, nil
}

func (jsonCodec) DecodePayload(env Envelope, out any) error {
	if len(env.P) == 0 {
		return fmt.Errorf("empty payload for type %q", env.T)
	}
	return json.Unmarshal(env.P, out)
}

type msgpackCodec struct{}

type msgpackEnvelope struct {
	T string             `msgpack:"t"`
	P msgpack.RawMessage `msgpack:"p"`
}

func (msgpackCodec) Name() string { return "msgpack" }
func (msgpackCodec) Binary() bool { return true }

func (msgpackCodec) Encode(t string, payload any) ([]byte, error) {
	if err := checkEncode(t, payload); err != nil {
		return nil, err
	}
	pb, err := msgpack.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return msgpack.Marshal(&msgpackEnvelope{T: t, P: pb})
}

func (msgpackCodec) DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, fmt.Errorf("decode envelope: empty frame")
	}
	var e msgpackEnvelope
	if err := msgpack.Unmarshal(b, &e); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return Envelope{T: e.T, P: e.P}, nil
}

func (msgpackCodec) DecodePayload(env Envelope, out any) error {
	if len(env.P) == 0 {
		return fmt.Errorf("empty payload for type %q", env.T)
	}
	return msgpack.Unmarshal(env.P, out)
}
