package proto

import (
	"time"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// wireMessage is implemented by the pointer of every message type.
type wireMessage interface {
	messageName() protoreflect.Name
	encode(m protoreflect.Message)
	decode(m protoreflect.Message)
}

type wirePtr[T any] interface {
	*T
	wireMessage
}

// newWire returns an empty protobuf message for the named session.proto type.
func newWire(name protoreflect.Name) *dynamicpb.Message {
	md := File_skillhub_session_proto.Messages().ByName(name)
	if md == nil {
		panic("proto: unknown message " + string(name))
	}
	return dynamicpb.NewMessage(md)
}

func toWire(x wireMessage) *dynamicpb.Message {
	m := newWire(x.messageName())
	x.encode(m)
	return m
}

func fieldOf(m protoreflect.Message, name protoreflect.Name) protoreflect.FieldDescriptor {
	fd := m.Descriptor().Fields().ByName(name)
	if fd == nil {
		panic("proto: " + string(m.Descriptor().FullName()) + " has no field " + string(name))
	}
	return fd
}

func setString(m protoreflect.Message, name protoreflect.Name, v string) {
	if v != "" {
		m.Set(fieldOf(m, name), protoreflect.ValueOfString(v))
	}
}

func getString(m protoreflect.Message, name protoreflect.Name) string {
	return m.Get(fieldOf(m, name)).String()
}

func setBool(m protoreflect.Message, name protoreflect.Name, v bool) {
	if v {
		m.Set(fieldOf(m, name), protoreflect.ValueOfBool(v))
	}
}

func getBool(m protoreflect.Message, name protoreflect.Name) bool {
	return m.Get(fieldOf(m, name)).Bool()
}

func setStrings(m protoreflect.Message, name protoreflect.Name, vs []string) {
	if len(vs) == 0 {
		return
	}
	l := m.Mutable(fieldOf(m, name)).List()
	for _, v := range vs {
		l.Append(protoreflect.ValueOfString(v))
	}
}

func getStrings(m protoreflect.Message, name protoreflect.Name) []string {
	l := m.Get(fieldOf(m, name)).List()
	if l.Len() == 0 {
		return nil
	}
	out := make([]string, l.Len())
	for i := range out {
		out[i] = l.Get(i).String()
	}
	return out
}

// setTime stores t as a google.protobuf.Timestamp; the zero time stays unset.
func setTime(m protoreflect.Message, name protoreflect.Name, t time.Time) {
	if t.IsZero() {
		return
	}
	ts := timestamppb.New(t)
	tm := m.Mutable(fieldOf(m, name)).Message()
	tm.Set(fieldOf(tm, "seconds"), protoreflect.ValueOfInt64(ts.GetSeconds()))
	tm.Set(fieldOf(tm, "nanos"), protoreflect.ValueOfInt32(ts.GetNanos()))
}

// getTime reads a Timestamp field back as UTC.
func getTime(m protoreflect.Message, name protoreflect.Name) time.Time {
	fd := fieldOf(m, name)
	if !m.Has(fd) {
		return time.Time{}
	}
	tm := m.Get(fd).Message()
	ts := &timestamppb.Timestamp{
		Seconds: tm.Get(fieldOf(tm, "seconds")).Int(),
		Nanos:   int32(tm.Get(fieldOf(tm, "nanos")).Int()),
	}
	return ts.AsTime()
}
