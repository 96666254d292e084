package main

import "github.com/marselester/binproto"

// namedPointDescriptor and pointGroupDescriptor are the two example
// records from the core library's documentation: a fixed-size point
// with a name, and a group of points prefixed by a count.
var namedPointDescriptor = mustRecord("NamedPoint", []binproto.Field{
	{Name: "code", Type: binproto.NewScalar(binproto.U16, binproto.Always(uint16(0x1234)))},
	{Name: "x", Type: binproto.NewScalar(binproto.I32)},
	{Name: "y", Type: binproto.NewScalar(binproto.I32)},
	{Name: "name", Type: binproto.NewByteString(binproto.Fixed(15), false, binproto.Default("unnamed"))},
})

var pointGroupDescriptor = mustRecord("PointGroup", []binproto.Field{
	{Name: "code", Type: binproto.NewScalar(binproto.U8, binproto.Always(uint8(0xFF)))},
	{Name: "count", Type: binproto.NewScalar(binproto.I16)},
	{Name: "points", Type: binproto.NewArray(binproto.Symbolic("count"), binproto.NewRecordField(namedPointDescriptor))},
})

func mustRecord(name string, fields []binproto.Field) *binproto.RecordDescriptor {
	d, err := binproto.NewRecord(name, fields)
	if err != nil {
		panic(err)
	}
	return d
}
