package streamlog

import (
	"encoding/binary"
	"errors"
	"hash/crc32"

	"github.com/vmihailenco/msgpack/v5"
)

// Record encoding: varint bodyLen | msgpack([name, value, ...]) | crc32c(body)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

var errCorruptRecord = errors.New("streamlog: corrupt record")

func EncodeRecord(fields []Field) ([]byte, error) {
	flat := make([]string, 0, len(fields)*2)
	for _, f := range fields {
		flat = append(flat, f.Name, f.Value)
	}
	body, err := msgpack.Marshal(flat)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, binary.MaxVarintLen64+len(body)+4)
	out = binary.AppendUvarint(out, uint64(len(body)))
	out = append(out, body...)
	out = binary.BigEndian.AppendUint32(out, crc32.Checksum(body, castagnoli))
	return out, nil
}

func DecodeRecord(b []byte) ([]Field, error) {
	blen, n := binary.Uvarint(b)
	if n <= 0 || uint64(len(b)-n) != blen+4 {
		return nil, errCorruptRecord
	}
	body := b[n : n+int(blen)]
	if crc32.Checksum(body, castagnoli) != binary.BigEndian.Uint32(b[len(b)-4:]) {
		return nil, errCorruptRecord
	}
	var flat []string
	if err := msgpack.Unmarshal(body, &flat); err != nil {
		return nil, err
	}
	if len(flat)%2 != 0 {
		return nil, errCorruptRecord
	}
	fields := make([]Field, 0, len(flat)/2)
	for i := 0; i < len(flat); i += 2 {
		fields = append(fields, Field{Name: flat[i], Value: flat[i+1]})
	}
	return fields, nil
}
