package entry

import "time"

type RecordType uint8

const (
	RecordPlace RecordType = iota
	RecordCancel
)

// Record is one durable intent: an order placement or a cancel.
// Trades are not logged here; they are re-derived deterministically
// during replay.
type Record struct {
	Type RecordType
	Seq  uint64
	Time int64
	Data []byte
}

func NewRecord(t RecordType, seq uint64, data []byte) *Record {
	return &Record{
		Type: t,
		Seq:  seq,
		Time: time.Now().UnixNano(),
		Data: data,
	}
}
