package service

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"time"

	"vela/domain/orderbook"
)

// Entry-WAL payloads are compact fixed binary frames; the record
// header already carries seq and time.

// place: [user:8][side:1][kind:1][price:8][qty:8]
const placePayloadLen = 26

// cancel: [orderID:8][side:1]
const cancelPayloadLen = 9

var errBadPayload = errors.New("service: malformed wal payload")

func encodePlace(user uint64, side orderbook.Side, kind orderbook.Kind, price, qty int64) []byte {
	buf := make([]byte, placePayloadLen)
	binary.BigEndian.PutUint64(buf[0:8], user)
	buf[8] = byte(side)
	buf[9] = byte(kind)
	binary.BigEndian.PutUint64(buf[10:18], uint64(price))
	binary.BigEndian.PutUint64(buf[18:26], uint64(qty))
	return buf
}

func decodePlace(b []byte) (user uint64, side orderbook.Side, kind orderbook.Kind, price, qty int64, err error) {
	if len(b) != placePayloadLen {
		return 0, 0, 0, 0, 0, errBadPayload
	}
	user = binary.BigEndian.Uint64(b[0:8])
	side = orderbook.Side(b[8])
	kind = orderbook.Kind(b[9])
	price = int64(binary.BigEndian.Uint64(b[10:18]))
	qty = int64(binary.BigEndian.Uint64(b[18:26]))
	return user, side, kind, price, qty, nil
}

func encodeCancel(orderID uint64, side orderbook.Side) []byte {
	buf := make([]byte, cancelPayloadLen)
	binary.BigEndian.PutUint64(buf[0:8], orderID)
	buf[8] = byte(side)
	return buf
}

func decodeCancel(b []byte) (orderID uint64, side orderbook.Side, err error) {
	if len(b) != cancelPayloadLen {
		return 0, 0, errBadPayload
	}
	return binary.BigEndian.Uint64(b[0:8]), orderbook.Side(b[8]), nil
}

// TradeEvent is the JSON shape published to Kafka for every executed
// trade. V is the schema version consumers pin against.
type TradeEvent struct {
	V           int    `json:"v"`
	Symbol      string `json:"symbol"`
	Seq         uint64 `json:"seq"`
	BuyOrderID  uint64 `json:"buy_order_id"`
	SellOrderID uint64 `json:"sell_order_id"`
	Price       int64  `json:"price"`
	Qty         int64  `json:"qty"`
	TakerSide   string `json:"taker_side"`
	Time        int64  `json:"ts"`
}

func encodeTradeEvent(t orderbook.Trade) ([]byte, error) {
	return json.Marshal(TradeEvent{
		V:           1,
		Symbol:      t.Symbol,
		Seq:         t.Seq,
		BuyOrderID:  t.BuyOrderID,
		SellOrderID: t.SellOrderID,
		Price:       t.Price,
		Qty:         t.Qty,
		TakerSide:   t.TakerSide.String(),
		Time:        t.Time.UnixNano(),
	})
}

// DecodeTradeEvent is the consumer-side inverse, used in tests and by
// anyone replaying the outbox.
func DecodeTradeEvent(b []byte) (TradeEvent, error) {
	var e TradeEvent
	if err := json.Unmarshal(b, &e); err != nil {
		return TradeEvent{}, err
	}
	return e, nil
}

func eventTime(e TradeEvent) time.Time {
	return time.Unix(0, e.Time)
}
