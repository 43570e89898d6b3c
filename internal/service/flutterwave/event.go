package flutterwave

import (
	"errors"

	"github.com/tidwall/gjson"
)

var ErrMalformedEvent = errors.New("malformed webhook payload")

// ParseEvent extracts the fields the platform needs from a webhook body.
// Newer deliveries carry the event name in "type", older ones in "event".
func ParseEvent(body []byte) (Event, error) {
	if !gjson.ValidBytes(body) {
		return Event{}, ErrMalformedEvent
	}

	res := gjson.ParseBytes(body)
	typ := res.Get("event").String()
	if typ == "" {
		typ = res.Get("type").String()
	}
	data := res.Get("data")
	if typ == "" || !data.Exists() {
		return Event{}, ErrMalformedEvent
	}

	return Event{
		Type:      typ,
		ID:        data.Get("id").String(),
		Status:    data.Get("status").String(),
		TxRef:     data.Get("tx_ref").String(),
		Reference: data.Get("reference").String(),
		Amount:    data.Get("amount").Float(),
		Currency:  data.Get("currency").String(),
	}, nil
}
