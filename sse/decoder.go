package sse

import (
	"bytes"
	"strings"

	"gostudio/logger"
)

// Event is one decoded server-sent event.
type Event struct {
	Name string
	Data string
}

// Decoder incrementally turns raw byte chunks into events following
// the text/event-stream wire grammar. One Decoder serves exactly one
// connection; create a fresh instance per stream so no parser state
// leaks across reconnects.
type Decoder struct {
	buf       []byte
	eventName string
	dataLines []string
	log       *logger.Logger
}

func NewDecoder() *Decoder {
	return &Decoder{log: logger.L()}
}

// Feed appends a chunk to the decoder and returns every event whose
// terminating blank line arrived. Partial lines stay buffered for the
// next chunk.
func (d *Decoder) Feed(chunk []byte) []Event {
	d.buf = append(d.buf, chunk...)

	var events []Event
	for {
		idx := bytes.IndexByte(d.buf, '\n')
		if idx < 0 {
			break
		}
		line := string(bytes.TrimSuffix(d.buf[:idx], []byte("\r")))
		d.buf = d.buf[idx+1:]

		if event, ok := d.processLine(line); ok {
			events = append(events, event)
		}
	}

	// Compact the remainder so consumed bytes do not pin the old
	// backing array for the lifetime of the stream
	if len(d.buf) > 0 {
		d.buf = append([]byte(nil), d.buf...)
	} else {
		d.buf = nil
	}

	return events
}

// Flush discards any partially buffered record at end of stream. A
// truncated trailing record never produces an event.
func (d *Decoder) Flush() {
	if len(d.buf) > 0 || len(d.dataLines) > 0 || d.eventName != "" {
		d.log.Debug("Discarding partial event at end of stream", map[string]interface{}{
			"buffered_bytes": len(d.buf),
			"event":          d.eventName,
			"data_lines":     len(d.dataLines),
		})
	}
	d.buf = nil
	d.eventName = ""
	d.dataLines = nil
}

func (d *Decoder) processLine(line string) (Event, bool) {
	// Blank line terminates the record and dispatches it
	if line == "" {
		return d.dispatch()
	}

	// Comment line
	if strings.HasPrefix(line, ":") {
		return Event{}, false
	}

	field := line
	value := ""
	if idx := strings.IndexByte(line, ':'); idx >= 0 {
		field = line[:idx]
		value = strings.TrimPrefix(line[idx+1:], " ")
	}

	switch field {
	case "event":
		d.eventName = value
	case "data":
		d.dataLines = append(d.dataLines, value)
	case "id", "retry":
		// Valid SSE fields this client has no use for
	default:
		// Malformed or unknown framing is logged and skipped; the
		// stream keeps decoding subsequent records
		d.log.Debug("Ignoring unrecognized stream line", map[string]interface{}{
			"field": field,
		})
	}

	return Event{}, false
}

func (d *Decoder) dispatch() (Event, bool) {
	name := d.eventName
	data := strings.Join(d.dataLines, "\n")
	d.eventName = ""
	d.dataLines = nil

	// A record with no data field dispatches nothing
	if data == "" {
		return Event{}, false
	}
	if name == "" {
		name = "message"
	}

	return Event{Name: name, Data: data}, true
}
