package notify

import (
	"context"
	"fmt"
	"strings"

	"gostudio/logger"
)

// Destination is one notification target, configured as
// "platform:channelId" in the notice list.
type Destination struct {
	Platform  string
	ChannelID string
}

func (d Destination) String() string {
	return d.Platform + ":" + d.ChannelID
}

// ParseDestination splits "platform:channelId" at the first colon.
func ParseDestination(s string) (Destination, error) {
	idx := strings.IndexByte(s, ':')
	if idx <= 0 || idx == len(s)-1 {
		return Destination{}, fmt.Errorf("invalid destination %q, want platform:channelId", s)
	}
	return Destination{Platform: s[:idx], ChannelID: s[idx+1:]}, nil
}

// Sender delivers one message to one channel on a single platform.
type Sender interface {
	Send(ctx context.Context, channelID, message string) error
}

// Dispatcher fans a message out to every configured destination.
// Delivery failures are logged here and never surfaced to the stream.
type Dispatcher struct {
	destinations []Destination
	senders      map[string]Sender
	log          *logger.Logger
}

func NewDispatcher(noticeList []string, senders map[string]Sender) *Dispatcher {
	log := logger.L()

	destinations := make([]Destination, 0, len(noticeList))
	for _, entry := range noticeList {
		dest, err := ParseDestination(entry)
		if err != nil {
			log.Error("Skipping invalid notice destination", map[string]interface{}{
				"entry": entry,
				"error": err.Error(),
			})
			continue
		}
		destinations = append(destinations, dest)
	}

	return &Dispatcher{
		destinations: destinations,
		senders:      senders,
		log:          log,
	}
}

// Destinations returns the parsed notice list.
func (d *Dispatcher) Destinations() []Destination {
	return d.destinations
}

// Broadcast delivers a plain-text message to every destination.
func (d *Dispatcher) Broadcast(ctx context.Context, message string) {
	for _, dest := range d.destinations {
		sender, ok := d.senders[dest.Platform]
		if !ok {
			d.log.Error("No sender registered for platform", map[string]interface{}{
				"platform":    dest.Platform,
				"destination": dest.String(),
			})
			continue
		}

		if err := sender.Send(ctx, dest.ChannelID, message); err != nil {
			d.log.Error("Failed to deliver notification", map[string]interface{}{
				"destination": dest.String(),
				"error":       err.Error(),
			})
			continue
		}

		d.log.Debug("Notification delivered", map[string]interface{}{
			"destination": dest.String(),
		})
	}
}
