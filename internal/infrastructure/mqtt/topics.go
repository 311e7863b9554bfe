package mqtt

import "strings"

// DefaultTopicPrefix is used when no prefix is configured.
const DefaultTopicPrefix = "webui-desktop"

// Topics builds the topic names for one shell instance.
//
//	topics := mqtt.NewTopics("webui-desktop", "laptop-1")
//	topics.Status()               // webui-desktop/laptop-1/status
//	topics.Event("window_closed") // webui-desktop/laptop-1/event/window_closed
type Topics struct {
	base string
}

// NewTopics returns builders rooted at prefix/clientID. Empty segments fall
// back to defaults, and MQTT wildcard characters are replaced so a client
// ID can never widen a topic.
func NewTopics(prefix, clientID string) Topics {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	clientID = sanitizeSegment(clientID)
	if clientID == "" {
		clientID = "default"
	}
	return Topics{base: prefix + "/" + clientID}
}

// Status returns the retained online/offline topic.
func (t Topics) Status() string {
	return t.base + "/status"
}

// Event returns the topic for one lifecycle event kind.
func (t Topics) Event(kind string) string {
	return t.base + "/event/" + sanitizeSegment(kind)
}

// sanitizeSegment makes s safe as a single topic level.
func sanitizeSegment(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '+', '#', 0:
			return '_'
		}
		return r
	}, s)
}
