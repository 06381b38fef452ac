package expiry

import "time"

// TopicShortlinkCreated is the stream carrying ShortlinkCreatedEvent.
const TopicShortlinkCreated = "shortlink.created"

// ShortlinkCreatedEvent is emitted after a shortlink has been stored.
type ShortlinkCreatedEvent struct {
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"createdAt"`
	ExpireAt  time.Time `json:"expireAt"`
}
