package images

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
)

// S3-compatible bucket notification payload, as delivered by MinIO webhook
// targets (and by AWS S3 event notifications). Only the fields the worker
// consumes are declared.

// EventMessage is the top-level notification envelope.
type EventMessage struct {
	Records []EventRecord `json:"Records"`
}

// EventRecord describes one created object.
type EventRecord struct {
	EventSource string    `json:"eventSource"`
	AwsRegion   string    `json:"awsRegion"`
	EventName   string    `json:"eventName"`
	S3          EventData `json:"s3"`
}

// EventData carries the bucket and object references.
type EventData struct {
	Bucket EventBucket `json:"bucket"`
	Object EventObject `json:"object"`
}

// EventBucket names the bucket the event originated from.
type EventBucket struct {
	Name string `json:"name"`
}

// EventObject identifies the created object. Key arrives URL-encoded.
type EventObject struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

// ResizeEvent is the worker's input: a single created object under some
// bucket, already decoded from the wire representation.
type ResizeEvent struct {
	Region string
	Bucket string
	Key    string
}

// ParseEvents decodes a notification body into resize events. Object keys are
// URL-unescaped, because S3-style notifications encode them.
func ParseEvents(body io.Reader) ([]ResizeEvent, error) {
	var msg EventMessage
	if err := json.NewDecoder(body).Decode(&msg); err != nil {
		return nil, fmt.Errorf("decode event payload: %w", err)
	}
	events := make([]ResizeEvent, 0, len(msg.Records))
	for _, rec := range msg.Records {
		key, err := url.QueryUnescape(rec.S3.Object.Key)
		if err != nil {
			return nil, fmt.Errorf("unescape object key %q: %w", rec.S3.Object.Key, err)
		}
		events = append(events, ResizeEvent{
			Region: rec.AwsRegion,
			Bucket: rec.S3.Bucket.Name,
			Key:    key,
		})
	}
	return events, nil
}
