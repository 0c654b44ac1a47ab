// Package events unwraps the SNS-wrapped S3 object-created
// notifications that announce new RDF files in the staging bucket.
package events

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog/log"
)

// ObjectRef identifies one uploaded file in the staging bucket.
type ObjectRef struct {
	Bucket string
	Key    string
	Region string
	Size   int64
}

// S3URI returns the s3://bucket/key form of the reference.
func (o ObjectRef) S3URI() string {
	return fmt.Sprintf("s3://%s/%s", o.Bucket, o.Key)
}

// UnwrapNotification parses an SNS notification envelope whose records
// each carry a stringified S3 event in their Message field, and returns
// every object reference found across all records.
//
// A notification with no SNS records, or one whose S3 events contain no
// records, is rejected: an empty batch means the upstream wiring is
// broken and retrying the delivery will not help.
func UnwrapNotification(payload []byte) ([]ObjectRef, error) {
	var snsEvent events.SNSEvent
	if err := json.Unmarshal(payload, &snsEvent); err != nil {
		return nil, fmt.Errorf("failed to parse SNS notification: %w", err)
	}
	if len(snsEvent.Records) == 0 {
		return nil, fmt.Errorf("SNS notification contains no records")
	}

	var refs []ObjectRef
	for _, record := range snsEvent.Records {
		recordRefs, err := unwrapSNSRecord(record)
		if err != nil {
			return nil, err
		}
		refs = append(refs, recordRefs...)
	}
	return refs, nil
}

func unwrapSNSRecord(record events.SNSEventRecord) ([]ObjectRef, error) {
	var s3Event events.S3Event
	if err := json.Unmarshal([]byte(record.SNS.Message), &s3Event); err != nil {
		return nil, fmt.Errorf("failed to parse embedded S3 event from SNS message %s: %w",
			record.SNS.MessageID, err)
	}
	if len(s3Event.Records) == 0 {
		return nil, fmt.Errorf("embedded S3 event in SNS message %s contains no records",
			record.SNS.MessageID)
	}

	refs := make([]ObjectRef, 0, len(s3Event.Records))
	for _, s3Record := range s3Event.Records {
		ref := ObjectRef{
			Bucket: s3Record.S3.Bucket.Name,
			Key:    s3Record.S3.Object.Key,
			Region: s3Record.AWSRegion,
			Size:   s3Record.S3.Object.Size,
		}
		log.Info().
			Str("bucket", ref.Bucket).
			Str("key", ref.Key).
			Str("event", s3Record.EventName).
			Msg("Received S3 object notification")
		refs = append(refs, ref)
	}
	return refs, nil
}
