// Package sns copies shown reminders to an SNS topic for other subscribers (mail, push gateways).
package sns

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"payment_reminder/internal/domain/notification"
	"payment_reminder/internal/domain/settings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNS rejects subjects longer than 100 characters or outside printable ASCII.
const maxSubjectLen = 100

// Publisher is the subset of *sns.Client the mirror uses.
type Publisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Mirror is a notification.Sink that publishes each reminder to a topic.
type Mirror struct {
	client   Publisher
	topicArn string
	clock    func() time.Time
}

type message struct {
	Title   string                   `json:"title"`
	Body    string                   `json:"body"`
	Tag     string                   `json:"tag"`
	Urgency notification.Urgency     `json:"urgency"`
	Action  string                   `json:"actionTitle,omitempty"`
	Data    notification.ClickAction `json:"data"`
}

func NewMirror(client Publisher, topicArn string) *Mirror {
	return &Mirror{client: client, topicArn: topicArn, clock: time.Now}
}

// NewMirrorFromRegion loads the default AWS credential chain for region.
func NewMirrorFromRegion(ctx context.Context, region, topicArn string) (*Mirror, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return NewMirror(sns.NewFromConfig(awsCfg), topicArn), nil
}

func (m *Mirror) Available() bool {
	return m != nil && m.client != nil && m.topicArn != ""
}

// Permission is always granted; topic access is enforced by IAM.
func (m *Mirror) Permission() settings.Permission {
	return settings.PermissionGranted
}

func (m *Mirror) Show(ctx context.Context, title string, opts notification.Options) (*notification.Handle, error) {
	payload, err := json.Marshal(message{
		Title:   title,
		Body:    opts.Body,
		Tag:     opts.Tag,
		Urgency: opts.Urgency,
		Action:  opts.ActionTitle,
		Data:    opts.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode sns message: %w", err)
	}

	out, err := m.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(m.topicArn),
		Subject:  subject(title),
		Message:  aws.String(string(payload)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"tag":     {DataType: aws.String("String"), StringValue: aws.String(opts.Tag)},
			"urgency": {DataType: aws.String("String"), StringValue: aws.String(string(opts.Urgency))},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to publish to sns: %w", err)
	}
	return &notification.Handle{ID: aws.ToString(out.MessageId), Tag: opts.Tag, ShownAt: m.clock()}, nil
}

// Close is a no-op: published messages cannot be recalled.
func (m *Mirror) Close(context.Context, *notification.Handle) error {
	return nil
}

// subject returns the SNS subject for title, or nil when title cannot be one.
// The full title always travels in the message body.
func subject(title string) *string {
	if title == "" {
		return nil
	}
	for i := 0; i < len(title); i++ {
		if title[i] < 0x20 || title[i] > 0x7e {
			return nil
		}
	}
	if len(title) > maxSubjectLen {
		title = title[:maxSubjectLen]
	}
	return aws.String(title)
}
