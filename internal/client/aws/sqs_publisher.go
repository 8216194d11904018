package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/dual-finance/governance-proposals/internal/logger"
	"github.com/dual-finance/governance-proposals/internal/proposal"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Publisher hands assembled proposals to downstream signers.
type Publisher interface {
	PublishProposal(ctx context.Context, draftID uuid.UUID, p *proposal.Proposal) error
}

// sqsSender is the subset of the SQS client the publisher uses.
type sqsSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// ProposalMessage is the JSON body of a published proposal.
type ProposalMessage struct {
	DraftID     uuid.UUID          `json:"draft_id"`
	PublishedAt time.Time          `json:"published_at"`
	Proposal    *proposal.Proposal `json:"proposal"`
}

// SQSPublisher publishes assembled proposals to an SQS queue.
type SQSPublisher struct {
	client   sqsSender
	queueURL string
	now      func() time.Time
	logger   *zap.Logger
}

// NewSQSPublisher loads the default AWS configuration and returns a publisher
// for queueURL. When endpointURL is set (localstack), static test credentials
// are used and requests go to that endpoint.
func NewSQSPublisher(ctx context.Context, queueURL, endpointURL string) (*SQSPublisher, error) {
	if queueURL == "" {
		return nil, fmt.Errorf("proposal queue URL is required")
	}

	var opts []func(*config.LoadOptions) error
	if endpointURL != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("test", "test", ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	client := sqs.NewFromConfig(cfg, func(o *sqs.Options) {
		if endpointURL != "" {
			o.BaseEndpoint = aws.String(endpointURL)
		}
	})

	return newSQSPublisher(client, queueURL), nil
}

func newSQSPublisher(client sqsSender, queueURL string) *SQSPublisher {
	return &SQSPublisher{
		client:   client,
		queueURL: queueURL,
		now:      time.Now,
		logger:   logger.L(),
	}
}

// PublishProposal sends a valid proposal to the queue. Invalid proposals are
// rejected without a send.
func (p *SQSPublisher) PublishProposal(ctx context.Context, draftID uuid.UUID, prop *proposal.Proposal) error {
	if prop == nil || !prop.Valid {
		return fmt.Errorf("refusing to publish invalid proposal %s", draftID)
	}

	body, err := json.Marshal(ProposalMessage{
		DraftID:     draftID,
		PublishedAt: p.now().UTC(),
		Proposal:    prop,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal proposal %s: %w", draftID, err)
	}

	attributes := map[string]types.MessageAttributeValue{
		"DraftID": {
			StringValue: aws.String(draftID.String()),
			DataType:    aws.String("String"),
		},
		"TransactionCount": {
			StringValue: aws.String(strconv.Itoa(len(prop.Transactions))),
			DataType:    aws.String("Number"),
		},
	}
	if prop.Governance != nil {
		attributes["Governance"] = types.MessageAttributeValue{
			StringValue: aws.String(prop.Governance.Pubkey.String()),
			DataType:    aws.String("String"),
		}
	}

	out, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          aws.String(p.queueURL),
		MessageBody:       aws.String(string(body)),
		MessageAttributes: attributes,
	})
	if err != nil {
		p.logger.Error("Failed to publish proposal",
			zap.String("draft_id", draftID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to publish proposal %s: %w", draftID, err)
	}

	p.logger.Info("Published proposal",
		zap.String("draft_id", draftID.String()),
		zap.String("message_id", aws.ToString(out.MessageId)),
		zap.Int("transactions", len(prop.Transactions)),
	)
	return nil
}
