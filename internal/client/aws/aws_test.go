package aws

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/dual-finance/governance-proposals/internal/assets"
	"github.com/dual-finance/governance-proposals/internal/proposal"
	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSQS struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (f *fakeSQS) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSQSPublisher_PublishProposal(t *testing.T) {
	gov := assets.Governance{Pubkey: solana.NewWallet().PublicKey(), ProgramID: solana.NewWallet().PublicKey()}
	valid := &proposal.Proposal{
		Valid:         true,
		Governance:    &gov,
		Transactions:  []proposal.Transaction{{Instructions: []string{"a"}}, {Instructions: []string{"b"}}},
		Prerequisites: []string{},
	}
	draftID := uuid.New()
	publishedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("sends the proposal with attributes", func(t *testing.T) {
		fake := &fakeSQS{}
		p := newSQSPublisher(fake, "https://sqs.local/queue")
		p.now = func() time.Time { return publishedAt }

		require.NoError(t, p.PublishProposal(context.Background(), draftID, valid))
		require.Len(t, fake.inputs, 1)

		input := fake.inputs[0]
		assert.Equal(t, "https://sqs.local/queue", aws.ToString(input.QueueUrl))
		assert.Equal(t, draftID.String(), aws.ToString(input.MessageAttributes["DraftID"].StringValue))
		assert.Equal(t, "2", aws.ToString(input.MessageAttributes["TransactionCount"].StringValue))
		assert.Equal(t, gov.Pubkey.String(), aws.ToString(input.MessageAttributes["Governance"].StringValue))

		var msg ProposalMessage
		require.NoError(t, json.Unmarshal([]byte(aws.ToString(input.MessageBody)), &msg))
		assert.Equal(t, draftID, msg.DraftID)
		assert.True(t, msg.PublishedAt.Equal(publishedAt))
		require.NotNil(t, msg.Proposal)
		assert.Len(t, msg.Proposal.Transactions, 2)
	})

	t.Run("invalid proposals are not sent", func(t *testing.T) {
		fake := &fakeSQS{}
		p := newSQSPublisher(fake, "q")

		assert.Error(t, p.PublishProposal(context.Background(), draftID, &proposal.Proposal{}))
		assert.Error(t, p.PublishProposal(context.Background(), draftID, nil))
		assert.Empty(t, fake.inputs)
	})

	t.Run("send errors are wrapped", func(t *testing.T) {
		fake := &fakeSQS{err: errors.New("throttled")}
		p := newSQSPublisher(fake, "q")

		err := p.PublishProposal(context.Background(), draftID, valid)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "throttled")
	})
}

type fakeSecrets struct {
	value string
	err   error
}

func (f fakeSecrets) GetSecretValue(context.Context, *secretsmanager.GetSecretValueInput, ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(f.value)}, nil
}

func TestSecretsManagerClient_GetSecretString(t *testing.T) {
	tests := []struct {
		name     string
		arn      string
		fallback string
		svc      fakeSecrets
		want     string
		wantErr  bool
	}{
		{name: "secret from ARN", arn: "arn:rpc", svc: fakeSecrets{value: "https://rpc.example/key"}, want: "https://rpc.example/key"},
		{name: "fetch failure falls back", arn: "arn:rpc", fallback: "https://fallback", svc: fakeSecrets{err: errors.New("denied")}, want: "https://fallback"},
		{name: "no ARN uses fallback", fallback: "https://fallback", want: "https://fallback"},
		{name: "nothing configured", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_RPC_SECRET_ARN", tt.arn)
			t.Setenv("TEST_RPC", tt.fallback)

			c := &SecretsManagerClient{svc: tt.svc}
			got, err := c.GetSecretString(context.Background(), "TEST_RPC_SECRET_ARN", "TEST_RPC")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
