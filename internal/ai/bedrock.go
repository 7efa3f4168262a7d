package ai

import (
	"context"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

type bedrockConfig struct {
	Region    string `json:"region"`
	SecretID  string `json:"secret_id"`
	SecretKey string `json:"secret_key"`
	MaxTokens int32  `json:"max_tokens"`
}

type bedrockProvider struct {
	client    *bedrockruntime.Client
	maxTokens int32
}

func init() {
	Register("bedrock", createBedrockProvider)
}

func createBedrockProvider(args interface{}) (IProvider, error) {
	cfg := &bedrockConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 65536
	}
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.SecretID != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.SecretID, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &bedrockProvider{
		client:    bedrockruntime.NewFromConfig(awsCfg),
		maxTokens: cfg.MaxTokens,
	}, nil
}

func (p *bedrockProvider) Name() string {
	return "bedrock"
}

func (p *bedrockProvider) converseInput(model string, prompt string) *bedrockruntime.ConverseStreamInput {
	return &bedrockruntime.ConverseStreamInput{
		ModelId: &model,
		Messages: []brtypes.Message{
			{
				Role: brtypes.ConversationRoleUser,
				Content: []brtypes.ContentBlock{
					&brtypes.ContentBlockMemberText{Value: prompt},
				},
			},
		},
		InferenceConfig: &brtypes.InferenceConfiguration{
			MaxTokens: &p.maxTokens,
		},
	}
}

func (p *bedrockProvider) Generate(ctx context.Context, model string, prompt string) (string, error) {
	stream, err := p.GenerateStream(ctx, model, prompt)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for frag := range stream {
		if frag.Err != nil {
			return "", frag.Err
		}
		sb.WriteString(frag.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}

func (p *bedrockProvider) GenerateStream(ctx context.Context, model string, prompt string) (<-chan Fragment, error) {
	resp, err := p.client.ConverseStream(ctx, p.converseInput(model, prompt))
	if err != nil {
		return nil, fmt.Errorf("converse stream: %w", err)
	}
	out := make(chan Fragment)
	go func() {
		defer close(out)
		stream := resp.GetStream()
		defer stream.Close()
		for event := range stream.Events() {
			delta, ok := event.(*brtypes.ConverseStreamOutputMemberContentBlockDelta)
			if !ok {
				continue
			}
			text, ok := delta.Value.Delta.(*brtypes.ContentBlockDeltaMemberText)
			if !ok || text.Value == "" {
				continue
			}
			select {
			case out <- Fragment{Text: text.Value}:
			case <-ctx.Done():
				out <- Fragment{Err: ctx.Err()}
				return
			}
		}
		if err := stream.Err(); err != nil {
			out <- Fragment{Err: err}
		}
	}()
	return out, nil
}
