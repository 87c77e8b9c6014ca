package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"bistro/internal/ai/component"
	"bistro/internal/config"
)

// Client 文本生成客户端
// 职责: 封装对外部 LLM 服务的调用，提供自由文本与结构化两种生成方式
// 除配置的默认模型外不保留任何调用间状态
type Client struct {
	cfg       *config.AIConfig
	chatModel model.ChatModel

	mu      sync.Mutex
	schemas map[string]*jsonschema.Schema // 按名称缓存编译后的 schema
}

// NewClient 创建文本生成客户端
// API key 缺失时客户端仍可创建，调用时返回 ErrAPIKeyMissing
func NewClient(ctx context.Context, cfg *config.AIConfig) (*Client, error) {
	chatModel, err := component.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	if cfg.APIKey == "" {
		log.Warn().Msg("AI API key not configured, generation calls will fail")
	}

	return &Client{
		cfg:       cfg,
		chatModel: chatModel,
		schemas:   make(map[string]*jsonschema.Schema),
	}, nil
}

// GenerateText 自由文本生成
// instructions 作为 system 消息，userInput 作为 user 消息，返回去除首尾空白的回复
func (c *Client) GenerateText(ctx context.Context, userInput, instructions string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", ErrAPIKeyMissing
	}

	messages := []*schema.Message{
		schema.SystemMessage(instructions),
		schema.UserMessage(userInput),
	}

	resp, err := c.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", &ServiceError{Err: err}
	}

	return strings.TrimSpace(resp.Content), nil
}

// GenerateStructured 结构化生成
// 要求模型只输出 JSON，并在本地按声明的 JSON Schema 严格校验
// （required、enum、additionalProperties 全部强制），校验通过后解码到 out
func (c *Client) GenerateStructured(ctx context.Context, userInput, instructions, schemaJSON, name string, out any) error {
	if c.cfg.APIKey == "" {
		return ErrAPIKeyMissing
	}

	sch, err := c.compiledSchema(name, schemaJSON)
	if err != nil {
		return err
	}

	instr := instructions +
		"\nRespond with a single JSON object and nothing else." +
		"\nThe object must match this JSON schema exactly:\n" + schemaJSON

	messages := []*schema.Message{
		schema.SystemMessage(instr),
		schema.UserMessage(userInput),
	}

	resp, err := c.chatModel.Generate(ctx, messages)
	if err != nil {
		return &ServiceError{Err: err}
	}

	payload, err := ExtractJSON(resp.Content)
	if err != nil {
		return &SchemaError{Name: name, Err: err}
	}

	if err := Validate(sch, name, payload); err != nil {
		return err
	}

	if err := sonic.Unmarshal(payload, out); err != nil {
		return &SchemaError{Name: name, Err: err}
	}
	return nil
}

func (c *Client) compiledSchema(name, schemaJSON string) (*jsonschema.Schema, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if sch, ok := c.schemas[name]; ok {
		return sch, nil
	}
	sch, err := jsonschema.CompileString(name+".json", schemaJSON)
	if err != nil {
		return nil, fmt.Errorf("invalid schema %q: %w", name, err)
	}
	c.schemas[name] = sch
	return sch, nil
}

// Validate 按编译后的 schema 校验 JSON 负载
func Validate(sch *jsonschema.Schema, name string, payload []byte) error {
	var v any
	if err := sonic.Unmarshal(payload, &v); err != nil {
		return &SchemaError{Name: name, Err: err}
	}
	if err := sch.Validate(v); err != nil {
		return &SchemaError{Name: name, Err: err}
	}
	return nil
}

// ExtractJSON 从模型回复中提取 JSON 对象
// 容忍 ```json 围栏与前后杂质，取第一个 '{' 到最后一个 '}' 之间的内容
func ExtractJSON(content string) ([]byte, error) {
	s := strings.TrimSpace(content)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON object in model output")
	}
	return []byte(s[start : end+1]), nil
}
