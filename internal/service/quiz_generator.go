package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"study_assistant_backend/internal/config"
	"study_assistant_backend/internal/model"
	"study_assistant_backend/internal/util"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	openai "github.com/sashabaranov/go-openai"
)

// QuizGenerator 题目生成后端
type QuizGenerator interface {
	Generate(ctx context.Context, req *model.QuizGenerationRequest) (*model.Quiz, error)
}

const quizSchemaName = "generated_quiz"

var quizSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"title", "questions"},
	"properties": map[string]any{
		"title": map[string]any{"type": "string", "minLength": 1},
		"questions": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []string{"type", "prompt", "options", "correctAnswer", "explanation", "topic"},
				"properties": map[string]any{
					"type": map[string]any{
						"type": "string",
						"enum": []string{string(model.QuestionMultipleChoice), string(model.QuestionTrueFalse), string(model.QuestionFillInBlank)},
					},
					"prompt":        map[string]any{"type": "string", "minLength": 1},
					"options":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"correctAnswer": map[string]any{"type": "string", "minLength": 1},
					"explanation":   map[string]any{"type": "string"},
					"topic":         map[string]any{"type": "string"},
				},
			},
		},
	},
}

var (
	compiledQuizSchema     *jsonschema.Schema
	compiledQuizSchemaErr  error
	compiledQuizSchemaOnce sync.Once
)

func quizValidator() (*jsonschema.Schema, error) {
	compiledQuizSchemaOnce.Do(func() {
		// 编译器需要已解析的 JSON 值
		raw, err := json.Marshal(quizSchema)
		if err != nil {
			compiledQuizSchemaErr = err
			return
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			compiledQuizSchemaErr = err
			return
		}
		c := jsonschema.NewCompiler()
		url := fmt.Sprintf("schema://%s.json", quizSchemaName)
		if err := c.AddResource(url, doc); err != nil {
			compiledQuizSchemaErr = err
			return
		}
		compiledQuizSchema, compiledQuizSchemaErr = c.Compile(url)
	})
	return compiledQuizSchema, compiledQuizSchemaErr
}

type generatedQuiz struct {
	Title     string               `json:"title"`
	Questions []model.QuizQuestion `json:"questions"`
}

// ParseGeneratedQuiz 校验模型输出并转换为 Quiz
func ParseGeneratedQuiz(content string, req *model.QuizGenerationRequest) (*model.Quiz, error) {
	var doc any
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", util.ErrGenerationFailed, err)
	}

	schema, err := quizValidator()
	if err != nil {
		return nil, fmt.Errorf("compile quiz schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: schema validation failed: %v", util.ErrGenerationFailed, err)
	}

	var gq generatedQuiz
	if err := json.Unmarshal([]byte(content), &gq); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrGenerationFailed, err)
	}

	quiz := &model.Quiz{
		Title:     gq.Title,
		Topic:     req.Topic,
		Questions: gq.Questions,
	}
	if req.Difficulty != nil {
		quiz.Difficulty = *req.Difficulty
	}
	if req.TimeLimit != nil {
		limit := *req.TimeLimit
		quiz.TimeLimit = &limit
	}
	for i := range quiz.Questions {
		if quiz.Questions[i].ID == "" {
			quiz.Questions[i].ID = fmt.Sprintf("q%d", i+1)
		}
	}
	return quiz, nil
}

// OpenAIQuizGenerator 通过 OpenAI 兼容接口生成测验
type OpenAIQuizGenerator struct {
	client *openai.Client
	model  string
}

func NewOpenAIQuizGenerator(cfg config.AIConfig) (*OpenAIQuizGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: ai.api_key is empty", util.ErrGeneratorNotAvailable)
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIQuizGenerator{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}, nil
}

func (g *OpenAIQuizGenerator) Generate(ctx context.Context, req *model.QuizGenerationRequest) (*model.Quiz, error) {
	schemaBytes, err := json.Marshal(quizSchema)
	if err != nil {
		return nil, fmt.Errorf("marshal quiz schema: %w", err)
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: quizSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildQuizPrompt(req)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   quizSchemaName,
				Schema: json.RawMessage(schemaBytes),
				Strict: true,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrGenerationFailed, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", util.ErrGenerationFailed)
	}

	return ParseGeneratedQuiz(resp.Choices[0].Message.Content, req)
}

const quizSystemPrompt = "You are a study assistant that writes quizzes. " +
	"Reply only with JSON matching the provided schema. " +
	"For true_false questions use the options [\"true\", \"false\"]; " +
	"for fill_in_blank questions leave options empty. " +
	"correctAnswer must equal one of the options when options are present."

func buildQuizPrompt(req *model.QuizGenerationRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", req.Topic)
	if req.Difficulty != nil {
		fmt.Fprintf(&b, "Difficulty: %s\n", *req.Difficulty)
	}
	if req.QuestionCount != nil {
		fmt.Fprintf(&b, "Number of questions: %d\n", *req.QuestionCount)
	}
	if len(req.QuestionTypes) > 0 {
		types := make([]string, len(req.QuestionTypes))
		for i, t := range req.QuestionTypes {
			types[i] = string(t)
		}
		fmt.Fprintf(&b, "Question types: %s\n", strings.Join(types, ", "))
	}
	if req.TimeLimit != nil {
		fmt.Fprintf(&b, "The quiz should be answerable within %d minutes.\n", *req.TimeLimit)
	}
	if len(req.FocusTopics) > 0 {
		fmt.Fprintf(&b, "Emphasise these topics: %s\n", strings.Join(req.FocusTopics, ", "))
	}
	if req.Content != "" {
		fmt.Fprintf(&b, "\nSource material:\n%s\n", req.Content)
	}
	return b.String()
}
