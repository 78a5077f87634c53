package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/RAVBLACK/sentiguard/internal/sentiment"
)

const enrichInstructions = `You are a gentle, supportive companion inside a personal mood-tracking tool.
Given one analyzed text sample and its sentiment reading, reply with a single short supportive message (at most two sentences) addressed to the writer.
Never diagnose, never moralize, never mention the sentiment scores. If the reading indicates a mental health concern, gently encourage reaching out to someone they trust.`

// enrichResponse is the structured output contract for the model.
type enrichResponse struct {
	Message string `json:"message" jsonschema_description:"Short supportive message for the writer"`
}

var enrichSchema = generateSchema[enrichResponse]()

// OpenAI is the remote enricher. Every call is time-bounded and budgeted;
// any failure (transport, quota, decode) falls back to the local templates
// so callers always get a message.
type OpenAI struct {
	client   openai.Client
	model    string
	timeout  time.Duration
	quota    *Quota
	fallback *Local
}

// NewOpenAI creates the remote enricher. quota may be nil to disable
// budgeting (tests).
func NewOpenAI(apiKey, model string, timeout time.Duration, quota *Quota) *OpenAI {
	return &OpenAI{
		client:   openai.NewClient(option.WithAPIKey(apiKey)),
		model:    model,
		timeout:  timeout,
		quota:    quota,
		fallback: NewLocal(),
	}
}

// Enrich asks the model for a supportive message. The local template is the
// answer whenever the remote path cannot deliver.
func (o *OpenAI) Enrich(ctx context.Context, r sentiment.Result, moodContext string) (string, error) {
	if o.quota != nil {
		if err := o.quota.Take(); err != nil {
			return o.fallback.Enrich(ctx, r, moodContext)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	msg, err := o.call(ctx, r, moodContext)
	if err != nil {
		return o.fallback.Enrich(ctx, r, moodContext)
	}
	return msg, nil
}

func (o *OpenAI) call(ctx context.Context, r sentiment.Result, moodContext string) (string, error) {
	input := buildPrompt(r, moodContext)

	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:        "SupportiveMessage",
			Schema:      enrichSchema,
			Strict:      openai.Bool(true),
			Description: openai.String("Supportive message JSON"),
			Type:        "json_schema",
		},
	}

	params := responses.ResponseNewParams{
		Model:           o.model,
		MaxOutputTokens: openai.Int(200),
		Instructions:    openai.String(enrichInstructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(input, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: format,
		},
	}

	resp, err := o.client.Responses.New(ctx, params)
	if err != nil {
		return "", err
	}

	var out enrichResponse
	if err := json.Unmarshal([]byte(resp.OutputText()), &out); err != nil {
		return "", err
	}
	msg := strings.TrimSpace(out.Message)
	if msg == "" {
		return "", fmt.Errorf("empty message in model output")
	}
	return msg, nil
}

// buildPrompt shows the model the mood band rather than the raw text's
// scores; only the bounded preview ever leaves the process.
func buildPrompt(r sentiment.Result, moodContext string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Mood: %s\n", band(r.AdjustedScore))
	if r.MentalHealthConcern {
		b.WriteString("Reading: possible mental health concern\n")
	} else if r.IsSarcastic {
		b.WriteString("Reading: likely sarcasm\n")
	}
	if moodContext != "" {
		fmt.Fprintf(&b, "Recent mood context: %s\n", moodContext)
	}
	return b.String()
}

// generateSchema reflects a strict object schema the structured-output API
// accepts.
func generateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)

	data, err := schema.MarshalJSON()
	if err != nil {
		panic(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		panic(err)
	}

	m["additionalProperties"] = false
	if props, ok := m["properties"].(map[string]any); ok {
		required := make([]string, 0, len(props))
		for name := range props {
			required = append(required, name)
		}
		m["required"] = required
	}
	return m
}
