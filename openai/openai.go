package openai

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"site-safety-inspection/models"
	"site-safety-inspection/parser"
)

const openAIEndpoint = "https://api.openai.com/v1/chat/completions"

const filterSystemPrompt = `You are a site safety pre-screening filter.
Answer the user's question about the attached image with exactly one word:
YES or NO. No punctuation, no explanation.`

const classifyPromptTemplate = `You are a site safety classifier.
Identify all applicable hazard categories visible in the attached image.
Choose ONLY from this list:
%s

Return ONLY a JSON object of the form {"labels": ["<category>", ...]} and
nothing else. Use the category names exactly as given.`

type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type ImageURL struct {
	URL string `json:"url"`
}

type ImageContent struct {
	Type     string   `json:"type"`
	ImageURL ImageURL `json:"image_url"`
}

type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content any `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client represents an OpenAI API client
type Client struct {
	apiKey string
	model  string
	client *http.Client
}

// NewClient creates a new OpenAI client
func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{},
	}
}

// SourceName identifies this provider in logs and saved findings
func (c *Client) SourceName() string {
	return "ChatGPT"
}

// encodeImageToBase64 converts image bytes to base64 data URL
func encodeImageToBase64(imageData []byte) string {
	base64Data := base64.StdEncoding.EncodeToString(imageData)
	return fmt.Sprintf("data:image/jpeg;base64,%s", base64Data)
}

// Filter asks the hazard-presence question and interprets the YES/NO reply.
// An unrecognized reply counts as NO so noise from the model degrades to the
// cheap path rather than failing the image.
func (c *Client) Filter(question string, image []byte) (bool, error) {
	response, err := c.chat(filterSystemPrompt, question, image)
	if err != nil {
		return false, models.Backend("ai filter", err)
	}

	answer := strings.ToUpper(strings.TrimSpace(response))
	return strings.HasPrefix(answer, "YES"), nil
}

// Classify runs multi-label classification restricted to the category
// vocabulary. The raw reply is wrapped as a text result; label extraction
// stays with the caller so malformed replies never fail here.
func (c *Client) Classify(image []byte, categories []string) (parser.ClassifyResult, error) {
	prompt := fmt.Sprintf(classifyPromptTemplate, "- "+strings.Join(categories, "\n- "))
	response, err := c.chat("", prompt, image)
	if err != nil {
		return parser.EmptyResult(), models.Backend("ai classify", err)
	}
	if strings.TrimSpace(response) == "" {
		return parser.EmptyResult(), nil
	}
	return parser.TextResult(parser.ExtractJSONFromMarkdown(response)), nil
}

// Complete sends a free-text completion request, with an optional image.
func (c *Client) Complete(prompt string, image []byte) (string, error) {
	response, err := c.chat("", prompt, image)
	if err != nil {
		return "", models.Backend("ai complete", err)
	}
	return response, nil
}

// chat performs one chat-completions call. An empty systemPrompt omits the
// system message; a nil image makes the call text-only.
func (c *Client) chat(systemPrompt, userPrompt string, image []byte) (string, error) {
	var messages []Message

	if systemPrompt != "" {
		messages = append(messages, Message{
			Role: "system",
			Content: []any{
				TextContent{Type: "text", Text: systemPrompt},
			},
		})
	}

	userContent := []any{}
	if image != nil {
		userContent = append(userContent, ImageContent{
			Type: "image_url",
			ImageURL: ImageURL{
				URL: encodeImageToBase64(image),
			},
		})
	}
	userContent = append(userContent, TextContent{Type: "text", Text: userPrompt})

	messages = append(messages, Message{
		Role:    "user",
		Content: userContent,
	})

	reqBody := ChatRequest{
		Model:    c.model,
		Messages: messages,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", openAIEndpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	// Extract the text content from the response
	content := chatResp.Choices[0].Message.Content
	if contentStr, ok := content.(string); ok {
		return contentStr, nil
	}

	// If content is not a string, try to marshal it back to JSON
	contentJSON, err := json.Marshal(content)
	if err != nil {
		return "", fmt.Errorf("failed to marshal content: %w", err)
	}

	return string(contentJSON), nil
}
