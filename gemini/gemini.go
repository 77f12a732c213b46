package gemini

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

const filterPrompt = `You are a site safety pre-screening filter.
Answer the question about the attached image with exactly one word:
YES or NO. No punctuation, no explanation.

Question: %s`

const classifyPromptTemplate = `You are a site safety classifier.
Identify all applicable hazard categories visible in the attached image.
Choose ONLY from this list:
%s

Return ONLY a JSON object of the form {"labels": ["<category>", ...]} and
nothing else. Use the category names exactly as given.`

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string `json:"response_mime_type,omitempty"`
}

type geminiRequest struct {
	GenerationConfig generationConfig `json:"generationConfig,omitempty"`
	Contents         []content        `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text,omitempty"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type Client struct {
	apiKey string
	model  string
	http   *http.Client
}

func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey: apiKey,
		model:  model,
		http:   &http.Client{},
	}
}

func (c *Client) SourceName() string {
	return "Gemini"
}

// Filter asks the hazard-presence question and interprets the YES/NO reply.
// An unrecognized reply counts as NO.
func (c *Client) Filter(question string, image []byte) (bool, error) {
	response, err := c.generate(fmt.Sprintf(filterPrompt, question), image)
	if err != nil {
		return false, models.Backend("ai filter", err)
	}

	answer := strings.ToUpper(strings.TrimSpace(response))
	return strings.HasPrefix(answer, "YES"), nil
}

// Classify runs multi-label classification restricted to the category
// vocabulary; label extraction stays with the caller.
func (c *Client) Classify(image []byte, categories []string) (parser.ClassifyResult, error) {
	prompt := fmt.Sprintf(classifyPromptTemplate, "- "+strings.Join(categories, "\n- "))
	response, err := c.generate(prompt, image)
	if err != nil {
		return parser.EmptyResult(), models.Backend("ai classify", err)
	}
	if strings.TrimSpace(response) == "" {
		return parser.EmptyResult(), nil
	}
	return parser.TextResult(parser.ExtractJSONFromMarkdown(response)), nil
}

// Complete sends a free-text generation request, with an optional image.
func (c *Client) Complete(prompt string, image []byte) (string, error) {
	response, err := c.generate(prompt, image)
	if err != nil {
		return "", models.Backend("ai complete", err)
	}
	return response, nil
}

func (c *Client) generate(prompt string, image []byte) (string, error) {
	parts := []part{{Text: prompt}}
	if len(image) > 0 {
		parts = append(parts, part{
			InlineData: &inlineData{
				MimeType: "image/jpeg",
				Data:     base64.StdEncoding.EncodeToString(image),
			},
		})
	}

	return c.generateContent(geminiRequest{
		Contents: []content{
			{
				Role:  "user",
				Parts: parts,
			},
		},
	})
}

func (c *Client) generateContent(body geminiRequest) (string, error) {
	// try v1beta first, then v1
	endpoints := []string{
		fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s", c.model, c.apiKey),
		fmt.Sprintf("https://generativelanguage.googleapis.com/v1/models/%s:generateContent?key=%s", c.model, c.apiKey),
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for _, ep := range endpoints {
		req, err := http.NewRequest("POST", ep, bytes.NewBuffer(data))
		if err != nil {
			lastErr = fmt.Errorf("failed to create request: %w", err)
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("failed to send request: %w", err)
			continue
		}
		defer resp.Body.Close()
		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			lastErr = fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(bodyBytes))
			// retry next endpoint if available
			continue
		}
		var gr geminiResponse
		if err := json.Unmarshal(bodyBytes, &gr); err != nil {
			lastErr = fmt.Errorf("failed to parse response: %w", err)
			continue
		}
		if len(gr.Candidates) == 0 {
			lastErr = fmt.Errorf("no candidates in response")
			continue
		}
		// find first text part
		for _, p := range gr.Candidates[0].Content.Parts {
			if p.Text != "" {
				return p.Text, nil
			}
		}
		lastErr = fmt.Errorf("no text part in response")
	}
	return "", lastErr
}
