package evaluation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPEvaluator scores free-response parts by calling an OpenAI-compatible
// chat-completion endpoint (Ollama, LM Studio, vLLM, hosted APIs).
type HTTPEvaluator struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// Compile-time check: *HTTPEvaluator satisfies the Evaluator interface.
var _ Evaluator = (*HTTPEvaluator)(nil)

// NewHTTPEvaluator creates an evaluator against the given endpoint. The
// timeout applies per call; concurrent calls each get their own budget.
func NewHTTPEvaluator(baseURL, apiKey, model string, timeout time.Duration) *HTTPEvaluator {
	return &HTTPEvaluator{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Evaluate sends one rubric part for scoring and parses the structured
// verdict. The awarded score is clamped to the part's point cap and penalties
// are capped at three.
func (e *HTTPEvaluator) Evaluate(ctx context.Context, pc PartContext) (*Evaluation, error) {
	raw, err := e.complete(ctx, buildPrompt(pc))
	if err != nil {
		return nil, err
	}

	jsonStr := extractJSON(raw)
	if jsonStr == "" {
		return nil, &EvaluationError{Reason: "no JSON object found in evaluator response"}
	}

	var ev Evaluation
	if err := json.Unmarshal([]byte(jsonStr), &ev); err != nil {
		return nil, &EvaluationError{Reason: "invalid JSON from evaluator", Wrapped: err}
	}

	sanitize(&ev, pc.MaxPoints)
	return &ev, nil
}

func (e *HTTPEvaluator) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: e.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		e.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", &EvaluationError{Reason: "evaluator unreachable", Wrapped: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", &EvaluationError{
			Reason: fmt.Sprintf("evaluator returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data))),
		}
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", &EvaluationError{Reason: "malformed evaluator response", Wrapped: err}
	}
	if len(cr.Choices) == 0 {
		return "", &EvaluationError{Reason: "evaluator returned no choices"}
	}
	return cr.Choices[0].Message.Content, nil
}

const systemPrompt = `You are a strict exam grader. Score the student's free-response submission against the rubric. Respond with a single JSON object:
{"score": <int>, "rubric_breakdown": [{"criterion": "...", "earned": <int>, "possible": <int>, "feedback": "..."}], "penalties": ["..."], "feedback": "...", "strengths": ["..."], "improvements": ["..."]}
The score must not exceed the stated point cap. List at most 3 penalties; each penalty deducts 1 point.`

func buildPrompt(pc PartContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question part %s (worth %d points):\n%s\n", pc.PartLabel, pc.MaxPoints, pc.Prompt)
	if pc.Scaffold != "" {
		fmt.Fprintf(&b, "\nStarter scaffold given to the student:\n%s\n", pc.Scaffold)
	}
	if pc.SampleSolution != "" {
		fmt.Fprintf(&b, "\nSample solution:\n%s\n", pc.SampleSolution)
	}
	if len(pc.Rubric) > 0 {
		b.WriteString("\nRubric:\n")
		for _, line := range pc.Rubric {
			fmt.Fprintf(&b, "- [%d pts] %s\n", line.Points, line.Criterion)
		}
	}
	fmt.Fprintf(&b, "\nStudent submission:\n%s\n", pc.Submission)
	return b.String()
}

// sanitize clamps the evaluation into the valid range: the awarded score
// (after at most three one-point penalties) stays within [0, maxPoints] and
// rubric line scores stay within their own caps.
func sanitize(ev *Evaluation, maxPoints int) {
	if len(ev.Penalties) > maxPenalties {
		ev.Penalties = ev.Penalties[:maxPenalties]
	}
	if ev.Score > maxPoints {
		ev.Score = maxPoints
	}
	if ev.Score < 0 {
		ev.Score = 0
	}
	for i := range ev.RubricBreakdown {
		line := &ev.RubricBreakdown[i]
		if line.Earned < 0 {
			line.Earned = 0
		}
		if line.Possible > 0 && line.Earned > line.Possible {
			line.Earned = line.Possible
		}
	}
}

// extractJSON pulls the first balanced JSON object out of a model response
// that may wrap it in prose or code fences.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}
