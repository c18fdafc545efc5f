package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yungbote/pixelcraft-backend/internal/apperr"
	"github.com/yungbote/pixelcraft-backend/internal/logger"
	"github.com/yungbote/pixelcraft-backend/internal/types"
)

// DesignAssistant is the capability-typed boundary to the model provider.
// Lifecycle code calls these four operations and never sees prompt text or
// raw model JSON; malformed responses surface as ErrUpstreamFormat, timeouts
// as ErrUpstreamTimeout.
type DesignAssistant interface {
	ExtractCanvas(ctx context.Context, imageB64, mediaType string) (*types.CanvasDocument, error)
	OptimizeDesign(ctx context.Context, original *types.CanvasDocument, skill types.SkillLevel) (*OptimizeResult, error)
	RefineDesign(ctx context.Context, original, current *types.CanvasDocument, feedback, category string) (*RefineResult, error)
	GenerateCode(ctx context.Context, design *types.CanvasDocument) (map[string]any, error)
}

type Suggestion struct {
	Target     string `json:"target"`
	Suggestion string `json:"suggestion"`
	Reasoning  string `json:"reasoning"`
}

type OptimizeResult struct {
	Optimized    *types.CanvasDocument
	Suggestions  []Suggestion
	Analysis     string
	QualityScore int
}

type RefineResult struct {
	Optimized   *types.CanvasDocument
	Changes     []string
	Explanation string
}

type designAssistant struct {
	log *logger.Logger
	ai  OpenAIClient
}

func NewDesignAssistant(log *logger.Logger, ai OpenAIClient) DesignAssistant {
	return &designAssistant{
		log: log.With("service", "DesignAssistant"),
		ai:  ai,
	}
}

const extractSystemPrompt = `You are a UI analysis engine. Given a screenshot of a user interface,
produce a canvas document: an ordered list of visual elements with pixel geometry
(left, top, width, height), fill/stroke colors as hex strings, and text content
with font attributes where applicable. Use element types "rect", "text", "image",
"ellipse". Order elements back-to-front.`

const optimizeSystemPrompt = `You are a senior product designer. Improve the given canvas document:
fix alignment and spacing, establish visual hierarchy, normalize the color
palette and typography. Keep every element; only adjust geometry, style and
text attributes. Return the improved document, a list of concrete suggestions,
a short analysis, and a quality score from 0 to 100 for the original design.`

const refineSystemPrompt = `You are a senior product designer revising a design based on user
feedback. You are given the original canvas document, the current optimized
document, the user's feedback and a feedback category. Apply the feedback to
the optimized document. Return the revised document, the list of changes you
made, and a short explanation.`

const generateCodeSystemPrompt = `You are a front-end engineer. Convert the given canvas document into a
small runnable web project. Return a file map: relative path to full file
contents, plus the framework used and setup instructions.`

func canvasSchema() map[string]any {
	obj := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"type":        map[string]any{"type": "string"},
			"left":        map[string]any{"type": "number"},
			"top":         map[string]any{"type": "number"},
			"width":       map[string]any{"type": "number"},
			"height":      map[string]any{"type": "number"},
			"fill":        map[string]any{"type": "string"},
			"stroke":      map[string]any{"type": "string"},
			"strokeWidth": map[string]any{"type": "number"},
			"text":        map[string]any{"type": "string"},
			"fontSize":    map[string]any{"type": "number"},
			"fontFamily":  map[string]any{"type": "string"},
			"fontWeight":  map[string]any{"type": "string"},
		},
		"required": []string{"type", "left", "top", "width", "height"},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"version":    map[string]any{"type": "string"},
			"objects":    map[string]any{"type": "array", "items": obj},
			"background": map[string]any{"type": "string"},
		},
		"required": []string{"version", "objects"},
	}
}

// upstreamErr maps transport failures onto the API's error taxonomy.
func upstreamErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", apperr.ErrUpstreamTimeout, err)
	}
	return fmt.Errorf("%w: %v", apperr.ErrUpstream, err)
}

// decodeCanvas re-marshals a schema'd fragment of the model response into the
// typed document and runs it through the validating boundary.
func decodeCanvas(fragment any) (*types.CanvasDocument, error) {
	raw, err := json.Marshal(fragment)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrUpstreamFormat, err)
	}
	doc, err := types.ParseCanvasDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrUpstreamFormat, err)
	}
	return doc, nil
}

func (da *designAssistant) ExtractCanvas(ctx context.Context, imageB64, mediaType string) (*types.CanvasDocument, error) {
	out, err := da.ai.GenerateJSONFromImage(ctx, extractSystemPrompt,
		"Extract the canvas document from this screenshot.",
		imageB64, mediaType, "canvas_document", canvasSchema())
	if err != nil {
		return nil, upstreamErr(err)
	}
	return decodeCanvas(out)
}

func (da *designAssistant) OptimizeDesign(ctx context.Context, original *types.CanvasDocument, skill types.SkillLevel) (*OptimizeResult, error) {
	originalJSON, err := json.Marshal(original)
	if err != nil {
		return nil, err
	}
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"optimized_design": canvasSchema(),
			"suggestions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"target":     map[string]any{"type": "string"},
						"suggestion": map[string]any{"type": "string"},
						"reasoning":  map[string]any{"type": "string"},
					},
					"required": []string{"target", "suggestion"},
				},
			},
			"analysis":      map[string]any{"type": "string"},
			"quality_score": map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
		},
		"required": []string{"optimized_design", "suggestions", "analysis", "quality_score"},
	}
	user := fmt.Sprintf("User skill level: %s\n\nCanvas document:\n%s", skill, originalJSON)
	out, err := da.ai.GenerateJSON(ctx, optimizeSystemPrompt, user, "design_optimization", schema)
	if err != nil {
		return nil, upstreamErr(err)
	}

	doc, err := decodeCanvas(out["optimized_design"])
	if err != nil {
		return nil, err
	}
	result := &OptimizeResult{Optimized: doc}
	if raw, mErr := json.Marshal(out["suggestions"]); mErr == nil {
		_ = json.Unmarshal(raw, &result.Suggestions)
	}
	if analysis, ok := out["analysis"].(string); ok {
		result.Analysis = analysis
	}
	score, ok := out["quality_score"].(float64)
	if !ok || score < 0 || score > 100 {
		return nil, fmt.Errorf("%w: quality_score out of range", apperr.ErrUpstreamFormat)
	}
	result.QualityScore = int(score)
	return result, nil
}

func (da *designAssistant) RefineDesign(ctx context.Context, original, current *types.CanvasDocument, feedback, category string) (*RefineResult, error) {
	originalJSON, err := json.Marshal(original)
	if err != nil {
		return nil, err
	}
	currentJSON, err := json.Marshal(current)
	if err != nil {
		return nil, err
	}
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"optimized_design": canvasSchema(),
			"changes": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"explanation": map[string]any{"type": "string"},
		},
		"required": []string{"optimized_design", "changes", "explanation"},
	}
	user := fmt.Sprintf(
		"Feedback category: %s\nFeedback: %s\n\nOriginal design:\n%s\n\nCurrent optimized design:\n%s",
		category, feedback, originalJSON, currentJSON)
	out, err := da.ai.GenerateJSON(ctx, refineSystemPrompt, user, "design_refinement", schema)
	if err != nil {
		return nil, upstreamErr(err)
	}

	doc, err := decodeCanvas(out["optimized_design"])
	if err != nil {
		return nil, err
	}
	result := &RefineResult{Optimized: doc}
	if raw, mErr := json.Marshal(out["changes"]); mErr == nil {
		_ = json.Unmarshal(raw, &result.Changes)
	}
	if explanation, ok := out["explanation"].(string); ok {
		result.Explanation = explanation
	}
	return result, nil
}

func (da *designAssistant) GenerateCode(ctx context.Context, design *types.CanvasDocument) (map[string]any, error) {
	designJSON, err := json.Marshal(design)
	if err != nil {
		return nil, err
	}
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"framework": map[string]any{"type": "string"},
			"files": map[string]any{
				"type": "object",
				"additionalProperties": map[string]any{"type": "string"},
			},
			"instructions": map[string]any{"type": "string"},
		},
		"required": []string{"framework", "files"},
	}
	out, err := da.ai.GenerateJSON(ctx, generateCodeSystemPrompt, string(designJSON), "code_bundle", schema)
	if err != nil {
		return nil, upstreamErr(err)
	}
	if _, ok := out["files"].(map[string]any); !ok {
		return nil, fmt.Errorf("%w: code bundle missing files", apperr.ErrUpstreamFormat)
	}
	return out, nil
}
