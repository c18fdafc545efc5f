package types

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
)

// CanvasDocument is the typed form of the serialized UI layout stored in
// Page.CanvasData and Optimization.OriginalDesign/OptimizedDesign. Objects
// are ordered back-to-front.
type CanvasDocument struct {
	Version    string         `json:"version"`
	Objects    []CanvasObject `json:"objects"`
	Background string         `json:"background,omitempty"`
}

// CanvasObject is one visual element. Geometry fields are shared by all
// element kinds; style and text fields are optional per kind.
type CanvasObject struct {
	Type   string  `json:"type"`
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Fill        string   `json:"fill,omitempty"`
	Stroke      string   `json:"stroke,omitempty"`
	StrokeWidth float64  `json:"strokeWidth,omitempty"`
	Radius      float64  `json:"radius,omitempty"`
	Opacity     *float64 `json:"opacity,omitempty"`

	Text       string  `json:"text,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty"`
	FontWeight string  `json:"fontWeight,omitempty"`

	Src string `json:"src,omitempty"`
}

// ParseCanvasDocument is the schema-validated boundary between the jsonb
// columns and lifecycle logic. Raw blobs never flow through the lifecycle
// untyped.
func ParseCanvasDocument(raw []byte) (*CanvasDocument, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty canvas document")
	}
	var doc CanvasDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse canvas document: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *CanvasDocument) Validate() error {
	if d.Version == "" {
		return fmt.Errorf("canvas document missing version")
	}
	if d.Objects == nil {
		return fmt.Errorf("canvas document missing objects")
	}
	for i, obj := range d.Objects {
		if obj.Type == "" {
			return fmt.Errorf("canvas object %d missing type", i)
		}
		if obj.Width < 0 || obj.Height < 0 {
			return fmt.Errorf("canvas object %d has negative size", i)
		}
	}
	return nil
}

// JSON serializes the document for a jsonb column.
func (d *CanvasDocument) JSON() (datatypes.JSON, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
