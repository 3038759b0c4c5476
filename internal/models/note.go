// Package models defines the domain types for Ansuz.
package models

import (
	"fmt"
	"time"

	"github.com/starford/ansuz/internal/apperr"
)

// Kind discriminates what content a note carries.
type Kind string

// Note kinds.
const (
	KindText          Kind = "text"
	KindImage         Kind = "image"
	KindImageURL      Kind = "image_url"
	KindTextWithImage Kind = "text_with_image"
)

// Valid reports whether k is a known note kind.
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindImage, KindImageURL, KindTextWithImage:
		return true
	}
	return false
}

// HasInlineImage reports whether notes of this kind carry an inline payload.
func (k Kind) HasInlineImage() bool {
	return k == KindImage || k == KindTextWithImage
}

// ImagePayload is an inline captured image: base64 pixel data plus metadata.
type ImagePayload struct {
	Data   string `json:"data"`
	Format string `json:"format,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Alt    string `json:"alt,omitempty"`
}

// Source records where a note was captured from.
type Source struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	Domain string `json:"domain"`
}

// Note represents one captured artifact.
//
// Exactly one of Image / ImageURL is set when Kind is an image kind; neither
// is set for plain text notes. Constructors below keep that invariant;
// Validate catches records that arrive through deserialization.
type Note struct {
	ID        string        `json:"id"`
	Kind      Kind          `json:"kind"`
	Text      string        `json:"text"`
	Image     *ImagePayload `json:"image,omitempty"`
	ImageURL  string        `json:"image_url,omitempty"`
	Source    Source        `json:"source"`
	Tags      []string      `json:"tags"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// NewTextNote builds the content for a plain text note.
func NewTextNote(text string, src Source, tags []string) Note {
	return Note{Kind: KindText, Text: text, Source: src, Tags: tags}
}

// NewImageNote builds the content for an inline image note.
// Text, if non-empty, is treated as a caption.
func NewImageNote(img ImagePayload, caption string, src Source, tags []string) Note {
	kind := KindImage
	if caption != "" {
		kind = KindTextWithImage
	}
	return Note{Kind: kind, Text: caption, Image: &img, Source: src, Tags: tags}
}

// NewImageURLNote builds the content for a note referencing an external image,
// used when cross-origin capture prevents inlining the pixels.
func NewImageURLNote(imageURL string, src Source, tags []string) Note {
	return Note{Kind: KindImageURL, ImageURL: imageURL, Source: src, Tags: tags}
}

// Validate checks the kind/content invariant.
func (n *Note) Validate() error {
	if !n.Kind.Valid() {
		return fmt.Errorf("%w: unknown note kind %q", apperr.ErrInvalidInput, n.Kind)
	}
	switch {
	case n.Kind == KindText && (n.Image != nil || n.ImageURL != ""):
		return fmt.Errorf("%w: text note must not carry image content", apperr.ErrInvalidInput)
	case n.Kind.HasInlineImage() && n.Image == nil:
		return fmt.Errorf("%w: %s note requires an inline image payload", apperr.ErrInvalidInput, n.Kind)
	case n.Kind.HasInlineImage() && n.ImageURL != "":
		return fmt.Errorf("%w: inline image and image URL are mutually exclusive", apperr.ErrInvalidInput)
	case n.Kind == KindImageURL && n.ImageURL == "":
		return fmt.Errorf("%w: image_url note requires an image URL", apperr.ErrInvalidInput)
	case n.Kind == KindImageURL && n.Image != nil:
		return fmt.Errorf("%w: inline image and image URL are mutually exclusive", apperr.ErrInvalidInput)
	}
	return nil
}

// HasTag reports exact membership of name in the note's tag set.
func (n *Note) HasTag(name string) bool {
	for _, t := range n.Tags {
		if t == name {
			return true
		}
	}
	return false
}

// TagRecord is the per-tag-name index entry.
type TagRecord struct {
	Name       string    `json:"name"`
	UsageCount int       `json:"usage_count"`
	Color      string    `json:"color"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
}

// TagStatistics is the derived aggregate view cached alongside the tag index.
type TagStatistics struct {
	RecentTags  []string `json:"recent_tags"`
	PopularTags []string `json:"popular_tags"`
	TotalTags   int      `json:"total_tags"`
	TotalNotes  int      `json:"total_notes"`
}

// Themes.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// ExportDocument is the import/export file format.
type ExportDocument struct {
	Notes      []Note               `json:"notes"`
	Tags       map[string]TagRecord `json:"tags,omitempty"`
	ExportedAt time.Time            `json:"exported_at"`
	Version    string               `json:"version"`
}

// ExportVersion is the current export document version.
const ExportVersion = "1.0"
