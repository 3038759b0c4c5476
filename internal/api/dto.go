package api

import "github.com/starford/ansuz/internal/models"

// SaveNoteRequest is the request body for capturing a text selection.
// Tags is the raw comma-separated input string; the server normalizes it.
type SaveNoteRequest struct {
	Text  string `json:"text"`
	URL   string `json:"url"`
	Title string `json:"title"`
	Tags  string `json:"tags"`
}

// SaveImageNoteRequest is the request body for capturing an inline image,
// optionally with a caption.
type SaveImageNoteRequest struct {
	Image models.ImagePayload `json:"image"`
	Text  string              `json:"text"`
	URL   string              `json:"url"`
	Title string              `json:"title"`
	Tags  string              `json:"tags"`
}

// SaveImageURLNoteRequest is the request body for capturing an image by
// reference, used when cross-origin rules prevent inlining the pixels.
type SaveImageURLNoteRequest struct {
	ImageURL string `json:"image_url"`
	Alt      string `json:"alt"`
	URL      string `json:"url"`
	Title    string `json:"title"`
	Tags     string `json:"tags"`
}

// UpdateNoteRequest is the request body for editing a note.
type UpdateNoteRequest struct {
	Text string `json:"text"`
	Tags string `json:"tags"`
}

// RenameTagRequest is the request body for renaming a tag.
type RenameTagRequest struct {
	NewName string `json:"new_name"`
}

// SetThemeRequest is the request body for setting the UI theme.
type SetThemeRequest struct {
	Theme string `json:"theme"`
}

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []models.Note `json:"notes"`
	Total int           `json:"total"`
}

// TagNamesResponse wraps recent/popular tag name lists.
type TagNamesResponse struct {
	Tags []string `json:"tags"`
}

// ImportResponse reports how many notes an import added.
type ImportResponse struct {
	Imported int `json:"imported"`
}

// ThemeResponse wraps the current theme value.
type ThemeResponse struct {
	Theme string `json:"theme"`
}
