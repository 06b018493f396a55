package normalize

import (
	"encoding/json"
	"fmt"
)

// RawScene is a loosely validated scene record from the text/PDF parser or
// the extraction service. All fields are optional at this layer; Normalize
// decides what survives.
type RawScene struct {
	SceneNumber   string   `json:"scene_number"`
	Slugline      string   `json:"slugline"`
	IntExt        string   `json:"int_ext"`
	DayNight      string   `json:"day_night"`
	Synopsis      string   `json:"synopsis"`
	ScriptContent string   `json:"script_content,omitempty"`
	Pages         string   `json:"pages"`
	Cast          []string `json:"cast"`
}

// RawDay is a loosely validated shooting-day record.
type RawDay struct {
	DayNumber string     `json:"day_number"`
	Date      string     `json:"date"`
	Location  string     `json:"location"`
	Notes     []string   `json:"notes"`
	Scenes    []RawScene `json:"scenes"`
	// RawText is the source text the parser derived this day from. Stage two
	// sends it to the extraction model.
	RawText string `json:"raw_text,omitempty"`
}

// RawCastEntry is a loosely validated cast-list entry.
type RawCastEntry struct {
	Number    string `json:"number"`
	Name      string `json:"name"`
	Character string `json:"character,omitempty"`
}

// RawUpload is the complete parser output for one artifact. Script uploads
// carry Scenes only; schedule uploads carry Days and Cast.
type RawUpload struct {
	Title  string         `json:"title,omitempty"`
	Days   []RawDay       `json:"days,omitempty"`
	Scenes []RawScene     `json:"scenes,omitempty"`
	Cast   []RawCastEntry `json:"cast,omitempty"`
}

// DecodeUpload parses raw JSON produced by the parser collaborator.
func DecodeUpload(data []byte) (RawUpload, error) {
	var upload RawUpload
	if err := json.Unmarshal(data, &upload); err != nil {
		return RawUpload{}, fmt.Errorf("decode raw upload: %w", err)
	}
	return upload, nil
}
