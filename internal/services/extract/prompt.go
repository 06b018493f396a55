package extract

import (
	"fmt"
	"strings"
)

const extractionSystemPrompt = `You are a film production assistant. You receive the raw text of one shooting day from a production schedule, plus the scene numbers already identified for that day. Extract structured detail for each scene.

Respond with JSON only, in this shape:
{"scenes": [{"scene_number": "12A", "slugline": "INT. KITCHEN - DAY", "int_ext": "INT", "day_night": "DAY", "synopsis": "...", "script_content": "...", "pages": "1 3/8", "cast": ["1", "4"]}]}

Rules:
- Only return scenes whose scene_number appears in the provided list.
- Cast entries are schedule cast numbers as strings, not names.
- Leave a field empty rather than guessing.`

func buildDayPrompt(req DayRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Shooting day %d", req.DayNumber)
	if req.Date != "" {
		fmt.Fprintf(&b, " (%s)", req.Date)
	}
	if req.Location != "" {
		fmt.Fprintf(&b, " at %s", req.Location)
	}
	b.WriteString("\n\nKnown scene numbers:")
	for _, scene := range req.Scenes {
		fmt.Fprintf(&b, " %s", scene.SceneNumber)
	}
	b.WriteString("\n\nRaw schedule text:\n")
	b.WriteString(req.RawText)
	return b.String()
}
