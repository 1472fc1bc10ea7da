package scanning

import "strings"

// transcriptionPrompt is the shared prompt used by the vision LLM extractors
const transcriptionPrompt = `You are an OCR engine. Transcribe ALL text printed on this receipt exactly as it appears, line by line, from top to bottom.

Rules:
- Keep one printed line per output line, preserving the left-to-right order of words and numbers on that line
- Copy numbers exactly, including thousands and decimal separators (e.g. "Rp 50.000", "12,500.00")
- Do not translate, summarize, correct or explain anything
- Do not use markdown code blocks
- If there is no readable text, return an empty response`

// cleanTranscript strips markdown fences and trailing whitespace that vision
// models sometimes wrap around a transcription.
func cleanTranscript(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// drop a language tag such as ```text
		if i := strings.Index(text, "\n"); i >= 0 && !strings.ContainsAny(text[:i], " \t") {
			text = text[i+1:]
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
