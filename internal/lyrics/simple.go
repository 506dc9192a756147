package lyrics

var simpleTemplates = []string{
	"The {keyword} leads my way",
	"{Keyword} in the night",
	"I feel the {keyword} inside",
	"When {keyword} calls my name",
	"Through the {keyword} I see",
	"My {keyword} never fades",
}

// GenerateSimple builds a 4 or 6 line snippet, cycling through the
// keywords and a fixed template list in step.
func GenerateSimple(keywords []string, length int) ([]string, error) {
	if length != 4 && length != 6 {
		return nil, ErrInvalidLength
	}
	if len(keywords) == 0 {
		return []string{}, nil
	}

	lines := make([]string, length)
	for i := range lines {
		lines[i] = Fill(simpleTemplates[i%len(simpleTemplates)], keywords[i%len(keywords)])
	}
	return lines, nil
}
