package rhyme

import "strings"

const trailingPunctuation = ".,!?;:"

// splitPunctuation trims the line and detaches one trailing punctuation mark.
func splitPunctuation(line string) (body, punct string) {
	body = strings.TrimSpace(line)
	if body == "" {
		return "", ""
	}
	last := body[len(body)-1:]
	if strings.Contains(trailingPunctuation, last) {
		return strings.TrimSpace(body[:len(body)-1]), last
	}
	return body, ""
}

// LastWord returns the final word of a line without its trailing
// punctuation mark, or "" when the line has no words.
func LastWord(line string) string {
	body, _ := splitPunctuation(line)
	words := strings.Fields(body)
	if len(words) == 0 {
		return ""
	}
	return words[len(words)-1]
}

// ReplaceLastWord swaps the final word of a line for word, keeping the
// preceding words and the trailing punctuation mark.
func ReplaceLastWord(line, word string) string {
	body, punct := splitPunctuation(line)
	words := strings.Fields(body)
	if len(words) == 0 {
		return word + punct
	}
	words[len(words)-1] = word
	return strings.Join(words, " ") + punct
}
