package transport

import "strings"

// EncodeTokens joins tokens with newlines for the request payload, with a
// trailing newline, per spec.md §6 ("tokens joined by a single \n, with a
// trailing \n") and original_source/apocrypha/client.py:261
// ('\n'.join(args) + '\n').
func EncodeTokens(tokens []string) []byte {
	if len(tokens) == 0 {
		return nil
	}
	return []byte(strings.Join(tokens, "\n") + "\n")
}

// DecodeTokens splits a request payload back into tokens, dropping empty
// elements - both the one produced by the trailing newline EncodeTokens
// appends, and any other stray blank token - the same way
// original_source/apocrypha/server.py's _parse_arguments filters
// (args = [arg for arg in args if arg]).
func DecodeTokens(payload []byte) []string {
	if len(payload) == 0 {
		return nil
	}
	raw := strings.Split(string(payload), "\n")
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// EncodeLines joins response lines with newlines for the response payload,
// with a trailing newline, matching every non-empty worked example in
// spec.md §8 ("good\n", "mushrooms\npineapple\n", ...) and
// original_source/apocrypha/server.py's ServerDatabase.action
// ('\n'.join(self.output) + '\n').
func EncodeLines(lines []string) []byte {
	if len(lines) == 0 {
		return nil
	}
	return []byte(strings.Join(lines, "\n") + "\n")
}

// DecodeLines splits a response payload back into lines. Only the single
// trailing newline EncodeLines appends is stripped - unlike DecodeTokens,
// interior empty lines are kept, since a response line may legitimately be
// the empty string.
func DecodeLines(payload []byte) []string {
	if len(payload) == 0 {
		return nil
	}
	return strings.Split(strings.TrimSuffix(string(payload), "\n"), "\n")
}
