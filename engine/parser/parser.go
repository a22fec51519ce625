// Package parser converts command strings into Command structs.
// Intentionally dumb: no NLP, just pattern matching.
package parser

import (
	"strconv"
	"strings"
)

// Command is one parsed player command. Object and Target are the words
// before and after the first preposition, articles stripped.
type Command struct {
	Verb   string
	Object string
	Target string
}

var verbAliases = map[string]string{
	// Talking
	"speak":    "talk",
	"chat":     "talk",
	"ask":      "talk",
	"converse": "talk",
	"greet":    "talk",

	// Movement
	"walk":   "go",
	"move":   "go",
	"head":   "go",
	"travel": "go",
	"enter":  "go",
	"visit":  "go",

	// Taking
	"get":     "take",
	"grab":    "take",
	"collect": "take",
	"gather":  "take",

	// World objects
	"use":     "interact",
	"pull":    "interact",
	"push":    "interact",
	"press":   "interact",
	"touch":   "interact",
	"open":    "interact",
	"examine": "interact",
	"inspect": "interact",

	// Combat
	"battle":  "fight",
	"engage":  "fight",
	"hit":     "attack",
	"block":   "defend",
	"guard":   "defend",
	"brace":   "defend",
	"run":     "flee",
	"escape":  "flee",
	"retreat": "flee",

	// Dialogue
	"pick":    "choose",
	"select":  "choose",
	"next":    "continue",
	"advance": "continue",

	// Journal and status
	"journal":    "quests",
	"log":        "quests",
	"accept":     "activate",
	"reputation": "factions",
	"rep":        "factions",
	"status":     "stats",
	"me":         "stats",
	"inv":        "inventory",
	"i":          "inventory",
	"items":      "inventory",
	"bag":        "inventory",
}

var prepositions = map[string]bool{
	"on": true, "at": true, "to": true,
	"with": true, "in": true, "from": true,
	"about": true,
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true,
}

// Parse converts a raw command string into a Command.
func Parse(input string) Command {
	input = strings.TrimSpace(input)
	if input == "" {
		return Command{}
	}

	words := strings.Fields(strings.ToLower(input))

	// Bare number: shorthand for picking a dialogue choice.
	if len(words) == 1 {
		if _, err := strconv.Atoi(words[0]); err == nil {
			return Command{Verb: "choose", Object: words[0]}
		}
	}

	// Handle multi-word verb phrases before general parsing.
	words = expandPhrases(words)

	// Apply verb aliases.
	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}

	verb := words[0]
	rest := stripArticles(words[1:])

	// Use the first preposition as a delimiter between object and target.
	object, target := splitOnPreposition(rest)

	return Command{
		Verb:   verb,
		Object: object,
		Target: target,
	}
}

// expandPhrases handles "talk to", "pick up", "go to" etc.
func expandPhrases(words []string) []string {
	if len(words) < 2 {
		return words
	}

	switch words[0] {
	case "talk", "speak", "chat":
		if words[1] == "to" || words[1] == "with" {
			return append([]string{"talk"}, words[2:]...)
		}
	case "pick":
		if words[1] == "up" {
			return append([]string{"take"}, words[2:]...)
		}
	case "go", "travel", "head", "walk", "move":
		if words[1] == "to" {
			return append([]string{"go"}, words[2:]...)
		}
	}

	return words
}

// stripArticles removes articles ("the", "a", "an") from the word list.
func stripArticles(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[w] {
			result = append(result, w)
		}
	}
	return result
}

// splitOnPreposition splits words on the first preposition. Words before
// the preposition become the object, words after become the target. If
// no preposition is found, all words become the object.
func splitOnPreposition(words []string) (object, target string) {
	for i, w := range words {
		if prepositions[w] {
			object = strings.Join(words[:i], " ")
			target = strings.Join(words[i+1:], " ")
			return object, target
		}
	}
	return strings.Join(words, " "), ""
}
