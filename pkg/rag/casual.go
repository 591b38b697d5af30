package rag

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
)

var casualPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(hi|hello|hey|greetings)\b`),
	regexp.MustCompile(`\b(how are you|what's up|sup)\b`),
	regexp.MustCompile(`\b(good morning|good afternoon|good evening)\b`),
	regexp.MustCompile(`\b(thanks|thank you|thx)\b`),
	regexp.MustCompile(`\b(bye|goodbye|see you)\b`),
}

// IsCasual reports whether a question is small talk rather than a code
// question. Only very short inputs qualify: "hi, how does parsing work"
// must still reach the graph.
func IsCasual(question string) bool {
	q := strings.ToLower(strings.TrimSpace(question))
	if len(q) > 15 {
		return false
	}
	for _, pattern := range casualPatterns {
		if pattern.MatchString(q) {
			return true
		}
	}
	return false
}

var (
	greetingReplies = []string{
		"Hello! 👋 I'm here to help you explore and understand the %s repository.",
		"Hi there! 😊 Ready to dive into the %s codebase?",
		"Hey! 🚀 Let's explore what's in the %s repository together!",
	}
	thanksReplies = []string{
		"You're welcome! Feel free to ask me anything about the repository.",
		"Happy to help! What would you like to know about the code?",
		"No problem! I'm here whenever you need to understand the codebase.",
	}
	goodbyeReplies = []string{
		"Goodbye! Come back anytime you need help with the repository.",
		"See you later! Happy coding! 👋",
		"Take care! I'll be here when you need code insights.",
	}
)

// CasualReply picks a canned reply for small talk. The pick is a stable
// hash of the question, so repeating a greeting repeats the reply.
func CasualReply(question string, repoName string) string {
	q := strings.ToLower(strings.TrimSpace(question))
	pick := func(replies []string) string {
		h := fnv.New32a()
		h.Write([]byte(question))
		return replies[h.Sum32()%uint32(len(replies))]
	}

	switch {
	case containsAny(q, "hi", "hello", "hey", "morning", "afternoon", "evening"):
		return fmt.Sprintf(pick(greetingReplies), repoName)
	case containsAny(q, "thanks", "thank", "thx"):
		return pick(thanksReplies)
	case containsAny(q, "bye", "goodbye", "see you"):
		return pick(goodbyeReplies)
	default:
		return fmt.Sprintf(
			"I'm doing great! 😊 I'm here to help you understand the %s repository. What would you like to explore?",
			repoName)
	}
}

func containsAny(s string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}
