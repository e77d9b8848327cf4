// ABOUTME: Builds the extraction prompt sent to the completion model.
// ABOUTME: Includes fixed instructions, recent chat context, and the current message.
package extract

import (
	"strings"

	"github.com/harperreed/liftlog/internal/models"
)

// HistoryWindow is the number of trailing chat messages (five turns) included as context.
const HistoryWindow = 10

const instructions = `Extract workout information from this text. Return ONLY a JSON object with these fields:
{
  "exercise": "exercise name in lowercase",
  "sets": number or null,
  "reps": number or null,
  "weight": number in pounds or null
}
If a field is missing or unclear, use null.
IMPORTANT: The exercise name MUST be in lowercase letters.
For bodyweight/calisthenics exercises, set weight to 0.
Unless otherwise specified, the format the user says their info is weight, reps, sets.`

// BuildPrompt renders the prompt for one message and its preceding history.
func BuildPrompt(message string, history []models.ChatMessage) string {
	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n")

	if recent := tail(history, HistoryWindow); len(recent) > 0 {
		sb.WriteString("\nPrevious context:\n")
		for _, m := range recent {
			sb.WriteString(m.Speaker())
			sb.WriteString(": ")
			sb.WriteString(m.Content)
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\nCurrent message: ")
	sb.WriteString(message)
	return sb.String()
}

func tail(history []models.ChatMessage, n int) []models.ChatMessage {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
