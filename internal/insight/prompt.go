package insight

import (
	"fmt"
	"strings"

	"github.com/MyAgentHubs/logifyer/internal/db"
)

const (
	analystSystem = "You are a relationship analyst providing helpful insights based on logged incidents. " +
		"Be concise, direct, and actionable."
	coachSystem = "You are a communication coach helping users prepare for difficult conversations. " +
		"Focus on non-violent communication and constructive dialogue."
)

// recentLimit caps how many incidents are quoted in the analysis prompt.
const recentLimit = 20

func signedPoints(p int) string {
	if p > 0 {
		return fmt.Sprintf("+%d", p)
	}
	return fmt.Sprintf("%d", p)
}

// analysisPrompt expects incidents newest first.
func analysisPrompt(name string, score int, incidents []db.Incident) string {
	var negative, positive int
	for _, inc := range incidents {
		switch {
		case inc.Points < 0:
			negative++
		case inc.Points > 0:
			positive++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this relationship data for %s:\n\n", name)
	fmt.Fprintf(&b, "Current Score: %d/100\n", score)
	fmt.Fprintf(&b, "Total Incidents: %d\n", len(incidents))
	fmt.Fprintf(&b, "Negative: %d\n", negative)
	fmt.Fprintf(&b, "Positive: %d\n\n", positive)
	b.WriteString("Recent incidents:\n")
	for i, inc := range incidents {
		if i == recentLimit {
			break
		}
		fmt.Fprintf(&b, "%s (%spts)", inc.CategoryName, signedPoints(inc.Points))
		if inc.Note != nil {
			fmt.Fprintf(&b, " - %s", *inc.Note)
		}
		b.WriteString("\n")
	}
	b.WriteString(`
Provide a brief analysis (3-4 sentences) covering:
1. Overall pattern or trend
2. One key red flag or positive sign
3. One actionable recommendation

Be direct, helpful, and empathetic. Don't use overly clinical language.`)
	return b.String()
}

func scriptPrompt(name string, incidents []db.Incident) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Help someone prepare for a difficult conversation with %s.\n\n", name)
	b.WriteString("Issues to address:\n")
	for i, inc := range incidents {
		major := ""
		if inc.IsMajor {
			major = " (MAJOR)"
		}
		note := "No details"
		if inc.Note != nil {
			note = *inc.Note
		}
		fmt.Fprintf(&b, "%d. %s%s: %s [%s]\n", i+1, inc.CategoryName, major, note, inc.Timestamp.Format("2006-01-02"))
	}
	b.WriteString(`
Provide:
1. A calm, non-accusatory opening statement (2-3 sentences)
2. Key talking points using "I feel" statements
3. What specific change or outcome to request
4. How to handle if they get defensive

Keep it constructive, empathetic, and focused on improvement. Format clearly with sections.`)
	return b.String()
}
