// Package insight produces the monthly "wrap": a short narrative generated
// from the month's submitted wins, with a fixed fallback whenever the
// generator is unavailable or misbehaves.
package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/winvault/internal/logging"
	"github.com/dmitrijs2005/winvault/internal/models"
	"google.golang.org/genai"
)

// StructuredGenerator returns a JSON document that satisfies schema.
type StructuredGenerator interface {
	GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) ([]byte, error)
}

// Fallback is returned whenever generation fails.
func Fallback() models.Insight {
	return models.Insight{
		MonthTitle:    "The Unstoppable Surge",
		ImpactSummary: "The team delivered consistent results across all strategic pillars.",
		TeamInsight:   "Your ability to pivot and focus on high-impact OKRs remains your greatest asset.",
		TopStrengths:  []string{"Agility", "Strategic Alignment", "Collaborative Spirit"},
	}
}

var schema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"monthTitle": {
			Type:        genai.TypeString,
			Description: "A creative name for this month's achievement vibe",
		},
		"impactSummary": {
			Type:        genai.TypeString,
			Description: "A high-level summary of the quantified impact",
		},
		"teamInsight": {
			Type:        genai.TypeString,
			Description: "A motivational insight about the team's performance",
		},
		"topStrengths": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "3 key areas where the team excelled",
			MinItems:    genai.Ptr[int64](3),
			MaxItems:    genai.Ptr[int64](3),
		},
	},
	Required: []string{"monthTitle", "impactSummary", "teamInsight", "topStrengths"},
}

const promptTemplate = `Analyze the following work achievements (wins) for the month of %s for Team 1 & Team 2 (Strategy & Plans context).
Generate a high-energy, motivational "Spotify Wrapped" style summary.
Provide a snappy title for the month, a concise summary of the collective impact, and a creative insight about the team's strengths.

Wins:
%s
`

type Generator struct {
	gen StructuredGenerator
	log logging.Logger
}

// New returns a Generator. A nil gen always yields the fallback.
func New(gen StructuredGenerator, log logging.Logger) *Generator {
	if log == nil {
		log = logging.NewNop()
	}
	return &Generator{gen: gen, log: log.With("component", "insight")}
}

// Digest renders one line per win: "- <title>: <impact> (<okr>) - <team>".
func Digest(wins []models.Win) string {
	lines := make([]string, 0, len(wins))
	for _, w := range wins {
		lines = append(lines, fmt.Sprintf("- %s: %s (%s) - %s", w.Title, w.Impact, w.OKRCategory, w.Team))
	}
	return strings.Join(lines, "\n")
}

// MonthName renders a YYYY-MM bucket as "October 2026". Unparseable input
// is returned unchanged.
func MonthName(month string) string {
	t, err := time.Parse(models.MonthLayout, month)
	if err != nil {
		return month
	}
	return t.Format("January 2006")
}

// Prompt is the full request text for the given wins and month.
func Prompt(wins []models.Win, month string) string {
	return fmt.Sprintf(promptTemplate, MonthName(month), Digest(wins))
}

// Generate summarizes wins for month. It never fails: any generator,
// transport or decoding problem is logged and the Fallback is returned.
func (g *Generator) Generate(ctx context.Context, wins []models.Win, month string) models.Insight {
	if g.gen == nil {
		g.log.Warn(ctx, "insight generator not configured, using fallback")
		return Fallback()
	}

	raw, err := g.gen.GenerateJSON(ctx, Prompt(wins, month), schema)
	if err != nil {
		g.log.Error(ctx, "AI insight failed", "month", month, "error", err)
		return Fallback()
	}

	var out models.Insight
	if err := json.Unmarshal(raw, &out); err != nil {
		g.log.Error(ctx, "AI insight returned invalid JSON", "month", month, "error", err)
		return Fallback()
	}
	out.TopStrengths = slices.Clip(out.TopStrengths)

	g.log.Info(ctx, "insight generated", "month", month, "wins", len(wins))
	return out
}
