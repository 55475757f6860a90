package report

import (
	"fmt"
	"strings"
	"time"

	"StructSnap/internal/domain/models"
)

// Renderer produces the markdown zone report for one symbol.
type Renderer struct{}

func NewRenderer() *Renderer { return &Renderer{} }

// Render writes the report for a full-variant snapshot. Sections degrade the
// same way the snapshot does: missing context lines print "n/a".
func (r *Renderer) Render(s *models.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s zone report\n\n", s.Symbol)
	fmt.Fprintf(&b, "- price: %s\n", fnum(s.Price))
	fmt.Fprintf(&b, "- as of: %s\n", s.AsOf.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "- generated: %s\n\n", s.GeneratedAt.UTC().Format(time.RFC3339))

	b.WriteString("## Context\n\n")
	fmt.Fprintf(&b, "- regime W1/D1: %s / %s\n", s.Range.RegimeW1, s.Range.RegimeD1)
	fmt.Fprintf(&b, "- volatility D1: %s\n", s.Range.VolFlagD1)
	fmt.Fprintf(&b, "- W1 range: %s .. %s (eq %s)\n",
		fnum(s.Range.W1Low), fnum(s.Range.W1High), fnum(s.Range.Equilibrium))
	fmt.Fprintf(&b, "- discount: %s .. %s, premium: %s .. %s\n",
		fnum(s.Range.DiscountBand.Low), fnum(s.Range.DiscountBand.High),
		fnum(s.Range.PremiumBand.Low), fnum(s.Range.PremiumBand.High))
	fmt.Fprintf(&b, "- EMA200 D1: %s, W1: %s\n", fptr(s.Range.EMA200D1), fptr(s.Range.EMA200W1))
	fmt.Fprintf(&b, "- ATR D1: %s, H4: %s\n\n", fptr(s.Range.ATRD1), fptr(s.Range.ATRH4))

	writeStructure(&b, "W1", s.Range.StructureW1)
	writeStructure(&b, "D1", s.Range.StructureD1)
	b.WriteString("\n")

	writeZoneTable(&b, "Supports", s.Supports)
	writeZoneTable(&b, "Resistances", s.Resistances)

	if len(s.WorkingZones) > 0 {
		b.WriteString("## Working zones\n\n")
		for _, wz := range s.WorkingZones {
			fmt.Fprintf(&b, "- %s (%s) %s .. %s around %s, strength %d\n",
				wz.Side, wz.FromTier, fnum(wz.Band.Low), fnum(wz.Band.High),
				fnum(wz.Center), wz.Strength)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "---\nfingerprint: %s\n", s.Fingerprint)
	return b.String()
}

func writeStructure(b *strings.Builder, label string, f models.StructureFlags) {
	fmt.Fprintf(b, "- structure %s: swing high %s, swing low %s", label,
		fptr(f.LastSwingHigh), fptr(f.LastSwingLow))
	if f.CloseBreakUp {
		b.WriteString(", broke up")
	}
	if f.CloseBreakDown {
		b.WriteString(", broke down")
	}
	b.WriteString("\n")
}

func writeZoneTable(b *strings.Builder, title string, zones []models.Zone) {
	fmt.Fprintf(b, "## %s\n\n", title)
	if len(zones) == 0 {
		b.WriteString("none\n\n")
		return
	}
	b.WriteString("| tier | core | buffer | strength | character | tests | react | fail | last test |\n")
	b.WriteString("|------|------|--------|----------|-----------|-------|-------|------|-----------|\n")
	for _, z := range zones {
		fmt.Fprintf(b, "| %s | %s .. %s | %s .. %s | %d | %s | %d | %.0f%% | %.0f%% | %s |\n",
			z.Tier,
			fnum(z.Core.Low), fnum(z.Core.High),
			fnum(z.Buffer.Low), fnum(z.Buffer.High),
			z.Strength, z.Character,
			z.Stats.Tests,
			z.Stats.ReactionRate*100, z.Stats.FailureRate*100,
			daysAgo(z.Stats.DaysSinceLastTest))
	}
	b.WriteString("\n")
}

func fnum(v float64) string {
	s := fmt.Sprintf("%.4f", v)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

func fptr(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fnum(*v)
}

func daysAgo(d *int) string {
	if d == nil {
		return "never"
	}
	if *d == 0 {
		return "today"
	}
	return fmt.Sprintf("%dd ago", *d)
}
