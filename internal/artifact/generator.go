// internal/artifact/generator.go
package artifact

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fogleman/gg"

	"github.com/chideraz/country-currency-api/internal/domain"
	"github.com/chideraz/country-currency-api/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

const (
	imageWidth  = 800
	imageHeight = 500
)

// Generator renders the post-refresh summary card and caches it at a fixed
// path, overwriting any prior artifact.
type Generator struct {
	path string
}

// NewGenerator builds a Generator writing to the given cache path.
func NewGenerator(path string) *Generator {
	return &Generator{path: path}
}

// Path returns the cache location of the rendered artifact.
func (g *Generator) Path() string {
	return g.path
}

// Render draws the summary card and returns it as PNG bytes.
func (g *Generator) Render(total int64, topFive []domain.Country, refreshedAt time.Time) ([]byte, error) {
	dc := gg.NewContext(imageWidth, imageHeight)

	// Background and header band
	dc.SetRGB(0.97, 0.97, 0.99)
	dc.Clear()
	dc.SetRGB(0.12, 0.12, 0.25)
	dc.DrawRectangle(0, 0, imageWidth, 70)
	dc.Fill()

	dc.SetRGB(1, 1, 1)
	dc.DrawString("Country Insights Summary", 20, 30)
	dc.DrawString(fmt.Sprintf("Total countries: %d", total), 20, 50)
	dc.DrawString(fmt.Sprintf("Last refreshed: %s", refreshedAt.UTC().Format(time.RFC3339)), 340, 50)

	dc.SetRGB(0.12, 0.12, 0.25)
	dc.DrawString("Top 5 by estimated GDP (USD)", 20, 100)

	if len(topFive) == 0 {
		dc.DrawString("No GDP estimates available.", 20, 130)
	}

	// Bars scaled against the leading country's estimate.
	y := 140.0
	for i, c := range topFive {
		gdp := c.EstimatedGDP.Decimal
		width := 500.0
		if i > 0 && topFive[0].EstimatedGDP.Decimal.IsPositive() {
			ratio, _ := gdp.Div(topFive[0].EstimatedGDP.Decimal).Float64()
			width *= ratio
		}
		if width < 2 {
			width = 2
		}

		dc.SetRGB(0.25, 0.45, 0.80)
		dc.DrawRectangle(20, y, width, 24)
		dc.Fill()

		dc.SetRGB(0.12, 0.12, 0.25)
		dc.DrawString(fmt.Sprintf("%d. %s (%s)", i+1, c.Name, gdp.Round(2).String()), 20, y-6)
		y += 62
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode summary image: %w", err)
	}
	return buf.Bytes(), nil
}

// Generate renders the summary image and writes it to the cache path.
// Failures here never undo a committed refresh; the caller just logs them.
func (g *Generator) Generate(total int64, topFive []domain.Country, refreshedAt time.Time) error {
	data, err := g.Render(total, topFive, refreshedAt)
	if err != nil {
		return err
	}

	dir := filepath.Dir(g.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create artifact directory '%s': %w", dir, err)
	}

	// Write to a temp file first so readers never see a half-written image.
	tmp := g.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write summary image: %w", err)
	}
	if err := os.Rename(tmp, g.path); err != nil {
		return fmt.Errorf("failed to move summary image into place: %w", err)
	}
	customLog.Printf("Artifact: Summary image written to %s", g.path)
	return nil
}
