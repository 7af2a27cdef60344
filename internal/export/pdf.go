/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package export renders decks to external formats. Renderers consume the
// deck read-only and always use the resolved per-kite theme and duration,
// never the raw deck-level values, so hybrid decks export correctly.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"kitedeck/internal/domain"
	"kitedeck/internal/theme"
)

// PDF page size in points, 16:9 landscape.
const (
	pageW = 720.0
	pageH = 405.0
)

// PDFOptions controls PDF export behavior.
type PDFOptions struct {
	IncludeNotes bool  // append speaker notes under each kite footer
	Kites        []int // if empty, export all kites
}

// ExportDeckPDF renders the deck to a multi-page PDF at outPath, one page
// per kite. Blocks are drawn in ascending z-index (stable on ties) so paint
// order matches the editor.
func ExportDeckPDF(p domain.DeckPayload, outPath string, opt PDFOptions) error {
	hybrid := theme.IsHybrid(p.CurrentTheme)
	durations := theme.ResolveKiteDurations(p.TotalDurationMinutes, p.Kites, hybrid)

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: pageW, Ht: pageH},
		OrientationStr: "",
	})
	pdf.SetTitle(p.Title, true)
	pdf.SetAuthor("kitedeck", false)
	pdf.SetFont("Helvetica", "", 12)

	indexes := kiteIndexes(len(p.Kites), opt.Kites)
	if len(indexes) == 0 {
		// A deck with no kites still exports a title page.
		resolved := theme.ResolveForKite(p.CurrentTheme, "")
		pdf.AddPageFormat("", gofpdf.SizeType{Wd: pageW, Ht: pageH})
		setFillHex(pdf, resolved.Background)
		pdf.Rect(0, 0, pageW, pageH, "F")
		setTextHex(pdf, resolved.Heading)
		pdf.SetFont("Helvetica", "B", 28)
		pdf.Text(40, pageH/2, p.Title)
	}
	for _, ki := range indexes {
		if ki < 0 || ki >= len(p.Kites) {
			continue
		}
		k := p.Kites[ki]
		resolved := theme.ResolveForKite(p.CurrentTheme, k.ThemeOverride)
		pdf.AddPageFormat("", gofpdf.SizeType{Wd: pageW, Ht: pageH})

		// Background: per-kite color wins over the resolved theme.
		bg := k.BackgroundColor
		if bg == "" {
			bg = resolved.Background
		}
		setFillHex(pdf, bg)
		pdf.Rect(0, 0, pageW, pageH, "F")

		for _, b := range blocksByZ(k.ContentBlocks) {
			drawBlock(pdf, b, resolved)
		}

		footer := fmt.Sprintf("%s — kite %d/%d — %s", p.Title, ki+1, len(p.Kites), formatDuration(durations[ki]))
		setTextHex(pdf, resolved.Body)
		pdf.SetFont("Helvetica", "", 8)
		pdf.Text(12, pageH-10, footer)

		if opt.IncludeNotes && k.SpeakerNotes != "" {
			pdf.SetFont("Helvetica", "I", 7)
			pdf.Text(12, pageH-2, "Notes: "+k.SpeakerNotes)
		}
	}

	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// blocksByZ returns the blocks sorted by effective z-index ascending,
// preserving collection order on ties.
func blocksByZ(blocks []domain.ContentBlock) []domain.ContentBlock {
	out := append([]domain.ContentBlock(nil), blocks...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].EffectiveZ() < out[j].EffectiveZ() })
	return out
}

func drawBlock(pdf *gofpdf.Fpdf, b domain.ContentBlock, t theme.Theme) {
	x := b.Position.X / 100 * pageW
	y := b.Position.Y / 100 * pageH
	w := b.Position.Width / 100 * pageW
	h := b.Position.Height / 100 * pageH

	if b.Type == domain.BlockImage {
		// Raster fetching/decoding is out of scope; draw a labeled frame so
		// layout and layering stay inspectable.
		setDrawHex(pdf, t.Accent)
		pdf.SetLineWidth(0.5)
		pdf.Rect(x, y, w, h, "D")
		setTextHex(pdf, t.Body)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.Text(x+4, y+h/2, "[image]")
		return
	}

	size := float64(b.Style.FontSize)
	if size <= 0 {
		size = defaultFontSize(b.Type)
	}
	style := ""
	if b.Style.FontWeight == "bold" {
		style = "B"
	}
	color := b.Style.Color
	if color == "" {
		if b.Type == domain.BlockText {
			color = t.Body
		} else {
			color = t.Heading
		}
	}
	setTextHex(pdf, color)
	pdf.SetFont("Helvetica", style, size)

	align := "L"
	switch b.Style.TextAlign {
	case "center":
		align = "C"
	case "right":
		align = "R"
	}
	pdf.SetXY(x, y)
	pdf.MultiCell(w, size*1.2, b.Content, "", align, false)
}

func defaultFontSize(t domain.BlockType) float64 {
	switch t {
	case domain.BlockH1:
		return 48
	case domain.BlockH2:
		return 36
	case domain.BlockH3:
		return 28
	case domain.BlockH4:
		return 22
	default:
		return 18
	}
}

func formatDuration(seconds int) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	return fmt.Sprintf("%dm%02ds", seconds/60, seconds%60)
}

func kiteIndexes(total int, specific []int) []int {
	if len(specific) == 0 {
		out := make([]int, total)
		for i := range out {
			out[i] = i
		}
		return out
	}
	return specific
}

// parseHex converts #rrggbb to components; invalid input yields black.
func parseHex(s string) (int, int, int) {
	if len(s) == 7 && s[0] == '#' {
		r, err1 := strconv.ParseInt(s[1:3], 16, 32)
		g, err2 := strconv.ParseInt(s[3:5], 16, 32)
		b, err3 := strconv.ParseInt(s[5:7], 16, 32)
		if err1 == nil && err2 == nil && err3 == nil {
			return int(r), int(g), int(b)
		}
	}
	return 0, 0, 0
}

func setFillHex(pdf *gofpdf.Fpdf, s string) {
	r, g, b := parseHex(s)
	pdf.SetFillColor(r, g, b)
}

func setDrawHex(pdf *gofpdf.Fpdf, s string) {
	r, g, b := parseHex(s)
	pdf.SetDrawColor(r, g, b)
}

func setTextHex(pdf *gofpdf.Fpdf, s string) {
	r, g, b := parseHex(s)
	pdf.SetTextColor(r, g, b)
}
