// Package bronze imports saved Cricinfo pages into the raw landing tables.
//
// Two page kinds are understood: a ball-by-ball commentary page for one
// innings, and the scorecard page whose match-details table carries the
// metadata key/values. Parsing never consults the network.
package bronze

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/albapepper/scoracle-cricket/internal/model"
	"github.com/albapepper/scoracle-cricket/internal/parse"
)

const (
	// commentarySelector matches one delivery block of the commentary feed.
	commentarySelector = "div.ds-text-tight-m.ds-font-regular.ds-flex.ds-px-3.ds-py-2.ds-items-start.ds-select-none"
	// detailsSelector matches the match-details table of the scorecard.
	detailsSelector = "table.ds-w-full.ds-table.ds-table-sm.ds-table-auto"

	// A delivery block renders at least seven text cells:
	// ball, (spacer), event, score, (spacer), commentary, commentary fallback.
	minCommentaryColumns = 7
)

// ParseCommentary extracts one RawDelivery per commentary block, in page
// order. innings is the batting side label the page was saved under. A page
// whose blocks never reach the full column layout yields no rows.
func ParseCommentary(r io.Reader, matchID int64, innings string) ([]model.RawDelivery, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse commentary html: %w", err)
	}

	var blocks [][]string
	width := 0
	doc.Find(commentarySelector).Each(func(_ int, s *goquery.Selection) {
		var cols []string
		s.Find("span").Each(func(_ int, span *goquery.Selection) {
			cols = append(cols, strippedText(span, ""))
		})
		s.Find("p").Each(func(_ int, p *goquery.Selection) {
			cols = append(cols, strippedText(p, ""))
		})
		width = max(width, len(cols))
		blocks = append(blocks, cols)
	})
	if width < minCommentaryColumns {
		return nil, nil
	}

	rows := make([]model.RawDelivery, 0, len(blocks))
	for i, cols := range blocks {
		commentary := column(cols, 5)
		if commentary == "" {
			commentary = column(cols, 6)
		}
		event := column(cols, 2)
		bowler, batsman := parse.BowlerBatsman(event)
		rows = append(rows, model.RawDelivery{
			MatchID:        matchID,
			Seq:            i,
			InningsLabel:   innings,
			Ball:           column(cols, 0),
			EventText:      event,
			ScoreText:      column(cols, 3),
			BowlerName:     bowler,
			BatsmanName:    batsman,
			CommentaryText: commentary,
		})
	}
	return rows, nil
}

// ParseScorecard reads the match-details table. Two-cell rows are key/value
// pairs; a single-cell row is the venue. Unknown keys are ignored. A page
// without the table yields metadata holding only the match id.
func ParseScorecard(r io.Reader, matchID int64) (model.RawMatchMetadata, error) {
	md := model.RawMatchMetadata{MatchID: matchID}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return md, fmt.Errorf("parse scorecard html: %w", err)
	}

	table := doc.Find(detailsSelector).First()
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		switch cells.Length() {
		case 2:
			key := strippedText(cells.Eq(0), "")
			value := strippedText(cells.Eq(1), " ")
			assign(&md, key, value)
		case 1:
			md.Venue = strippedText(cells, "")
		}
	})
	return md, nil
}

func assign(md *model.RawMatchMetadata, key, value string) {
	k := strings.ToLower(key)
	switch {
	case k == "venue":
		md.Venue = value
	case k == "series":
		md.Series = value
	case k == "season":
		md.Season = value
	case k == "toss":
		md.Toss = value
	case k == "umpires":
		md.Umpires = value
	case k == "tv umpire":
		md.TVUmpire = value
	case k == "reserve umpire":
		md.ReserveUmpire = value
	case k == "match referee":
		md.MatchReferee = value
	case k == "match days":
		md.MatchDays = value
	case k == "player of the match":
		md.PlayerOfMatch = value
	case k == "player replacements":
		md.PlayerReplacements = value
	case strings.HasPrefix(k, "hours of play"):
		md.HoursOfPlay = value
	case k == "points":
		md.Points = value
	case strings.HasSuffix(k, "debut"):
		md.Debuts = value
	}
}

// strippedText joins the trimmed, non-empty text nodes under s with sep.
func strippedText(s *goquery.Selection, sep string) string {
	return strings.Join(textParts(s), sep)
}

func textParts(s *goquery.Selection) []string {
	var parts []string
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		switch goquery.NodeName(c) {
		case "#text":
			if t := strings.TrimSpace(c.Text()); t != "" {
				parts = append(parts, t)
			}
		case "#comment", "script", "style":
		default:
			parts = append(parts, textParts(c)...)
		}
	})
	return parts
}

func column(cols []string, i int) string {
	if i < len(cols) {
		return cols[i]
	}
	return ""
}

// --------------------------------------------------------------------------
// Import
// --------------------------------------------------------------------------

// Store receives raw rows. Re-importing a match replaces its deliveries.
type Store interface {
	InsertRawMetadata(ctx context.Context, md model.RawMatchMetadata) error
	InsertRawDeliveries(ctx context.Context, matchID int64, rows []model.RawDelivery) error
}

// InningsPage is a saved commentary page and the batting side it shows.
type InningsPage struct {
	Team string
	Path string
}

// Match names the saved pages of one match.
type Match struct {
	MatchID   int64
	Scorecard string
	First     InningsPage
	Second    InningsPage
}

// Import parses the pages of m and lands them in bronze. Deliveries of both
// innings share one sequence, first innings first.
func Import(ctx context.Context, st Store, m Match, logger *slog.Logger) (int, error) {
	md := model.RawMatchMetadata{MatchID: m.MatchID}
	if m.Scorecard != "" {
		var err error
		if md, err = parseFile(m.Scorecard, func(r io.Reader) (model.RawMatchMetadata, error) {
			return ParseScorecard(r, m.MatchID)
		}); err != nil {
			return 0, err
		}
	}
	md.FirstInnings = m.First.Team
	md.SecondInnings = m.Second.Team

	var rows []model.RawDelivery
	for _, page := range []InningsPage{m.First, m.Second} {
		if page.Path == "" {
			continue
		}
		got, err := parseFile(page.Path, func(r io.Reader) ([]model.RawDelivery, error) {
			return ParseCommentary(r, m.MatchID, page.Team)
		})
		if err != nil {
			return 0, err
		}
		if len(got) == 0 {
			logger.Warn("No deliveries on commentary page", "match_id", m.MatchID, "file", page.Path)
		}
		for _, d := range got {
			d.Seq = len(rows)
			rows = append(rows, d)
		}
	}

	if err := st.InsertRawMetadata(ctx, md); err != nil {
		return 0, fmt.Errorf("insert raw metadata %d: %w", m.MatchID, err)
	}
	if err := st.InsertRawDeliveries(ctx, m.MatchID, rows); err != nil {
		return 0, fmt.Errorf("insert raw deliveries %d: %w", m.MatchID, err)
	}
	logger.Info("Imported match", "match_id", m.MatchID, "deliveries", len(rows),
		"first", md.FirstInnings, "second", md.SecondInnings)
	return len(rows), nil
}

func parseFile[T any](path string, fn func(io.Reader) (T, error)) (T, error) {
	f, err := os.Open(path)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	v, err := fn(f)
	if err != nil {
		return v, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}
