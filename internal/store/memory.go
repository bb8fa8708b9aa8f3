// Package store implements the tabular persistence the pipeline stages read
// from and write to: Postgres for real runs, Memory for tests and dry runs.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/albapepper/scoracle-cricket/internal/model"
	"github.com/albapepper/scoracle-cricket/internal/parse"
)

type replacementKey struct {
	matchID int64
	out, in string
}

type playerKey struct {
	name, team string
}

type goldRows struct {
	summary *model.MatchSummary
	innings map[int]model.InningsSummary
	batting map[playerKey]model.BattingStat
	bowling map[playerKey]model.BowlingStat
	// insertion order per table for stable reads
	battingOrder []playerKey
	bowlingOrder []playerKey
}

// Memory keeps every medallion table in maps. It is safe for concurrent use
// and honors the same key and replace semantics as Postgres.
type Memory struct {
	mu sync.RWMutex

	rawMeta   map[int64]model.RawMatchMetadata
	rawEvents map[int64][]model.RawDelivery

	meta         map[int64]model.MatchMetadata
	replacements map[replacementKey]model.PlayerReplacement
	replOrder    []replacementKey
	deliveries   map[int64][]model.Delivery

	gold map[int64]*goldRows
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		rawMeta:      make(map[int64]model.RawMatchMetadata),
		rawEvents:    make(map[int64][]model.RawDelivery),
		meta:         make(map[int64]model.MatchMetadata),
		replacements: make(map[replacementKey]model.PlayerReplacement),
		deliveries:   make(map[int64][]model.Delivery),
		gold:         make(map[int64]*goldRows),
	}
}

// --------------------------------------------------------------------------
// Bronze
// --------------------------------------------------------------------------

// InsertRawMetadata stores a scraped metadata record, replacing any earlier
// capture of the same match.
func (m *Memory) InsertRawMetadata(_ context.Context, md model.RawMatchMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rawMeta[md.MatchID] = md
	return nil
}

// InsertRawDeliveries stores a match's scraped rows. Re-importing a match
// replaces its earlier capture.
func (m *Memory) InsertRawDeliveries(_ context.Context, matchID int64, rows []model.RawDelivery) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rawEvents[matchID] = append([]model.RawDelivery(nil), rows...)
	return nil
}

func (m *Memory) RawMetadata(_ context.Context) ([]model.RawMatchMetadata, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.RawMatchMetadata, 0, len(m.rawMeta))
	for _, id := range sortedKeys(m.rawMeta) {
		out = append(out, m.rawMeta[id])
	}
	return out, nil
}

func (m *Memory) RawDeliveries(_ context.Context, matchIDs []int64) ([]model.RawDelivery, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := matchIDs
	if len(ids) == 0 {
		ids = sortedKeys(m.rawEvents)
	}
	var out []model.RawDelivery
	for _, id := range ids {
		rows := append([]model.RawDelivery(nil), m.rawEvents[id]...)
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Seq < rows[j].Seq })
		out = append(out, rows...)
	}
	return out, nil
}

// --------------------------------------------------------------------------
// Silver
// --------------------------------------------------------------------------

func (m *Memory) UpsertMetadata(_ context.Context, md model.MatchMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	md.Debutants = append([]string(nil), md.Debutants...)
	m.meta[md.MatchID] = md
	return nil
}

func (m *Memory) InsertReplacements(_ context.Context, rows []model.PlayerReplacement) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inserted := 0
	for _, r := range rows {
		k := replacementKey{r.MatchID, r.PlayerOut, r.PlayerIn}
		if _, exists := m.replacements[k]; exists {
			continue
		}
		m.replacements[k] = r
		m.replOrder = append(m.replOrder, k)
		inserted++
	}
	return inserted, nil
}

// Replacements returns every stored replacement in insertion order.
func (m *Memory) Replacements() []model.PlayerReplacement {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.PlayerReplacement, 0, len(m.replOrder))
	for _, k := range m.replOrder {
		out = append(out, m.replacements[k])
	}
	return out
}

func (m *Memory) InningsTeams(_ context.Context) (map[int64]model.InningsTeams, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[int64]model.InningsTeams, len(m.meta))
	for id, md := range m.meta {
		out[id] = md.InningsTeams()
	}
	return out, nil
}

func (m *Memory) ReplaceDeliveries(_ context.Context, matchID int64, rows []model.Delivery) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deliveries[matchID] = append([]model.Delivery(nil), rows...)
	return nil
}

func (m *Memory) MatchIDs(_ context.Context) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedKeys(m.meta), nil
}

func (m *Memory) Metadata(_ context.Context, matchID int64) (model.MatchMetadata, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	md, ok := m.meta[matchID]
	return md, ok, nil
}

// Deliveries returns a match's silver rows ordered by absolute ball, with
// unparseable notation last and capture order breaking ties.
func (m *Memory) Deliveries(_ context.Context, matchID int64) ([]model.Delivery, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := append([]model.Delivery(nil), m.deliveries[matchID]...)
	sort.SliceStable(rows, func(i, j int) bool {
		if x, y := rows[i].InningsNumber, rows[j].InningsNumber; x != y {
			// Unknown innings is NULL in Postgres and sorts last.
			return y == model.InningsUnknown || (x != model.InningsUnknown && x < y)
		}
		a, b := rows[i].BallNumber, rows[j].BallNumber
		switch {
		case a == nil && b == nil:
			return rows[i].Seq < rows[j].Seq
		case a == nil:
			return false
		case b == nil:
			return true
		case *a != *b:
			return *a < *b
		default:
			return rows[i].Seq < rows[j].Seq
		}
	})
	return rows, nil
}

// --------------------------------------------------------------------------
// Gold
// --------------------------------------------------------------------------

func (m *Memory) WriteGold(_ context.Context, set model.GoldSet, mode model.GoldWriteMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.gold[set.MatchID]
	if !ok || mode == model.GoldReplace {
		g = &goldRows{
			innings: make(map[int]model.InningsSummary),
			batting: make(map[playerKey]model.BattingStat),
			bowling: make(map[playerKey]model.BowlingStat),
		}
		m.gold[set.MatchID] = g
	}

	if set.Summary != nil {
		s := *set.Summary
		g.summary = &s
	}
	for _, in := range set.Innings {
		if _, exists := g.innings[in.InningsNumber]; !exists {
			g.innings[in.InningsNumber] = in
		}
	}
	for _, b := range set.Batting {
		k := playerKey{b.PlayerName, b.Team}
		if _, exists := g.batting[k]; !exists {
			g.batting[k] = b
			g.battingOrder = append(g.battingOrder, k)
		}
	}
	for _, b := range set.Bowling {
		k := playerKey{b.PlayerName, b.Team}
		if _, exists := g.bowling[k]; !exists {
			g.bowling[k] = b
			g.bowlingOrder = append(g.bowlingOrder, k)
		}
	}
	return nil
}

// Ping always succeeds.
func (m *Memory) Ping(context.Context) error { return nil }

// Matches lists match summaries newest first; undated matches sort last.
func (m *Memory) Matches(_ context.Context, limit, offset int) ([]model.MatchSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.MatchSummary
	for _, g := range m.gold {
		if g.summary != nil {
			out = append(out, *g.summary)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].MatchDate, out[j].MatchDate
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.After(*b)
		case (a == nil) != (b == nil):
			return a != nil
		}
		return out[i].MatchID > out[j].MatchID
	})
	return page(out, limit, offset), nil
}

func (m *Memory) MatchSummary(_ context.Context, matchID int64) (model.MatchSummary, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.gold[matchID]
	if !ok || g.summary == nil {
		return model.MatchSummary{}, false, nil
	}
	return *g.summary, true, nil
}

func (m *Memory) Innings(_ context.Context, matchID int64) ([]model.InningsSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.gold[matchID]
	if !ok {
		return nil, nil
	}
	out := make([]model.InningsSummary, 0, len(g.innings))
	for _, n := range sortedKeys(g.innings) {
		out = append(out, g.innings[n])
	}
	return out, nil
}

func (m *Memory) Batting(_ context.Context, matchID int64) ([]model.BattingStat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.gold[matchID]
	if !ok {
		return nil, nil
	}
	out := make([]model.BattingStat, 0, len(g.battingOrder))
	for _, k := range g.battingOrder {
		out = append(out, g.batting[k])
	}
	return out, nil
}

func (m *Memory) Bowling(_ context.Context, matchID int64) ([]model.BowlingStat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.gold[matchID]
	if !ok {
		return nil, nil
	}
	out := make([]model.BowlingStat, 0, len(g.bowlingOrder))
	for _, k := range g.bowlingOrder {
		out = append(out, g.bowling[k])
	}
	return out, nil
}

// BattingLeaders aggregates careers the way mv_batting_leaders does.
func (m *Memory) BattingLeaders(_ context.Context, limit int) ([]model.BattingLeader, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	byName := make(map[string]*model.BattingLeader)
	for _, g := range m.gold {
		for _, b := range g.batting {
			l := byName[b.PlayerName]
			if l == nil {
				l = &model.BattingLeader{PlayerName: b.PlayerName}
				byName[b.PlayerName] = l
			}
			l.Matches++
			l.Runs += b.RunsScored
			l.BallsFaced += b.BallsFaced
			l.Fours += b.Fours
			l.Sixes += b.Sixes
			l.HighScore = max(l.HighScore, b.RunsScored)
			if b.IsCentury {
				l.Centuries++
			} else if b.IsFifty {
				l.Fifties++
			}
		}
	}
	out := make([]model.BattingLeader, 0, len(byName))
	for _, l := range byName {
		l.StrikeRate = parse.PerBalls(l.Runs, l.BallsFaced, 100)
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Runs != out[j].Runs {
			return out[i].Runs > out[j].Runs
		}
		return out[i].PlayerName < out[j].PlayerName
	})
	return page(out, limit, 0), nil
}

// BowlingLeaders aggregates careers the way mv_bowling_leaders does.
func (m *Memory) BowlingLeaders(_ context.Context, limit int) ([]model.BowlingLeader, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	byName := make(map[string]*model.BowlingLeader)
	for _, g := range m.gold {
		for _, b := range g.bowling {
			l := byName[b.PlayerName]
			if l == nil {
				l = &model.BowlingLeader{PlayerName: b.PlayerName}
				byName[b.PlayerName] = l
			}
			l.Matches++
			l.Wickets += b.WicketsTaken
			l.BallsBowled += b.BallsBowled
			l.RunsConceded += b.RunsConceded
			l.Maidens += b.Maidens
			if b.IsFiveWicket {
				l.FiveWickets++
			}
		}
	}
	out := make([]model.BowlingLeader, 0, len(byName))
	for _, l := range byName {
		l.EconomyRate = parse.PerBalls(l.RunsConceded, l.BallsBowled, parse.BallsPerOver)
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Wickets != out[j].Wickets {
			return out[i].Wickets > out[j].Wickets
		}
		if out[i].EconomyRate != out[j].EconomyRate {
			return out[i].EconomyRate < out[j].EconomyRate
		}
		return out[i].PlayerName < out[j].PlayerName
	})
	return page(out, limit, 0), nil
}

func sortedKeys[K int64 | int, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func page[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
