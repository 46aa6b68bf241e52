package session

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/AndrewDeWitt/GrimLog-sub001/internal/briefing"
	"github.com/AndrewDeWitt/GrimLog-sub001/internal/data"
	"github.com/AndrewDeWitt/GrimLog-sub001/internal/game"
)

// stateSource adapts the in-memory projection and reference library to the
// briefing.Source reads. Bundle assembly runs outside the session's critical
// section, so every fetch takes the session mutex for the duration of its
// read.
type stateSource struct {
	s *Session
}

func (src *stateSource) Snapshot(ctx context.Context, sessionID string) (briefing.Snapshot, error) {
	src.s.mu.Lock()
	defer src.s.mu.Unlock()

	st := src.s.state
	return briefing.Snapshot{
		SessionID:   sessionID,
		Round:       st.Round,
		Phase:       st.Phase,
		PlayerTurn:  st.PlayerTurn,
		FirstPlayer: st.FirstPlayer,
		AttackerCP:  st.Attacker.CP,
		DefenderCP:  st.Defender.CP,
		AttackerVP:  st.Attacker.VP,
		DefenderVP:  st.Defender.VP,
		Mission:     st.Mission,
	}, nil
}

func (src *stateSource) Units(ctx context.Context, sessionID string) ([]briefing.UnitHealth, error) {
	src.s.mu.Lock()
	defer src.s.mu.Unlock()
	return src.unitsLocked(), nil
}

// unitsLocked reads the roster. Callers hold the session mutex.
func (src *stateSource) unitsLocked() []briefing.UnitHealth {
	var out []briefing.UnitHealth
	for _, p := range []game.Player{game.Attacker, game.Defender} {
		ps := src.s.state.State(p)
		for _, u := range ps.Units {
			out = append(out, briefing.UnitHealth{
				Player:    p,
				ID:        u.ID,
				Name:      u.Name,
				Wounds:    u.Wounds,
				MaxWounds: u.MaxWounds,
				Models:    u.Models,
				Destroyed: u.Destroyed,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Player != out[j].Player {
			return out[i].Player == game.Attacker
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (src *stateSource) UnitNames(ctx context.Context, sessionID string) ([]string, error) {
	src.s.mu.Lock()
	defer src.s.mu.Unlock()

	units := src.unitsLocked()
	names := make([]string, 0, len(units))
	for _, u := range units {
		names = append(names, u.Name)
	}
	return names, nil
}

func (src *stateSource) Objectives(ctx context.Context, sessionID string) ([]game.ObjectiveMarker, error) {
	src.s.mu.Lock()
	defer src.s.mu.Unlock()

	st := src.s.state
	out := make([]game.ObjectiveMarker, 0, len(st.Objectives))
	for _, m := range st.Objectives {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (src *stateSource) Secondaries(ctx context.Context, sessionID string) ([]briefing.SecondaryDetail, error) {
	src.s.mu.Lock()
	defer src.s.mu.Unlock()

	var out []briefing.SecondaryDetail
	for _, p := range []game.Player{game.Attacker, game.Defender} {
		ps := src.s.state.State(p)
		for _, name := range ps.ActiveSecondaries {
			d := briefing.SecondaryDetail{Player: p, Name: name, MaxVP: data.DefaultMaxVP}
			if prog, ok := ps.Secondaries[name]; ok {
				d.VPScored = prog.VPScored
			}
			if sec, ok := src.s.lib.Secondary(name); ok {
				d.MaxVP = sec.MaxVPOrDefault()
			}
			out = append(out, d)
		}
	}
	return out, nil
}

func (src *stateSource) Transcripts(ctx context.Context, sessionID string, beforeSequence, limit int) ([]game.Transcript, error) {
	src.s.mu.Lock()
	defer src.s.mu.Unlock()
	return src.s.state.RecentTranscripts(beforeSequence, limit), nil
}

// Datasheets returns the reference stat blocks for datasheets the fielded
// units reference, plus a rendered rules digest for the full tier.
func (src *stateSource) Datasheets(ctx context.Context, sessionID string) ([]data.Datasheet, string, error) {
	src.s.mu.Lock()
	defer src.s.mu.Unlock()

	seen := make(map[string]bool)
	var sheets []data.Datasheet
	for _, p := range []game.Player{game.Attacker, game.Defender} {
		for _, u := range src.s.state.State(p).Units {
			if u.Datasheet == "" || seen[u.Datasheet] {
				continue
			}
			seen[u.Datasheet] = true
			if ds, ok := src.s.lib.Datasheet(u.Datasheet); ok {
				sheets = append(sheets, *ds)
			}
		}
	}
	sort.Slice(sheets, func(i, j int) bool { return sheets[i].ID < sheets[j].ID })
	return sheets, src.rulesDigest(), nil
}

// rulesDigest summarizes the secondaries in play so the model does not have
// to guess card semantics. Callers hold the session mutex.
func (src *stateSource) rulesDigest() string {
	var b strings.Builder
	for _, p := range []game.Player{game.Attacker, game.Defender} {
		ps := src.s.state.State(p)
		for _, name := range ps.ActiveSecondaries {
			sec, ok := src.s.lib.Secondary(name)
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "%s (%s): max %dVP", sec.Name, p, sec.MaxVPOrDefault())
			if turnCap := sec.TurnCap(ps.MissionMode); turnCap > 0 {
				fmt.Fprintf(&b, ", %dVP per turn", turnCap)
			}
			if sec.Rounds.MinRound > 0 {
				fmt.Fprintf(&b, ", scores from round %d", sec.Rounds.MinRound)
			}
			b.WriteString("\n")
		}
	}
	return strings.TrimSpace(b.String())
}
