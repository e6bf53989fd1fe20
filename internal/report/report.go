// Package report renders terminal tables from a finished run. It only reads
// the network's public outputs: summaries, history, entities and edges.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"

	"github.com/talgya/mini-diffusion/internal/agents"
	"github.com/talgya/mini-diffusion/internal/engine"
	"github.com/talgya/mini-diffusion/internal/info"
)

// GroupOutcome aggregates consults and appreciations by entity group.
type GroupOutcome struct {
	Group         agents.Group
	Entities      int
	Consults      int
	Appreciations int
}

// Rate returns appreciations per consult, or 0 without consults.
func (g GroupOutcome) Rate() float64 {
	if g.Consults == 0 {
		return 0
	}
	return float64(g.Appreciations) / float64(g.Consults)
}

// ByGroup splits the run's consult records by the consulting entity's group.
func ByGroup(net *engine.Network) []GroupOutcome {
	groups := map[agents.Group]*GroupOutcome{
		agents.GroupGeneralPublic:  {Group: agents.GroupGeneralPublic},
		agents.GroupMinorityPublic: {Group: agents.GroupMinorityPublic},
	}
	for _, e := range net.Entities() {
		groups[e.Group].Entities++
	}
	for _, it := range net.Items() {
		for id, reaction := range it.ConsultedBy {
			e := net.Entity(agents.EntityID(id))
			if e == nil {
				continue
			}
			g := groups[e.Group]
			g.Consults++
			if reaction == info.ReactionAppreciated {
				g.Appreciations++
			}
		}
	}
	return []GroupOutcome{*groups[agents.GroupGeneralPublic], *groups[agents.GroupMinorityPublic]}
}

// Write renders the overview, item, group and propagation tables.
func Write(w io.Writer, net *engine.Network, diameter int) error {
	overview := pterm.TableData{
		{"Entities", "Links", "Diameter", "Strongly connected", "Steps"},
		{
			humanize.Comma(int64(net.Size())),
			humanize.Comma(int64(len(net.Edges()))),
			strconv.Itoa(diameter),
			strconv.FormatBool(net.StronglyConnected()),
			humanize.Comma(int64(net.Steps())),
		},
	}

	items := pterm.TableData{{"Item", "Injected", "Residence", "Reached", "Consulted", "Appreciated", "Live"}}
	for _, s := range net.Summaries() {
		injected := "-"
		if s.InjectedAt >= 0 {
			injected = strconv.Itoa(s.InjectedAt)
		}
		items = append(items, []string{
			strconv.Itoa(int(s.ID)),
			injected,
			strconv.Itoa(s.Residence),
			strconv.Itoa(s.Reached),
			strconv.Itoa(s.Consults),
			strconv.Itoa(s.Appreciations),
			strconv.FormatBool(s.Live),
		})
	}

	groups := pterm.TableData{{"Group", "Entities", "Consults", "Appreciations", "Rate"}}
	for _, g := range ByGroup(net) {
		groups = append(groups, []string{
			string(g.Group),
			strconv.Itoa(g.Entities),
			humanize.Comma(int64(g.Consults)),
			humanize.Comma(int64(g.Appreciations)),
			fmt.Sprintf("%.2f", g.Rate()),
		})
	}

	steps := pterm.TableData{{"Step", "Visible", "Entities holding"}}
	for _, snap := range net.History() {
		visible, holders := 0, 0
		for _, ids := range snap.Visible {
			visible += len(ids)
			if len(ids) > 0 {
				holders++
			}
		}
		steps = append(steps, []string{
			strconv.Itoa(snap.Step),
			humanize.Comma(int64(visible)),
			strconv.Itoa(holders),
		})
	}

	for _, section := range []struct {
		title string
		data  pterm.TableData
	}{
		{"Network", overview},
		{"Items", items},
		{"Groups", groups},
		{"Propagation", steps},
	} {
		table, err := pterm.DefaultTable.WithHasHeader().WithData(section.data).Srender()
		if err != nil {
			return fmt.Errorf("render %s table: %w", section.title, err)
		}
		if _, err := fmt.Fprintf(w, "%s\n%s\n\n", pterm.Bold.Sprint(section.title), table); err != nil {
			return err
		}
	}
	return nil
}
