package report

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/mini-diffusion/internal/agents"
	"github.com/talgya/mini-diffusion/internal/engine"
	"github.com/talgya/mini-diffusion/internal/entropy"
)

func TestMain(m *testing.M) {
	pterm.DisableStyling()
	m.Run()
}

func finishedRun(t *testing.T) *engine.Network {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	net, err := engine.New(engine.Params{EntityCount: 5, GroupCounts: [2]int{1, 4}, BPThreshold: 0.2, MPThreshold: 0.8}, entropy.NewSource(21), logger)
	require.NoError(t, err)
	require.NoError(t, net.Run(15, 5, 3))
	return net
}

func TestWrite(t *testing.T) {
	net := finishedRun(t)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, net, net.Diameter()))

	out := buf.String()
	for _, want := range []string{"Network", "Items", "Groups", "Propagation", "Residence", "Appreciated", "Entities holding"} {
		assert.Contains(t, out, want)
	}
}

func TestByGroup(t *testing.T) {
	net := finishedRun(t)
	groups := ByGroup(net)
	require.Len(t, groups, 2)
	assert.Equal(t, agents.GroupGeneralPublic, groups[0].Group)
	assert.Equal(t, 1, groups[0].Entities)
	assert.Equal(t, 4, groups[1].Entities)

	consults, appreciations := 0, 0
	for _, it := range net.Items() {
		consults += it.Consults()
		appreciations += it.Appreciations()
	}
	assert.Equal(t, consults, groups[0].Consults+groups[1].Consults)
	assert.Equal(t, appreciations, groups[0].Appreciations+groups[1].Appreciations)
}

func TestRate(t *testing.T) {
	assert.Equal(t, 0.0, GroupOutcome{}.Rate())
	assert.Equal(t, 0.5, GroupOutcome{Consults: 4, Appreciations: 2}.Rate())
}
