package navigation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lamitex/lamitex-crm/internal/chat"
	"github.com/lamitex/lamitex-crm/internal/conversation"
	"github.com/lamitex/lamitex-crm/internal/leads"
	"github.com/lamitex/lamitex-crm/internal/prospecting"
	"github.com/lamitex/lamitex-crm/internal/tenancy"
)

type echoSender struct{}

func (e echoSender) Send(_ context.Context, turn conversation.Turn) (string, error) {
	return "eco: " + turn.Text, nil
}

type fixedSearcher struct{}

func (fixedSearcher) Search(context.Context, string, string) (prospecting.SearchResult, error) {
	return prospecting.SearchResult{
		Text:      "ok",
		Prospects: []prospecting.Prospect{{CompanyName: "Bolsas Sul", Address: "Rua C, 3"}},
	}, nil
}

func testDeps(created *int) Dependencies {
	return Dependencies{
		Searcher: fixedSearcher{},
		NewSender: func() chat.Sender {
			*created++
			return echoSender{}
		},
	}
}

func TestShell_StartsOnDashboard(t *testing.T) {
	created := 0
	shell := NewShell("ws", leads.NewInMemoryRepository(), testDeps(&created))

	assert.Equal(t, ViewDashboard, shell.Active())
	_, err := shell.Board()
	assert.ErrorIs(t, err, ErrViewNotMounted)
	_, err = shell.Chat()
	assert.ErrorIs(t, err, ErrViewNotMounted)
}

func TestShell_NavigateMountsFreshState(t *testing.T) {
	created := 0
	shell := NewShell("ws", leads.NewInMemoryRepository(leads.SeedLeads()...), testDeps(&created))
	ctx := context.Background()

	changed, err := shell.Navigate(ViewChat)
	require.NoError(t, err)
	assert.True(t, changed)

	panel, err := shell.Chat()
	require.NoError(t, err)
	_, err = panel.SendText(ctx, "Oi")
	require.NoError(t, err)
	assert.Len(t, panel.Snapshot().Messages, 2)

	changed, err = shell.Navigate(ViewChat)
	require.NoError(t, err)
	assert.False(t, changed)
	same, _ := shell.Chat()
	assert.Same(t, panel, same)

	_, err = shell.Navigate(ViewKanban)
	require.NoError(t, err)
	_, err = shell.Chat()
	assert.ErrorIs(t, err, ErrViewNotMounted)

	_, err = shell.Navigate(ViewChat)
	require.NoError(t, err)
	fresh, err := shell.Chat()
	require.NoError(t, err)
	assert.Empty(t, fresh.Snapshot().Messages)
	assert.Equal(t, 2, created)
}

func TestShell_ProspectingPromotesIntoSharedLeads(t *testing.T) {
	created := 0
	shell := NewShell("ws", leads.NewInMemoryRepository(leads.SeedLeads()...), testDeps(&created))
	ctx := context.Background()

	_, err := shell.Navigate(ViewProspecting)
	require.NoError(t, err)
	session, err := shell.Prospecting()
	require.NoError(t, err)

	_, err = session.Search(ctx, "Fábrica de Bolsas", "")
	require.NoError(t, err)
	_, err = session.Promote(ctx, "Bolsas Sul-Rua C, 3")
	require.NoError(t, err)

	_, err = shell.Navigate(ViewKanban)
	require.NoError(t, err)
	board, err := shell.Board()
	require.NoError(t, err)
	cols, err := board.Columns(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, cols[0].Count)

	_, err = shell.Navigate(ViewProspecting)
	require.NoError(t, err)
	session, _ = shell.Prospecting()
	assert.Empty(t, session.View().Prospects)
}

func TestShell_DegradedChatWithoutSender(t *testing.T) {
	shell := NewShell("ws", leads.NewInMemoryRepository(), Dependencies{})
	_, err := shell.Navigate(ViewChat)
	require.NoError(t, err)

	panel, err := shell.Chat()
	require.NoError(t, err)
	assert.True(t, panel.Degraded())
}

func TestShell_RejectsUnknownView(t *testing.T) {
	shell := NewShell("ws", leads.NewInMemoryRepository(), Dependencies{})
	_, err := shell.Navigate("settings")
	assert.ErrorIs(t, err, ErrUnknownView)
	assert.Equal(t, ViewDashboard, shell.Active())
}

func TestRegistry_SeparatesWorkspaces(t *testing.T) {
	registry := NewRegistry(Dependencies{}, true)
	defer registry.Close()

	a := tenancy.WithWorkspaceID(context.Background(), "a")
	b := tenancy.WithWorkspaceID(context.Background(), "b")

	repoA, err := registry.Leads(a)
	require.NoError(t, err)
	_, err = repoA.UpdateStatus(a, "1", leads.StatusShipping)
	require.NoError(t, err)

	repoB, err := registry.Leads(b)
	require.NoError(t, err)
	lead, err := repoB.GetByID(b, "1")
	require.NoError(t, err)
	assert.Equal(t, leads.StatusProspecting, lead.Status)
	assert.Equal(t, 2, registry.Len())

	_, err = registry.Shell(context.Background())
	assert.ErrorIs(t, err, ErrMissingWorkspace)

	_, err = registry.Board(a)
	assert.ErrorIs(t, err, ErrViewNotMounted)
}
