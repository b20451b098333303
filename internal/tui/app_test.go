package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/giftgrid/internal/constructor"
	"github.com/muurk/giftgrid/internal/discovery"
)

func TestParseServerAddress(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		wantURL string
		wantErr bool
	}{
		{name: "host only", addr: "studio.local", wantURL: "http://studio.local:8787"},
		{name: "host and port", addr: "10.0.0.5:9000", wantURL: "http://10.0.0.5:9000"},
		{name: "scheme and slash", addr: " http://10.0.0.5:9000/ ", wantURL: "http://10.0.0.5:9000"},
		{name: "ipv6", addr: "[::1]:8080", wantURL: "http://[::1]:8080"},
		{name: "empty", addr: "  ", wantErr: true},
		{name: "bad port", addr: "studio:abc", wantErr: true},
		{name: "port out of range", addr: "studio:70000", wantErr: true},
		{name: "path", addr: "studio/api", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, err := ParseServerAddress(tt.addr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, srv.BaseURL())
			assert.Equal(t, tt.wantURL+"/api", srv.APIBase())
		})
	}
}

func updateApp(t *testing.T, m AppModel, msgs ...tea.Msg) AppModel {
	t.Helper()
	for _, msg := range msgs {
		updated, _ := m.Update(msg)
		m = updated.(AppModel)
	}
	return m
}

func TestAppDiscoveryChoosesServer(t *testing.T) {
	ws := newTestWorkspace(t, &fakeSource{}, true)
	var opened *discovery.Server
	m := NewAppModel(Options{
		Discover: true,
		Open: func(srv *discovery.Server) (*constructor.Workspace, error) {
			opened = srv
			return ws, nil
		},
	})
	require.Equal(t, ScreenDiscovery, m.CurrentScreen)

	srv := &discovery.Server{Instance: "giftgrid on studio", Hostname: "studio", IP: "10.0.0.5", Port: 8787}
	m = updateApp(t, m,
		tea.WindowSizeMsg{Width: 100, Height: 40},
		scanStartMsg{},
		scanCompleteMsg{servers: []*discovery.Server{srv}},
		tea.KeyMsg{Type: tea.KeyEnter},
	)
	t.Cleanup(m.EditorModel.Close)

	assert.Equal(t, ScreenEditor, m.CurrentScreen)
	assert.Same(t, srv, opened)
	assert.Same(t, ws, m.Workspace())
	assert.Equal(t, "via giftgrid on studio", m.EditorModel.Label)
}

func TestAppDirect(t *testing.T) {
	ws := newTestWorkspace(t, &fakeSource{}, true)
	m := NewAppModel(Options{
		Discover:  true,
		Workspace: "default",
		Open: func(srv *discovery.Server) (*constructor.Workspace, error) {
			assert.Nil(t, srv)
			return ws, nil
		},
	})

	m = updateApp(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	t.Cleanup(m.EditorModel.Close)
	assert.Equal(t, ScreenEditor, m.CurrentScreen)
	assert.Equal(t, "default", m.EditorModel.Label)
}

func TestAppFailureRetry(t *testing.T) {
	ws := newTestWorkspace(t, &fakeSource{}, true)
	calls := 0
	m := NewAppModel(Options{
		Open: func(srv *discovery.Server) (*constructor.Workspace, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("store directory not writable")
			}
			return ws, nil
		},
	})
	require.Equal(t, ScreenFailure, m.CurrentScreen)
	assert.Contains(t, m.View(), "store directory not writable")

	m = updateApp(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	t.Cleanup(m.EditorModel.Close)
	assert.Equal(t, ScreenEditor, m.CurrentScreen)
	assert.Equal(t, 2, calls)
}

func TestAppWithoutOpener(t *testing.T) {
	m := NewAppModel(Options{})
	assert.Equal(t, ScreenFailure, m.CurrentScreen)
	assert.EqualError(t, m.LastError, "no workspace configured")
}
