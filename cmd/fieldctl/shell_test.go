package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"fieldops.service/internal/adapters/memory"
	"fieldops.service/internal/app"
	"fieldops.service/internal/config"
	"fieldops.service/internal/ports/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runScript(t *testing.T, store *memory.Store, lines ...string) string {
	t.Helper()
	services := app.NewServices(config.Config{}, store, nil, nil)
	var out bytes.Buffer
	newShell(services, strings.NewReader(strings.Join(lines, "\n")+"\n"), &out).run(context.Background())
	return out.String()
}

func seeded(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, memory.SeedDemo(ctx, store, time.Now().UTC()))
	_, err := store.CreateAccount(ctx, "admin@example.com", "secret123", "Admin User")
	require.NoError(t, err)
	return store
}

func TestCommandsRequireSession(t *testing.T) {
	out := runScript(t, seeded(t), "workers")
	assert.Contains(t, out, "Please sign in first.")
}

func TestLoginAndBrowse(t *testing.T) {
	out := runScript(t, seeded(t),
		"login admin@example.com wrong",
		"login admin@example.com secret123",
		"workers sarah",
		"customers acme",
		"surveys active",
		"dashboard",
	)

	assert.Contains(t, out, "Invalid email or password.")
	assert.Contains(t, out, "Signed in as Admin User")
	assert.Contains(t, out, "Sarah Johnson")
	assert.Contains(t, out, "1 of 5 workers")
	assert.Contains(t, out, "Acme Corporation")
	assert.NotContains(t, out, "TechSolutions")
	assert.Contains(t, out, "Checked in")
}

func TestToggleAndDeleteWithConfirmation(t *testing.T) {
	store := seeded(t)
	out := runScript(t, store,
		"login admin@example.com secret123",
		"toggle w7",
		"delete w5",
		"n",
		"delete w5",
		"y",
		"worker w5",
	)

	assert.Contains(t, out, "Robert Taylor is now active")
	assert.Contains(t, out, "Cancelled.")
	assert.Contains(t, out, "David Wilson deleted.")
	assert.Contains(t, out, "Worker w5 not found.")

	_, err := store.GetDocument(context.Background(), backend.Workers, "w5")
	assert.ErrorIs(t, err, backend.ErrNotFound)
}

func TestCheckInAndReport(t *testing.T) {
	out := runScript(t, seeded(t),
		"login admin@example.com secret123",
		"checkin w2 Main Site",
		"report checkin pdf Weekly",
		"report checkin csv Weekly",
		"reports",
	)

	assert.Contains(t, out, "Sarah Johnson checked out")
	assert.Contains(t, out, "PDF export is not supported")
	assert.Contains(t, out, "is COMPLETED")
	assert.Contains(t, out, "Total Records")
}

func TestUnknownCommand(t *testing.T) {
	out := runScript(t, seeded(t), "login admin@example.com secret123", "fly")
	assert.Contains(t, out, `Unknown command "fly"`)
}
