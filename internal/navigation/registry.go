package navigation

import (
	"context"
	"sync"

	"github.com/lamitex/lamitex-crm/internal/chat"
	"github.com/lamitex/lamitex-crm/internal/leads"
	"github.com/lamitex/lamitex-crm/internal/pipeline"
	"github.com/lamitex/lamitex-crm/internal/prospecting"
	"github.com/lamitex/lamitex-crm/internal/tenancy"
)

// Registry owns one shell per workspace, created on first use.
type Registry struct {
	deps Dependencies
	seed bool

	mu     sync.Mutex
	shells map[string]*Shell
}

// NewRegistry creates an empty registry. With seed set, new workspaces start
// with the sample leads.
func NewRegistry(deps Dependencies, seed bool) *Registry {
	return &Registry{deps: deps, seed: seed, shells: make(map[string]*Shell)}
}

// Get returns the shell for id, creating it if needed.
func (r *Registry) Get(id string) *Shell {
	r.mu.Lock()
	defer r.mu.Unlock()
	if shell, ok := r.shells[id]; ok {
		return shell
	}
	var seed []leads.Lead
	if r.seed {
		seed = leads.SeedLeads()
	}
	shell := NewShell(id, leads.NewInMemoryRepository(seed...), r.deps)
	r.shells[id] = shell
	return shell
}

// Shell returns the shell for the workspace in ctx.
func (r *Registry) Shell(ctx context.Context) (*Shell, error) {
	id, ok := tenancy.WorkspaceIDFromContext(ctx)
	if !ok {
		return nil, ErrMissingWorkspace
	}
	return r.Get(id), nil
}

// Leads resolves the lead collection of the workspace in ctx.
func (r *Registry) Leads(ctx context.Context) (leads.Repository, error) {
	shell, err := r.Shell(ctx)
	if err != nil {
		return nil, err
	}
	return shell.Leads(), nil
}

// Board resolves the mounted board of the workspace in ctx.
func (r *Registry) Board(ctx context.Context) (*pipeline.Board, error) {
	shell, err := r.Shell(ctx)
	if err != nil {
		return nil, err
	}
	return shell.Board()
}

// Prospecting resolves the mounted prospecting session of the workspace in ctx.
func (r *Registry) Prospecting(ctx context.Context) (*prospecting.Session, error) {
	shell, err := r.Shell(ctx)
	if err != nil {
		return nil, err
	}
	return shell.Prospecting()
}

// Chat resolves the mounted chat panel of the workspace in ctx.
func (r *Registry) Chat(ctx context.Context) (*chat.Panel, error) {
	shell, err := r.Shell(ctx)
	if err != nil {
		return nil, err
	}
	return shell.Chat()
}

// Len returns the number of workspaces.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.shells)
}

// Close unmounts every shell.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, shell := range r.shells {
		shell.Close()
	}
}
