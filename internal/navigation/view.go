package navigation

import (
	"errors"
	"fmt"
	"strings"
)

// View is one of the four top-level screens.
type View string

const (
	ViewDashboard   View = "dashboard"
	ViewKanban      View = "kanban"
	ViewProspecting View = "prospecting"
	ViewChat        View = "chat"
)

var (
	ErrUnknownView      = errors.New("navigation: unknown view")
	ErrViewNotMounted   = errors.New("navigation: view is not mounted")
	ErrMissingWorkspace = errors.New("navigation: missing workspace id")
)

// Views returns the selectable views in menu order.
func Views() []View {
	return []View{ViewDashboard, ViewKanban, ViewProspecting, ViewChat}
}

// ParseView validates a view name.
func ParseView(raw string) (View, error) {
	v := View(strings.ToLower(strings.TrimSpace(raw)))
	switch v {
	case ViewDashboard, ViewKanban, ViewProspecting, ViewChat:
		return v, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownView, raw)
}
