package layout

import (
	"regexp"
	"strings"
)

// Registry holds named layouts.
type Registry struct {
	layouts map[string]*Layout
}

// NewRegistry creates an empty layout registry.
func NewRegistry() *Registry {
	return &Registry{layouts: make(map[string]*Layout)}
}

// Register adds a layout. Panics on duplicate name.
func (r *Registry) Register(l *Layout) {
	key := strings.ToLower(l.Name)
	if _, ok := r.layouts[key]; ok {
		panic("duplicate layout: " + key)
	}
	r.layouts[key] = l
}

// Get returns the layout for name, or nil.
func (r *Registry) Get(name string) *Layout {
	return r.layouts[strings.ToLower(name)]
}

// DefaultRegistry returns a registry with all built-in layouts.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(OCBC())
	return r
}

// OCBC returns the layout of OCBC monthly account statements. Cells are
// separated by whitespace only, with no ruling lines.
func OCBC() *Layout {
	return &Layout{
		Name:        "ocbc",
		Anchor:      "Account No.",
		HeaderLines: 2,
		Columns: []Column{
			{Role: RoleDate, Header: []string{"Transaction", "Date"}},
			{Role: RoleValueDate, Header: []string{"Value", "Date"}},
			{Role: RoleDescription, Header: []string{"Description", ""}},
			{Role: RoleCheque, Header: []string{"Cheque", ""}},
			{Role: RoleWithdrawal, Header: []string{"Withdrawal", ""}},
			{Role: RoleDeposit, Header: []string{"Deposit", ""}},
			{Role: RoleBalance, Header: []string{"Balance", ""}},
		},
		DateFormat:    "2 Jan",
		StopAt:        "Average Balance",
		PeriodPattern: regexp.MustCompile(`(?i)(\d{1,2} [a-z]{3} \d{4}) TO (\d{1,2} [a-z]{3} \d{4})`),
		PeriodFormat:  "2 Jan 2006",
	}
}
