// Package output writes parsed statements and failed tables to disk.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cleared-dev/stmtparse/internal/model"
)

// WriteJSON writes the statement as JSON indented by four spaces. Amounts are
// decimal strings and absent amounts are null.
func WriteJSON(w io.Writer, s model.Statement) error {
	if s.Transactions == nil {
		s.Transactions = []model.Transaction{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("writing statement JSON: %w", err)
	}
	return nil
}
