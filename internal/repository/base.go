// Package repository exposes one typed repository per table of the remote
// base. Mutable entities carry an integer Version column; updates re-read the
// record and compare versions first, so concurrent writers get ErrConflict
// instead of silently losing updates. The check-and-set is best effort; the
// remote store has no conditional write, so a small race window remains.
package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/cuesoftinc/cuelabs-backend/internal/airtable"
)

// Table names in the remote base.
const (
	TableUsers       = "Users"
	TableBounties    = "Bounties"
	TableSubmissions = "Submissions"
	TableEarnings    = "Earnings"
	TableMarketItems = "Market Items"
	TableOrders      = "Orders"
	TableOrderItems  = "Order Items"
)

// ErrConflict means the record's Version changed since it was read.
var ErrConflict = errors.New("record was modified concurrently")

func checkVersion(ctx context.Context, base *airtable.Client, table, id string, expected int) error {
	rec, err := base.GetRecord(ctx, table, id)
	if err != nil {
		return err
	}
	var v struct {
		Version int `json:"Version"`
	}
	if err := json.Unmarshal(rec.Fields, &v); err != nil {
		return err
	}
	if v.Version != expected {
		return ErrConflict
	}
	return nil
}
