package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

// MembershipOracle answers group-membership lookups against the collaborator's
// group_members table.
type MembershipOracle struct {
	pool *pgxpool.Pool
}

func NewMembershipOracle(pool *pgxpool.Pool) *MembershipOracle {
	return &MembershipOracle{pool: pool}
}

func (o *MembershipOracle) IsMember(ctx context.Context, userID, groupID string) (bool, error) {
	var member bool
	err := o.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id=$1 AND user_id=$2)`,
		groupID, userID).Scan(&member)
	if err != nil {
		return false, fmt.Errorf("membership lookup: %w", err)
	}
	return member, nil
}
