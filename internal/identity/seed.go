package identity

import (
	"context"
	"time"

	"github.com/google/uuid"

	"caseseal/pkg/secrets"
)

// SeedUser describes a bootstrap identity.
type SeedUser struct {
	Username string
	Password string
	Role     Role
}

// DefaultSeedUsers mirrors the demo roster: one principal per role plus a
// second custodian so an M=2 quorum can actually be reached.
func DefaultSeedUsers() []SeedUser {
	return []SeedUser{
		{Username: "admin1", Password: "admin1-dev", Role: RoleAdmin},
		{Username: "judge1", Password: "judge1-dev", Role: RoleJudge},
		{Username: "secretary1", Password: "secretary1-dev", Role: RoleSecretary},
		{Username: "custodian1", Password: "custodian1-dev", Role: RoleCustodian},
		{Username: "custodian2", Password: "custodian2-dev", Role: RoleCustodian},
		{Username: "auditor1", Password: "auditor1-dev", Role: RoleAuditor},
	}
}

// seedNamespace is the UUIDv5 namespace for seeded identities. Seed IDs are
// derived from the username so a token minted by tokengen in a separate
// process resolves to the same principal the server seeded.
var seedNamespace = uuid.MustParse("6b1b1d2e-4f3a-4c8e-9a51-0f3a6f1c2d4b")

// Seed creates the given users in the store with bcrypt-hashed credentials.
// Returns the created users so callers can print or reuse their IDs.
func Seed(ctx context.Context, store *InMemoryStore, users []SeedUser) ([]*User, error) {
	now := time.Now()
	created := make([]*User, 0, len(users))
	for _, seed := range users {
		hash, err := secrets.Hash(seed.Password)
		if err != nil {
			return nil, err
		}
		user := &User{
			ID:           uuid.NewSHA1(seedNamespace, []byte(seed.Username)),
			Username:     seed.Username,
			PasswordHash: hash,
			Role:         seed.Role,
			Active:       true,
			CreatedAt:    now,
		}
		if err := store.Create(ctx, user); err != nil {
			return nil, err
		}
		created = append(created, user)
	}
	return created, nil
}
