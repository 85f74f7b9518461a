//go:build integration

package revocation_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"caseseal/internal/identity/revocation"
	"caseseal/pkg/testutil/containers"
)

type RedisTRLSuite struct {
	suite.Suite

	ctx    context.Context
	client *redis.Client
	trl    *revocation.RedisTRL
}

func TestRedisTRLSuite(t *testing.T) {
	suite.Run(t, new(RedisTRLSuite))
}

func (s *RedisTRLSuite) SetupSuite() {
	s.ctx = context.Background()
	rc := containers.GetManager().GetRedis(s.T())
	s.client = redis.NewClient(&redis.Options{Addr: rc.Addr})
	s.trl = revocation.NewRedisTRL(s.client)
}

func (s *RedisTRLSuite) SetupTest() {
	s.Require().NoError(s.client.FlushAll(s.ctx).Err())
}

func (s *RedisTRLSuite) TearDownSuite() {
	if s.client != nil {
		s.Require().NoError(s.client.Close())
	}
}

func (s *RedisTRLSuite) TestRevokeAndCheck() {
	s.Require().NoError(s.trl.Revoke(s.ctx, "jti-1", time.Hour))

	revoked, err := s.trl.IsRevoked(s.ctx, "jti-1")
	s.Require().NoError(err)
	s.True(revoked)

	revoked, err = s.trl.IsRevoked(s.ctx, "jti-other")
	s.Require().NoError(err)
	s.False(revoked)
}

func (s *RedisTRLSuite) TestEntryExpiresWithTTL() {
	s.Require().NoError(s.trl.Revoke(s.ctx, "jti-short", 500*time.Millisecond))

	revoked, err := s.trl.IsRevoked(s.ctx, "jti-short")
	s.Require().NoError(err)
	s.True(revoked)

	time.Sleep(700 * time.Millisecond)

	revoked, err = s.trl.IsRevoked(s.ctx, "jti-short")
	s.Require().NoError(err)
	s.False(revoked)
}

func (s *RedisTRLSuite) TestEmptyJTIIsNoop() {
	s.Require().NoError(s.trl.Revoke(s.ctx, "", time.Hour))

	revoked, err := s.trl.IsRevoked(s.ctx, "")
	s.Require().NoError(err)
	s.False(revoked)
}
