package secrets_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "caseseal/pkg/domain-errors"
	"caseseal/pkg/secrets"
)

type SecretsSuite struct {
	suite.Suite
}

func TestSecretsSuite(t *testing.T) {
	suite.Run(t, new(SecretsSuite))
}

func (s *SecretsSuite) TestGenerate() {
	secret, err := secrets.Generate()
	s.Require().NoError(err)

	raw, err := base64.RawURLEncoding.DecodeString(secret)
	s.Require().NoError(err)
	s.Len(raw, 32)
}

func (s *SecretsSuite) TestGenerateIsUnique() {
	first, err := secrets.Generate()
	s.Require().NoError(err)
	second, err := secrets.Generate()
	s.Require().NoError(err)

	s.NotEqual(first, second)
}

func (s *SecretsSuite) TestHashAndVerify() {
	secret, err := secrets.Generate()
	s.Require().NoError(err)

	hash, err := secrets.Hash(secret)
	s.Require().NoError(err)
	s.NotEqual(secret, hash)

	s.NoError(secrets.Verify(secret, hash))
}

func (s *SecretsSuite) TestVerifyWrongSecret() {
	hash, err := secrets.Hash("correct-horse")
	s.Require().NoError(err)

	err = secrets.Verify("battery-staple", hash)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *SecretsSuite) TestHashEmptySecret() {
	_, err := secrets.Hash("")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}
