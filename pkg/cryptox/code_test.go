package cryptox_test

import (
	"os"
	"strings"
	"testing"

	"github.com/eventia/stepup/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Point the pepper at a throwaway location so tests never touch a real
	// pepper file.
	dir, err := os.MkdirTemp("", "cryptox-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(dir + "/pepper")

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func TestGenerateNumericCode(t *testing.T) {
	t.Parallel()

	for range 50 {
		code, err := cryptox.GenerateNumericCode(6)
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, c := range code {
			require.True(t, c >= '0' && c <= '9')
		}
	}

	_, err := cryptox.GenerateNumericCode(0)
	require.Error(t, err)
}

func TestHashAndVerifyCode(t *testing.T) {
	t.Parallel()

	hash, err := cryptox.HashCode("482913")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	require.NoError(t, cryptox.VerifyCode("482913", hash))
	require.ErrorIs(t, cryptox.VerifyCode("482914", hash), cryptox.ErrCodeMismatch)
}

func TestHashCodeSaltsDiffer(t *testing.T) {
	t.Parallel()

	a, err := cryptox.HashCode("000000")
	require.NoError(t, err)
	b, err := cryptox.HashCode("000000")
	require.NoError(t, err)
	require.NotEqual(t, a, b, "fresh salt per hash")
}

func TestVerifyCodeRejectsMalformedHash(t *testing.T) {
	t.Parallel()

	require.Error(t, cryptox.VerifyCode("123456", "not-a-hash"))
	require.Error(t, cryptox.VerifyCode("123456", "$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA"))
}

func TestFingerprintToken(t *testing.T) {
	t.Parallel()

	fp := cryptox.FingerprintToken("some-token")
	require.Equal(t, fp, cryptox.FingerprintToken("some-token"))
	require.NotEqual(t, fp, cryptox.FingerprintToken("other-token"))
	require.Len(t, fp, 43)
}
