package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDigestMatchesOneShotSum(t *testing.T) {
	payload := "quarterly report, draft 3"
	d := NewDigest()
	_, err := io.Copy(d, strings.NewReader(payload))
	require.NoError(t, err)

	sum := sha256.Sum256([]byte(payload))
	require.Equal(t, hex.EncodeToString(sum[:]), d.Hex())
}
