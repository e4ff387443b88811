package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const workspaceCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateWorkspaceCode returns a random join code of the given length using
// an alphabet without look-alike characters.
func GenerateWorkspaceCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid code length %d", length)
	}

	max := big.NewInt(int64(len(workspaceCodeAlphabet)))
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random bytes: %w", err)
		}
		code[i] = workspaceCodeAlphabet[n.Int64()]
	}

	return string(code), nil
}
