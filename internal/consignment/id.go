package consignment

import (
	"crypto/rand"
	"fmt"
	"time"
)

// GenerateID produces an arbitrary but collision-resistant changeset
// filename stem: YYYYMMDD-HHMMSS-<random6>. Only the ".md" extension is
// meaningful; the rest of the name is never read back.
func GenerateID() (string, error) {
	randomBytes := make([]byte, 6)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random suffix: %w", err)
	}
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	for i := range randomBytes {
		randomBytes[i] = charset[int(randomBytes[i])%len(charset)]
	}
	return fmt.Sprintf("%s-%s", time.Now().UTC().Format("20060102-150405"), string(randomBytes)), nil
}
