package match

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/roach88/xpand/internal/render"
)

// fingerprintDomain separates store fingerprints from other hashes. The
// version changes when the hashed layout does.
const fingerprintDomain = "xpand/matches/v1"

// Fingerprint identifies the content of the store: two stores with the
// same matches in the same order and the same global variables have the
// same fingerprint, wherever their files live.
func (s *Store) Fingerprint() (string, error) {
	matches := make([]Match, len(s.matches))
	copy(matches, s.matches)
	for i := range matches {
		matches[i].Source = ""
	}
	data, err := json.Marshal(struct {
		Matches []Match
		Globals []render.Variable
	}{matches, s.globals})
	if err != nil {
		return "", fmt.Errorf("fingerprint matches: %w", err)
	}
	return hashWithDomain(fingerprintDomain, data), nil
}

// hashWithDomain computes SHA256(domain + 0x00 + data). The null byte keeps
// the domain and data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
