package transform

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
)

// Fingerprint hashes the source-identifying field tuple of a
// disclosure into a stable hex digest. The tuple is encoded as
// key-sorted JSON with no insignificant whitespace, so identical
// disclosures re-ingested at any later time hash identically.
func Fingerprint(fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		keyJSON, _ := json.Marshal(k)
		valJSON, _ := json.Marshal(fields[k])
		b.Write(keyJSON)
		b.WriteByte(':')
		b.Write(valJSON)
	}
	b.WriteByte('}')

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
