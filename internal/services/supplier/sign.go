package supplier

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"
)

// Sign computes the supplier Open API signature for a flat parameter map.
// Keys are sorted byte-wise, concatenated as key+value and wrapped with the
// app secret on both ends; the MD5 digest is rendered as uppercase hex.
// A "sign" key in the input is ignored: the signature is never part of its
// own canonicalization.
func Sign(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		if key == "sign" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(secret)
	for _, key := range keys {
		sb.WriteString(key)
		sb.WriteString(params[key])
	}
	sb.WriteString(secret)

	sum := md5.Sum([]byte(sb.String()))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}
