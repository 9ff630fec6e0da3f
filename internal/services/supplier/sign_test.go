package supplier

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSign_Deterministic(t *testing.T) {
	params := map[string]string{
		"method":    "aliexpress.ds.product.get",
		"app_key":   "12345",
		"timestamp": "2024-03-01 10:00:00",
	}

	first := Sign(params, "secret")
	second := Sign(params, "secret")
	assert.Equal(t, first, second)
}

func TestSign_OrderIndependent(t *testing.T) {
	// Maps iterate in random order; the signature must not depend on it.
	// Build the same logical mapping twice with different insertion order.
	a := map[string]string{}
	a["zeta"] = "1"
	a["alpha"] = "2"
	a["mid"] = "3"

	b := map[string]string{}
	b["mid"] = "3"
	b["zeta"] = "1"
	b["alpha"] = "2"

	assert.Equal(t, Sign(a, "s"), Sign(b, "s"))
}

func TestSign_KnownVector(t *testing.T) {
	params := map[string]string{
		"b": "2",
		"a": "1",
	}
	// secret + a1 + b2 + secret
	sum := md5.Sum([]byte("sa1b2s"))
	want := strings.ToUpper(hex.EncodeToString(sum[:]))

	assert.Equal(t, want, Sign(params, "s"))
}

func TestSign_ExcludesSignField(t *testing.T) {
	params := map[string]string{
		"method": "test",
		"v":      "2.0",
	}
	clean := Sign(params, "secret")

	params["sign"] = "BOGUS"
	assert.Equal(t, clean, Sign(params, "secret"))
}

func TestSign_UppercaseHex(t *testing.T) {
	sig := Sign(map[string]string{"k": "v"}, "secret")
	assert.Len(t, sig, 32)
	assert.Equal(t, strings.ToUpper(sig), sig)
}
