// Package utils carries the small shared helpers of the order protocol:
// address normalization, amount validation and the shared struct validator.
package utils

import (
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/vialabs/payorder/types"
)

// Native-asset sentinel addresses. The settlement service uses the zero
// address for the native asset; some routes still arrive with the legacy
// 0xeeee… marker.
const (
	ZeroAddress          = "0x0000000000000000000000000000000000000000"
	LegacyNativeSentinel = "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"
)

// allowListPatterns accepts non-hex deposit address formats used on
// non-programmable chains. These pass through NormalizeAddress unchanged.
var allowListPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^bc1[02-9ac-hj-np-z]{11,87}$`), // bitcoin bech32
	regexp.MustCompile(`^[13][1-9A-HJ-NP-Za-km-z]{25,34}$`), // bitcoin base58
}

// NormalizeAddress canonicalizes an address before it enters any request.
// Standard hex addresses are lower-cased; allow-listed non-standard formats
// pass through unchanged. Anything else is a validation error.
func NormalizeAddress(address string) (string, error) {
	if address == "" {
		return "", types.ValidationError("address is empty")
	}

	if common.IsHexAddress(address) {
		return strings.ToLower(address), nil
	}

	for _, pattern := range allowListPatterns {
		if pattern.MatchString(address) {
			return address, nil
		}
	}

	return "", types.ValidationError("invalid address %q", address)
}

// IsNativeToken reports whether the address is a native-asset sentinel.
func IsNativeToken(address string) bool {
	lower := strings.ToLower(address)
	return lower == ZeroAddress || lower == LegacyNativeSentinel
}
