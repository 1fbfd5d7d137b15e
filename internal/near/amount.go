package near

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

// NEARDecimals is the number of yoctoNEAR digits in one NEAR.
const NEARDecimals = 24

var decimalPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

var maxU128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// ParseAmount reads "1.5 NEAR", "1.5" (NEAR) or "1500 yoctoNEAR" into yoctoNEAR.
func ParseAmount(raw string) (*big.Int, error) {
	v := strings.TrimSpace(raw)
	lower := strings.ToLower(v)
	switch {
	case strings.HasSuffix(lower, "yoctonear"):
		digits := strings.TrimSpace(v[:len(v)-len("yoctonear")])
		n, ok := new(big.Int).SetString(digits, 10)
		if !ok || n.Sign() < 0 {
			return nil, fmt.Errorf("yoctoNEAR amount must be a non-negative integer, got %q", digits)
		}
		return checkU128(n)
	case strings.HasSuffix(lower, "near"):
		v = strings.TrimSpace(v[:len(v)-len("near")])
	}
	if !decimalPattern.MatchString(v) {
		return nil, fmt.Errorf("amount must be in decimal form like 1.25, got %q", raw)
	}
	base, err := decimalToBaseUnits(v, NEARDecimals)
	if err != nil {
		return nil, err
	}
	n, _ := new(big.Int).SetString(base, 10)
	return checkU128(n)
}

// FormatAmount renders yoctoNEAR as a trimmed decimal NEAR string.
func FormatAmount(yocto *big.Int) string {
	if yocto == nil {
		return "0 NEAR"
	}
	return formatDecimal(yocto.String(), NEARDecimals) + " NEAR"
}

func checkU128(n *big.Int) (*big.Int, error) {
	if n.Cmp(maxU128) > 0 {
		return nil, fmt.Errorf("amount exceeds u128 range")
	}
	return n, nil
}

func formatDecimal(baseUnits string, decimals int) string {
	s := strings.TrimLeft(baseUnits, "0")
	if s == "" {
		return "0"
	}
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}
	intPart := s[:len(s)-decimals]
	fracPart := strings.TrimRight(s[len(s)-decimals:], "0")
	if fracPart == "" {
		return intPart
	}
	return intPart + "." + fracPart
}

func decimalToBaseUnits(decimal string, decimals int) (string, error) {
	parts := strings.SplitN(decimal, ".", 2)
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if len(fracPart) > decimals {
		return "", fmt.Errorf("decimal precision exceeds %d digits", decimals)
	}
	combined := strings.TrimLeft(intPart+fracPart+strings.Repeat("0", decimals-len(fracPart)), "0")
	if combined == "" {
		return "0", nil
	}
	return combined, nil
}
