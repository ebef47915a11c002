package utils

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

func ParseAmountToCents(amount string) (int64, error) {
	value := strings.TrimSpace(amount)
	if value == "" {
		return 0, errors.New("amount is empty")
	}

	if strings.Contains(value, ",") && strings.Contains(value, ".") {
		return 0, errors.New("use a single decimal separator")
	}

	if strings.Contains(value, ",") {
		value = strings.ReplaceAll(value, ",", ".")
	}

	if strings.Contains(value, ".") {
		parts := strings.Split(value, ".")
		if len(parts) != 2 {
			return 0, errors.New("invalid decimal format")
		}
		intPart := parts[0]
		fracPart := parts[1]
		if intPart == "" {
			intPart = "0"
		}
		if !isDigits(intPart) || !isDigits(fracPart) {
			return 0, errors.New("amount must contain only digits")
		}
		if len(fracPart) > 2 {
			return 0, errors.New("use at most 2 decimal places")
		}
		if len(fracPart) == 1 {
			fracPart = fracPart + "0"
		}
		if len(fracPart) == 0 {
			fracPart = "00"
		}

		intVal, err := strconv.ParseInt(intPart, 10, 64)
		if err != nil {
			return 0, errors.New("invalid integer part")
		}
		fracVal, err := strconv.ParseInt(fracPart, 10, 64)
		if err != nil {
			return 0, errors.New("invalid decimal part")
		}

		if intVal > (math.MaxInt64-fracVal)/100 {
			return 0, errors.New("amount is too large")
		}
		cents := intVal*100 + fracVal
		if cents <= 0 {
			return 0, errors.New("amount must be greater than zero")
		}
		return cents, nil
	}

	if !isDigits(value) {
		return 0, errors.New("amount must contain only digits")
	}
	units, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, errors.New("invalid amount")
	}
	if units <= 0 {
		return 0, errors.New("amount must be greater than zero")
	}
	if units > math.MaxInt64/100 {
		return 0, errors.New("amount is too large")
	}
	return units * 100, nil
}

// FormatCents renders a cent amount as a plain decimal string, e.g. 12550 -> "125.50".
func FormatCents(cents int64) string {
	negative := cents < 0
	if negative {
		cents = -cents
	}
	out := strconv.FormatInt(cents/100, 10) + "." + pad2(cents%100)
	if negative {
		return "-" + out
	}
	return out
}

func pad2(value int64) string {
	if value < 10 {
		return "0" + strconv.FormatInt(value, 10)
	}
	return strconv.FormatInt(value, 10)
}

func isDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
