package enums

import "fmt"

// CashoutMethod names the payout rail selected by the requesting user.
type CashoutMethod string

const (
	CashoutMethodUPI  CashoutMethod = "upi"
	CashoutMethodBank CashoutMethod = "bank"
)

var validCashoutMethods = []CashoutMethod{
	CashoutMethodUPI,
	CashoutMethodBank,
}

// String implements fmt.Stringer.
func (m CashoutMethod) String() string {
	return string(m)
}

// IsValid reports whether the value is a supported method.
func (m CashoutMethod) IsValid() bool {
	for _, candidate := range validCashoutMethods {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseCashoutMethod converts raw input into a CashoutMethod.
func ParseCashoutMethod(value string) (CashoutMethod, error) {
	for _, candidate := range validCashoutMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cashout method %q", value)
}
