package leave

import (
	"os"
	"strings"
)

const (
	defaultBalanceGatedCodes = "CL,EL,CO,SOL"
	defaultSingleDayCodes    = "SOL"
)

// Rules is the configured subset of catalog behavior that is not stored on
// the leave type rows themselves: which codes are gated on a positive
// balance and which are restricted to a single calendar date.
type Rules struct {
	balanceGated map[string]bool
	singleDay    map[string]bool
}

func NewRules(balanceGatedCodes, singleDayCodes []string) Rules {
	r := Rules{
		balanceGated: make(map[string]bool, len(balanceGatedCodes)),
		singleDay:    make(map[string]bool, len(singleDayCodes)),
	}
	for _, code := range balanceGatedCodes {
		r.balanceGated[strings.ToUpper(strings.TrimSpace(code))] = true
	}
	for _, code := range singleDayCodes {
		r.singleDay[strings.ToUpper(strings.TrimSpace(code))] = true
	}
	return r
}

func NewRulesFromEnv() Rules {
	balanceGated := os.Getenv("LEAVE_BALANCE_GATED_CODES")
	if balanceGated == "" {
		balanceGated = defaultBalanceGatedCodes
	}
	singleDay := os.Getenv("LEAVE_SINGLE_DAY_CODES")
	if singleDay == "" {
		singleDay = defaultSingleDayCodes
	}
	return NewRules(strings.Split(balanceGated, ","), strings.Split(singleDay, ","))
}

func (r Rules) IsBalanceGated(code string) bool {
	return r.balanceGated[strings.ToUpper(code)]
}

func (r Rules) IsSingleDayOnly(code string) bool {
	return r.singleDay[strings.ToUpper(code)]
}
