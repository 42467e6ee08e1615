package holiday

import "errors"

var ErrRuleNotFound = errors.New("holiday rule not found")
