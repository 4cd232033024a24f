package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/oakhurst-kitchen/ordering-backend/config"
)

// DeliveryCheck is the result of a postcode serviceability lookup.
type DeliveryCheck struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
	Fee       int64  `json:"fee"`
	FreeOver  int64  `json:"free_over"`
	ETA       string `json:"eta"`
}

// outwardPattern matches the outward half of a UK postcode, e.g. "TW18".
var outwardPattern = regexp.MustCompile(`^[A-Z]{1,2}[0-9][A-Z0-9]?$`)

// OutwardCode extracts the outward code from a raw postcode string,
// returning "" when no recognizable outward code is present. "TW18 4PD"
// and "tw184pd" both yield "TW18".
func OutwardCode(raw string) string {
	pc := strings.ToUpper(strings.TrimSpace(raw))
	if pc == "" {
		return ""
	}

	if i := strings.IndexByte(pc, ' '); i > 0 {
		pc = pc[:i]
	} else if len(pc) > 4 {
		// Full postcode without a space: the inward part is always three
		// characters (digit + two letters).
		pc = pc[:len(pc)-3]
	}

	if !outwardPattern.MatchString(pc) {
		return ""
	}
	return pc
}

// CheckPostcode reports whether the restaurant delivers to the given
// postcode. Malformed postcodes are simply not serviceable.
func CheckPostcode(raw string, s config.Settings) DeliveryCheck {
	outward := OutwardCode(raw)

	if outward != "" {
		for _, allowed := range s.DeliveryOutwardCodes {
			if outward == allowed {
				return DeliveryCheck{
					Available: true,
					Message:   fmt.Sprintf("We deliver to %s", outward),
					Fee:       s.DeliveryFee,
					FreeOver:  s.FreeDeliveryOver,
					ETA:       s.DeliveryETA,
				}
			}
		}
	}

	return DeliveryCheck{
		Available: false,
		Message: fmt.Sprintf("Sorry, we only deliver to the %s areas",
			strings.Join(s.DeliveryOutwardCodes, ", ")),
	}
}
