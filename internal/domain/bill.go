package domain

import (
	"fmt"
	"strings"
)

// BillCandidate identifies one bill returned by the search API.
type BillCandidate struct {
	Congress string
	Type     string
	Number   string
}

func (b BillCandidate) String() string {
	return fmt.Sprintf("%s/%s/%s", b.Congress, b.Type, b.Number)
}

// ParseBillCandidate derives a candidate from the search API fields.
// billID looks like "hr1234-118", number like "H.R.1234".
func ParseBillCandidate(billID, billType, number string) (BillCandidate, error) {
	parts := strings.Split(billID, "-")
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		return BillCandidate{}, fmt.Errorf("%w: bill_id %q", ErrBadResponse, billID)
	}

	segments := strings.Split(number, ".")
	num := strings.TrimSpace(segments[len(segments)-1])
	if num == "" {
		return BillCandidate{}, fmt.Errorf("%w: number %q", ErrBadResponse, number)
	}

	billType = strings.TrimSpace(billType)
	if billType == "" {
		return BillCandidate{}, fmt.Errorf("%w: empty bill_type", ErrBadResponse)
	}

	return BillCandidate{
		Congress: strings.TrimSpace(parts[1]),
		Type:     billType,
		Number:   num,
	}, nil
}
