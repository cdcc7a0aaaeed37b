package domain

import "fmt"

// DocumentID is the checksum-validated external identifier of the legal
// document backing a registration. Eight digits: seven significant digits
// plus a trailing check digit. Globally unique across the registry.
type DocumentID string

func (d DocumentID) String() string { return string(d) }

// checksum weights alternate 1,2 across the seven significant digits,
// with doubled digits reduced by summing their decimal digits (mod-10).
func checkDigit(digits string) int {
	sum := 0
	for i, r := range digits {
		v := int(r - '0')
		if i%2 == 1 {
			v *= 2
			if v > 9 {
				v -= 9
			}
		}
		sum += v
	}
	return (10 - sum%10) % 10
}

// ChecksumValid reports whether the ID is eight digits and its trailing
// check digit matches the weighted mod-10 checksum of the leading seven.
func (d DocumentID) ChecksumValid() bool {
	s := string(d)
	if len(s) != 8 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return checkDigit(s[:7]) == int(s[7]-'0')
}

// FormatDocumentID renders a sequence value as a document ID with its
// check digit appended.
func FormatDocumentID(seq int64) DocumentID {
	body := fmt.Sprintf("%07d", seq)
	return DocumentID(fmt.Sprintf("%s%d", body, checkDigit(body)))
}
