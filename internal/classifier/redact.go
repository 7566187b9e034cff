package classifier

import (
	"strings"
	"unicode/utf8"
)

// Sentinels for values where partial masking is not meaningful.
const (
	UPISentinel        = "[REDACTED_UPI]"
	EmailSentinel      = "[REDACTED_EMAIL]"
	AddressSentinel    = "[REDACTED_ADDRESS]"
	IdentifierSentinel = "[REDACTED_IDENTIFIER]"
)

const mask = "X"

// RedactPhone keeps the first and last two characters and puts six X's in
// between: "9876543210" -> "98XXXXXX10".
func RedactPhone(v string) string {
	r := []rune(v)
	return string(head(r, 2)) + strings.Repeat(mask, 6) + string(tail(r, 2))
}

// RedactAadhar keeps the last four characters after removing spaces:
// "1234 5678 9012" -> "XXXXXXXX9012".
func RedactAadhar(v string) string {
	r := []rune(strings.ReplaceAll(v, " ", ""))
	return strings.Repeat(mask, 8) + string(tail(r, 4))
}

// RedactPassport keeps the first and last character: "A1234567" -> "AXXXXXX7".
func RedactPassport(v string) string {
	r := []rune(v)
	return string(head(r, 1)) + strings.Repeat(mask, 6) + string(tail(r, 1))
}

// RedactUPI replaces the whole handle.
func RedactUPI(string) string { return UPISentinel }

// RedactName keeps the initial of every whitespace-separated token and masks
// the rest of it: "John Doe" -> "JXXX DXX".
func RedactName(v string) string {
	tokens := strings.Fields(v)
	for i, t := range tokens {
		n := utf8.RuneCountInString(t)
		first, _ := utf8.DecodeRuneInString(t)
		tokens[i] = string(first) + strings.Repeat(mask, n-1)
	}
	return strings.Join(tokens, " ")
}

// RedactEmail masks the local part and keeps the domain. Local parts longer
// than two characters keep their first and last character around "XXX";
// shorter ones are masked entirely.
func RedactEmail(v string) string {
	local, domain, ok := strings.Cut(v, "@")
	if !ok {
		return EmailSentinel
	}
	r := []rune(local)
	if len(r) > 2 {
		return string(r[0]) + strings.Repeat(mask, 3) + string(r[len(r)-1]) + "@" + domain
	}
	return strings.Repeat(mask, len(r)) + "@" + domain
}

// RedactAddress replaces the whole address.
func RedactAddress(string) string { return AddressSentinel }

// RedactIdentifier replaces an IP address or device ID.
func RedactIdentifier(string) string { return IdentifierSentinel }

func head(r []rune, n int) []rune {
	if len(r) < n {
		return r
	}
	return r[:n]
}

func tail(r []rune, n int) []rune {
	if len(r) < n {
		return r
	}
	return r[len(r)-n:]
}
