package models

// DefaultExpiryThresholdDays is the window in which a certificate counts as expiring.
const DefaultExpiryThresholdDays = 30

// ExpiringCertificates returns the certificates whose days_left is at or
// below threshold. Already expired certificates (negative days_left) are
// included; certificates without a numeric days_left are not.
func ExpiringCertificates(certs []Record, threshold int) []Record {
	var out []Record
	for _, c := range certs {
		days, ok := c.Get("days_left").Float()
		if !ok {
			continue
		}
		if days <= float64(threshold) {
			out = append(out, c)
		}
	}
	return out
}
