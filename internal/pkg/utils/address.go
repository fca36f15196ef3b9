package utils

// TruncateAddress shortens a hex address for display, keeping the first
// prefixLen and last suffixLen characters around an ellipsis. Addresses too
// short to truncate meaningfully are returned unchanged.
func TruncateAddress(address string, prefixLen, suffixLen int) string {
	if len(address) < prefixLen+suffixLen+3 {
		return address
	}
	return address[:prefixLen] + "..." + address[len(address)-suffixLen:]
}

// TruncateEthAddress applies the conventional 6/4 truncation.
func TruncateEthAddress(address string) string {
	return TruncateAddress(address, 6, 4)
}
