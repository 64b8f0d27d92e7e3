package isbn

// IsValid reports whether s is a syntactically valid ISBN-10 or ISBN-13.
// Hyphens and spaces are not accepted; callers normalize first.
func IsValid(s string) bool {
	switch len(s) {
	case 10:
		return isValid10(s)
	case 13:
		return isValid13(s)
	default:
		return false
	}
}

func isValid10(s string) bool {
	sum := 0
	for i := 0; i < 10; i++ {
		c := s[i]
		var v int
		switch {
		case c >= '0' && c <= '9':
			v = int(c - '0')
		case (c == 'X' || c == 'x') && i == 9:
			v = 10
		default:
			return false
		}
		sum += v * (10 - i)
	}
	return sum%11 == 0
}

func isValid13(s string) bool {
	sum := 0
	for i := 0; i < 13; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return false
		}
		v := int(c - '0')
		if i%2 == 1 {
			v *= 3
		}
		sum += v
	}
	return sum%10 == 0
}
