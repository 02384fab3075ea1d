package headers

// Compare orders two byte strings after per-byte ASCII case folding and
// returns -1, 0 or 1 a la strings.Compare. Non-ASCII bytes compare by raw
// value. Strings that are equal after folding compare as 0 regardless of
// their original case, which makes "Content-Type" and "content-type" the
// same header name everywhere this comparator is used.
func Compare(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		ca, cb := fold(a[i]), fold(b[i])
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// Less reports whether a orders before b; usable as a sort or tree
// comparator. The order it induces is a strict weak order: names equal
// after folding are order-equivalent.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

// Equal reports whether two names are the same header name.
func Equal(a, b string) bool {
	return Compare(a, b) == 0
}

func fold(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		c += 'a' - 'A'
	}
	return c
}
