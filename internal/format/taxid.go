package format

// ValidCNPJ reports whether raw holds 14 digits with correct check digits
func ValidCNPJ(raw string) bool {
	d := Digits(raw)
	if len(d) != 14 || repeated(d) {
		return false
	}
	w1 := []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	w2 := []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	return checkDigit(d[:12], w1) == int(d[12]-'0') &&
		checkDigit(d[:13], w2) == int(d[13]-'0')
}

// ValidCPF reports whether raw holds 11 digits with correct check digits
func ValidCPF(raw string) bool {
	d := Digits(raw)
	if len(d) != 11 || repeated(d) {
		return false
	}
	w1 := []int{10, 9, 8, 7, 6, 5, 4, 3, 2}
	w2 := []int{11, 10, 9, 8, 7, 6, 5, 4, 3, 2}
	return checkDigit(d[:9], w1) == int(d[9]-'0') &&
		checkDigit(d[:10], w2) == int(d[10]-'0')
}

// ValidAccessKey checks the 44-digit access key and its modulo-11 verifier.
// The "NFe" marker is ignored.
func ValidAccessKey(raw string) bool {
	d := Digits(AccessKey(raw))
	if len(d) != 44 {
		return false
	}
	sum, weight := 0, 2
	for i := 42; i >= 0; i-- {
		sum += int(d[i]-'0') * weight
		weight++
		if weight > 9 {
			weight = 2
		}
	}
	dv := 11 - sum%11
	if dv >= 10 {
		dv = 0
	}
	return dv == int(d[43]-'0')
}

// checkDigit is the modulo-11 digit shared by CNPJ and CPF
func checkDigit(digits string, weights []int) int {
	sum := 0
	for i := range digits {
		sum += int(digits[i]-'0') * weights[i]
	}
	r := sum % 11
	if r < 2 {
		return 0
	}
	return 11 - r
}

func repeated(d string) bool {
	for i := 1; i < len(d); i++ {
		if d[i] != d[0] {
			return false
		}
	}
	return true
}
