package search

import "strings"

// LevenshteinDistance counts the insertions, deletions, and substitutions
// needed to turn s1 into s2, operating on runes rather than bytes.
func LevenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	prevRow := make([]int, len(r2)+1)
	currRow := make([]int, len(r2)+1)
	for j := range prevRow {
		prevRow[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		currRow[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			currRow[j] = min3(prevRow[j]+1, currRow[j-1]+1, prevRow[j-1]+cost)
		}
		prevRow, currRow = currRow, prevRow
	}
	return prevRow[len(r2)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// JaroWinklerSimilarity returns a value in [0, 1]: 1.0 for an exact match,
// 0.0 if either string is empty or they share no matching characters
// within the Jaro match window, otherwise the Jaro similarity boosted by
// up to 0.1 per shared leading character (maximum 4 characters).
func JaroWinklerSimilarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}

	r1 := []rune(s1)
	r2 := []rune(s2)
	if len(r1) == 0 || len(r2) == 0 {
		return 0.0
	}

	matchDistance := maxInt(len(r1), len(r2))/2 - 1
	if matchDistance < 0 {
		matchDistance = 0
	}

	s1Matches := make([]bool, len(r1))
	s2Matches := make([]bool, len(r2))

	matches := 0
	for i := range r1 {
		start := i - matchDistance
		if start < 0 {
			start = 0
		}
		end := i + matchDistance + 1
		if end > len(r2) {
			end = len(r2)
		}
		for j := start; j < end; j++ {
			if s2Matches[j] || r1[i] != r2[j] {
				continue
			}
			s1Matches[i] = true
			s2Matches[j] = true
			matches++
			break
		}
	}

	if matches == 0 {
		return 0.0
	}

	transpositions := 0.0
	k := 0
	for i := range r1 {
		if !s1Matches[i] {
			continue
		}
		for !s2Matches[k] {
			k++
		}
		if r1[i] != r2[k] {
			transpositions++
		}
		k++
	}

	m := float64(matches)
	jaro := (m/float64(len(r1)) + m/float64(len(r2)) + (m-transpositions/2.0)/m) / 3.0

	prefix := 0
	for i := 0; i < len(r1) && i < len(r2) && i < 4; i++ {
		if r1[i] != r2[i] {
			break
		}
		prefix++
	}

	return jaro + float64(prefix)*0.1*(1.0-jaro)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// FuzzyMatch reports whether query and target are similar enough, per
// JaroWinklerSimilarity, to clear threshold.
func FuzzyMatch(query, target string, threshold float64) bool {
	return JaroWinklerSimilarity(query, target) >= threshold
}

// SimilarityPercent expresses JaroWinklerSimilarity on a 0-100 scale.
func SimilarityPercent(query, target string) float64 {
	return JaroWinklerSimilarity(query, target) * 100.0
}

var soundexCodes = map[rune]byte{
	'B': '1', 'F': '1', 'P': '1', 'V': '1',
	'C': '2', 'G': '2', 'J': '2', 'K': '2', 'Q': '2', 'S': '2', 'X': '2', 'Z': '2',
	'D': '3', 'T': '3',
	'L': '4',
	'M': '5', 'N': '5',
	'R': '6',
}

// Soundex returns the 4-character Soundex phonetic code for word: the
// uppercased first letter followed by digit codes for subsequent
// consonant sounds, collapsing adjacent repeats and padding with zeros.
func Soundex(word string) string {
	if word == "" {
		return "0000"
	}
	chars := []rune(strings.ToUpper(word))

	var result strings.Builder
	result.WriteRune(chars[0])
	prevCode := soundexCodes[chars[0]]

	for _, c := range chars[1:] {
		code := soundexCodes[c]
		if code != 0 && code != prevCode {
			result.WriteByte(code)
		}
		prevCode = code
		if result.Len() >= 4 {
			break
		}
	}

	out := result.String()
	if len(out) > 4 {
		out = out[:4]
	}
	for len(out) < 4 {
		out += "0"
	}
	return out
}

func isVowel(r rune) bool {
	switch r {
	case 'A', 'E', 'I', 'O', 'U':
		return true
	}
	return false
}

// Metaphone returns an approximate phonetic code for word, capturing
// consonant sounds that Soundex's digit scheme loses (silent letters,
// digraphs like "PH"/"SH"/"TH", soft vs. hard "C"). "G" has no soft form
// here: outside "GH" and "GN" it is always coded "K".
func Metaphone(word string) string {
	if word == "" {
		return ""
	}
	chars := []rune(strings.ToUpper(word))

	var result strings.Builder
	i := 0
	for i < len(chars) && result.Len() < 4 {
		c := chars[i]
		switch {
		case isVowel(c):
			if i == 0 {
				result.WriteRune(c)
			}
			for i+1 < len(chars) && isVowel(chars[i+1]) {
				i++
			}
		case c == 'B':
			result.WriteByte('B')
		case c == 'C':
			switch {
			case i+1 < len(chars) && (chars[i+1] == 'I' || chars[i+1] == 'E' || chars[i+1] == 'Y'):
				result.WriteByte('S')
			case i+1 < len(chars) && chars[i+1] == 'H':
				if !(i > 0 && chars[i-1] == 'S') {
					result.WriteByte('K')
				}
			default:
				result.WriteByte('K')
			}
		case c == 'D':
			if i+2 < len(chars) && chars[i+1] == 'G' && isFrontVowelY(chars[i+2]) {
				result.WriteByte('J')
				i += 2
			} else {
				result.WriteByte('D')
			}
		case c == 'F':
			result.WriteByte('F')
		case c == 'G':
			switch {
			case i+1 < len(chars) && chars[i+1] == 'H':
				// silent before H
			case i+1 < len(chars) && chars[i+1] == 'N':
				result.WriteByte('N')
				if i+2 < len(chars) && chars[i+2] == 'E' {
					i += 2
				}
			case i+1 < len(chars) && chars[i+1] == 'E' && i+2 < len(chars) && chars[i+2] == 'D':
				result.WriteByte('K')
			default:
				result.WriteByte('K')
			}
		case c == 'H':
			prevVowel := i > 0 && isVowel(chars[i-1])
			nextVowel := i+1 < len(chars) && isVowel(chars[i+1])
			if !prevVowel && !nextVowel {
				result.WriteByte('H')
			}
		case c == 'J':
			result.WriteByte('J')
		case c == 'K':
			if !(i > 0 && chars[i-1] == 'C') {
				result.WriteByte('K')
			}
		case c == 'L':
			result.WriteByte('L')
		case c == 'M':
			result.WriteByte('M')
		case c == 'N':
			result.WriteByte('N')
		case c == 'P':
			if i+1 < len(chars) && chars[i+1] == 'H' {
				result.WriteByte('F')
				i++
			} else {
				result.WriteByte('P')
			}
		case c == 'Q':
			result.WriteByte('K')
		case c == 'R':
			result.WriteByte('R')
		case c == 'S':
			switch {
			case i+2 < len(chars) && chars[i+1] == 'C' && isFrontVowelY(chars[i+2]):
				result.WriteByte('S')
				i += 2
			case i+1 < len(chars) && chars[i+1] == 'H':
				result.WriteByte('X')
				i++
			default:
				result.WriteByte('S')
			}
		case c == 'T':
			switch {
			case i+2 < len(chars) && chars[i+1] == 'C' && isFrontVowelY(chars[i+2]):
				result.WriteByte('X')
				i += 2
			case i+1 < len(chars) && chars[i+1] == 'H':
				result.WriteByte('X')
				i++
			case i+2 < len(chars) && chars[i+1] == 'C' && chars[i+2] == 'H':
				result.WriteByte('X')
				i += 2
			default:
				result.WriteByte('T')
			}
		case c == 'V':
			result.WriteByte('F')
		case c == 'W':
			if i+1 < len(chars) && isVowel(chars[i+1]) {
				result.WriteByte('W')
			}
		case c == 'X':
			result.WriteByte('K')
		case c == 'Y':
			if i+1 < len(chars) && isVowel(chars[i+1]) {
				result.WriteByte('Y')
			}
		case c == 'Z':
			result.WriteByte('S')
		}
		i++
	}
	return result.String()
}

func isFrontVowelY(r rune) bool {
	switch r {
	case 'I', 'E', 'Y':
		return true
	}
	return false
}

// SoundsLike reports whether two words share the same Soundex code.
func SoundsLike(word1, word2 string) bool {
	return Soundex(word1) == Soundex(word2)
}
