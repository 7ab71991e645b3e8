package credentials

import (
	"sort"
	"strings"
)

// Delimiter separates the network id from the secret on each plaintext line.
const Delimiter = ';'

const escapeChar = '\\'

// encodeRecords renders one "id;secret" line per entry. Backslash, delimiter,
// newline and carriage return are escaped so that any id or secret round-trips.
// Lines are sorted by id; order carries no meaning.
func encodeRecords(records map[string]string) []byte {
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	for _, id := range ids {
		b.WriteString(escape(id))
		b.WriteByte(Delimiter)
		b.WriteString(escape(records[id]))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// decodeRecords is lenient: a line without an unescaped delimiter, or with an
// empty id, is skipped and never aborts the whole load. Files written before
// escaping was introduced parse the same way as long as they contain no
// backslashes.
func decodeRecords(plaintext []byte) (records map[string]string, skipped int) {
	records = make(map[string]string)
	for _, line := range strings.Split(string(plaintext), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		idx := delimiterIndex(line)
		if idx < 0 {
			skipped++
			continue
		}
		id := unescape(line[:idx])
		if id == "" {
			skipped++
			continue
		}
		records[id] = unescape(line[idx+1:])
	}
	return records, skipped
}

func delimiterIndex(line string) int {
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case escapeChar:
			i++
		case Delimiter:
			return i
		}
	}
	return -1
}

func escape(s string) string {
	if !strings.ContainsAny(s, "\\;\n\r") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case escapeChar:
			b.WriteString(`\\`)
		case Delimiter:
			b.WriteString(`\;`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func unescape(s string) string {
	if strings.IndexByte(s, escapeChar) < 0 {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != escapeChar || i == len(s)-1 {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case escapeChar, Delimiter:
			b.WriteByte(s[i])
		default:
			// unknown escape, keep it verbatim
			b.WriteByte(escapeChar)
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
