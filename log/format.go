package log

import (
	"bytes"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/holiman/uint256"
)

// termMsgJust is the column the first attribute starts at in the terminal
// handler, when the rendered message fits inside it.
const termMsgJust = 41

const floatFormat = 'f'

// FormatLogfmtValue formats a value for serialization, following logfmt
// conventions. When term is true, the value is formatted for a color
// terminal instead of a raw logfmt stream.
func FormatLogfmtValue(value interface{}, term bool) string {
	if value == nil {
		return "<nil>"
	}
	switch v := value.(type) {
	case time.Time:
		return v.Format(timeFormat)
	case *big.Int:
		if v == nil {
			return "<nil>"
		}
		return formatLogfmtBigInt(v)
	case *uint256.Int:
		if v == nil {
			return "<nil>"
		}
		return groupDigits(v.Dec())
	case error:
		return escapeString(v.Error())
	case fmt.Stringer:
		return escapeString(v.String())
	case bool:
		return strconv.FormatBool(v)
	case float32:
		return strconv.FormatFloat(float64(v), floatFormat, 3, 64)
	case float64:
		return strconv.FormatFloat(v, floatFormat, 3, 64)
	case int8, int16, int32, int64, int:
		return groupDigits(fmt.Sprintf("%d", v))
	case uint8, uint16, uint32, uint64, uint:
		return groupDigits(fmt.Sprintf("%d", v))
	case string:
		return escapeString(v)
	}
	if term {
		return escapeString(fmt.Sprintf("%+v", value))
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
		return fmt.Sprintf("%x", value)
	}
	return escapeString(fmt.Sprintf("%+v", value))
}

// FormatLogfmtInt64 formats n with comma-grouped digits, used by the
// terminal handler for large integer attributes.
func FormatLogfmtInt64(n int64) string {
	return groupDigits(strconv.FormatInt(n, 10))
}

// FormatLogfmtUint64 formats n with comma-grouped digits.
func FormatLogfmtUint64(n uint64) string {
	return groupDigits(strconv.FormatUint(n, 10))
}

func formatLogfmtBigInt(n *big.Int) string {
	return groupDigits(n.String())
}

// groupDigits inserts thousands separators into a decimal string, leaving
// a string of 5 digits or fewer untouched. s may carry a leading "-".
func groupDigits(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if len(s) <= 5 {
		if neg {
			return "-" + s
		}
		return s
	}
	var out strings.Builder
	if neg {
		out.WriteByte('-')
	}
	n := len(s)
	first := n % 3
	if first == 0 {
		first = 3
	}
	out.WriteString(s[:first])
	for i := first; i < n; i += 3 {
		out.WriteByte(',')
		out.WriteString(s[i : i+3])
	}
	return out.String()
}

// needsQuoting reports whether an attribute value must be quoted to be
// parsed unambiguously from a logfmt line.
func needsQuoting(s string) bool {
	if len(s) == 0 {
		return true
	}
	for _, r := range s {
		if r == ' ' || r == '=' || r == '"' || !strconv.IsPrint(r) {
			return true
		}
	}
	return false
}

func escapeString(s string) string {
	if needsQuoting(s) {
		return strconv.Quote(s)
	}
	return s
}

// messageNeedsQuoting decides whether a log message must be quoted. Unlike
// attribute values, plain spaces and embedded newlines are left alone; only
// other control characters force quoting.
func messageNeedsQuoting(s string) bool {
	for _, r := range s {
		if r < 0x20 && r != '\n' {
			return true
		}
	}
	return false
}

func escapeMessage(s string) string {
	if messageNeedsQuoting(s) {
		return strconv.Quote(s)
	}
	return s
}

// writeTimeTermFormat writes t to buf using the terminal handler's compact
// time layout.
func writeTimeTermFormat(buf *bytes.Buffer, t time.Time) {
	buf.Write(t.AppendFormat(nil, defaultTermTimeFormat))
}

func messageJustWidth(msg string) int {
	return utf8.RuneCountInString(msg)
}
